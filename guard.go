package auth

// AuthorizeSelf allows a principal to act only on the resource that
// carries its own id. rawTargetID is validated first, so a malformed
// id fails with a validation error before any authorization decision.
func AuthorizeSelf(claims AuthClaims, rawTargetID string) (int64, error) {
	target, err := ParseID(rawTargetID)
	if err != nil {
		return 0, err
	}

	if claims == nil {
		return 0, ErrMissingToken
	}

	if claims.UserID() != target {
		return 0, ErrForbidden.WithMetadata(map[string]any{
			"principal_id": claims.UserID(),
			"target_id":    target,
		})
	}

	return target, nil
}
