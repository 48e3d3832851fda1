// Package auth implements account authentication and person record
// management behind a small JSON API.
//
// Accounts (User) log in with username and password and receive an HS256
// JWT. Person records carry their own bcrypt password; GenerateToken mints
// a one hour token for a person whose id, first name and password match.
// Protected routes accept either kind of token through the jwtware
// middleware and read the resulting AuthClaims from the request context.
//
// Person writes go through PersonService. Creation takes a PersonInput,
// updates take a PersonPatch whose nil fields are left untouched. Email
// and phone numbers are normalized before uniqueness checks, so two
// spellings of the same number conflict.
//
// AuthCodeIssuer hands out six digit one-time codes valid for an hour.
// A caller may only request codes for its own id.
//
// Store failures surface as a uniform 500 (ErrStore) and every store
// round trip is bounded by the configured store timeout. ActivitySink
// receives login, registration and person events best-effort; sink
// errors are logged and never fail the request.
package auth
