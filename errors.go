package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Category groups errors by the kind of failure they describe.
type Category string

const (
	CategoryValidation        Category = "validation"
	CategoryAuthentication    Category = "authentication"
	CategoryMissingCredential Category = "missing_credential"
	CategoryInvalidToken      Category = "invalid_token"
	CategoryAuthorization     Category = "authorization"
	CategoryNotFound          Category = "not_found"
	CategoryConflict          Category = "conflict"
	CategoryStore             Category = "store"
	CategoryInternal          Category = "internal"
)

var categoryStatus = map[Category]int{
	CategoryValidation:        http.StatusBadRequest,
	CategoryAuthentication:    http.StatusUnauthorized,
	CategoryMissingCredential: http.StatusUnauthorized,
	CategoryInvalidToken:      http.StatusForbidden,
	CategoryAuthorization:     http.StatusForbidden,
	CategoryNotFound:          http.StatusNotFound,
	CategoryConflict:          http.StatusConflict,
	CategoryStore:             http.StatusInternalServerError,
	CategoryInternal:          http.StatusInternalServerError,
}

// Error is the rich error returned by every component in this package.
// Message and TextCode are safe to show to clients, Source is not.
type Error struct {
	Category Category
	Code     int
	TextCode string
	Message  string
	Details  map[string]any
	Metadata map[string]any
	Source   error
}

// NewError creates an error for the given category using the
// category's default status code.
func NewError(message string, category Category) *Error {
	return &Error{
		Category: category,
		Code:     statusForCategory(category),
		Message:  message,
	}
}

// WrapError creates a new error that keeps err as its source.
func WrapError(err error, category Category, message string) *Error {
	e := NewError(message, category)
	e.Source = err
	return e
}

func (e *Error) Error() string {
	if e.Source != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Source)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Source
}

// Is matches errors that share category and text code, so sentinel
// values can be compared after they have been cloned or wrapped.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.TextCode == t.TextCode
}

// WithTextCode returns a copy with the stable machine readable code set.
func (e *Error) WithTextCode(code string) *Error {
	c := e.clone()
	c.TextCode = code
	return c
}

// WithCode returns a copy that overrides the HTTP status.
func (e *Error) WithCode(code int) *Error {
	c := e.clone()
	c.Code = code
	return c
}

func (e *Error) WithMetadata(md map[string]any) *Error {
	c := e.clone()
	c.Metadata = mergeMaps(c.Metadata, md)
	return c
}

// WithDetails attaches client visible details, e.g. field errors.
func (e *Error) WithDetails(details map[string]any) *Error {
	c := e.clone()
	c.Details = mergeMaps(c.Details, details)
	return c
}

// WithSource returns a copy wrapping err.
func (e *Error) WithSource(err error) *Error {
	c := e.clone()
	c.Source = err
	return c
}

func (e *Error) clone() *Error {
	c := *e
	c.Details = mergeMaps(nil, e.Details)
	c.Metadata = mergeMaps(nil, e.Metadata)
	return &c
}

func mergeMaps(dst, src map[string]any) map[string]any {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func statusForCategory(c Category) int {
	if s, ok := categoryStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

var (
	ErrInvalidID = NewError("invalid id", CategoryValidation).
			WithTextCode("INVALID_ID")

	ErrNoFieldsToUpdate = NewError("no fields to update", CategoryValidation).
				WithTextCode("NO_FIELDS")

	ErrMismatchedHashAndPassword = NewError("invalid credentials", CategoryAuthentication).
					WithTextCode("INVALID_CREDENTIALS")

	// ErrIdentityNotFound is returned when no principal could be resolved
	ErrIdentityNotFound = NewError("identity not found", CategoryAuthentication).
				WithTextCode("IDENTITY_NOT_FOUND")

	ErrAccountInactive = NewError("account is inactive", CategoryAuthentication).
				WithTextCode("ACCOUNT_INACTIVE")

	// ErrPersonNotMatched keeps the authentication category but answers
	// with 404 the way the generate-token endpoint always has.
	ErrPersonNotMatched = NewError("person not found or wrong password", CategoryAuthentication).
				WithTextCode("PERSON_NOT_MATCHED").
				WithCode(http.StatusNotFound)

	ErrMissingToken = NewError("missing or malformed authorization header", CategoryMissingCredential).
			WithTextCode("MISSING_TOKEN")

	ErrTokenMalformed = NewError("invalid token", CategoryInvalidToken).
				WithTextCode("TOKEN_MALFORMED")

	ErrTokenExpired = NewError("token has expired", CategoryInvalidToken).
			WithTextCode("TOKEN_EXPIRED")

	ErrForbidden = NewError("not allowed to access this resource", CategoryAuthorization).
			WithTextCode("FORBIDDEN")

	ErrNotFound = NewError("record not found", CategoryNotFound).
			WithTextCode("NOT_FOUND")

	ErrConflict = NewError("record already exists", CategoryConflict).
			WithTextCode("CONFLICT")

	ErrStore = NewError("storage failure", CategoryStore).
			WithTextCode("STORE_ERROR")

	// ErrNoEmptyString is returned when hashing an empty password.
	ErrNoEmptyString = NewError("password must not be empty", CategoryValidation).
				WithTextCode("EMPTY_PASSWORD")
)

// ValidationError wraps field level validation failures.
func ValidationError(message string, details map[string]any) *Error {
	return NewError(message, CategoryValidation).
		WithTextCode("VALIDATION_ERROR").
		WithDetails(details)
}

// StoreError wraps an unexpected persistence failure. The driver message
// stays in Source and never reaches the client.
func StoreError(err error, op string) *Error {
	return ErrStore.WithSource(err).WithMetadata(map[string]any{"operation": op})
}

// AsError extracts an *Error from the chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// StatusFor maps any error to the HTTP status it should produce.
// Errors that are not *Error are treated as internal failures.
func StatusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if e, ok := AsError(err); ok {
		if e.Code != 0 {
			return e.Code
		}
		return statusForCategory(e.Category)
	}
	return http.StatusInternalServerError
}

// IsCategory reports whether err carries the given category.
func IsCategory(err error, c Category) bool {
	e, ok := AsError(err)
	return ok && e.Category == c
}

// IsNotFound reports whether err is a not found error.
func IsNotFound(err error) bool {
	return IsCategory(err, CategoryNotFound)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	return errors.Is(err, ErrTokenExpired)
}

// IsMalformedError will check for malformed tokens or headers
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenMalformed) || errors.Is(err, ErrMissingToken) ||
		strings.Contains(err.Error(), "token is malformed")
}
