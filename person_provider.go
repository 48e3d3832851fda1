package auth

import (
	"context"
	"strings"
)

// PersonFinder is the subset of Persons the verifier needs.
type PersonFinder interface {
	GetByID(ctx context.Context, id int64) (*Person, error)
}

// PersonProvider verifies the id, vorname and password triple used by
// the token generation endpoint.
type PersonProvider struct {
	store  PersonFinder
	logger Logger
}

func NewPersonProvider(store PersonFinder) *PersonProvider {
	return &PersonProvider{store: store, logger: defaultLogger()}
}

func (p *PersonProvider) WithLogger(l Logger) *PersonProvider {
	p.logger = normalizeLogger(l)
	return p
}

// VerifyPerson checks all parameters are present, that rawID is numeric
// and that a person with that id, first name and password exists. Any
// mismatch yields ErrPersonNotMatched so callers cannot tell which part
// was wrong.
func (p *PersonProvider) VerifyPerson(ctx context.Context, rawID, vorname, password string) (Identity, error) {
	missing := map[string]any{}
	if strings.TrimSpace(rawID) == "" {
		missing["id"] = "is required"
	}
	if strings.TrimSpace(vorname) == "" {
		missing["vorname"] = "is required"
	}
	if password == "" {
		missing["password"] = "is required"
	}
	if len(missing) > 0 {
		return nil, ValidationError("vorname, id and password are required", missing)
	}

	id, err := ParseID(rawID)
	if err != nil {
		return nil, err
	}

	person, err := p.store.GetByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrPersonNotMatched
		}
		return nil, mapStoreError(err, "persons.verify")
	}

	if person.Vorname != vorname || person.PasswordHash == "" {
		return nil, ErrPersonNotMatched
	}

	if err := ComparePasswordAndHash(password, person.PasswordHash); err != nil {
		return nil, ErrPersonNotMatched
	}

	return PersonIdentity(person), nil
}

var _ PersonVerifier = (*PersonProvider)(nil)
