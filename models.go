package auth

import (
	"time"

	"github.com/uptrace/bun"
)

// Person is a contact record that can also mint its own tokens when a
// password has been set.
type Person struct {
	bun.BaseModel `bun:"table:personen,alias:p"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Vorname       string    `bun:"vorname,notnull" json:"vorname"`
	Nachname      string    `bun:"nachname,notnull" json:"nachname"`
	PLZ           string    `bun:"plz,nullzero" json:"plz,omitempty"`
	Strasse       string    `bun:"strasse,nullzero" json:"strasse,omitempty"`
	Ort           string    `bun:"ort,nullzero" json:"ort,omitempty"`
	Telefonnummer string    `bun:"telefonnummer,nullzero,unique" json:"telefonnummer,omitempty"`
	Email         string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash  string    `bun:"password_hash,nullzero" json:"-"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// User is an account record. Users are created by registration and
// are never deleted.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	Username      string     `bun:"username,notnull,unique" json:"username"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Email         string     `bun:"email,notnull,unique" json:"email"`
	Role          UserRole   `bun:"role,notnull" json:"role"`
	IsActive      bool       `bun:"is_active,notnull" json:"is_active"`
	LastLogin     *time.Time `bun:"last_login" json:"last_login,omitempty"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// AuthCode is a short lived numeric code bound to a principal id.
// Issuing a new code does not invalidate earlier ones.
type AuthCode struct {
	bun.BaseModel `bun:"table:auth_codes,alias:ac"`
	ID            int64     `bun:"id,pk,autoincrement" json:"-"`
	UserID        int64     `bun:"user_id,notnull" json:"user_id"`
	Code          string    `bun:"code,notnull" json:"code"`
	ExpiresAt     time.Time `bun:"expires_at,notnull" json:"expires_at"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"created_at"`
}

// Expired reports whether the code is no longer usable at now.
func (a *AuthCode) Expired(now time.Time) bool {
	return !now.Before(a.ExpiresAt)
}

type userIdentity struct {
	user *User
}

// UserIdentity exposes the public attributes of u as an Identity.
func UserIdentity(u *User) Identity {
	return userIdentity{user: u}
}

func (u userIdentity) ID() int64        { return u.user.ID }
func (u userIdentity) Kind() string     { return KindUser }
func (u userIdentity) Username() string { return u.user.Username }
func (u userIdentity) Email() string    { return u.user.Email }
func (u userIdentity) Role() string     { return string(u.user.Role) }

// User returns the full record the identity was built from.
func (u userIdentity) User() *User { return u.user }

type personIdentity struct {
	person *Person
}

// PersonIdentity exposes the public attributes of p as a NamedIdentity.
func PersonIdentity(p *Person) NamedIdentity {
	return personIdentity{person: p}
}

func (p personIdentity) ID() int64        { return p.person.ID }
func (p personIdentity) Kind() string     { return KindPerson }
func (p personIdentity) Username() string { return "" }
func (p personIdentity) Email() string    { return p.person.Email }
func (p personIdentity) Role() string     { return string(RolePerson) }
func (p personIdentity) Vorname() string  { return p.person.Vorname }
func (p personIdentity) Nachname() string { return p.person.Nachname }

// Person returns the full record the identity was built from.
func (p personIdentity) Person() *Person { return p.person }

var (
	_ Identity      = userIdentity{}
	_ NamedIdentity = personIdentity{}
)
