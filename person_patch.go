package auth

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/nyaruka/phonenumbers"
)

// DefaultPhoneRegion is used to parse phone numbers written without an
// international prefix.
var DefaultPhoneRegion = "DE"

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

// PersonPatch is a partial update of a Person. A nil field is left
// untouched. Keys outside the struct, and JSON nulls, decode to nil.
type PersonPatch struct {
	Vorname       *string `json:"vorname"`
	Nachname      *string `json:"nachname"`
	PLZ           *string `json:"plz"`
	Strasse       *string `json:"strasse"`
	Ort           *string `json:"ort"`
	Telefonnummer *string `json:"telefonnummer"`
	Email         *string `json:"email"`
	Password      *string `json:"password"`
}

// IsEmpty reports whether no mutable field is populated.
func (p PersonPatch) IsEmpty() bool {
	return p.Vorname == nil && p.Nachname == nil && p.PLZ == nil && p.Strasse == nil &&
		p.Ort == nil && p.Telefonnummer == nil && p.Email == nil && p.Password == nil
}

func (p PersonPatch) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Vorname, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&p.Nachname, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&p.PLZ, validation.Length(0, 16)),
		validation.Field(&p.Strasse, validation.Length(0, 255)),
		validation.Field(&p.Ort, validation.Length(0, 255)),
		validation.Field(&p.Telefonnummer, validation.By(phoneNumberRule)),
		validation.Field(&p.Email, validation.NilOrNotEmpty, is.EmailFormat, validation.Length(3, 255)),
		validation.Field(&p.Password, validation.NilOrNotEmpty, validation.Length(1, maxPasswordBytes)),
	)
	return validationFailure(err)
}

// Columns returns the column assignments for the populated fields in a
// stable order. The password is hashed and the phone number normalized.
// Empty optional fields are cleared to NULL.
func (p PersonPatch) Columns() ([]ColumnValue, error) {
	cols := make([]ColumnValue, 0, 8)
	add := func(column string, v *string, optional bool) {
		if v == nil {
			return
		}
		value := strings.TrimSpace(*v)
		if optional && value == "" {
			cols = append(cols, ColumnValue{Column: column, Value: nil})
			return
		}
		cols = append(cols, ColumnValue{Column: column, Value: value})
	}

	add("vorname", p.Vorname, false)
	add("nachname", p.Nachname, false)
	add("plz", p.PLZ, true)
	add("strasse", p.Strasse, true)
	add("ort", p.Ort, true)

	if p.Telefonnummer != nil {
		phone, err := NormalizePhoneNumber(*p.Telefonnummer)
		if err != nil {
			return nil, err
		}
		var value any
		if phone != "" {
			value = phone
		}
		cols = append(cols, ColumnValue{Column: "telefonnummer", Value: value})
	}

	if p.Email != nil {
		cols = append(cols, ColumnValue{Column: "email", Value: NormalizeEmail(*p.Email)})
	}

	if p.Password != nil {
		hash, err := HashPassword(*p.Password)
		if err != nil {
			return nil, err
		}
		cols = append(cols, ColumnValue{Column: "password_hash", Value: hash})
	}

	return cols, nil
}

// PersonInput is the payload to create a Person.
type PersonInput struct {
	Vorname       string `json:"vorname"`
	Nachname      string `json:"nachname"`
	PLZ           string `json:"plz"`
	Strasse       string `json:"strasse"`
	Ort           string `json:"ort"`
	Telefonnummer string `json:"telefonnummer"`
	Email         string `json:"email"`
	Password      string `json:"password"`
}

func (in PersonInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Vorname, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Nachname, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.PLZ, validation.Length(0, 16)),
		validation.Field(&in.Strasse, validation.Length(0, 255)),
		validation.Field(&in.Ort, validation.Length(0, 255)),
		validation.Field(&in.Telefonnummer, validation.By(phoneNumberRule)),
		validation.Field(&in.Email, validation.Required, is.EmailFormat, validation.Length(3, 255)),
		validation.Field(&in.Password, validation.Length(0, maxPasswordBytes)),
	)
	return validationFailure(err)
}

// ToPerson builds the record to insert.
func (in PersonInput) ToPerson() (*Person, error) {
	phone, err := NormalizePhoneNumber(in.Telefonnummer)
	if err != nil {
		return nil, err
	}

	p := &Person{
		Vorname:       strings.TrimSpace(in.Vorname),
		Nachname:      strings.TrimSpace(in.Nachname),
		PLZ:           strings.TrimSpace(in.PLZ),
		Strasse:       strings.TrimSpace(in.Strasse),
		Ort:           strings.TrimSpace(in.Ort),
		Telefonnummer: phone,
		Email:         NormalizeEmail(in.Email),
	}

	if in.Password != "" {
		hash, err := HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		p.PasswordHash = hash
	}

	return p, nil
}

// NormalizeEmail trims and lower cases an address so uniqueness does
// not depend on casing.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhoneNumber formats raw as E.164. An empty input returns an
// empty string.
func NormalizePhoneNumber(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	num, err := phonenumbers.Parse(raw, DefaultPhoneRegion)
	if err != nil || !phonenumbers.IsPossibleNumber(num) {
		return "", ValidationError("invalid phone number", map[string]any{
			"telefonnummer": "must be a valid phone number",
		})
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func phoneNumberRule(value any) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case *string:
		if v == nil {
			return nil
		}
		raw = *v
	default:
		return nil
	}

	if strings.TrimSpace(raw) == "" {
		return nil
	}

	if _, err := NormalizePhoneNumber(raw); err != nil {
		return errors.New("must be a valid phone number")
	}
	return nil
}

// validationFailure converts ozzo errors into a ValidationError with
// one detail entry per field.
func validationFailure(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		details := make(map[string]any, len(fieldErrs))
		for field, fe := range fieldErrs {
			details[field] = fe.Error()
		}
		return ValidationError("validation failed", details)
	}

	return ValidationError("validation failed", map[string]any{"error": err.Error()})
}
