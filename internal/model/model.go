package model

import (
	"errors"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// DefaultLimit is the number of contacts returned by a listing when no limit is requested.
const DefaultLimit = 20

// MaxLimit is the largest number of contacts a single listing returns.
const MaxLimit = 100

// birthdayLayouts are the accepted input formats for a birthday, tried in order.
var birthdayLayouts = []string{"2006-01-02", time.RFC3339}

// emailPattern is the basic "local@domain.tld" shape every email must have.
var emailPattern = regexp.MustCompile(`.+@.+\..+`)

// errNothingToUpdate is reported when an update carries none of the contact fields.
var errNothingToUpdate = errors.New("no values to be updated")

// Contact is the data structure for a person that we know, as stored in the contacts collection.
type Contact struct {
	ID            bson.ObjectID `json:"_id"           bson:"_id,omitempty"`
	FirstName     string        `json:"firstName"     bson:"firstName"`
	LastName      string        `json:"lastName"      bson:"lastName"`
	Email         string        `json:"email"         bson:"email"`
	FavoriteColor string        `json:"favoriteColor" bson:"favoriteColor"`
	Birthday      time.Time     `json:"birthday"      bson:"birthday"`
	CreatedAt     time.Time     `json:"createdAt"     bson:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"     bson:"updatedAt"`
}

// ContactSummary is the reduced view of a contact used in listings.
type ContactSummary struct {
	FirstName     string `json:"firstName"     bson:"firstName"`
	LastName      string `json:"lastName"      bson:"lastName"`
	Email         string `json:"email"         bson:"email"`
	FavoriteColor string `json:"favoriteColor" bson:"favoriteColor"`
}

// ContactFields carries the user supplied values of a contact. A nil field was not part of the
// request, which matters for partial updates.
type ContactFields struct {
	FirstName     *string `json:"firstName,omitempty"`
	LastName      *string `json:"lastName,omitempty"`
	Email         *string `json:"email,omitempty"`
	FavoriteColor *string `json:"favoriteColor,omitempty"`
	Birthday      *string `json:"birthday,omitempty"`
}

// ListFilter narrows down a listing of contacts.
type ListFilter struct {
	FavoriteColor string
	Limit         int
}

// NormalizedLimit returns the limit clamped to the range 1..MaxLimit. Values below 1 fall back
// to DefaultLimit.
func (f ListFilter) NormalizedLimit() int {
	switch {
	case f.Limit < 1:
		return DefaultLimit
	case f.Limit > MaxLimit:
		return MaxLimit
	default:
		return f.Limit
	}
}

// Normalize trims the names and the email and lowercases the email. The favorite color is kept
// exactly as submitted.
func (f *ContactFields) Normalize() {
	trim := func(s *string) {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	trim(f.FirstName)
	trim(f.LastName)
	trim(f.Email)
	trim(f.Birthday)
	if f.Email != nil {
		*f.Email = strings.ToLower(*f.Email)
	}
}

// IsEmpty reports whether none of the fields has been supplied.
func (f ContactFields) IsEmpty() bool {
	return f.FirstName == nil && f.LastName == nil && f.Email == nil &&
		f.FavoriteColor == nil && f.Birthday == nil
}

// ValidateForCreate checks that all fields are present and well formed. The returned error is a
// validation.Errors keyed by the JSON field name.
func (f ContactFields) ValidateForCreate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.FirstName, validation.Required.Error("first name is required")),
		validation.Field(&f.LastName, validation.Required.Error("last name is required")),
		validation.Field(&f.Email,
			validation.Required.Error("email is required"),
			validation.Match(emailPattern).Error("please enter a valid email"),
		),
		validation.Field(&f.FavoriteColor, validation.Required.Error("favorite color is required")),
		validation.Field(&f.Birthday,
			validation.Required.Error("birthday is required"),
			validation.By(isBirthday),
		),
	)
}

// ValidateForUpdate checks the fields that are present. Absent fields are left alone, but a
// present field must satisfy the same rules as on creation. At least one field must be present.
func (f ContactFields) ValidateForUpdate() error {
	if f.IsEmpty() {
		return validation.Errors{"body": errNothingToUpdate}
	}
	return validation.ValidateStruct(&f,
		validation.Field(&f.FirstName, validation.NilOrNotEmpty.Error("first name must not be empty")),
		validation.Field(&f.LastName, validation.NilOrNotEmpty.Error("last name must not be empty")),
		validation.Field(&f.Email,
			validation.NilOrNotEmpty.Error("email must not be empty"),
			validation.Match(emailPattern).Error("please enter a valid email"),
		),
		validation.Field(&f.FavoriteColor, validation.NilOrNotEmpty.Error("favorite color must not be empty")),
		validation.Field(&f.Birthday,
			validation.NilOrNotEmpty.Error("birthday must not be empty"),
			validation.By(isBirthday),
		),
	)
}

// isBirthday is a validation rule that accepts empty values and strings that ParseBirthday
// understands.
func isBirthday(value interface{}) error {
	value, isNil := validation.Indirect(value)
	if isNil || validation.IsEmpty(value) {
		return nil
	}
	s, ok := value.(string)
	if !ok {
		return errors.New("birthday must be a string")
	}
	if _, err := ParseBirthday(s); err != nil {
		return errors.New("birthday must be a date like 1990-01-01")
	}
	return nil
}

// ParseBirthday reads a birthday in YYYY-MM-DD or RFC 3339 format. Only the calendar date as
// written is kept; it is returned as midnight UTC, whatever offset the input carries.
func ParseBirthday(s string) (time.Time, error) {
	var err error
	for _, layout := range birthdayLayouts {
		var t time.Time
		t, err = time.Parse(layout, strings.TrimSpace(s))
		if err == nil {
			year, month, day := t.Date()
			return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, err
}
