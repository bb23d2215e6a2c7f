package store

//go:generate mockgen -source=store.go -destination=mock/store.go -package=mock

import (
	"context"

	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
)

// ContactStore is the data access layer between the request handlers and the database. The
// handlers receive it at construction, so tests can substitute a double.
type ContactStore interface {
	// List returns the contacts matching the filter in creation order, projected to their
	// summary.
	List(ctx context.Context, filter model.ListFilter) ([]model.ContactSummary, error)

	// GetByID returns the full contact with the given identifier.
	GetByID(ctx context.Context, id string) (*model.Contact, error)

	// Create validates and stores a new contact and returns its identifier.
	Create(ctx context.Context, fields model.ContactFields) (string, error)

	// Update validates and applies the present fields and returns the contact after the update.
	Update(ctx context.Context, id string, fields model.ContactFields) (*model.Contact, error)

	// Delete removes the contact with the given identifier.
	Delete(ctx context.Context, id string) error

	// Ping checks that the database can be reached.
	Ping(ctx context.Context) error
}
