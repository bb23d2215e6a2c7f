package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// setupMongoContacts connects to the database named by MONGODB_URI and returns a store on a
// collection that is dropped when the test ends. The test is skipped without a database.
//
// Usage example on the command line:
// > docker run --rm -d -p 27017:27017 --name contacts-mongo mongo:7
// > MONGODB_URI=mongodb://localhost:27017 go test -run Mongo ./internal/store/
func setupMongoContacts(t *testing.T) *Contacts {
	t.Helper()
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set, skipping test against MongoDB")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := Connect(ctx, uri)
	require.NoError(t, err)
	coll := client.Database("contacts_store_test").Collection("contacts_" + bson.NewObjectID().Hex())
	t.Cleanup(func() {
		_ = coll.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	contacts := NewContacts(coll)
	require.NoError(t, contacts.EnsureIndexes(ctx))
	return contacts
}

func johnDoe() model.ContactFields {
	return model.ContactFields{
		FirstName:     ptr("John"),
		LastName:      ptr("Doe"),
		Email:         ptr("john@example.com"),
		FavoriteColor: ptr("Blue"),
		Birthday:      ptr("1990-01-01"),
	}
}

// TestMongoRoundTrip creates a contact and verifies that fetching it yields the submitted values.
func TestMongoRoundTrip(t *testing.T) {
	contacts := setupMongoContacts(t)
	ctx := context.Background()

	id, err := contacts.Create(ctx, johnDoe())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	contact, err := contacts.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, contact.ID.Hex())
	assert.Equal(t, "John", contact.FirstName)
	assert.Equal(t, "Doe", contact.LastName)
	assert.Equal(t, "john@example.com", contact.Email)
	assert.Equal(t, "Blue", contact.FavoriteColor)
	assert.True(t, contact.Birthday.Equal(time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, contact.CreatedAt.IsZero())
	assert.Equal(t, contact.CreatedAt, contact.UpdatedAt)
}

func TestMongoDuplicateEmail(t *testing.T) {
	contacts := setupMongoContacts(t)
	ctx := context.Background()

	_, err := contacts.Create(ctx, johnDoe())
	require.NoError(t, err)

	second := johnDoe()
	second.Email = ptr("  JOHN@Example.com")
	_, err = contacts.Create(ctx, second)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

// TestMongoPartialUpdate verifies that fields missing from an update keep their values.
func TestMongoPartialUpdate(t *testing.T) {
	contacts := setupMongoContacts(t)
	ctx := context.Background()

	id, err := contacts.Create(ctx, johnDoe())
	require.NoError(t, err)

	updated, err := contacts.Update(ctx, id, model.ContactFields{FavoriteColor: ptr("Green")})
	require.NoError(t, err)
	assert.Equal(t, "Green", updated.FavoriteColor)
	assert.Equal(t, "John", updated.FirstName)
	assert.Equal(t, "Doe", updated.LastName)
	assert.Equal(t, "john@example.com", updated.Email)
	assert.True(t, updated.Birthday.Equal(time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	_, err = contacts.Update(ctx, bson.NewObjectID().Hex(), model.ContactFields{FavoriteColor: ptr("Red")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoUpdateToTakenEmail(t *testing.T) {
	contacts := setupMongoContacts(t)
	ctx := context.Background()

	_, err := contacts.Create(ctx, johnDoe())
	require.NoError(t, err)
	jane := johnDoe()
	jane.Email = ptr("jane@example.com")
	janeID, err := contacts.Create(ctx, jane)
	require.NoError(t, err)

	_, err = contacts.Update(ctx, janeID, model.ContactFields{Email: ptr("John@Example.com")})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestMongoDelete(t *testing.T) {
	contacts := setupMongoContacts(t)
	ctx := context.Background()

	id, err := contacts.Create(ctx, johnDoe())
	require.NoError(t, err)
	require.NoError(t, contacts.Delete(ctx, id))

	_, err = contacts.GetByID(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, contacts.Delete(ctx, id), ErrNotFound)
}

// TestMongoListFilterAndLimit verifies the exact color match, the projection, and the limit.
func TestMongoListFilterAndLimit(t *testing.T) {
	contacts := setupMongoContacts(t)
	ctx := context.Background()

	for email, color := range map[string]string{
		"a@example.com": "Blue",
		"b@example.com": "blue",
		"c@example.com": "Blue",
		"d@example.com": "Green",
	} {
		fields := johnDoe()
		fields.Email = ptr(email)
		fields.FavoriteColor = ptr(color)
		_, err := contacts.Create(ctx, fields)
		require.NoError(t, err)
	}

	blue, err := contacts.List(ctx, model.ListFilter{FavoriteColor: "Blue"})
	require.NoError(t, err)
	assert.Len(t, blue, 2)
	for _, contact := range blue {
		assert.Equal(t, "Blue", contact.FavoriteColor)
		assert.Equal(t, "John", contact.FirstName)
	}

	one, err := contacts.List(ctx, model.ListFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, one, 1)

	all, err := contacts.List(ctx, model.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	none, err := contacts.List(ctx, model.ListFilter{FavoriteColor: "Purple"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMongoResetAndPing(t *testing.T) {
	contacts := setupMongoContacts(t)
	ctx := context.Background()

	require.NoError(t, contacts.Ping(ctx))
	_, err := contacts.Create(ctx, johnDoe())
	require.NoError(t, err)

	removed, err := contacts.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}
