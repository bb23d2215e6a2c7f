package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// CollectionName is the name of the MongoDB collection holding the contacts.
const CollectionName = "contacts"

// emailIndexName is the name of the unique index that keeps emails distinct.
const emailIndexName = "email_unique"

// revisionField is the version key that other clients of the collection may have stored. It is
// never returned to callers.
const revisionField = "__v"

// summaryProjection limits listed documents to the fields of model.ContactSummary.
var summaryProjection = bson.D{
	{Key: "_id", Value: 0},
	{Key: "firstName", Value: 1},
	{Key: "lastName", Value: 1},
	{Key: "email", Value: 1},
	{Key: "favoriteColor", Value: 1},
}

// detailProjection hides the revision marker from single contact lookups.
var detailProjection = bson.D{{Key: revisionField, Value: 0}}

// Contacts implements ContactStore on top of a MongoDB collection.
type Contacts struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ ContactStore = (*Contacts)(nil)

// NewContacts returns a store working on the given collection.
func NewContacts(coll *mongo.Collection) *Contacts {
	return &Contacts{
		coll: coll,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Connect opens a client for the given connection string and verifies the connection with a
// ping. The caller owns the client and must disconnect it.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("could not create mongodb client: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("could not reach mongodb: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the store relies on. It is safe to call on every start.
func (s *Contacts) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName(emailIndexName).SetUnique(true),
	})
	if err != nil {
		return storageError("create email index", err)
	}
	return nil
}

// Ping checks that the primary of the database can be reached.
func (s *Contacts) Ping(ctx context.Context) error {
	if err := s.coll.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return storageError("ping", err)
	}
	return nil
}

// List returns the summaries of the contacts matching the filter, oldest first.
func (s *Contacts) List(ctx context.Context, filter model.ListFilter) ([]model.ContactSummary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(filter.NormalizedLimit())).
		SetProjection(summaryProjection)
	cursor, err := s.coll.Find(ctx, listQuery(filter), opts)
	if err != nil {
		return nil, storageError("find contacts", err)
	}
	contacts := []model.ContactSummary{}
	if err := cursor.All(ctx, &contacts); err != nil {
		return nil, storageError("decode contacts", err)
	}
	if contacts == nil {
		contacts = []model.ContactSummary{}
	}
	return contacts, nil
}

// GetByID returns the full contact with the given identifier.
func (s *Contacts) GetByID(ctx context.Context, id string) (*model.Contact, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var contact model.Contact
	err = s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}, options.FindOne().SetProjection(detailProjection)).
		Decode(&contact)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageError("find contact", err)
	}
	return &contact, nil
}

// Create normalizes and validates the fields, stores them as a new contact and returns the new
// identifier. A taken email is reported as a ValidationError.
func (s *Contacts) Create(ctx context.Context, fields model.ContactFields) (string, error) {
	fields.Normalize()
	if err := fields.ValidateForCreate(); err != nil {
		return "", &ValidationError{Err: err}
	}
	birthday, _ := model.ParseBirthday(*fields.Birthday)
	now := s.now()
	contact := model.Contact{
		ID:            bson.NewObjectID(),
		FirstName:     *fields.FirstName,
		LastName:      *fields.LastName,
		Email:         *fields.Email,
		FavoriteColor: *fields.FavoriteColor,
		Birthday:      birthday,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := s.coll.InsertOne(ctx, contact); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", &ValidationError{Err: ErrDuplicateEmail}
		}
		return "", storageError("insert contact", err)
	}
	return contact.ID.Hex(), nil
}

// Update changes only the fields present in the update and returns the contact as stored
// afterwards.
func (s *Contacts) Update(ctx context.Context, id string, fields model.ContactFields) (*model.Contact, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	fields.Normalize()
	if err := fields.ValidateForUpdate(); err != nil {
		return nil, &ValidationError{Err: err}
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(detailProjection)
	var contact model.Contact
	err = s.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, updateDocument(fields, s.now()), opts).
		Decode(&contact)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, &ValidationError{Err: ErrDuplicateEmail}
	case err != nil:
		return nil, storageError("update contact", err)
	}
	return &contact, nil
}

// Delete removes the contact with the given identifier.
func (s *Contacts) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	result, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return storageError("delete contact", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Reset removes all contacts from the collection and returns how many were removed.
func (s *Contacts) Reset(ctx context.Context) (int64, error) {
	result, err := s.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, storageError("delete all contacts", err)
	}
	return result.DeletedCount, nil
}

// parseID converts the textual identifier into an ObjectID.
func parseID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, ErrInvalidID
	}
	return oid, nil
}

// listQuery builds the query document for a listing. The color has to match exactly.
func listQuery(filter model.ListFilter) bson.D {
	query := bson.D{}
	if filter.FavoriteColor != "" {
		query = append(query, bson.E{Key: "favoriteColor", Value: filter.FavoriteColor})
	}
	return query
}

// updateDocument builds a $set that touches only the fields present in the update. The fields
// must have been validated.
func updateDocument(fields model.ContactFields, now time.Time) bson.D {
	set := bson.D{}
	if fields.FirstName != nil {
		set = append(set, bson.E{Key: "firstName", Value: *fields.FirstName})
	}
	if fields.LastName != nil {
		set = append(set, bson.E{Key: "lastName", Value: *fields.LastName})
	}
	if fields.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *fields.Email})
	}
	if fields.FavoriteColor != nil {
		set = append(set, bson.E{Key: "favoriteColor", Value: *fields.FavoriteColor})
	}
	if fields.Birthday != nil {
		birthday, _ := model.ParseBirthday(*fields.Birthday)
		set = append(set, bson.E{Key: "birthday", Value: birthday})
	}
	set = append(set, bson.E{Key: "updatedAt", Value: now})
	return bson.D{{Key: "$set", Value: set}}
}
