package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gitlab.com/dirk.krummacker/contacts-api/internal/config"
	"gitlab.com/dirk.krummacker/contacts-api/internal/logger"
	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
	"gitlab.com/dirk.krummacker/contacts-api/internal/store"
)

// sampleContacts are stored when no file with contacts is given.
var sampleContacts = []model.ContactFields{
	{
		FirstName:     ptr("John"),
		LastName:      ptr("Doe"),
		Email:         ptr("john@example.com"),
		FavoriteColor: ptr("Blue"),
		Birthday:      ptr("1990-01-01"),
	},
	{
		FirstName:     ptr("Jane"),
		LastName:      ptr("Smith"),
		Email:         ptr("jane@example.com"),
		FavoriteColor: ptr("Green"),
		Birthday:      ptr("1985-05-15"),
	},
}

// Usage example on the command line:
// > MONGODB_URI=mongodb://localhost:27017 go run main.go
// > MONGODB_URI=mongodb://localhost:27017 go run main.go -file=contacts.json -append
func main() {
	_ = godotenv.Load()
	filePtr := flag.String("file", "", "a JSON file with an array of contacts, the samples are used if empty")
	appendPtr := flag.Bool("append", false, "keep the existing contacts instead of removing them first")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}
	logger.Init(cfg.App.Environment)

	contacts := sampleContacts
	if *filePtr != "" {
		contacts, err = readContacts(*filePtr)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not read contacts")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	client, err := store.Connect(ctx, cfg.Database.URI)
	if err != nil {
		log.Fatal().Err(err).Msg("Seeding error")
	}
	defer client.Disconnect(context.Background())
	log.Info().Msg("Connected for seeding")

	s := store.NewContacts(client.Database(cfg.Database.Name).Collection(store.CollectionName))
	if err := s.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("Seeding error")
	}
	created, err := seed(ctx, s, contacts, !*appendPtr)
	if err != nil {
		log.Fatal().Err(err).Int("created", created).Msg("Seeding error")
	}
	log.Info().Int("created", created).Msg("Added contacts")
}

// seeder is the part of the store needed for seeding.
type seeder interface {
	Reset(ctx context.Context) (int64, error)
	Create(ctx context.Context, fields model.ContactFields) (string, error)
}

// seed stores the contacts, after removing all existing ones if reset is set. It stops at the
// first contact that cannot be stored and returns how many were created.
func seed(ctx context.Context, s seeder, contacts []model.ContactFields, reset bool) (int, error) {
	if reset {
		removed, err := s.Reset(ctx)
		if err != nil {
			return 0, err
		}
		log.Info().Int64("removed", removed).Msg("Cleared existing contacts")
	}
	for i, contact := range contacts {
		if _, err := s.Create(ctx, contact); err != nil {
			return i, fmt.Errorf("contact %d: %w", i, err)
		}
	}
	return len(contacts), nil
}

// readContacts parses a JSON array of contacts from the file.
func readContacts(path string) ([]model.ContactFields, error) {
	data, err := os.ReadFile(path) // nosemgrep
	if err != nil {
		return nil, err
	}
	var contacts []model.ContactFields
	if err := json.Unmarshal(data, &contacts); err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", path, err)
	}
	return contacts, nil
}

func ptr(s string) *string {
	return &s
}
