// Package model holds the JSON shapes of the contacts API for use by clients.
package model

import "time"

// Contact is the full contact as returned by GET /contacts/:id.
type Contact struct {
	ID            string    `json:"_id"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Email         string    `json:"email"`
	FavoriteColor string    `json:"favoriteColor"`
	Birthday      time.Time `json:"birthday"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ContactSummary is a contact as listed by GET /contacts.
type ContactSummary struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	FavoriteColor string `json:"favoriteColor"`
}

// Created is the answer to POST /contacts.
type Created struct {
	ID      string `json:"_id"`
	Message string `json:"message"`
}

// Health is the answer to GET /health.
type Health struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Swagger  bool   `json:"swagger"`
}
