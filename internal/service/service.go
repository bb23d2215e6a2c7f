package service

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gitlab.com/dirk.krummacker/contacts-api/docs"
	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
	"gitlab.com/dirk.krummacker/contacts-api/internal/store"
)

// healthTimeout bounds the database ping of the health endpoint.
const healthTimeout = 2 * time.Second

// Messages of the error bodies. They are written as sentences starting with a capital letter.
const (
	msgInvalidJSON      = "Invalid JSON"
	msgInvalidID        = "Invalid id parameter"
	msgNotFound         = "Contact not found"
	msgDuplicateEmail   = "Email already exists"
	msgValidationFailed = "Validation failed"
)

// handler answers the contact endpoints. It keeps no state besides the store.
type handler struct {
	contacts store.ContactStore
}

// errorBody is the JSON body of every failed request.
type errorBody struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// createdBody is the JSON body answering a successful POST.
type createdBody struct {
	ID      string `json:"_id"`
	Message string `json:"message"`
}

// messageBody is the JSON body answering a successful PUT.
type messageBody struct {
	Message string `json:"message"`
}

// SetupHttpRouter initializes the REST API router and registers all endpoints. The store can be
// the MongoDB store for production use or a double within unit tests.
func SetupHttpRouter(contacts store.ContactStore, requestLogging bool) *gin.Engine {
	h := &handler{contacts: contacts}

	router := gin.New()
	router.Use(Recovery(), RequestID())
	if requestLogging {
		router.Use(Logger())
	}
	router.Use(CacheControl("no-store"))

	router.GET("/", welcome)
	router.GET("/health", h.health)
	router.GET("/contacts", h.findContacts)
	router.POST("/contacts", h.createContact)
	router.GET("/contacts/:id", h.findContactByID)
	router.PUT("/contacts/:id", h.updateContactByID)
	router.DELETE("/contacts/:id", h.deleteContactByID)

	router.GET("/api-docs.json", apiDocsJSON)
	router.GET("/api-docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.URL("/api-docs.json"),
		ginSwagger.DocExpansion("list"),
	))
	return router
}

// welcome answers the root path with a pointer to the API.
func welcome(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to the Contacts API - try /contacts")
}

// apiDocsJSON responds with the raw OpenAPI document.
func apiDocsJSON(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(docs.SwaggerInfo.ReadDoc()))
}

// health reports whether the service is up and the database is reachable. It always answers 200.
//
//	@Summary		Health check
//	@Description	Reports the status of the service and its database connection
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}
//	@Router			/health [get]
func (h *handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	database := "connected"
	if err := h.contacts.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("Health check could not reach the database")
		database = "disconnected"
	}
	c.IndentedJSON(http.StatusOK, gin.H{
		"status":   "OK",
		"database": database,
		"swagger":  true,
	})
}

// findContacts responds with a list of contacts as JSON. Each contact is reduced to its name,
// email and favorite color.
//
// The URL parameter 'color' restricts the result to contacts with exactly this favorite color.
// The URL parameter 'limit' specifies how many contacts are returned at most. It defaults to 20
// and is capped at 100; values that are not a positive number fall back to the default.
//
// REST API calls:
//
//	> curl "http://localhost:8080/contacts"
//	> curl "http://localhost:8080/contacts?color=Blue&limit=5"
//
//	@Summary		List contacts
//	@Tags			contacts
//	@Produce		json
//	@Param			color	query		string	false	"Favorite color to filter by (exact match)"
//	@Param			limit	query		int		false	"Maximum number of contacts"	default(20)
//	@Success		200		{array}		model.ContactSummary
//	@Failure		500		{object}	errorBody
//	@Router			/contacts [get]
func (h *handler) findContacts(c *gin.Context) {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = model.DefaultLimit
	}
	contacts, err := h.contacts.List(c.Request.Context(), model.ListFilter{
		FavoriteColor: c.Query("color"),
		Limit:         limit,
	})
	if err != nil {
		respondWithError(c, err, "Failed to fetch contacts")
		return
	}
	c.IndentedJSON(http.StatusOK, contacts)
}

// findContactByID locates the contact whose ID value matches the id parameter of the request URL,
// then returns that contact as a response.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/65f1c2d3e4f5a6b7c8d9e0f1
//
//	@Summary		Get a contact
//	@Tags			contacts
//	@Produce		json
//	@Param			id	path		string	true	"Contact id"
//	@Success		200	{object}	model.Contact
//	@Failure		400	{object}	errorBody
//	@Failure		404	{object}	errorBody
//	@Failure		500	{object}	errorBody
//	@Router			/contacts/{id} [get]
func (h *handler) findContactByID(c *gin.Context) {
	contact, err := h.contacts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err, "Failed to fetch contact")
		return
	}
	c.IndentedJSON(http.StatusOK, contact)
}

// createContact inserts the contact specified in the request's JSON into the database. It responds
// with the newly assigned id. All five fields are required, and the email must not be used by
// another contact.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts --request "POST" --include --header "Content-Type: application/json" --data '{"firstName": "John", "lastName": "Doe", "email": "john@example.com", "favoriteColor": "Blue", "birthday": "1990-01-01"}'
//
//	@Summary		Create a contact
//	@Tags			contacts
//	@Accept			json
//	@Produce		json
//	@Param			contact	body		model.ContactFields	true	"The new contact"
//	@Success		201		{object}	createdBody
//	@Failure		400		{object}	errorBody
//	@Failure		500		{object}	errorBody
//	@Router			/contacts [post]
func (h *handler) createContact(c *gin.Context) {
	var fields model.ContactFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: msgInvalidJSON})
		return
	}
	id, err := h.contacts.Create(c.Request.Context(), fields)
	if err != nil {
		respondWithError(c, err, "Failed to create contact")
		return
	}
	c.IndentedJSON(http.StatusCreated, createdBody{ID: id, Message: "Contact created successfully"})
}

// updateContactByID updates the contact whose ID value matches the id parameter of the request
// URL with the values specified in the JSON (and only those).
//
// Example REST API calls:
//
//	> curl http://localhost:8080/contacts/65f1c2d3e4f5a6b7c8d9e0f1 --request "PUT" --include --header "Content-Type: application/json" --data '{"favoriteColor": "Green"}'
//	> curl http://localhost:8080/contacts/65f1c2d3e4f5a6b7c8d9e0f1 --request "PUT" --include --header "Content-Type: application/json" --data '{"birthday": "1985-05-15"}'
//
//	@Summary		Update a contact
//	@Tags			contacts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Contact id"
//	@Param			contact	body		model.ContactFields	true	"The fields to change"
//	@Success		200		{object}	messageBody
//	@Failure		400		{object}	errorBody
//	@Failure		404		{object}	errorBody
//	@Failure		500		{object}	errorBody
//	@Router			/contacts/{id} [put]
func (h *handler) updateContactByID(c *gin.Context) {
	var fields model.ContactFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: msgInvalidJSON})
		return
	}
	if _, err := h.contacts.Update(c.Request.Context(), c.Param("id"), fields); err != nil {
		respondWithError(c, err, "Failed to update contact")
		return
	}
	c.IndentedJSON(http.StatusOK, messageBody{Message: "Contact updated successfully"})
}

// deleteContactByID deletes the contact whose ID value matches the id parameter of the request URL
// from the database. A successful deletion is answered without a body.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/65f1c2d3e4f5a6b7c8d9e0f1 --request "DELETE"
//
//	@Summary		Delete a contact
//	@Tags			contacts
//	@Param			id	path	string	true	"Contact id"
//	@Success		204
//	@Failure		400	{object}	errorBody
//	@Failure		404	{object}	errorBody
//	@Failure		500	{object}	errorBody
//	@Router			/contacts/{id} [delete]
func (h *handler) deleteContactByID(c *gin.Context) {
	if err := h.contacts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondWithError(c, err, "Failed to delete contact")
		return
	}
	c.Status(http.StatusNoContent)
}

// respondWithError maps a store error to an HTTP status. Unexpected errors are logged and
// answered with the generic message so that no internals reach the client.
func respondWithError(c *gin.Context, err error, generic string) {
	var validationErr *store.ValidationError
	switch {
	case errors.Is(err, store.ErrInvalidID):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: msgInvalidID})
	case errors.Is(err, store.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, errorBody{Error: msgNotFound})
	case errors.Is(err, store.ErrDuplicateEmail):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: msgDuplicateEmail})
	case errors.As(err, &validationErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: msgValidationFailed, Details: validationErr.Err})
	default:
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.Request.URL.Path).
			Msg(generic)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: generic})
	}
}
