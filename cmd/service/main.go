package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gitlab.com/dirk.krummacker/contacts-api/docs"
	"gitlab.com/dirk.krummacker/contacts-api/internal/config"
	"gitlab.com/dirk.krummacker/contacts-api/internal/logger"
	"gitlab.com/dirk.krummacker/contacts-api/internal/service"
	"gitlab.com/dirk.krummacker/contacts-api/internal/store"
)

// Usage example on the command line:
// > PORT=8080 MONGODB_URI=mongodb://localhost:27017 APP_ENV=production GIN_LOGGING=OFF go run main.go
//
//	@title			Contacts API
//	@version		1.0.0
//	@description	API for managing contacts
//	@BasePath		/
func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}
	logger.Init(cfg.App.Environment)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	client, err := store.Connect(connectCtx, cfg.Database.URI)
	cancelConnect()
	if err != nil {
		log.Fatal().Err(err).Msg("MongoDB connection error")
	}
	log.Info().Str("database", cfg.Database.Name).Msg("Connected to MongoDB")

	contacts := store.NewContacts(client.Database(cfg.Database.Name).Collection(store.CollectionName))
	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 10*time.Second)
	if err := contacts.EnsureIndexes(indexCtx); err != nil {
		log.Fatal().Err(err).Msg("Could not create indexes")
	}
	cancelIndex()

	docs.SwaggerInfo.Host = hostOf(cfg.App.PublicURL)
	router := service.SetupHttpRouter(contacts, cfg.App.RequestLogging)
	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", cfg.App.Port).
			Str("environment", cfg.App.Environment).
			Str("api", cfg.App.PublicURL+"/contacts").
			Str("docs", cfg.App.PublicURL+"/api-docs/index.html").
			Str("spec", cfg.App.PublicURL+"/api-docs.json").
			Msg("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Could not disconnect from MongoDB")
	}
	log.Info().Msg("Server exited")
}

// hostOf returns the host part of the public URL for the OpenAPI document. An unparsable URL
// leaves the host empty, which makes documentation clients use the serving host.
func hostOf(publicURL string) string {
	u, err := url.Parse(publicURL)
	if err != nil {
		return ""
	}
	return u.Host
}
