// Package bootstrap builds the backing services shared by the server and
// the cronjob runner from configuration.
package bootstrap

import (
	"context"
	"fmt"

	"rental-desk-backend/internal/config"
	"rental-desk-backend/internal/logger"
	"rental-desk-backend/internal/repository"
	"rental-desk-backend/internal/repository/mongodb"
	"rental-desk-backend/internal/repository/postgres"
	"rental-desk-backend/internal/service"
	"rental-desk-backend/internal/storage"
)

// SessionStore is an open session repository with its connection lifecycle.
type SessionStore struct {
	repository.SessionRepository
	Ping  func(ctx context.Context) error
	Close func(ctx context.Context) error
}

// OpenSessionStore connects to the configured database. With migrate set
// the schema or indexes are created when missing.
func OpenSessionStore(ctx context.Context, cfg *config.Config, migrate bool) (*SessionStore, error) {
	switch cfg.Database.Driver {
	case "", "postgres":
		logger.Info("Connecting to database...", "driver", "postgres", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
		db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString())
		if err != nil {
			return nil, err
		}
		store := postgres.NewStore(db)
		if migrate {
			if err := store.EnsureSchema(ctx); err != nil {
				store.Close()
				return nil, err
			}
		}
		return &SessionStore{
			SessionRepository: store,
			Ping:              store.Ping,
			Close:             func(context.Context) error { return store.Close() },
		}, nil

	case "mongo":
		logger.Info("Connecting to database...", "driver", "mongo", "database", cfg.Database.MongoDatabase)
		client, err := mongodb.Connect(ctx, cfg.Database.MongoURI)
		if err != nil {
			return nil, err
		}
		store := mongodb.NewStore(client, cfg.Database.MongoDatabase)
		if migrate {
			if err := store.EnsureIndexes(ctx); err != nil {
				_ = store.Close(ctx)
				return nil, err
			}
		}
		return &SessionStore{
			SessionRepository: store,
			Ping:              store.Ping,
			Close:             store.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

// StorageConfig maps the storage section onto the storage backend settings.
func StorageConfig(cfg *config.Config) storage.Config {
	return storage.Config{
		Type:      cfg.Storage.Type,
		MockDir:   cfg.Storage.UploadDir,
		BaseURL:   cfg.Server.BaseURL,
		S3Region:  cfg.Storage.S3.Region,
		S3Bucket:  cfg.Storage.S3.Bucket,
		AccessKey: cfg.Storage.S3.AccessKeyID,
		SecretKey: cfg.Storage.S3.SecretAccessKey,
		Endpoint:  cfg.Storage.S3.Endpoint,
	}
}

// NewNotifier returns the SendGrid notifier when an API key is configured
// and the log-only notifier otherwise.
func NewNotifier(cfg *config.Config) service.Notifier {
	if cfg.Email.SendGridAPIKey == "" {
		logger.Warn("No SendGrid API key configured, customer emails will only be logged")
		return service.NewLogNotifier(cfg.Business.Name)
	}
	logger.Info("Email configuration", "provider", "sendgrid", "from", cfg.Email.FromAddress)
	return service.NewEmailNotifier(cfg.Email.SendGridAPIKey, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Business.Name)
}
