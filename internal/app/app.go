// Package app wires configuration into the concrete adapters shared by the
// API and seed commands.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"compassevent/config"
	"compassevent/internal/adapters/awsconfig"
	"compassevent/internal/adapters/email"
	"compassevent/internal/adapters/storage"
	"compassevent/internal/domain"
	"compassevent/internal/repository/dynamo"
	"compassevent/internal/repository/postgres"
)

// Repositories holds the store implementations selected by STORE_DRIVER.
type Repositories struct {
	Users         domain.UserRepository
	Events        domain.EventRepository
	Registrations domain.RegistrationRepository

	db *sql.DB
}

// Close releases the underlying connection pool, if any.
func (r *Repositories) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// AWSOptions converts the AWS section of cfg into adapter options.
func AWSOptions(cfg config.AWSConfig) awsconfig.Options {
	return awsconfig.Options{
		Region:             cfg.Region,
		AccessKeyID:        cfg.AccessKeyID,
		SecretAccessKey:    cfg.SecretAccessKey,
		SessionToken:       cfg.SessionToken,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}
}

// OpenRepositories builds the repositories for cfg.Store.Driver.
func OpenRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Repositories, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("using postgres store")
		return &Repositories{
			Users:         postgres.NewUserRepository(db),
			Events:        postgres.NewEventRepository(db),
			Registrations: postgres.NewRegistrationRepository(db),
			db:            db,
		}, nil
	case config.DriverDynamoDB:
		awsCfg, err := awsconfig.Load(ctx, AWSOptions(cfg.AWS))
		if err != nil {
			return nil, err
		}
		client := dynamo.NewClient(awsCfg, cfg.Store.DynamoDBEndpoint)
		logger.Info("using dynamodb store",
			"users_table", cfg.Store.UsersTable,
			"events_table", cfg.Store.EventsTable,
			"registrations_table", cfg.Store.RegistrationsTable,
		)
		return &Repositories{
			Users:         dynamo.NewUserRepository(client, cfg.Store.UsersTable),
			Events:        dynamo.NewEventRepository(client, cfg.Store.EventsTable),
			Registrations: dynamo.NewRegistrationRepository(client, cfg.Store.RegistrationsTable),
		}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// NewUploader builds the image uploader for cfg.Storage.Provider.
func NewUploader(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.ImageUploader, error) {
	return storage.NewUploader(ctx, storage.UploaderConfig{
		Provider: cfg.Storage.Provider,
		S3: storage.S3Config{
			Bucket: cfg.Storage.S3Bucket,
			AWS:    AWSOptions(cfg.AWS),
		},
		GCS: storage.GCSConfig{
			Bucket:          cfg.Storage.GCSBucket,
			CredentialsFile: cfg.Storage.GCSCredentialsFile,
		},
	}, logger)
}

// NewMailer builds the mailer for cfg.Email.Provider. SES reuses the AWS
// credentials with the SES region.
func NewMailer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.Mailer, error) {
	sesOpts := AWSOptions(cfg.AWS)
	sesOpts.Region = cfg.Email.SESRegion
	return email.NewMailer(ctx, email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES:         sesOpts,
		Mailgun: email.MailgunConfig{
			Domain: cfg.Email.MailgunDomain,
			APIKey: cfg.Email.MailgunAPIKey,
		},
	}, logger)
}
