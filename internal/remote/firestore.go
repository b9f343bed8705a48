package remote

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sadopc/clearway/internal/journal"
	"github.com/sadopc/clearway/internal/logger"
)

// Config selects the Firebase project.
type Config struct {
	ProjectID       string
	CredentialsFile string
}

// NewApp initializes a Firebase app. An empty credentials file falls back to
// application default credentials, which is also what the emulator uses.
func NewApp(ctx context.Context, cfg Config) (*firebase.App, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		logger.Debug("Firebase credentials from file", "path", cfg.CredentialsFile)
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	return app, nil
}

// Documents implements journal.DocumentStore on Cloud Firestore.
type Documents struct {
	client *firestore.Client
}

var _ journal.DocumentStore = (*Documents)(nil)

func NewDocuments(ctx context.Context, app *firebase.App) (*Documents, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &Documents{client: client}, nil
}

func (d *Documents) Close() error {
	return d.client.Close()
}

func (d *Documents) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	ref, _, err := d.client.Collection(collection).Add(ctx, fields)
	if err != nil {
		return "", err
	}
	logger.Debug("Created document", "collection", collection, "id", ref.ID)
	return ref.ID, nil
}

func (d *Documents) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	updates := make([]firestore.Update, 0, len(fields))
	for path, v := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: v})
	}
	if len(updates) == 0 {
		return nil
	}
	_, err := d.client.Collection(collection).Doc(id).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return journal.ErrNotFound
	}
	return err
}

func (d *Documents) Delete(ctx context.Context, collection, id string) error {
	_, err := d.client.Collection(collection).Doc(id).Delete(ctx)
	return err
}

func (d *Documents) QueryByOwner(ctx context.Context, collection, owner string) ([]journal.Document, error) {
	iter := d.client.Collection(collection).Where("ownerId", "==", owner).Documents(ctx)
	defer iter.Stop()

	var docs []journal.Document
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, journal.Document{ID: snap.Ref.ID, Fields: snap.Data()})
	}
	return docs, nil
}
