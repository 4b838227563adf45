package services

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/storage"
	"google.golang.org/api/option"
)

// FirebaseClients bundles the Admin SDK clients the service uses
type FirebaseClients struct {
	App       *firebase.App
	Auth      *auth.Client
	Firestore *firestore.Client
	Storage   *storage.Client
}

// InitFirebase initializes the Firebase Admin SDK from a service account file.
// storageBucket may be empty when Firebase Storage is not used.
func InitFirebase(ctx context.Context, credPath, storageBucket string) (*FirebaseClients, error) {
	var cfg *firebase.Config
	if storageBucket != "" {
		cfg = &firebase.Config{StorageBucket: storageBucket}
	}

	app, err := firebase.NewApp(ctx, cfg, option.WithCredentialsFile(credPath))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}

	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firestore: %w", err)
	}

	storageClient, err := app.Storage(ctx)
	if err != nil {
		_ = firestoreClient.Close()
		return nil, fmt.Errorf("init firebase storage: %w", err)
	}

	return &FirebaseClients{
		App:       app,
		Auth:      authClient,
		Firestore: firestoreClient,
		Storage:   storageClient,
	}, nil
}

// Close releases the Firestore connection
func (c *FirebaseClients) Close() error {
	if c == nil || c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}
