package firebase

import (
	"context"
	"fmt"

	firebaseSDK "firebase.google.com/go"
	"google.golang.org/api/option"
)

// NewApp initializes a Firebase App. An empty credentialsFile falls back to the application
// default credentials, which also covers the Firestore emulator.
func NewApp(ctx context.Context, credentialsFile string) (*firebaseSDK.App, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebaseSDK.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	return app, nil
}
