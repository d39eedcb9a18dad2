package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"coursemarket/internal/auth"
	"coursemarket/internal/config"
	"coursemarket/internal/course"
	"coursemarket/internal/firebase"
	"coursemarket/internal/media"
	"coursemarket/internal/repository"
	"coursemarket/internal/server"

	"github.com/golang/glog"
	"github.com/newrelic/go-agent/v3/newrelic"
)

func main() {
	// conf parses os.Args with its own flag set, so glog's flags are only set here.
	_ = flag.Set("logtostderr", "true")
	_ = flag.CommandLine.Parse(nil)
	defer glog.Flush()

	if err := run(); err != nil {
		glog.Errorf("%v", err)
		glog.Flush()
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.NewRelic.AppName),
		newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
		newrelic.ConfigEnabled(cfg.NewRelic.LicenseKey != ""),
	)
	if err != nil {
		return fmt.Errorf("starting New Relic: %w", err)
	}
	defer app.Shutdown(0)

	svc := course.NewService(repo, media.NewCloudinaryClient(cfg.Cloudinary), course.Options{
		MediaFolder:         cfg.Courses.MediaFolder,
		RestrictDraftAccess: cfg.Courses.RestrictDraftAccess,
	})

	return server.Start(ctx, cfg, server.Dependencies{
		Courses:  svc,
		Verifier: auth.NewVerifier(cfg.Auth.JWTSecret),
		NewRelic: app,
	})
}

func openRepository(ctx context.Context, cfg *config.ServerConfig) (repository.Repository, error) {
	glog.Infof("using %s store", cfg.Store.Backend)

	switch cfg.Store.Backend {
	case "firestore":
		app, err := firebase.NewApp(ctx, cfg.Firebase.CredentialsFile)
		if err != nil {
			return nil, err
		}
		return repository.NewFirebaseRepository(ctx, app)
	case "mongo":
		return repository.NewMongoRepository(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Transactions)
	default:
		return repository.NewMemoryRepository(), nil
	}
}
