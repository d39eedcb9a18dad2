package config

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/conf"
	"github.com/golang/glog"
	"github.com/joho/godotenv"
)

// ServerConfig is a struct that contains configuration values for the server.
type ServerConfig struct {
	HTTP       HTTPConfig
	Auth       AuthConfig
	Store      StoreConfig
	Firebase   FirebaseConfig
	Mongo      MongoConfig
	Cloudinary CloudinaryConfig
	Courses    CoursesConfig
	NewRelic   NewRelicConfig
}

type HTTPConfig struct {
	// Port is the port the server should run on.
	Port int `conf:"default:4000,env:PORT"`
	// AllowedOrigins is a list of URLs that the server will accept requests from.
	AllowedOrigins []string `conf:"default:http://localhost:3000,env:ALLOWED_ORIGINS"`
	// RateLimitPerMinute is the number of requests a single IP may make per minute. Zero disables limiting.
	RateLimitPerMinute int `conf:"default:100,env:RATE_LIMIT_PER_MINUTE"`
	// MaxUploadBytes bounds the size of multipart bodies on create and edit.
	MaxUploadBytes int64 `conf:"default:52428800,env:MAX_UPLOAD_BYTES"`
}

type AuthConfig struct {
	// JWTSecret is the HMAC key used to verify caller tokens.
	JWTSecret string `conf:"default:change-me,env:JWT_SECRET,noprint"`
	// CookieName is checked for a token when no Authorization header is sent.
	CookieName string `conf:"default:token,env:AUTH_COOKIE_NAME"`
}

type StoreConfig struct {
	// Backend selects the document store: firestore, mongo or memory.
	Backend string `conf:"default:firestore,env:STORE_BACKEND"`
}

type FirebaseConfig struct {
	CredentialsFile string `conf:"default:firebase-config.json,env:FIREBASE_CREDENTIALS_FILE"`
}

type MongoConfig struct {
	URI      string `conf:"default:mongodb://localhost:27017,env:MONGO_URI,noprint"`
	Database string `conf:"default:coursemarket,env:MONGO_DATABASE"`
	// Transactions wraps mutation plans in a session transaction. Requires a replica set.
	Transactions bool `conf:"default:false,env:MONGO_TRANSACTIONS"`
}

// CloudinaryConfig holds the media service credentials.
type CloudinaryConfig struct {
	CloudName string `conf:"env:CLOUD_NAME"`
	APIKey    string `conf:"env:API_KEY"`
	APISecret string `conf:"env:API_SECRET,noprint"`
	BaseURL   string `conf:"default:https://api.cloudinary.com/v1_1,env:CLOUDINARY_BASE_URL"`
}

type CoursesConfig struct {
	// MediaFolder is the folder thumbnails are uploaded into.
	MediaFolder string `conf:"default:coursemarket,env:FOLDER_NAME"`
	// RestrictDraftAccess rejects full-detail requests for draft courses from anyone but the instructor.
	RestrictDraftAccess bool `conf:"default:false,env:RESTRICT_DRAFT_ACCESS"`
}

type NewRelicConfig struct {
	AppName    string `conf:"default:coursemarket,env:NEW_RELIC_APP_NAME"`
	LicenseKey string `conf:"env:NEW_RELIC_LICENSE_KEY,noprint"`
}

func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		HTTP: HTTPConfig{
			Port:               4000,
			AllowedOrigins:     []string{"http://localhost:3000"},
			RateLimitPerMinute: 100,
			MaxUploadBytes:     50 << 20,
		},
		Auth: AuthConfig{
			JWTSecret:  "change-me",
			CookieName: "token",
		},
		Store: StoreConfig{
			Backend: "memory",
		},
		Firebase: FirebaseConfig{
			CredentialsFile: "firebase-config.json",
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "coursemarket",
		},
		Cloudinary: CloudinaryConfig{
			BaseURL: "https://api.cloudinary.com/v1_1",
		},
		Courses: CoursesConfig{
			MediaFolder: "coursemarket",
		},
		NewRelic: NewRelicConfig{
			AppName: "coursemarket",
		},
	}
}

// Load reads an optional .env file into the environment and then parses the configuration from
// command line flags, environment variables and defaults, in that order of precedence.
func Load() (*ServerConfig, error) {
	if err := godotenv.Load(); err != nil {
		glog.Infof("no .env file loaded: %v", err)
	}

	var cfg ServerConfig
	// No namespace: env keys are read exactly as tagged (PORT, JWT_SECRET, ...).
	help, err := conf.ParseOSArgs("", &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
		}
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that have no sensible default.
func (c *ServerConfig) Validate() error {
	switch c.Store.Backend {
	case "firestore", "mongo", "memory":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("a JWT secret is required")
	}
	return nil
}
