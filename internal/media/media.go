package media

import (
	"context"
	"io"
)

// Result is what the media service returns for a stored file.
type Result struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Format    string `json:"format"`
	Bytes     int64  `json:"bytes"`
}

// Uploader stores a file under folder and returns its public location.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, filename, folder string) (*Result, error)
}
