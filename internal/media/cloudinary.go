package media

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"coursemarket/internal/config"

	"github.com/go-resty/resty/v2"
	"github.com/golang/glog"
	"github.com/google/uuid"
)

type cloudinaryError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CloudinaryClient uploads files with Cloudinary's signed upload API.
type CloudinaryClient struct {
	client    *resty.Client
	cloudName string
	apiKey    string
	apiSecret string
	now       func() time.Time
}

func NewCloudinaryClient(cfg config.CloudinaryConfig) *CloudinaryClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(2 * time.Minute)

	return &CloudinaryClient{
		client:    client,
		cloudName: cfg.CloudName,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		now:       time.Now,
	}
}

func (c *CloudinaryClient) Upload(ctx context.Context, file io.Reader, filename, folder string) (*Result, error) {
	if c.cloudName == "" || c.apiKey == "" || c.apiSecret == "" {
		return nil, errors.New("media service credentials are not configured")
	}

	params := map[string]string{
		"folder":    folder,
		"public_id": uuid.NewString(),
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
	}
	form := map[string]string{
		"api_key":   c.apiKey,
		"signature": sign(params, c.apiSecret),
	}
	for k, v := range params {
		form[k] = v
	}

	var result Result
	var apiErr cloudinaryError
	resp, err := c.client.R().
		SetContext(ctx).
		SetFileReader("file", filename, file).
		SetFormData(form).
		SetResult(&result).
		SetError(&apiErr).
		Post(fmt.Sprintf("/%s/auto/upload", c.cloudName))
	if err != nil {
		return nil, fmt.Errorf("error uploading %s: %w", filename, err)
	}
	if resp.IsError() {
		glog.Errorf("media upload of %s failed with status %d: %s", filename, resp.StatusCode(), apiErr.Error.Message)
		return nil, fmt.Errorf("media upload failed (%d): %s", resp.StatusCode(), apiErr.Error.Message)
	}

	return &result, nil
}

// sign computes the request signature: the SHA-1 of the sorted, &-joined parameters followed by
// the API secret.
func sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}
