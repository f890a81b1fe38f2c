package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prepwise/server/domain/repositories"
)

// SupabaseStorage implements BlobStorage against a Supabase storage bucket.
type SupabaseStorage struct {
	baseURL    string
	serviceKey string
	bucket     string
	client     *http.Client
	logger     *zap.Logger
}

// SupabaseConfig configures the storage client. All fields are required.
type SupabaseConfig struct {
	BaseURL    string
	ServiceKey string
	Bucket     string
}

var _ repositories.BlobStorage = (*SupabaseStorage)(nil)

func NewSupabaseStorage(config SupabaseConfig, logger *zap.Logger) (*SupabaseStorage, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("supabase base URL is required")
	}
	if config.ServiceKey == "" {
		return nil, fmt.Errorf("supabase service key is required")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("supabase bucket is required")
	}

	return &SupabaseStorage{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		serviceKey: config.ServiceKey,
		bucket:     config.Bucket,
		client:     &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}, nil
}

// Upload stores data under key and returns the public URL. Existing objects
// with the same key are overwritten.
func (s *SupabaseStorage) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if key == "" {
		return "", fmt.Errorf("object key is required")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("no data to upload")
	}

	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, key)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("supabase upload returned %d: %s", resp.StatusCode, string(body))
	}

	publicURL := fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, key)

	s.logger.Debug("Blob uploaded",
		zap.String("key", key),
		zap.Int("bytes", len(data)))

	return publicURL, nil
}
