package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Storage keeps uploaded images. Upload returns the public URL;
// ObjectName maps such a URL back to its object name within bucket.
type Storage interface {
	Upload(ctx context.Context, bucket string, filename string, file io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, bucket string, filename string) error
	ObjectName(bucket, publicURL string) (string, bool)
}

// SupabaseStorage talks to the Supabase Storage REST API.
type SupabaseStorage struct {
	baseURL   string
	publicURL string
	apiKey    string
	client    *http.Client
}

func NewSupabaseStorage(baseURL, publicURL, apiKey string) *SupabaseStorage {
	return &SupabaseStorage{
		baseURL:   baseURL,
		publicURL: publicURL,
		apiKey:    apiKey,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *SupabaseStorage) objectURL(bucket, filename string) string {
	baseURL := strings.TrimSuffix(s.baseURL, "/")
	if strings.HasSuffix(baseURL, "/storage/v1") {
		return fmt.Sprintf("%s/object/%s/%s", baseURL, bucket, filename)
	}
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", baseURL, bucket, filename)
}

func (s *SupabaseStorage) Upload(ctx context.Context, bucket string, filename string, file io.Reader, contentType string) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("%s_%d", uuid.New().String(), time.Now().Unix())
	}

	url := s.objectURL(bucket, filename)
	zap.L().Debug("Uploading object",
		zap.String("bucket", bucket),
		zap.String("filename", filename),
		zap.String("content_type", contentType))

	req, err := createUploadRequest(ctx, url, s.apiKey, file, contentType)
	if err != nil {
		return "", fmt.Errorf("creating upload request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		zap.L().Warn("Object upload rejected",
			zap.String("bucket", bucket),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	return s.GetURL(bucket, filename), nil
}

func (s *SupabaseStorage) Delete(ctx context.Context, bucket string, filename string) error {
	req, err := createDeleteRequest(ctx, s.objectURL(bucket, filename), s.apiKey)
	if err != nil {
		return fmt.Errorf("creating delete request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("executing delete request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("delete failed with status %d", resp.StatusCode)
	}
	return nil
}

func (s *SupabaseStorage) GetURL(bucket string, filename string) string {
	publicURL := strings.TrimSuffix(s.publicURL, "/")
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", publicURL, bucket, filename)
}

func (s *SupabaseStorage) ObjectName(bucket, publicURL string) (string, bool) {
	prefix := s.GetURL(bucket, "")
	name := strings.TrimPrefix(publicURL, prefix)
	if name == publicURL || name == "" {
		return "", false
	}
	return name, true
}
