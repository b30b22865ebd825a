package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
}

// SniffImage reads the head of an upload to check it is an image. It returns
// a reader that still yields the whole file and the detected content type.
func SniffImage(file io.Reader) (io.Reader, string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, "", fmt.Errorf("reading upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, "", fmt.Errorf("empty upload")
	}

	contentType := http.DetectContentType(head)
	if i := strings.Index(contentType, ";"); i != -1 {
		contentType = contentType[:i]
	}
	if !allowedImageTypes[contentType] && !isHEIC(head) {
		return nil, "", fmt.Errorf("unsupported file type %s", contentType)
	}
	if isHEIC(head) {
		contentType = "image/heic"
	}
	return io.MultiReader(bytes.NewReader(head), file), contentType, nil
}

// http.DetectContentType does not know HEIC, which iOS cameras produce.
func isHEIC(head []byte) bool {
	if len(head) < 12 || string(head[4:8]) != "ftyp" {
		return false
	}
	brand := string(head[8:12])
	return brand == "heic" || brand == "heix" || brand == "mif1" || brand == "msf1"
}

func createUploadRequest(ctx context.Context, url, apiKey string, file io.Reader, contentType string) (*http.Request, error) {
	body := &bytes.Buffer{}
	if _, err := io.Copy(body, file); err != nil {
		return nil, fmt.Errorf("copying file to buffer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", apiKey))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	return req, nil
}

func createDeleteRequest(ctx context.Context, url, apiKey string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", apiKey))

	return req, nil
}
