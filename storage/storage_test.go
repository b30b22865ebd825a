package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupabaseStorageUpload(t *testing.T) {
	var gotPath, gotAuth, gotType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSupabaseStorage(srv.URL, "https://cdn.example.com/", "service-key")
	url, err := s.Upload(context.Background(), "fridge-photos", "a.jpg", strings.NewReader("data"), "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "/storage/v1/object/fridge-photos/a.jpg", gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "image/jpeg", gotType)
	assert.Equal(t, "data", gotBody)
	assert.Equal(t, "https://cdn.example.com/storage/v1/object/public/fridge-photos/a.jpg", url)
}

func TestSupabaseStorageUploadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bucket not found", http.StatusNotFound)
	}))
	defer srv.Close()

	s := NewSupabaseStorage(srv.URL+"/storage/v1", srv.URL, "key")
	_, err := s.Upload(context.Background(), "missing", "a.jpg", strings.NewReader("x"), "image/jpeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestSniffImage(t *testing.T) {
	png := "\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 32)
	heic := "\x00\x00\x00\x18ftypheic" + strings.Repeat("\x00", 16)

	tests := []struct {
		name     string
		input    string
		wantType string
		wantErr  bool
	}{
		{"png", png, "image/png", false},
		{"heic", heic, "image/heic", false},
		{"plain text", "hello world", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, contentType, err := SniffImage(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, contentType)

			all, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, tt.input, string(all))
		})
	}
}

func TestSupabaseStorageDelete(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSupabaseStorage(srv.URL+"/storage/v1/", srv.URL, "key")
	require.NoError(t, s.Delete(context.Background(), "listing-images", "listings/a.png"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/storage/v1/object/listing-images/listings/a.png", gotPath)
}

func TestObjectName(t *testing.T) {
	s := NewSupabaseStorage("https://proj.supabase.co/storage/v1", "https://proj.supabase.co", "key")

	name, ok := s.ObjectName("listing-images", "https://proj.supabase.co/storage/v1/object/public/listing-images/listings/a.png")
	assert.True(t, ok)
	assert.Equal(t, "listings/a.png", name)

	_, ok = s.ObjectName("listing-images", "https://elsewhere.example/a.png")
	assert.False(t, ok)
	_, ok = s.ObjectName("fridge-photos", "https://proj.supabase.co/storage/v1/object/public/listing-images/a.png")
	assert.False(t, ok)
}
