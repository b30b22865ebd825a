package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"mealmaker-backend/models"
)

func (c *Client) CreateListing(ctx context.Context, req *models.CreateListingRequest) (*models.FridgeListing, error) {
	r, err := c.jsonRequest(http.MethodPost, "/fridge-listings", c.timeouts.Write, req)
	if err != nil {
		return nil, err
	}
	var listing models.FridgeListing
	if err := c.do(ctx, r, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// ListListings returns an empty list when the service is unreachable.
func (c *Client) ListListings(ctx context.Context, status models.ListingStatus) ([]models.FridgeListing, error) {
	path := "/fridge-listings"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	return c.listings(ctx, "listings", path)
}

func (c *Client) ListMyListings(ctx context.Context, userID string) ([]models.FridgeListing, error) {
	return c.listings(ctx, "my_listings", "/fridge-listings/mine?user_id="+url.QueryEscape(userID))
}

func (c *Client) listings(ctx context.Context, op, path string) ([]models.FridgeListing, error) {
	listings := []models.FridgeListing{}
	if err := c.do(ctx, request{method: http.MethodGet, path: path, timeout: c.timeouts.Read}, &listings); err != nil {
		if ferr := c.fallback(ctx, op, err); ferr != nil {
			return nil, ferr
		}
		return []models.FridgeListing{}, nil
	}
	return listings, nil
}

func (c *Client) GetListing(ctx context.Context, id string) (*models.FridgeListing, error) {
	var listing models.FridgeListing
	r := request{method: http.MethodGet, path: "/fridge-listings/" + url.PathEscape(id), timeout: c.timeouts.Read}
	if err := c.do(ctx, r, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (c *Client) ClaimListing(ctx context.Context, id string, req *models.ClaimListingRequest) (*models.FridgeListing, error) {
	r, err := c.jsonRequest(http.MethodPatch, "/fridge-listings/"+url.PathEscape(id)+"/claim", c.timeouts.Write, req)
	if err != nil {
		return nil, err
	}
	var listing models.FridgeListing
	if err := c.do(ctx, r, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (c *Client) DeleteListing(ctx context.Context, id, userID string) error {
	path := "/fridge-listings/" + url.PathEscape(id) + "?user_id=" + url.QueryEscape(userID)
	return c.do(ctx, request{method: http.MethodDelete, path: path, timeout: c.timeouts.Write}, nil)
}

// UploadListingImage stores a listing photo and returns its public URL.
func (c *Client) UploadListingImage(ctx context.Context, filename string, image io.Reader) (string, error) {
	r, err := multipartRequest("/fridge-listings/image", "image", filename, image, c.timeouts.Upload)
	if err != nil {
		return "", err
	}
	var resp models.ImageUploadResponse
	if err := c.do(ctx, r, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

func multipartRequest(path, field, filename string, content io.Reader, timeout time.Duration) (request, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return request{}, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return request{}, fmt.Errorf("reading %s: %w", filename, err)
	}
	if err := writer.Close(); err != nil {
		return request{}, fmt.Errorf("closing multipart body: %w", err)
	}
	return request{
		method:      http.MethodPost,
		path:        path,
		timeout:     timeout,
		body:        &buf,
		contentType: writer.FormDataContentType(),
	}, nil
}
