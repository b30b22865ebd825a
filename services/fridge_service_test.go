package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "mealmaker-backend/errors"
	"mealmaker-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fridgeFixture struct {
	svc        FridgeService
	listings   *mockListingRepo
	impactRepo *mockImpactRepo
	storage    *mockStorage
}

func newFridgeFixture() *fridgeFixture {
	clock := &fixedClock{t: day("2026-03-10").Add(9 * time.Hour)}
	impactSvc, impactRepo, _ := newTestImpactService(clock)
	listings := newMockListingRepo()
	store := &mockStorage{}
	return &fridgeFixture{
		svc:        NewFridgeService(listings, impactSvc, store, "listing-images"),
		listings:   listings,
		impactRepo: impactRepo,
		storage:    store,
	}
}

func validListing() *models.CreateListingRequest {
	desc := "  Half a tray, cooked today  "
	return &models.CreateListingRequest{
		UserID:          "owner",
		UserDisplayName: "Sam",
		Title:           " Leftover lasagna ",
		Description:     &desc,
		Items:           []string{"lasagna", " ", "tomato"},
	}
}

func TestCreateListing(t *testing.T) {
	f := newFridgeFixture()

	listing, err := f.svc.CreateListing(context.Background(), validListing())
	require.NoError(t, err)

	assert.Equal(t, "Leftover lasagna", listing.Title)
	assert.Equal(t, []string{"lasagna", "tomato"}, listing.Items)
	assert.Equal(t, models.ListingStatusAvailable, listing.Status)
	require.NotNil(t, listing.Description)
	assert.Equal(t, "Half a tray, cooked today", *listing.Description)
	assert.Nil(t, listing.ImageURL)
	_, err = uuid.Parse(listing.ID)
	assert.NoError(t, err)
}

func TestCreateListingValidation(t *testing.T) {
	f := newFridgeFixture()

	tests := []struct {
		name   string
		mutate func(r *models.CreateListingRequest)
		code   apperrors.ErrorCode
	}{
		{"missing user", func(r *models.CreateListingRequest) { r.UserID = "" }, apperrors.CodeMissingRequiredField},
		{"missing display name", func(r *models.CreateListingRequest) { r.UserDisplayName = " " }, apperrors.CodeMissingRequiredField},
		{"short title", func(r *models.CreateListingRequest) { r.Title = "a" }, apperrors.CodeInvalidRequest},
		{"long title", func(r *models.CreateListingRequest) { r.Title = strings.Repeat("x", 101) }, apperrors.CodeInvalidRequest},
		{"no items", func(r *models.CreateListingRequest) { r.Items = []string{"", " "} }, apperrors.CodeMissingRequiredField},
		{"too many items", func(r *models.CreateListingRequest) {
			r.Items = make([]string, MaxListingItems+1)
			for i := range r.Items {
				r.Items[i] = "item"
			}
		}, apperrors.CodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validListing()
			tt.mutate(req)
			_, err := f.svc.CreateListing(context.Background(), req)
			assertAppCode(t, err, tt.code)
		})
	}
	assert.Empty(t, f.listings.listings)
}

func TestClaimListingRecordsOwnerImpact(t *testing.T) {
	f := newFridgeFixture()
	ctx := context.Background()
	listing, err := f.svc.CreateListing(ctx, validListing())
	require.NoError(t, err)

	claimed, err := f.svc.ClaimListing(ctx, listing.ID, &models.ClaimListingRequest{ClaimedBy: "neighbor"})
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusClaimed, claimed.Status)
	require.NotNil(t, claimed.ClaimedByName)
	assert.Equal(t, "neighbor", *claimed.ClaimedByName)

	require.Len(t, f.impactRepo.events, 1)
	event := f.impactRepo.events[0]
	assert.Equal(t, "owner", event.UserID)
	assert.Equal(t, models.ImpactSourceFridgeShare, event.Source)
	require.NotNil(t, event.SourceID)
	assert.Equal(t, listing.ID, *event.SourceID)
	assert.Len(t, event.Ingredients, 2)

	_, err = f.svc.ClaimListing(ctx, listing.ID, &models.ClaimListingRequest{ClaimedBy: "late"})
	assertAppCode(t, err, apperrors.CodeAlreadyClaimed)
	assert.Len(t, f.impactRepo.events, 1)
}

func TestClaimListingErrors(t *testing.T) {
	f := newFridgeFixture()
	ctx := context.Background()
	listing, err := f.svc.CreateListing(ctx, validListing())
	require.NoError(t, err)

	_, err = f.svc.ClaimListing(ctx, listing.ID, &models.ClaimListingRequest{ClaimedBy: "owner"})
	assertAppCode(t, err, apperrors.CodeCannotSelfAction)

	_, err = f.svc.ClaimListing(ctx, listing.ID, &models.ClaimListingRequest{})
	assertAppCode(t, err, apperrors.CodeMissingRequiredField)

	_, err = f.svc.ClaimListing(ctx, uuid.New().String(), &models.ClaimListingRequest{ClaimedBy: "x"})
	assertAppCode(t, err, apperrors.CodeListingNotFound)

	_, err = f.svc.ClaimListing(ctx, "bogus", &models.ClaimListingRequest{ClaimedBy: "x"})
	assertAppCode(t, err, apperrors.CodeListingNotFound)
}

func TestClaimListingSurvivesImpactFailure(t *testing.T) {
	f := newFridgeFixture()
	ctx := context.Background()
	listing, err := f.svc.CreateListing(ctx, validListing())
	require.NoError(t, err)

	f.impactRepo.err = errors.New("impact store down")
	claimed, err := f.svc.ClaimListing(ctx, listing.ID, &models.ClaimListingRequest{ClaimedBy: "neighbor", ClaimedByName: "Alex"})
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusClaimed, claimed.Status)
	assert.Equal(t, "Alex", *claimed.ClaimedByName)
}

func TestListListings(t *testing.T) {
	f := newFridgeFixture()
	ctx := context.Background()
	a, err := f.svc.CreateListing(ctx, validListing())
	require.NoError(t, err)
	_, err = f.svc.CreateListing(ctx, validListing())
	require.NoError(t, err)
	_, err = f.svc.ClaimListing(ctx, a.ID, &models.ClaimListingRequest{ClaimedBy: "neighbor"})
	require.NoError(t, err)

	available, err := f.svc.ListListings(ctx, "")
	require.NoError(t, err)
	assert.Len(t, available, 1)

	claimed, err := f.svc.ListListings(ctx, models.ListingStatusClaimed)
	require.NoError(t, err)
	assert.Len(t, claimed, 1)

	_, err = f.svc.ListListings(ctx, models.ListingStatusDeleted)
	assertAppCode(t, err, apperrors.CodeInvalidRequest)

	mine, err := f.svc.ListMyListings(ctx, "owner")
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestDeleteListing(t *testing.T) {
	f := newFridgeFixture()
	ctx := context.Background()
	listing, err := f.svc.CreateListing(ctx, validListing())
	require.NoError(t, err)

	assertAppCode(t, f.svc.DeleteListing(ctx, listing.ID, "someone-else"), apperrors.CodeNotOwner)
	require.NoError(t, f.svc.DeleteListing(ctx, listing.ID, "owner"))

	_, err = f.svc.GetListing(ctx, listing.ID)
	assertAppCode(t, err, apperrors.CodeListingNotFound)
	assertAppCode(t, f.svc.DeleteListing(ctx, listing.ID, "owner"), apperrors.CodeListingNotFound)

	mine, err := f.svc.ListMyListings(ctx, "owner")
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestDeleteListingRemovesImage(t *testing.T) {
	f := newFridgeFixture()
	ctx := context.Background()

	url, err := f.svc.UploadListingImage(ctx, strings.NewReader("img"), "a.jpg", "image/jpeg")
	require.NoError(t, err)
	req := validListing()
	req.ImageURL = &url
	listing, err := f.svc.CreateListing(ctx, req)
	require.NoError(t, err)

	f.storage.err = errors.New("storage down")
	require.NoError(t, f.svc.DeleteListing(ctx, listing.ID, "owner"))
	require.Len(t, f.storage.deleted, 1)
	assert.True(t, strings.HasPrefix(f.storage.deleted[0], "listing-images/listings/"))
}

func TestUploadListingImage(t *testing.T) {
	f := newFridgeFixture()

	url, err := f.svc.UploadListingImage(context.Background(), strings.NewReader("img"), "Photo.PNG", "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.test/listing-images/listings/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	f.storage.err = errors.New("bucket missing")
	_, err = f.svc.UploadListingImage(context.Background(), strings.NewReader("img"), "a.jpg", "image/jpeg")
	assertAppCode(t, err, apperrors.CodeStorageError)
}
