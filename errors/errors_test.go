package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{TokenInvalid(), 401},
		{NotOwner("listing"), 403},
		{EmptyIngredients(), 400},
		{InvalidGoal(), 400},
		{ListingNotFound(), 404},
		{AlreadyClaimed(), 409},
		{AIServiceError(errors.New("quota")), 503},
		{DatabaseError("insert", errors.New("boom")), 500},
	}
	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.err.Type))
		})
	}
}

func TestAsAppErrorUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	wrapped := fmt.Errorf("saving: %w", DatabaseError("save streak", cause))

	appErr, ok := AsAppError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, CodeDatabaseError, appErr.Code)
	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, appErr.Error(), "DATABASE_001")
}

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(fmt.Errorf("getting listing: %w", pgx.ErrNoRows)))
	assert.False(t, IsNotFoundError(errors.New("listing not found")))
	assert.False(t, IsNotFoundError(nil))
}
