package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category string
	}{
		{"no rows", fmt.Errorf("lookup: %w", pgx.ErrNoRows), CategoryNotFound},
		{"deadline", fmt.Errorf("embed: %w", context.DeadlineExceeded), CategoryTimeout},
		{"canceled", context.Canceled, CategoryTimeout},
		{"dial", fmt.Errorf("dial tcp: connection refused"), CategoryNetwork},
		{"validation", fmt.Errorf("invalid importance"), CategoryValidation},
		{"unknown", fmt.Errorf("boom"), CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, classifyError(tt.err).category)
		})
	}
}

func TestSanitizeErrorInProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	assert.Equal(t, "database operation failed", sanitizeError(fmt.Errorf("postgres exploded at row 7")))
	assert.Equal(t, "an error occurred", sanitizeError(fmt.Errorf("boom")))
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID("3f2504e0-4f89-11d3-9a0c-0305e82c3301"))
	assert.False(t, IsValidUUID(""))
	assert.False(t, IsValidUUID("42"))
	assert.False(t, IsValidUUID("{3f2504e0-4f89-11d3-9a0c-0305e82c3301}"))
}

func TestValidatePathUUID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/items/:id", func(c *gin.Context) {
		id, ok := ValidatePathUUID(c, "id", "item")
		if !ok {
			return
		}

		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/not-a-uuid", nil))

	require.Equal(t, http.StatusNotFound, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, CodeNotFound, resp.Error)
	assert.Equal(t, "item not found", resp.Message)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/3f2504e0-4f89-11d3-9a0c-0305e82c3301", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
