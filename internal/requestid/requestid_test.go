package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		expected string
	}{
		{
			name:     "with request ID",
			ctx:      WithRequestID(context.Background(), "test-id-123"),
			expected: "test-id-123",
		},
		{
			name:     "without request ID",
			ctx:      context.Background(),
			expected: "",
		},
		{
			name:     "with invalid type in context",
			ctx:      context.WithValue(context.Background(), RequestIDKey, 12345),
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FromContext(tt.ctx))
		})
	}
}

func TestMiddleware_WithExistingRequestID(t *testing.T) {
	existingID := "existing-request-id-456"
	var capturedID string

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedID = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set(RequestIDHeader, existingID)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, existingID, capturedID)
	assert.Equal(t, existingID, rec.Header().Get(RequestIDHeader))
}

func TestMiddleware_GeneratesNewRequestID(t *testing.T) {
	var capturedID string

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedID = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.NotEmpty(t, capturedID)
	_, err := uuid.Parse(capturedID)
	assert.NoError(t, err, "generated ID should be a valid UUID")
	assert.Equal(t, capturedID, rec.Header().Get(RequestIDHeader))
}

func TestMiddleware_MultipleRequests(t *testing.T) {
	// Each request without a header gets its own ID
	requestIDs := make(map[string]bool)

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestIDs[FromContext(r.Context())] = true
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}

	assert.Equal(t, 10, len(requestIDs))
}
