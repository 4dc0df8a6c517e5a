package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/connpool"
	"eventhub/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestWriteServiceError_DialFailure(t *testing.T) {
	cache := connpool.New("mongodb", "mongodb://localhost:27017", func(ctx context.Context, source string) (struct{}, error) {
		return struct{}{}, errors.New("dial tcp 127.0.0.1:27017: connect: connection refused")
	})
	_, err := cache.Get(context.Background())
	require.Error(t, err)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	WriteServiceError(rr, req, testLogger, fmt.Errorf("list events: %w", err), "event not found")

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	var envelope APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, ErrCodeServiceUnavailable, envelope.Error.Code)
	assert.NotContains(t, envelope.Error.Message, "connection refused")
}

func TestWriteServiceError(t *testing.T) {
	verr := domain.NewValidationError("title", "title is required")
	verr.Add("tags", "tags must contain at least one item")

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantFields int
	}{
		{"validation", fmt.Errorf("create: %w", verr), http.StatusBadRequest, ErrCodeValidation, 2},
		{"not found", domain.ErrNotFound, http.StatusNotFound, ErrCodeNotFound, 0},
		{"duplicate slug", fmt.Errorf("create event: %w", domain.ErrDuplicateSlug), http.StatusConflict, ErrCodeConflict, 0},
		{"missing event", domain.ErrEventReferenceNotFound, http.StatusUnprocessableEntity, ErrCodeEventNotFound, 0},
		{"lookup failure", &domain.EventReferenceLookupError{EventID: "x", Err: errors.New("timeout")}, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, 0},
		{"no connection string", fmt.Errorf("mongodb: %w", domain.ErrConnectionStringMissing), http.StatusServiceUnavailable, ErrCodeServiceUnavailable, 0},
		{"store unavailable", fmt.Errorf("connect postgres: %w: %w", domain.ErrStoreUnavailable, errors.New("ping failed")), http.StatusServiceUnavailable, ErrCodeServiceUnavailable, 0},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternalError, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/events", nil)

			WriteServiceError(rr, req, testLogger, tt.err, "event not found")

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			require.NotNil(t, envelope.Error)
			assert.Nil(t, envelope.Data)
			assert.Equal(t, tt.wantCode, envelope.Error.Code)
			assert.Len(t, envelope.Error.Fields, tt.wantFields)
			assert.NotContains(t, envelope.Error.Message, "boom")
		})
	}
}

type pingRequest struct {
	Name string `json:"name"`
}

func (p pingRequest) Validate() []string {
	if p.Name == "" {
		return []string{"name is required"}
	}
	return nil
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantOK bool
		substr string
	}{
		{"valid", `{"name":"x"}`, true, ""},
		{"malformed", `{`, false, "invalid request body"},
		{"unknown field", `{"name":"x","id":"y"}`, false, "unknown field"},
		{"fails Validate", `{}`, false, "name is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tt.body))
			var dest pingRequest

			ok := DecodeAndValidate(rr, req, &dest)

			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				require.Equal(t, http.StatusBadRequest, rr.Code)
				assert.Contains(t, rr.Body.String(), tt.substr)
			}
		})
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query string
		want  domain.PaginationParams
	}{
		{"", domain.PaginationParams{Page: DefaultPage, PageSize: DefaultPageSize}},
		{"?page=3&page_size=5", domain.PaginationParams{Page: 3, PageSize: 5}},
		{"?page=0&page_size=-1", domain.PaginationParams{Page: DefaultPage, PageSize: DefaultPageSize}},
		{"?page=abc&page_size=1000", domain.PaginationParams{Page: DefaultPage, PageSize: MaxPageSize}},
		{"?page=2&page_size=1.5", domain.PaginationParams{Page: 2, PageSize: DefaultPageSize}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/events"+tt.query, nil)
			assert.Equal(t, tt.want, ParsePagination(req.URL.Query()))
		})
	}
}

func TestNewPaginationMeta(t *testing.T) {
	assert.Equal(t, PaginationMeta{Page: 1, PageSize: 20, Total: 41, TotalPages: 3, HasNext: true},
		NewPaginationMeta(domain.PaginationParams{Page: 1, PageSize: 20}, 41))
	assert.False(t, NewPaginationMeta(domain.PaginationParams{Page: 3, PageSize: 20}, 41).HasNext)
	assert.Equal(t, 0, NewPaginationMeta(domain.PaginationParams{Page: 1}, 10).TotalPages)
}
