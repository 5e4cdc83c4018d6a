package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filtersFor(t *testing.T, query string) ([]repository.Filter, error) {
	t.Helper()
	var (
		got    []repository.Filter
		gotErr error
	)
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		got, gotErr = collectionFilters(c, kvOrder)
		return nil
	})
	_, err := app.Test(httptest.NewRequest("GET", "/?"+query, nil))
	require.NoError(t, err)
	return got, gotErr
}

func TestCollectionFiltersDefaults(t *testing.T) {
	filters, err := filtersFor(t, "")
	require.NoError(t, err)
	require.Len(t, filters, 1)
	assert.Equal(t, repository.LimitOffset{Limit: 20}, filters[0])
}

func TestCollectionFiltersPageSize(t *testing.T) {
	filters, err := filtersFor(t, "pageSize=10&currentPage=3")
	require.NoError(t, err)
	lo, ok := repository.FindFilter[repository.LimitOffset](filters)
	require.True(t, ok)
	assert.Equal(t, repository.LimitOffset{Limit: 10, Offset: 20}, lo)
}

func TestCollectionFiltersLimitWins(t *testing.T) {
	filters, err := filtersFor(t, "limit=5&offset=7&pageSize=10")
	require.NoError(t, err)
	lo, _ := repository.FindFilter[repository.LimitOffset](filters)
	assert.Equal(t, repository.LimitOffset{Limit: 5, Offset: 7}, lo)
}

func TestCollectionFiltersOrderAndBounds(t *testing.T) {
	filters, err := filtersFor(t, "orderBy=createdAt&sortOrder=DESC&createdAfter=2024-01-01T00:00:00Z&ids=6f1c1d1e-0000-4000-8000-000000000001")
	require.NoError(t, err)

	order, ok := repository.FindFilter[repository.OrderBy](filters)
	require.True(t, ok)
	assert.Equal(t, repository.OrderBy{Column: "created_at", Desc: true}, order)

	bounds, ok := repository.FindFilter[repository.BeforeAfter](filters)
	require.True(t, ok)
	assert.Equal(t, "created_at", bounds.Column)
	assert.Nil(t, bounds.Before)
	require.NotNil(t, bounds.After)

	in, ok := repository.FindFilter[repository.In](filters)
	require.True(t, ok)
	assert.Len(t, in.Values, 1)
}

func TestCollectionFiltersRejectsBadInput(t *testing.T) {
	_, err := filtersFor(t, "orderBy=hashedPassword&limit=0")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	details := apperr.Details(err)
	assert.Contains(t, details, "orderBy")
	assert.Contains(t, details, "limit")
}

func TestErrorHandlerBody(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{apperr.NotFound("No item found"), fiber.StatusNotFound, "No item found"},
		{apperr.Conflict("Already exists", errors.New("23505")), fiber.StatusConflict, "Already exists"},
		{apperr.PermissionDenied("Insufficient privileges"), fiber.StatusForbidden, "Insufficient privileges"},
		{apperr.Internal("failed to commit transaction", errors.New("pq: broken pipe")), fiber.StatusInternalServerError, "Internal server error"},
		{errors.New("raw failure"), fiber.StatusInternalServerError, "Internal server error"},
		{fiber.ErrMethodNotAllowed, fiber.StatusMethodNotAllowed, fiber.ErrMethodNotAllowed.Message},
	}

	for _, tc := range cases {
		app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
		app.Get("/", func(c *fiber.Ctx) error { return tc.err })

		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		var body dto.ErrorResponse
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, tc.status, resp.StatusCode)
		assert.True(t, body.Error)
		assert.Equal(t, tc.status, body.StatusCode)
		assert.Equal(t, tc.message, body.Message)
		assert.NotContains(t, string(raw), "pq: broken pipe")
	}
}

func TestHealthReportsOfflineWhenPingHangs(t *testing.T) {
	hung := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	app := fiber.New()
	app.Get("/health", NewHealthHandler("crud-backend", "test", hung, 20*time.Millisecond).Check)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil), int((2 * time.Second).Milliseconds()))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body dto.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "offline", body.DatabaseStatus)
}
