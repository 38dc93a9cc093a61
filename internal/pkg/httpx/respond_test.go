package httpx_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockmaster/internal/domain"
	apperror "stockmaster/internal/errors"
	"stockmaster/internal/pkg/httpx"
	"stockmaster/internal/pkg/logger"
)

func TestRespond_SuccessWritesJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/stock/p/l", nil)

	httpx.Respond(rec, req, logger.NewNop(), domain.StockLevel{ProductID: "p", LocationID: "l", Quantity: 7}, nil, http.StatusOK)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var got domain.StockLevel
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 7, got.Quantity)
}

func TestRespond_InsufficientStockNamesProduct(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/operations/x/validate", nil)
	err := fmt.Errorf("validação: %w", apperror.NewInsufficientStockError("p-1", "l-1", 3, 5))

	httpx.Respond(rec, req, logger.NewNop(), nil, err, http.StatusOK)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body domain.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Category)
	assert.Equal(t, "p-1", body.ProductID)
}

func TestErrorBody_Categories(t *testing.T) {
	cases := []struct {
		err      error
		code     int
		category string
	}{
		{apperror.NewValidationError("x"), http.StatusBadRequest, "INVALID_REQUEST"},
		{apperror.NewNotFoundError("x"), http.StatusNotFound, "NOT_FOUND"},
		{apperror.NewAlreadyValidatedError("op"), http.StatusConflict, "ALREADY_VALIDATED"},
		{apperror.NewDBError("x", assert.AnError), http.StatusServiceUnavailable, "STORAGE_FAILURE"},
		{assert.AnError, http.StatusInternalServerError, "UNKNOWN_ERROR"},
	}
	for _, tc := range cases {
		body := httpx.ErrorBody(tc.err)
		assert.Equal(t, tc.code, body.Code)
		assert.Equal(t, tc.category, body.Category)
	}
}

func TestDecodeJSON_MalformedIsValidationError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{quebrado"))
	var target map[string]any

	err := httpx.DecodeJSON(req, &target)

	var vErr *apperror.ValidationError
	assert.ErrorAs(t, err, &vErr)
}
