package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comanda/pkg/config"
	apperrors "comanda/pkg/errors"
)

func TestExtractLimitOffset(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int64
		wantErr    bool
	}{
		{name: "defaults", query: "", wantLimit: config.DefaultPageSize, wantOffset: 0},
		{name: "explicit", query: "limit=20&offset=40", wantLimit: 20, wantOffset: 40},
		{name: "limit capped", query: "limit=5000", wantLimit: config.DefaultPaginationLimit},
		{name: "negative offset clamped", query: "offset=-3", wantLimit: config.DefaultPageSize, wantOffset: 0},
		{name: "bad limit", query: "limit=ten", wantErr: true},
		{name: "bad offset", query: "offset=x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/customers?"+tt.query, nil)
			limit, offset, err := ExtractLimitOffset(r)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperrors.CodeInvalidInput, apperrors.AsAppError(err).Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ana"}`))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Equal(t, "Ana", dst.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nome":"Ana"}`))
	assert.Error(t, DecodeJSON(r, &dst))
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantDetails bool
	}{
		{name: "not found", err: apperrors.NotFoundWithID("Customer", "x"), wantStatus: http.StatusNotFound, wantCode: apperrors.CodeNotFound, wantDetails: true},
		{name: "conflict", err: apperrors.Conflict("dup"), wantStatus: http.StatusConflict, wantCode: apperrors.CodeConflict},
		{name: "invalid cpf", err: apperrors.InvalidCPF("123"), wantStatus: http.StatusBadRequest, wantCode: apperrors.CodeInvalidCPF, wantDetails: true},
		{name: "plain error", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, WriteError(w, tt.err))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantDetails, body.Details != nil)
			assert.NotContains(t, body.Error, "boom")
		})
	}
}

func TestWritePaginated(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WritePaginated(w, []string{"a", "b"}, 7, 2, 4))

	var body PaginatedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(7), body.TotalCount)
	assert.Equal(t, 2, body.Limit)
	assert.Equal(t, int64(4), body.Offset)
}
