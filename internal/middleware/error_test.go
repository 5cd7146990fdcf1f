package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errorStatuses = []int{
	http.StatusBadRequest,
	http.StatusUnauthorized,
	http.StatusForbidden,
	http.StatusNotFound,
	http.StatusConflict,
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
}

func TestProperty_ErrorsShareOneEnvelope(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every error carries code, message and an RFC3339 timestamp", prop.ForAll(
		func(message string, pick int) bool {
			status := errorStatuses[pick%len(errorStatuses)]

			w := httptest.NewRecorder()
			RespondWithError(w, status, message)

			if w.Code != status || w.Header().Get("Content-Type") != "application/json" {
				return false
			}
			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				return false
			}
			if resp.Error.Code != ErrorCode(status) || resp.Error.Message != message {
				return false
			}
			_, err := time.Parse(time.RFC3339, resp.Error.Timestamp)
			return err == nil
		},
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
		gen.IntRange(0, 1000),
	))

	properties.Property("details survive the round trip", prop.ForAll(
		func(key, value string) bool {
			w := httptest.NewRecorder()
			RespondWithErrorDetails(w, http.StatusForbidden, "insufficient permissions", map[string]interface{}{key: value})

			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				return false
			}
			return resp.Error.Details[key] == value
		},
		gen.Identifier(),
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRespondWithValidationErrors(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithValidationErrors(w, []ValidationError{{Field: "price", Message: "Value must be greater than 0"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details struct {
				ValidationErrors []ValidationError `json:"validation_errors"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "validation failed", resp.Error.Message)
	assert.Equal(t, CodeValidationFailed, resp.Error.Code)
	require.Len(t, resp.Error.Details.ValidationErrors, 1)
	assert.Equal(t, "price", resp.Error.Details.ValidationErrors[0].Field)
}

func TestErrorHandlingMiddleware_RecoversPanics(t *testing.T) {
	h := ErrorHandlingMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, CodeForbidden, ErrorCode(http.StatusForbidden))
	assert.Equal(t, CodeRateLimited, ErrorCode(http.StatusTooManyRequests))
	assert.Equal(t, "bad_gateway", ErrorCode(http.StatusBadGateway))
}

func TestRespondWithRedirect(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithRedirect(w, http.StatusForbidden, "insufficient permissions", "/dashboard", "")

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, CodeForbidden, resp.Error.Code)
	assert.Equal(t, map[string]interface{}{"redirect": "/dashboard"}, resp.Error.Details)
}

func TestErrorHandlingMiddleware_RepanicsAbort(t *testing.T) {
	h := ErrorHandlingMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	})
}

func TestRespondWithJSON(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithJSON(w, http.StatusCreated, map[string]string{"status": "pending"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"status":"pending"}`, w.Body.String())
}
