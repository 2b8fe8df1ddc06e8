package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"region-storefront/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type validationEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Details struct {
			ValidationErrors []ValidationError `json:"validation_errors"`
		} `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	_, err := time.Parse(time.RFC3339, response.Error.Timestamp)
	assert.NoError(t, err)
	return response
}

// Feature: region-storefront, Property 16: Errors have consistent structure
// Validates: Requirements 7
func TestProperty_AdminGateRejectionsShareEnvelope(t *testing.T) {
	intruder := domain.Principal{Email: "intruder@example.com", Role: "admin", TokenID: "jti-2"}
	validator := stubValidator{token: "intruder", principal: intruder}
	guarded := AuthMiddleware(validator, zap.NewNop())(
		RequireAdmin(func(email string) bool { return email == "owner@example.com" }, zap.NewNop())(okHandler()))

	properties := gopter.NewProperties(nil)

	properties.Property("every rejected admin request carries code, message and timestamp", prop.ForAll(
		func(header string) bool {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			guarded.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized && w.Code != http.StatusForbidden {
				return false
			}
			var response ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}
			if _, err := time.Parse(time.RFC3339, response.Error.Timestamp); err != nil {
				return false
			}
			return response.Error.Code == http.StatusText(w.Code) &&
				response.Error.Message != "" &&
				response.Error.Details == nil
		},
		gen.OneGenOf(
			gen.Const(""),
			gen.Const("Bearer intruder"),
			gen.AlphaString().Map(func(s string) string { return "Token " + s }),
			gen.AlphaString().Map(func(s string) string { return "Bearer " + s }),
		),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: region-storefront, Property 18: Field errors are reported once per field in order
// Validates: Requirements 3.4
func TestProperty_FieldErrorsAreListedOncePerFieldInOrder(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("field errors come back sorted with their messages", prop.ForAll(
		func(fields map[string]string) bool {
			w := httptest.NewRecorder()
			RespondWithFieldErrors(w, fields)
			if w.Code != http.StatusBadRequest {
				return false
			}

			var response validationEnvelope
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}
			got := response.Error.Details.ValidationErrors
			if len(got) != len(fields) {
				return false
			}
			if !sort.SliceIsSorted(got, func(i, j int) bool { return got[i].Field < got[j].Field }) {
				return false
			}
			for _, ve := range got {
				if fields[ve.Field] != ve.Message {
					return false
				}
			}
			return true
		},
		gen.MapOf(
			gen.OneConstOf("title", "image", "category", "subcategory", "rating", "region", "price.india", "amazonLink.global"),
			gen.AlphaString(),
		),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRespondWithFieldErrors_SortsByField(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithFieldErrors(w, map[string]string{
		"title":            "is required",
		"category":         "unknown category",
		"amazonLink.india": "must be an http(s) URL",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var response validationEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Bad Request", response.Error.Code)

	fields := []string{}
	for _, ve := range response.Error.Details.ValidationErrors {
		fields = append(fields, ve.Field)
	}
	assert.Equal(t, []string{"amazonLink.india", "category", "title"}, fields)
}

func TestRateLimit_RefusalUsesErrorEnvelope(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	handler := newLimitedHandler(t, client, 1)

	var w *httptest.ResponseRecorder
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/login", nil)
		req.RemoteAddr = "10.2.2.2:80"
		w = httptest.NewRecorder()
		handler.ServeHTTP(w, req)
	}

	require.Equal(t, http.StatusTooManyRequests, w.Code)
	response := decodeEnvelope(t, w)
	assert.Equal(t, "Too Many Requests", response.Error.Code)
	assert.Equal(t, "rate limit exceeded", response.Error.Message)
}

func TestDesktopOnly_RefusalUsesErrorEnvelope(t *testing.T) {
	handler := DesktopOnly(zap.NewNop())(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/api/admin/products", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile/15E148")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	response := decodeEnvelope(t, w)
	assert.Equal(t, "the admin panel is only available on desktop", response.Error.Message)
}

func TestErrorHandlingMiddleware_RecoversPanics(t *testing.T) {
	handler := ErrorHandlingMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	response := decodeEnvelope(t, w)
	assert.Equal(t, "internal server error", response.Error.Message)
}
