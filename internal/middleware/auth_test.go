package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"region-storefront/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubValidator accepts exactly one token.
type stubValidator struct {
	token     string
	principal domain.Principal
}

func (s stubValidator) ValidateToken(ctx context.Context, token string) (domain.Principal, error) {
	if token != s.token {
		return domain.Principal{}, errors.New("invalid token")
	}
	return s.principal, nil
}

var testPrincipal = domain.Principal{Email: "owner@example.com", Role: "admin", TokenID: "jti-1"}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// Feature: region-storefront, Property 14: Admin endpoints reject missing or malformed tokens
// Validates: Requirements 6.2
func TestProperty_ProtectedEndpointsRejectBadTokens(t *testing.T) {
	handler := AuthMiddleware(stubValidator{token: "good", principal: testPrincipal}, zap.NewNop())(okHandler())
	properties := gopter.NewProperties(nil)

	properties.Property("requests without a valid bearer token are rejected", prop.ForAll(
		func(header string, method string) bool {
			req := httptest.NewRequest(method, "/api/admin/products", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			return w.Code == http.StatusUnauthorized
		},
		gen.OneGenOf(
			gen.Const(""),
			gen.AlphaString().Map(func(s string) string { return "Bearer " + s + "x" }),
			gen.Const("good"),
			gen.Const("Basic good"),
			gen.Const("Bearer good extra"),
		),
		gen.OneConstOf(http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestAuthMiddleware_StoresPrincipal(t *testing.T) {
	var got domain.Principal
	handler := AuthMiddleware(stubValidator{token: "good", principal: testPrincipal}, zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var ok bool
			got, ok = GetPrincipal(r.Context())
			require.True(t, ok)
			w.WriteHeader(http.StatusNoContent)
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, testPrincipal, got)
}

func TestRequireAdmin(t *testing.T) {
	isAdmin := func(email string) bool { return email == "owner@example.com" }
	handler := RequireAdmin(isAdmin, zap.NewNop())(okHandler())

	cases := []struct {
		name string
		ctx  context.Context
		want int
	}{
		{"no principal", context.Background(), http.StatusForbidden},
		{"other email", WithPrincipal(context.Background(), domain.Principal{Email: "intruder@example.com"}), http.StatusForbidden},
		{"admin", WithPrincipal(context.Background(), testPrincipal), http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(tc.ctx)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
