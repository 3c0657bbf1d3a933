package webserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowkeylabs/lowkey/config"
	"github.com/lowkeylabs/lowkey/internal/domain"
	"github.com/lowkeylabs/lowkey/internal/errs"
)

func testServer(t *testing.T) *WebServer {
	t.Helper()
	cfg := config.DefaultAppConfig
	cfg.Web.JwtSecret = "test-secret"
	return New(&cfg)
}

func doJSON(t *testing.T, ws *WebServer, method, path, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ws.ServeHTTP(rec, req)
	var body map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestTokenRoundtrip(t *testing.T) {
	ws := testServer(t)
	ws.Member().GET("/whoami", func(c echo.Context) error {
		claims := CurrentUser(c)
		require.NotNil(t, claims)
		return OK(c, map[string]interface{}{"uid": claims.UserID, "tier": claims.Tier})
	})

	token, err := SignToken("test-secret", &domain.User{
		ID:    42,
		Email: "m@lowkey.test",
		Level: domain.UserLevelMember,
		Tier:  "vip",
	})
	require.NoError(t, err)

	rec, body := doJSON(t, ws, http.MethodGet, "/api/whoami", token)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(42), data["uid"])
	assert.Equal(t, "vip", data["tier"])
}

func TestMemberRouteRejectsMissingToken(t *testing.T) {
	ws := testServer(t)
	ws.Member().GET("/whoami", func(c echo.Context) error { return OK(c, nil) })

	rec, _ := doJSON(t, ws, http.MethodGet, "/api/whoami", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doJSON(t, ws, http.MethodGet, "/api/whoami", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRouteRequiresAdminLevel(t *testing.T) {
	ws := testServer(t)
	ws.Admin().GET("/ping", func(c echo.Context) error { return OK(c, "pong") })

	memberToken, err := SignToken("test-secret", &domain.User{ID: 1, Level: domain.UserLevelMember})
	require.NoError(t, err)
	rec, _ := doJSON(t, ws, http.MethodGet, "/api/admin/ping", memberToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	adminToken, err := SignToken("test-secret", &domain.User{ID: 2, Level: domain.UserLevelAdmin})
	require.NoError(t, err)
	rec, _ = doJSON(t, ws, http.MethodGet, "/api/admin/ping", adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	ws := testServer(t)
	ws.Public().GET("/nf", func(c echo.Context) error {
		return errs.NotFound("PRODUCT_NOT_FOUND", "product not found")
	})
	ws.Public().GET("/boom", func(c echo.Context) error {
		return errs.Upstream(assert.AnError, "PAYMENTS_ERROR", "payments collaborator unreachable")
	})

	rec, body := doJSON(t, ws, http.MethodGet, "/api/nf", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", body["code"])
	assert.Equal(t, "product not found", body["message"])

	rec, body = doJSON(t, ws, http.MethodGet, "/api/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "PAYMENTS_ERROR", body["code"])
	// upstream detail never leaks into the response
	assert.Equal(t, "internal error", body["message"])
}
