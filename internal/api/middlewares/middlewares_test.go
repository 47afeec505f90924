package middlewares

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DMHCAIT/crm-backend-sub002/internal/api/interfaces"
	"github.com/DMHCAIT/crm-backend-sub002/internal/api/models"
	"github.com/DMHCAIT/crm-backend-sub002/internal/auth"
	"github.com/DMHCAIT/crm-backend-sub002/pkg/config"
	"github.com/DMHCAIT/crm-backend-sub002/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServices struct {
	log    *logger.Logger
	tokens *auth.TokenService
	policy *auth.Policy
}

func (s *testServices) GetLogger() *logger.Logger                      { return s.log }
func (s *testServices) TokenService() interfaces.TokenServiceInterface { return s.tokens }
func (s *testServices) Policy() *auth.Policy                           { return s.policy }
func (s *testServices) Credentials() auth.CredentialStore              { return auth.NewChainStore() }
func (s *testServices) LeadRepository() interfaces.LeadStore           { return nil }
func (s *testServices) Ping(context.Context) error                     { return nil }

type clockAt struct{ t time.Time }

func (c *clockAt) Now() time.Time { return c.t }

func newTestServices(t *testing.T, secret string, clock auth.Clock) (*testServices, *test.Hook) {
	t.Helper()
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)

	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: secret, TTL: time.Hour, Clock: clock})
	require.NoError(t, err)

	return &testServices{
		log:    logger.FromLogrus(base),
		tokens: tokens,
		policy: auth.NewPolicy(nil),
	}, hook
}

func issue(t *testing.T, s *testServices, role auth.Role, level int) string {
	t.Helper()
	token, _, err := s.tokens.Issue(auth.Identity{UserID: "u-" + string(role), Username: string(role), Role: role, RoleLevel: level})
	require.NoError(t, err)
	return token
}

func gatedRouter(s *testServices, extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	handlers := append([]gin.HandlerFunc{AuthRequired(s)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		claims, ok := auth.ClaimsFromContext(c.Request.Context())
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "claims missing from request context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user_id":    c.GetString(ContextKeyUserID),
			"role":       c.GetString(ContextKeyUserRole),
			"role_level": claims.RoleLevel,
		})
	})
	router.GET("/protected", handlers...)
	return router
}

func get(router http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func lastReason(t *testing.T, hook *test.Hook) string {
	t.Helper()
	entry := hook.LastEntry()
	require.NotNil(t, entry, "no log entry recorded")
	reason, _ := entry.Data["reason"].(string)
	return reason
}

func TestAuthRequiredAdmitsValidToken(t *testing.T) {
	s, _ := newTestServices(t, testSecret, nil)
	token := issue(t, s, auth.RoleManager, 70)

	for _, header := range []string{"Bearer " + token, "bearer " + token, "  Bearer   " + token + " "} {
		w := get(gatedRouter(s), header)
		require.Equal(t, http.StatusOK, w.Code, "header %q", header)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "u-manager", body["user_id"])
		assert.Equal(t, "manager", body["role"])
		assert.EqualValues(t, 70, body["role_level"])
	}
}

func TestAuthRequiredNoToken(t *testing.T) {
	s, hook := newTestServices(t, testSecret, nil)
	router := gatedRouter(s)

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic dXNlcjpwYXNz", "Token abc", "Bearer a b"} {
		hook.Reset()
		w := get(router, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
		body := decodeError(t, w)
		assert.False(t, body.Success)
		assert.Equal(t, "No token provided", body.Error)
		assert.Equal(t, "no_token", lastReason(t, hook))
	}
}

func TestAuthRequiredRejectsBadTokens(t *testing.T) {
	clock := &clockAt{t: time.Unix(1_700_000_000, 0)}
	s, hook := newTestServices(t, testSecret, clock)
	router := gatedRouter(s)

	other, _ := newTestServices(t, "another-secret", clock)
	forged := issue(t, other, auth.RoleSuperAdmin, 100)
	expired := issue(t, s, auth.RoleAgent, 30)

	tests := []struct {
		name    string
		token   string
		advance time.Duration
		reason  string
	}{
		{"Malformed", "not-a-real-token", 0, "malformed_token"},
		{"WrongSecret", forged, 0, "bad_signature"},
		{"Expired", expired, 2 * time.Hour, "expired"},
	}

	var bodies []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock.t = time.Unix(1_700_000_000, 0).Add(tt.advance)
			hook.Reset()

			w := get(router, "Bearer "+tt.token)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Invalid token", decodeError(t, w).Error)
			assert.Equal(t, tt.reason, lastReason(t, hook))
			bodies = append(bodies, w.Body.String())
		})
	}

	// Clients cannot tell the failure kinds apart
	require.Len(t, bodies, len(tests))
	for _, b := range bodies[1:] {
		assert.Equal(t, bodies[0], b)
	}
}

func TestAuthRequiredSecretNotConfigured(t *testing.T) {
	s, _ := newTestServices(t, "", nil)

	w := get(gatedRouter(s), "Bearer anything")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Authentication unavailable", decodeError(t, w).Error)
}

func TestRoleRequired(t *testing.T) {
	s, hook := newTestServices(t, testSecret, nil)
	router := gatedRouter(s, RoleRequired(s, auth.RoleAdmin))

	t.Run("Denied", func(t *testing.T) {
		hook.Reset()
		w := get(router, "Bearer "+issue(t, s, auth.RoleAgent, 30))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Insufficient permissions", decodeError(t, w).Error)
		assert.Equal(t, "insufficient_role", lastReason(t, hook))
		assert.Equal(t, "u-agent", hook.LastEntry().Data["user_id"])
	})

	t.Run("EqualLevelAllowed", func(t *testing.T) {
		w := get(router, "Bearer "+issue(t, s, auth.RoleAdmin, 90))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("HigherLevelAllowed", func(t *testing.T) {
		w := get(router, "Bearer "+issue(t, s, auth.RoleSuperAdmin, 100))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("UnknownRoleDenied", func(t *testing.T) {
		w := get(router, "Bearer "+issue(t, s, auth.Role("owner"), 500))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRoleLevelRequired(t *testing.T) {
	s, _ := newTestServices(t, testSecret, nil)
	router := gatedRouter(s, RoleLevelRequired(s, 50))

	assert.Equal(t, http.StatusOK, get(router, "Bearer "+issue(t, s, auth.RoleTeamLeader, 50)).Code)
	assert.Equal(t, http.StatusForbidden, get(router, "Bearer "+issue(t, s, auth.RoleAgent, 30)).Code)
}

func TestRoleRequiredWithoutGate(t *testing.T) {
	s, _ := newTestServices(t, testSecret, nil)
	router := gin.New()
	router.GET("/protected", RoleRequired(s, auth.RoleAgent), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusForbidden, get(router, "").Code)
}

func corsRouter(cfg config.CORSConfig) *gin.Engine {
	router := gin.New()
	router.Use(CORS(cfg))
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) { c.JSON(http.StatusMethodNotAllowed, models.ErrMethodNotAllowed.Response()) })
	router.POST("/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/auth/verify", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func testCORSConfig(origins ...string) config.CORSConfig {
	return config.CORSConfig{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           600,
	}
}

func preflight(router http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPreflightAlwaysOK(t *testing.T) {
	router := corsRouter(testCORSConfig("https://crm.example.com"))

	cases := []map[string]string{
		nil,
		{"Origin": "https://crm.example.com", "Access-Control-Request-Method": "POST"},
		{"Origin": "https://evil.example.com", "Access-Control-Request-Method": "DELETE"},
		{"Access-Control-Request-Headers": "X-Weird-Header"},
		{"Authorization": "Bearer garbage"},
	}
	for _, headers := range cases {
		for _, path := range []string{"/auth/login", "/auth/verify", "/no/such/route"} {
			w := preflight(router, path, headers)
			assert.Equal(t, http.StatusOK, w.Code, "path %s headers %v", path, headers)
			assert.Empty(t, w.Body.String(), "path %s headers %v", path, headers)
		}
	}
}

func TestPreflightHeaders(t *testing.T) {
	router := corsRouter(testCORSConfig("https://crm.example.com", "https://admin.example.com/"))

	w := preflight(router, "/auth/login", map[string]string{"Origin": "https://admin.example.com"})
	assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))

	w = preflight(router, "/auth/login", map[string]string{"Origin": "https://evil.example.com"})
	assert.Equal(t, "https://crm.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflightAllowAll(t *testing.T) {
	router := corsRouter(testCORSConfig("*"))

	w := preflight(router, "/auth/login", map[string]string{"Origin": "https://anything.example"})
	assert.Equal(t, "https://anything.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = preflight(router, "/auth/login", nil)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSSimpleRequest(t *testing.T) {
	router := corsRouter(testCORSConfig("https://crm.example.com"))

	req := httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	req.Header.Set("Origin", "https://crm.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://crm.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMethodNotAllowedStillJSON(t *testing.T) {
	router := corsRouter(testCORSConfig("https://crm.example.com"))

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Method not allowed", decodeError(t, w).Error)
}

func TestSecurityHeaders(t *testing.T) {
	router := gin.New()
	router.Use(Security())
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))

	req.Header.Set("X-Forwarded-Proto", "https")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestRequestLogging(t *testing.T) {
	base, hook := test.NewNullLogger()
	router := gin.New()
	router.Use(RequestLogging(logger.FromLogrus(base)))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	t.Run("GeneratesID", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
		assert.NoError(t, err)
		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, http.StatusNoContent, entry.Data["status_code"])
		assert.Equal(t, "http", entry.Data["component"])
	})

	t.Run("KeepsValidIncomingID", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("X-Request-ID", id)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, id, w.Header().Get("X-Request-ID"))
	})

	t.Run("ReplacesGarbageID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("X-Request-ID", "<script>")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.NotEqual(t, "<script>", w.Header().Get("X-Request-ID"))
	})
}

func TestRecovery(t *testing.T) {
	base, hook := test.NewNullLogger()
	router := gin.New()
	router.Use(Recovery(logger.FromLogrus(base)))
	router.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Internal server error"}`, w.Body.String())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "kaboom", hook.LastEntry().Data["panic"])
}
