package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farellandr/eventbuddy/internal/helpers"
	"github.com/farellandr/eventbuddy/internal/logger"
	"github.com/farellandr/eventbuddy/internal/models"
)

func newTestRouter(tokens *helpers.TokenIssuer, blacklist *helpers.TokenBlacklist) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(logger.Discard()), RequestLogger(logger.Discard()))

	auth := r.Group("/", JWTAuthMiddleware(tokens, blacklist))
	auth.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "role": GetRole(c)})
	})
	auth.GET("/admin", RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func doRequest(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	tokens := helpers.NewTokenIssuer("secret", time.Hour)
	blacklist := helpers.NewTokenBlacklist(time.Hour)
	r := newTestRouter(tokens, blacklist)

	user := &models.User{ID: uuid.New(), Role: models.RoleUser}
	token, err := tokens.Issue(user)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, http.MethodGet, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, http.MethodGet, "/me", "garbage").Code)

	w := doRequest(r, http.MethodGet, "/me", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), user.ID.String())
	assert.Contains(t, w.Body.String(), `"USER"`)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	blacklist.Add(claims.ID)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, http.MethodGet, "/me", token).Code)
}

func TestRequireRole(t *testing.T) {
	tokens := helpers.NewTokenIssuer("secret", time.Hour)
	r := newTestRouter(tokens, helpers.NewTokenBlacklist(time.Hour))

	userToken, err := tokens.Issue(&models.User{ID: uuid.New(), Role: models.RoleUser})
	require.NoError(t, err)
	adminToken, err := tokens.Issue(&models.User{ID: uuid.New(), Role: models.RoleAdmin})
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, doRequest(r, http.MethodGet, "/admin", userToken).Code)
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/admin", adminToken).Code)
}

func TestRecovery(t *testing.T) {
	r := newTestRouter(helpers.NewTokenIssuer("secret", time.Hour), nil)
	w := doRequest(r, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Something went wrong")
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	send := func(method, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/ping", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		if method == http.MethodOptions {
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantACAO   string
	}{
		{"allowed preflight", http.MethodOptions, "http://localhost:3000", http.StatusNoContent, "http://localhost:3000"},
		{"allowed request", http.MethodGet, "http://localhost:3000", http.StatusOK, "http://localhost:3000"},
		{"foreign preflight", http.MethodOptions, "http://evil.example", http.StatusForbidden, ""},
		{"foreign request", http.MethodGet, "http://evil.example", http.StatusForbidden, ""},
		{"same-origin request", http.MethodGet, "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := send(tt.method, tt.origin)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantACAO, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSWithoutOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(nil))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
