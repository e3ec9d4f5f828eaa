package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"github.com/javajoker/ipr-backend/internal/models"
	"github.com/javajoker/ipr-backend/internal/services"
)

type stubAuthenticator map[string]services.Principal

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (services.Principal, error) {
	if token == "revoked-token" {
		return services.Principal{}, services.ErrAccountRevoked
	}
	p, ok := s[token]
	if !ok {
		return services.Principal{}, errors.New("unknown token")
	}
	return p, nil
}

var (
	adminPrincipal = services.Principal{ID: uuid.New(), Email: "admin@iprcell.test", Role: models.RoleAdmin}
	userPrincipal  = services.Principal{ID: uuid.New(), Email: "inventor@iprcell.test", Role: models.RoleUser}
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		p, _ := PrincipalFrom(c)
		lang, _ := c.Get("lang")
		c.JSON(http.StatusOK, gin.H{"email": p.Email, "lang": lang})
	})
	r.GET("/", handlers...)
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	auth := stubAuthenticator{"admin-token": adminPrincipal}
	r := newEngine(AuthRequired(auth))

	tests := []struct {
		name   string
		header string
		target string
		want   int
	}{
		{"missing", "", "/", http.StatusUnauthorized},
		{"not bearer", "Basic admin-token", "/", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", "/", http.StatusUnauthorized},
		{"revoked account", "Bearer revoked-token", "/", http.StatusForbidden},
		{"bearer header", "Bearer admin-token", "/", http.StatusOK},
		{"query token", "", "/?token=admin-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Contains(t, w.Body.String(), adminPrincipal.Email)
			}
		})
	}
}

func TestRoleRequired(t *testing.T) {
	auth := stubAuthenticator{"admin": adminPrincipal, "user": userPrincipal}
	r := newEngine(AuthRequired(auth), RoleRequired(models.RoleAdmin))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer user")
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

	req.Header.Set("Authorization", "Bearer admin")
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
}

func TestRoleRequiredWithoutPrincipal(t *testing.T) {
	r := newEngine(RoleRequired(models.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestI18nMiddleware(t *testing.T) {
	r := newEngine(I18nMiddleware("en"))

	tests := map[string]string{
		"":                        "en",
		"zh-TW,zh;q=0.9,en;q=0.8": "zh_TW",
		"en-GB":                   "en",
		"fr-FR,fr;q=0.9":          "en",
	}
	for header, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Accept-Language", header)
		}
		assert.Contains(t, serve(r, req).Body.String(), `"lang":"`+want+`"`, header)
	}

	req := httptest.NewRequest(http.MethodGet, "/?lang=zh-TW", nil)
	req.Header.Set("Accept-Language", "en")
	assert.Contains(t, serve(r, req).Body.String(), `"lang":"zh_TW"`)
}

func TestRateLimiterKeysByClient(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Hour), 1)
	r := newEngine(rl.Middleware())

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, http.StatusOK, serve(r, first).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, first).Code)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	assert.Equal(t, http.StatusOK, serve(r, other).Code)
}

func TestRateLimiterEvictsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Hour), 1)
	rl.getVisitor("10.0.0.1")
	rl.visitors["10.0.0.1"].lastSeen = time.Now().Add(-time.Hour)
	rl.getVisitor("10.0.0.2")

	rl.evict(3 * time.Minute)

	assert.NotContains(t, rl.visitors, "10.0.0.1")
	assert.Contains(t, rl.visitors, "10.0.0.2")
}

func TestRecoveryAnswersWithEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(discardLogger()))
	r.GET("/", func(*gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
