package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/javajoker/ipr-backend/internal/services"
	"github.com/javajoker/ipr-backend/internal/utils"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"field validation", &services.ValidationError{Fields: []utils.ValidationError{{Field: "title", Tag: "required"}}}, http.StatusBadRequest},
		{"bare validation", fmt.Errorf("%w: bad status", services.ErrValidation), http.StatusBadRequest},
		{"credentials", services.ErrUnauthorized, http.StatusUnauthorized},
		{"revoked", services.ErrAccountRevoked, http.StatusForbidden},
		{"wrong role", fmt.Errorf("%w: forward requires admin", services.ErrForbidden), http.StatusForbidden},
		{"missing", fmt.Errorf("%w: application", services.ErrNotFound), http.StatusNotFound},
		{"transition", fmt.Errorf("%w: not submitted", services.ErrInvalidTransition), http.StatusConflict},
		{"duplicate", services.ErrConflict, http.StatusConflict},
		{"allocation", services.ErrAllocationFailed, http.StatusServiceUnavailable},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err, "application")
			assert.Equal(t, tt.want, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestPathIDRejectsMalformedIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: "42"}}

	_, ok := pathID(c, "application")
	assert.False(t, ok)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://ipr.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/v1/ws/notifications", nil)
	assert.True(t, check(req), "same-origin requests carry no Origin header")

	req.Header.Set("Origin", "https://ipr.example.com")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))

	assert.True(t, originChecker(nil)(req))
}
