package utils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")
	id := uuid.New()

	token, err := GenerateJWT(id, "inventor@iprcell.test", "user", "Ines Inventor", 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.UserID)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "Ines Inventor", claims.DisplayName)
	assert.Equal(t, tokenIssuer, claims.Issuer)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	SetJWTSecret("test-secret")
	id := uuid.New()

	access, err := GenerateJWT(id, "inventor@iprcell.test", "user", "Ines", 1)
	require.NoError(t, err)
	refresh, err := GenerateRefreshToken(id, 1)
	require.NoError(t, err)

	_, err = ValidateJWT(refresh)
	assert.Error(t, err)

	_, err = ValidateRefreshToken(access)
	assert.Error(t, err)

	subject, err := ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, id.String(), subject)
}

func TestValidateJWTRejectsForeignSignatures(t *testing.T) {
	SetJWTSecret("one-secret")
	token, err := GenerateJWT(uuid.New(), "a@iprcell.test", "admin", "A", 1)
	require.NoError(t, err)

	SetJWTSecret("another-secret")
	_, err = ValidateJWT(token)
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ValidateJWT(unsigned)
	assert.Error(t, err)
}

func TestStrongPasswordAndEmployeeID(t *testing.T) {
	type form struct {
		Password   string `json:"password" validate:"strong_password"`
		EmployeeID string `json:"employee_id" validate:"employee_id"`
	}

	assert.NoError(t, ValidateStruct(form{Password: "Secret#123", EmployeeID: "RD-0042"}))
	assert.NoError(t, ValidateStruct(form{Password: "Secret#123"}))

	errs := GetValidationErrors(ValidateStruct(form{Password: "secret123", EmployeeID: "x"}))
	require.Len(t, errs, 2)
	assert.Equal(t, "password", errs[0].Field)
	assert.Equal(t, "strong_password", errs[0].Tag)
	assert.Equal(t, "employee_id", errs[1].Field)
	assert.Equal(t, "employee_id", errs[1].Tag)
}

func TestGeneratePasswordIsStrong(t *testing.T) {
	type form struct {
		Password string `json:"password" validate:"strong_password"`
	}
	for i := 0; i < 20; i++ {
		pw, err := GeneratePassword()
		require.NoError(t, err)
		assert.NoError(t, ValidateStruct(form{Password: pw}))
	}
}

func TestPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query      string
		page       int
		limit      int
		offset     int
		totalPages int
	}{
		{"", 1, 20, 0, 3},
		{"?page=3&limit=10", 3, 10, 20, 5},
		{"?page=0&limit=500", 1, 20, 0, 3},
		{"?page=abc", 1, 20, 0, 3},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/"+tt.query, nil)

		params := GetPaginationParams(c)
		assert.Equal(t, tt.page, params.Page, tt.query)
		assert.Equal(t, tt.limit, params.Limit, tt.query)
		assert.Equal(t, tt.offset, params.Offset(), tt.query)
		assert.Equal(t, tt.totalPages, CreatePaginationResult(nil, 41, params).Pagination.TotalPages, tt.query)
	}
}

func TestHashBytes(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", HashBytes(nil))
}

func TestPaginatedResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/?page=2&limit=10", nil)

	PaginatedResponse(c, CreatePaginationResult([]string{"a"}, 11, GetPaginationParams(c)))

	assert.Equal(t, "11", w.Header().Get("X-Total-Count"))
	assert.Equal(t, "2", w.Header().Get("X-Total-Pages"))
	assert.JSONEq(t, `{"success":true,"data":["a"],"meta":{"pagination":{"page":2,"limit":10,"total":11,"total_pages":2}}}`, w.Body.String())
}

func TestErrorResponseAborts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)

	InvalidTransitionResponse(c, "only submitted applications can be forwarded")

	assert.True(t, c.IsAborted())
	assert.Equal(t, 409, w.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"INVALID_TRANSITION","message":"application.invalid_transition","details":"only submitted applications can be forwarded"}}`, w.Body.String())
}
