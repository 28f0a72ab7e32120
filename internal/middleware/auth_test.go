package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/remedyroot/remedyroot-golang/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func testRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := append([]gin.HandlerFunc{AuthMiddleware(testSecret)}, extra...)
	chain = append(chain, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": UserID(c)})
	})
	r.GET("/protected", chain...)
	return r
}

func request(t *testing.T, r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token, err := session.GenerateToken(42, session.RoleUser, testSecret, time.Hour)
	require.NoError(t, err)

	w := request(t, testRouter(), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userID":42`)
}

func TestAuthMiddleware_MissingOrMalformedHeader(t *testing.T) {
	r := testRouter()

	assert.Equal(t, http.StatusUnauthorized, request(t, r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, request(t, r, "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, request(t, r, "Bearer not-a-jwt").Code)
}

func TestAuthMiddleware_WrongSecretRejected(t *testing.T) {
	token, err := session.GenerateToken(42, session.RoleUser, []byte("other-secret"), time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, request(t, testRouter(), "Bearer "+token).Code)
}

func TestAdminMiddleware(t *testing.T) {
	r := testRouter(AdminMiddleware())

	userToken, _ := session.GenerateToken(1, session.RoleUser, testSecret, time.Hour)
	adminToken, _ := session.GenerateToken(2, session.RoleAdmin, testSecret, time.Hour)

	assert.Equal(t, http.StatusForbidden, request(t, r, "Bearer "+userToken).Code)
	assert.Equal(t, http.StatusOK, request(t, r, "Bearer "+adminToken).Code)
}
