package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentfolio/server/internal/config"
	"github.com/talentfolio/server/internal/handlers"
	"github.com/talentfolio/server/internal/models"
	"github.com/talentfolio/server/internal/services"
	"golang.org/x/crypto/bcrypt"
)

// loginRepo serves only the lookup the login path needs; everything else
// panics via the embedded nil interface.
type loginRepo struct {
	models.UserRepo
	user *models.User
}

func (r *loginRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return r.user, nil
}

func newLoginRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("p@ss1234"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &models.User{Username: "alice", Email: "alice@x.com", Password: string(hash)}
	user.BeforeCreate()

	svc := services.NewUserService(&loginRepo{user: user}, "test-secret", cfg.TokenTTL)

	r := gin.New()
	r.POST("/login", handlers.Login(svc, cfg))
	return r
}

func TestLoginCookieTracksTokenTTL(t *testing.T) {
	cfg := &config.Config{TokenTTL: 2 * time.Hour, Environment: "development"}
	router := newLoginRouter(t, cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"username":"alice","password":"p@ss1234"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, "access_token", cookie.Name)
	assert.Equal(t, int((2 * time.Hour).Seconds()), cookie.MaxAge)
	assert.False(t, cookie.Secure)
	assert.True(t, cookie.HttpOnly)
}

func TestLoginCookieSecureInProduction(t *testing.T) {
	cfg := &config.Config{TokenTTL: time.Hour, Environment: "production"}
	router := newLoginRouter(t, cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"username":"alice","password":"p@ss1234"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].Secure)
}
