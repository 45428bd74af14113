package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/herald-dev/herald/db"
	"github.com/herald-dev/herald/internal/auth"
	"github.com/herald-dev/herald/internal/config"
	"github.com/herald-dev/herald/internal/router"
	"github.com/herald-dev/herald/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-signing-key"

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	db.DB = gdb
	require.NoError(t, db.MigrateDatabase())
	require.NoError(t, auth.Init(testSecret))

	cfg := &config.Config{
		ServerConfig: config.ServerConfig{
			Port:           "3000",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		AuthConfig: config.AuthConfig{
			JWTSecret:     testSecret,
			SecureCookies: false,
		},
	}

	return router.NewRouter(cfg)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request

	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return body
}

func registerUser(t *testing.T, r *gin.Engine, email, username, password string) uint {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/auth/register",
		fmt.Sprintf(`{"email":%q,"username":%q,"password":%q}`, email, username, password))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	user := body["user"].(map[string]any)

	return uint(user["id"].(float64))
}

func loginUser(t *testing.T, r *gin.Engine, email, password string) *http.Cookie {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/auth/login",
		fmt.Sprintf(`{"email":%q,"password":%q}`, email, password))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "token" && cookie.Value != "" {
			return cookie
		}
	}

	t.Fatal("login response did not set a session cookie")
	return nil
}

func TestRegisterLoginFlow(t *testing.T) {
	r := setupRouter(t)

	registerUser(t, r, "a@x.com", "alice", "secret1234")

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", `{"email":"a@x.com","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	cookie := loginUser(t, r, "a@x.com", "secret1234")
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, int(auth.TokenTTL.Seconds()), cookie.MaxAge)

	w = doJSON(t, r, http.MethodGet, "/api/auth/me", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	user := body["user"].(map[string]any)
	assert.Equal(t, "a@x.com", user["email"])
	assert.Equal(t, false, user["is_admin"])
}

func TestRegisterShortPassword(t *testing.T) {
	r := setupRouter(t)

	// No minimum password length; only presence is required.
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", `{"email":"a@x.com","username":"alice","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", `{"email":"a@x.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	loginUser(t, r, "a@x.com", "secret1")

	w = doJSON(t, r, http.MethodPost, "/api/auth/register", `{"email":"b@x.com","username":"bob","password":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	r := setupRouter(t)

	// Username below minimum length.
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", `{"email":"a@x.com","username":"al","password":"secret1234"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Malformed email.
	w = doJSON(t, r, http.MethodPost, "/api/auth/register", `{"email":"not-an-email","username":"alice","password":"secret1234"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Duplicate email.
	registerUser(t, r, "a@x.com", "alice", "secret1234")
	w = doJSON(t, r, http.MethodPost, "/api/auth/register", `{"email":"a@x.com","username":"alice2","password":"secret1234"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/notifications", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExpiredTokenRejected(t *testing.T) {
	r := setupRouter(t)

	registerUser(t, r, "a@x.com", "alice", "secret1234")

	claims := auth.Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, "/api/auth/me", "", &http.Cookie{Name: "token", Value: expired})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerHeaderFallback(t *testing.T) {
	r := setupRouter(t)

	registerUser(t, r, "a@x.com", "alice", "secret1234")
	cookie := loginUser(t, r, "a@x.com", "secret1234")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+cookie.Value)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNotificationCreationIsAdminOnly(t *testing.T) {
	r := setupRouter(t)

	aliceID := registerUser(t, r, "a@x.com", "alice", "secret1234")
	bobID := registerUser(t, r, "b@x.com", "bob", "secret1234")

	aliceCookie := loginUser(t, r, "a@x.com", "secret1234")

	payload := fmt.Sprintf(`{"message":"hi","recipient_ids":[%d]}`, bobID)

	w := doJSON(t, r, http.MethodPost, "/api/notifications", payload, aliceCookie)
	assert.Equal(t, http.StatusForbidden, w.Code)

	_, err := store.GrantAdmin(aliceID)
	require.NoError(t, err)

	// Identity is loaded from the store on every request, so the existing
	// token picks up the new privileges.
	w = doJSON(t, r, http.MethodPost, "/api/notifications", payload, aliceCookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	notification := body["notification"].(map[string]any)
	assert.Equal(t, "hi", notification["message"])
	assert.Equal(t, false, notification["is_read"])

	bobCookie := loginUser(t, r, "b@x.com", "secret1234")

	w = doJSON(t, r, http.MethodGet, "/api/notifications", "", bobCookie)
	require.Equal(t, http.StatusOK, w.Code)

	body = decodeBody(t, w)
	assert.Len(t, body["notifications"].([]any), 1)
}

func TestCreateNotificationValidation(t *testing.T) {
	r := setupRouter(t)

	aliceID := registerUser(t, r, "a@x.com", "alice", "secret1234")
	_, err := store.GrantAdmin(aliceID)
	require.NoError(t, err)

	cookie := loginUser(t, r, "a@x.com", "secret1234")

	w := doJSON(t, r, http.MethodPost, "/api/notifications", `{"message":"hi","recipient_ids":[]}`, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/notifications", fmt.Sprintf(`{"message":"","recipient_ids":[%d]}`, aliceID), cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/notifications", `{"message":"hi","recipient_ids":[9999]}`, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkAllReadWithNoNotifications(t *testing.T) {
	r := setupRouter(t)

	registerUser(t, r, "a@x.com", "alice", "secret1234")
	cookie := loginUser(t, r, "a@x.com", "secret1234")

	w := doJSON(t, r, http.MethodPatch, "/api/notifications/read-all", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, float64(0), body["updated"])
}

func TestMarkReadFlow(t *testing.T) {
	r := setupRouter(t)

	aliceID := registerUser(t, r, "a@x.com", "alice", "secret1234")
	bobID := registerUser(t, r, "b@x.com", "bob", "secret1234")

	_, err := store.GrantAdmin(aliceID)
	require.NoError(t, err)

	aliceCookie := loginUser(t, r, "a@x.com", "secret1234")

	w := doJSON(t, r, http.MethodPost, "/api/notifications",
		fmt.Sprintf(`{"message":"hi","recipient_ids":[%d]}`, bobID), aliceCookie)
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	notificationID := uint(body["notification"].(map[string]any)["id"].(float64))

	bobCookie := loginUser(t, r, "b@x.com", "secret1234")

	w = doJSON(t, r, http.MethodPatch, "/api/notifications/read",
		fmt.Sprintf(`{"notification_ids":[%d]}`, notificationID), bobCookie)
	require.Equal(t, http.StatusOK, w.Code)

	body = decodeBody(t, w)
	assert.Equal(t, float64(1), body["updated"])

	w = doJSON(t, r, http.MethodGet, "/api/notifications", "", bobCookie)
	require.Equal(t, http.StatusOK, w.Code)

	body = decodeBody(t, w)
	notifications := body["notifications"].([]any)
	require.Len(t, notifications, 1)
	assert.Equal(t, true, notifications[0].(map[string]any)["is_read"])
}

func TestDeleteNotificationEndpoint(t *testing.T) {
	r := setupRouter(t)

	aliceID := registerUser(t, r, "a@x.com", "alice", "secret1234")
	bobID := registerUser(t, r, "b@x.com", "bob", "secret1234")
	registerUser(t, r, "m@x.com", "mallory", "secret1234")

	_, err := store.GrantAdmin(aliceID)
	require.NoError(t, err)

	aliceCookie := loginUser(t, r, "a@x.com", "secret1234")

	w := doJSON(t, r, http.MethodPost, "/api/notifications",
		fmt.Sprintf(`{"message":"hi","recipient_ids":[%d]}`, bobID), aliceCookie)
	require.Equal(t, http.StatusCreated, w.Code)

	notificationID := uint(decodeBody(t, w)["notification"].(map[string]any)["id"].(float64))

	malloryCookie := loginUser(t, r, "m@x.com", "secret1234")

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/notifications/%d", notificationID), "", malloryCookie)
	assert.Equal(t, http.StatusForbidden, w.Code)

	bobCookie := loginUser(t, r, "b@x.com", "secret1234")

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/notifications/%d", notificationID), "", bobCookie)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/notifications/%d", notificationID), "", bobCookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminUserManagement(t *testing.T) {
	r := setupRouter(t)

	aliceID := registerUser(t, r, "a@x.com", "alice", "secret1234")
	bobID := registerUser(t, r, "b@x.com", "bob", "secret1234")

	bobCookie := loginUser(t, r, "b@x.com", "secret1234")

	// Non-admin cannot grant or delete.
	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/users/%d/admin", bobID), "", bobCookie)
	assert.Equal(t, http.StatusForbidden, w.Code)

	_, err := store.GrantAdmin(aliceID)
	require.NoError(t, err)

	aliceCookie := loginUser(t, r, "a@x.com", "secret1234")

	w = doJSON(t, r, http.MethodPost, "/api/users/9999/admin", "", aliceCookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/users/%d", bobID), "", aliceCookie)
	require.Equal(t, http.StatusOK, w.Code)

	// Soft-deleted user can no longer authenticate, with an old token or a
	// fresh login.
	w = doJSON(t, r, http.MethodGet, "/api/auth/me", "", bobCookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", `{"email":"b@x.com","password":"secret1234"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	r := setupRouter(t)

	registerUser(t, r, "a@x.com", "alice", "secret1234")
	cookie := loginUser(t, r, "a@x.com", "secret1234")

	w := doJSON(t, r, http.MethodPost, "/api/auth/logout", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var cleared *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "token" {
			cleared = c
		}
	}

	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestHealthCheck(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
