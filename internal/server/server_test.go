package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"discusshub/internal/config"
	"discusshub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "test-secret-that-is-long-enough-for-hmac"

func setupTestApp(t *testing.T) (*fiber.App, *Server, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}, &models.Announcement{}); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	cfg := &config.Config{Port: "0", JWTSecret: testSecret, Env: "test"}
	srv := NewServerWithDeps(cfg, db, nil)

	app := fiber.New()
	srv.SetupRoutes(app)
	return app, srv, db
}

func signTestToken(t *testing.T, email string, mutate ...func(jwt.MapClaims)) string {
	t.Helper()
	now := time.Now()
	claims := jwt.MapClaims{
		"email": email,
		"iss":   tokenIssuer,
		"aud":   tokenAudience,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
		"jti":   "test-token-identifier",
	}
	for _, m := range mutate {
		m(claims)
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func createAdmin(t *testing.T, db *gorm.DB, email string) {
	t.Helper()
	require.NoError(t, db.Create(&models.User{Name: "Admin", Email: email, Role: models.RoleAdmin}).Error)
}

// --- token issuance ---

func TestIssueTokenReturnsVerifiableToken(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/jwt", "", fiber.Map{"email": "ada@example.com", "name": "Ada"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body["token"])

	token, err := jwt.Parse(body["token"], func(token *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "ada@example.com", claims["email"])
	assert.Equal(t, tokenIssuer, claims["iss"])
	assert.Equal(t, tokenAudience, claims["aud"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp.Time, time.Minute)
}

func TestIssueTokenRequiresEmail(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/jwt", "", fiber.Map{"name": "Nobody"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// --- auth middleware ---

func TestProtectedRouteWithoutTokenIsUnauthorized(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRouteWithWrongIssuerIsUnauthorized(t *testing.T) {
	app, _, db := setupTestApp(t)
	createAdmin(t, db, "admin@example.com")

	token := signTestToken(t, "admin@example.com", func(c jwt.MapClaims) {
		c["iss"] = "someone-else"
	})
	resp := doJSON(t, app, http.MethodGet, "/users", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRouteWithExpiredTokenIsUnauthorized(t *testing.T) {
	app, _, db := setupTestApp(t)
	createAdmin(t, db, "admin@example.com")

	token := signTestToken(t, "admin@example.com", func(c jwt.MapClaims) {
		c["exp"] = time.Now().Add(-time.Minute).Unix()
	})
	resp := doJSON(t, app, http.MethodGet, "/users", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestListUsersForbiddenForNonAdmin(t *testing.T) {
	app, _, db := setupTestApp(t)
	require.NoError(t, db.Create(&models.User{Name: "Plain", Email: "plain@example.com"}).Error)

	token := signTestToken(t, "plain@example.com")
	resp := doJSON(t, app, http.MethodGet, "/users", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestListUsersAllowedForAdmin(t *testing.T) {
	app, _, db := setupTestApp(t)
	createAdmin(t, db, "admin@example.com")

	token := signTestToken(t, "admin@example.com")
	resp := doJSON(t, app, http.MethodGet, "/users", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var users []models.User
	decodeBody(t, resp, &users)
	require.Len(t, users, 1)
	assert.Equal(t, "admin@example.com", users[0].Email)
}

// --- admin self-check ---

func TestCheckAdminOnlyForOwnEmail(t *testing.T) {
	app, _, db := setupTestApp(t)
	createAdmin(t, db, "admin@example.com")

	token := signTestToken(t, "admin@example.com")

	resp := doJSON(t, app, http.MethodGet, "/users/admin/admin@example.com", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]bool
	decodeBody(t, resp, &body)
	assert.True(t, body["admin"])

	// Asking about anyone else's email is forbidden even for an admin.
	resp = doJSON(t, app, http.MethodGet, "/users/admin/other@example.com", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCheckAdminOrdinaryUserIsFalse(t *testing.T) {
	app, _, db := setupTestApp(t)
	require.NoError(t, db.Create(&models.User{Name: "Plain", Email: "plain@example.com"}).Error)

	token := signTestToken(t, "plain@example.com")
	resp := doJSON(t, app, http.MethodGet, "/users/admin/plain@example.com", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]bool
	decodeBody(t, resp, &body)
	assert.False(t, body["admin"])
}

// --- posts flow ---

func TestPostLifecycle(t *testing.T) {
	app, _, _ := setupTestApp(t)

	create := fiber.Map{
		"author":     "Ada",
		"email":      "ada@example.com",
		"post_title": "Hello forum",
		"tags":       []string{"intro"},
	}
	resp := doJSON(t, app, http.MethodPost, "/posts", "", create)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var created models.Post
	decodeBody(t, resp, &created)
	require.NotZero(t, created.ID)

	resp = doJSON(t, app, http.MethodPost, "/upvote/1", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/comment/1", "", fiber.Map{"comment": "nice post"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/detailspost/1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail map[string]any
	decodeBody(t, resp, &detail)
	assert.Equal(t, "Hello forum", detail["post_title"])
	assert.Equal(t, float64(1), detail["upvote_count"])
	assert.Equal(t, float64(0), detail["downvote_count"])
	assert.Equal(t, []any{"nice post"}, detail["comments"])

	resp = doJSON(t, app, http.MethodDelete, "/posts/1", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/detailspost/1", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestVoteOnMissingPostIsNotFound(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/upvote/999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/downvote/999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetPostsSortsByPopularity(t *testing.T) {
	app, _, db := setupTestApp(t)

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.Post{Author: "A", Email: "a@example.com", Title: "low", Time: at.Add(time.Hour), UpvoteCount: 1}).Error)
	require.NoError(t, db.Create(&models.Post{Author: "A", Email: "a@example.com", Title: "high", Time: at, UpvoteCount: 9, DownvoteCount: 2}).Error)

	resp := doJSON(t, app, http.MethodGet, "/posts?sortBy=popularity", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listing []map[string]any
	decodeBody(t, resp, &listing)
	require.Len(t, listing, 2)
	assert.Equal(t, "high", listing[0]["post_title"])
	assert.Equal(t, float64(11), listing[0]["votes_count"])
	// The projection never carries comment bodies.
	assert.NotContains(t, listing[0], "comments")

	// Default sort is recency.
	resp = doJSON(t, app, http.MethodGet, "/posts", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &listing)
	assert.Equal(t, "low", listing[0]["post_title"])
}

func TestCountPostsByAuthor(t *testing.T) {
	app, _, db := setupTestApp(t)

	require.NoError(t, db.Create(&models.Post{Author: "A", Email: "a@example.com", Title: "one", Time: time.Now()}).Error)
	require.NoError(t, db.Create(&models.Post{Author: "A", Email: "a@example.com", Title: "two", Time: time.Now()}).Error)

	resp := doJSON(t, app, http.MethodGet, "/posts/count/a@example.com", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]float64
	decodeBody(t, resp, &body)
	assert.Equal(t, float64(2), body["count"])
}

// --- stats ---

func TestStatsEndpoint(t *testing.T) {
	app, _, db := setupTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/stats", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats models.SiteStats
	decodeBody(t, resp, &stats)
	assert.Equal(t, models.SiteStats{}, stats)

	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&models.Post{Author: "A", Email: "a@example.com", Title: "p", Time: time.Now(), UpvoteCount: 2, DownvoteCount: 1}).Error)
	}

	resp = doJSON(t, app, http.MethodGet, "/stats", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &stats)
	assert.Equal(t, int64(3), stats.TotalPosts)
	assert.Equal(t, int64(9), stats.TotalVotes)
	assert.Equal(t, int64(0), stats.TotalUsers)
}

// --- users ---

func TestCreateUserIsIdempotent(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/users", "", fiber.Map{"name": "Ada", "email": "ada@example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var created models.User
	decodeBody(t, resp, &created)
	assert.NotZero(t, created.ID)

	resp = doJSON(t, app, http.MethodPost, "/users", "", fiber.Map{"name": "Ada", "email": "ada@example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "user already exists", body["message"])
}

func TestCreateUserCannotSelfAssignAdmin(t *testing.T) {
	app, _, db := setupTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/users", "",
		fiber.Map{"name": "Sneaky", "email": "sneaky@example.com", "role": "admin"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user models.User
	require.NoError(t, db.Where("email = ?", "sneaky@example.com").First(&user).Error)
	assert.False(t, user.IsAdmin())
}

func TestPromoteUserRequiresAdmin(t *testing.T) {
	app, _, db := setupTestApp(t)
	createAdmin(t, db, "admin@example.com")
	plain := models.User{Name: "Plain", Email: "plain@example.com"}
	require.NoError(t, db.Create(&plain).Error)

	plainToken := signTestToken(t, "plain@example.com")
	resp := doJSON(t, app, http.MethodPatch, "/users/admin/2", plainToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	adminToken := signTestToken(t, "admin@example.com")
	resp = doJSON(t, app, http.MethodPatch, "/users/admin/2", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var promoted models.User
	require.NoError(t, db.First(&promoted, plain.ID).Error)
	assert.True(t, promoted.IsAdmin())
}

func TestDeleteUserRequiresAdmin(t *testing.T) {
	app, _, db := setupTestApp(t)
	createAdmin(t, db, "admin@example.com")
	doomed := models.User{Name: "Doomed", Email: "doomed@example.com"}
	require.NoError(t, db.Create(&doomed).Error)

	resp := doJSON(t, app, http.MethodDelete, "/users/2", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	adminToken := signTestToken(t, "admin@example.com")
	resp = doJSON(t, app, http.MethodDelete, "/users/2", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", "doomed@example.com").Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

// --- announcements ---

func TestAnnouncementsRoundTrip(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/announcement", "",
		fiber.Map{"title": "Maintenance", "description": "Sunday downtime", "author": "Ops"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/announcements", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listing []models.Announcement
	decodeBody(t, resp, &listing)
	require.Len(t, listing, 1)
	assert.Equal(t, "Maintenance", listing[0].Title)
}

// --- liveness ---

func TestLiveness(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthReportsComponentStatus(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status string `json:"status"`
		Checks struct {
			Database string `json:"database"`
			Redis    string `json:"redis"`
		} `json:"checks"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "healthy", body.Checks.Database)
	// No Redis in the test wiring: degraded, not failing.
	assert.Equal(t, "unavailable", body.Checks.Redis)
}
