package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/martijn/evently/internal/api/dto"
	"github.com/martijn/evently/internal/api/middleware"
	"github.com/martijn/evently/internal/core/service"
	"github.com/martijn/evently/internal/infrastructure/sqlite"
)

// testEnv holds all test dependencies
type testEnv struct {
	db          *sqlite.DB
	router      *gin.Engine
	authService *service.AuthService
}

// setupTestEnv creates a test environment with in-memory SQLite database and
// the same route layout as the server
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	userRepo := sqlite.NewUserRepository(db)
	eventRepo := sqlite.NewEventRepository(db)

	authService := service.NewAuthService(userRepo, "handler-test-secret", "HS256", time.Hour, nil)
	eventService := service.NewEventService(eventRepo, nil, nil, nil)

	authHandler := NewAuthHandler(authService)
	eventHandler := NewEventHandler(eventService, 10, 100)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	api := router.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/events", eventHandler.ListEvents)
	api.GET("/events/:id", eventHandler.GetEvent)

	protected := api.Group("", middleware.AuthMiddleware(authService))
	protected.POST("/events", eventHandler.CreateEvent)
	protected.PUT("/events/:id", eventHandler.UpdateEvent)
	protected.DELETE("/events/:id", eventHandler.DeleteEvent)

	env := &testEnv{
		db:          db,
		router:      router,
		authService: authService,
	}
	t.Cleanup(env.cleanup)
	return env
}

// cleanup closes the test database
func (env *testEnv) cleanup() {
	if env.db != nil {
		env.db.Close()
	}
}

// do performs a request with an optional JSON body and bearer token
func (env *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// register creates a user over HTTP and returns the auth response
func (env *testEnv) register(t *testing.T, username string) dto.AuthResponse {
	t.Helper()

	w := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("failed to register %s: %d %s", username, w.Code, w.Body.String())
	}
	return decode[dto.AuthResponse](t, w)
}

// createEvent creates an event over HTTP as the token's user
func (env *testEnv) createEvent(t *testing.T, token string, body map[string]string) dto.EventResponse {
	t.Helper()

	w := env.do(t, http.MethodPost, "/api/events", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("failed to create event: %d %s", w.Code, w.Body.String())
	}
	return decode[dto.EventResponse](t, w)
}

// decode parses the response body into T
func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var resp T
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v\nBody: %s", err, w.Body.String())
	}
	return resp
}

// parseErrorResponse parses the response body into ErrorResponse
func parseErrorResponse(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	return decode[dto.ErrorResponse](t, w)
}

func eventBody(title, date, location string) map[string]string {
	return map[string]string{
		"title":         title,
		"description":   title + " description",
		"date":          date,
		"location":      location,
		"organizerName": "Someone",
	}
}
