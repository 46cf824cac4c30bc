package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/martijn/evently/internal/api/dto"
)

func TestRegister(t *testing.T) {
	env := setupTestEnv(t)
	env.register(t, "alice")

	tests := []struct {
		name           string
		body           any
		expectedStatus int
		expectedFields []string
	}{
		{
			name:           "duplicate email",
			body:           map[string]string{"username": "alice2", "email": "ALICE@example.com", "password": "password123"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "duplicate username",
			body:           map[string]string{"username": "alice", "email": "other@example.com", "password": "password123"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "every invalid field is listed",
			body:           map[string]string{"email": "nope", "password": "123"},
			expectedStatus: http.StatusBadRequest,
			expectedFields: []string{"username", "email", "password"},
		},
		{
			name:           "malformed JSON",
			body:           "{",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "new user",
			body:           map[string]string{"username": "bob", "email": "bob@example.com", "password": "password123"},
			expectedStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/auth/register", tt.body, "")

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			if len(tt.expectedFields) > 0 {
				errResp := parseErrorResponse(t, w)
				for _, field := range tt.expectedFields {
					found := false
					for _, v := range errResp.Errors {
						if v.Field == field {
							found = true
						}
					}
					if !found {
						t.Errorf("expected violation for %s, got %+v", field, errResp.Errors)
					}
				}
			}
		})
	}
}

func TestRegisterNeverReturnsPasswordHash(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	}, "")

	if strings.Contains(w.Body.String(), "password") || strings.Contains(w.Body.String(), "$2a$") {
		t.Errorf("response leaks the password: %s", w.Body.String())
	}
}

func TestLogin(t *testing.T) {
	env := setupTestEnv(t)
	registered := env.register(t, "alice")

	tests := []struct {
		name           string
		body           any
		expectedStatus int
	}{
		{"valid credentials", map[string]string{"email": "alice@example.com", "password": "password123"}, http.StatusOK},
		{"email is case-insensitive", map[string]string{"email": "Alice@Example.com", "password": "password123"}, http.StatusOK},
		{"wrong password", map[string]string{"email": "alice@example.com", "password": "wrong-password"}, http.StatusUnauthorized},
		{"unknown email", map[string]string{"email": "nobody@example.com", "password": "password123"}, http.StatusUnauthorized},
		{"missing password", map[string]string{"email": "alice@example.com"}, http.StatusBadRequest},
		{"missing email", map[string]string{"password": "password123"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/auth/login", tt.body, "")

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			if w.Code == http.StatusOK {
				resp := decode[dto.AuthResponse](t, w)
				if resp.User.ID != registered.User.ID {
					t.Errorf("expected user %s, got %s", registered.User.ID, resp.User.ID)
				}
				if resp.Token == "" {
					t.Error("expected a token")
				}
			}
		})
	}
}

func TestLoginFailuresShareMessage(t *testing.T) {
	env := setupTestEnv(t)
	env.register(t, "alice")

	wrongPassword := env.do(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "alice@example.com", "password": "wrong-password"}, "")
	unknownEmail := env.do(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "nobody@example.com", "password": "password123"}, "")

	if parseErrorResponse(t, wrongPassword).Message != parseErrorResponse(t, unknownEmail).Message {
		t.Error("login failures must not reveal whether the email exists")
	}
}
