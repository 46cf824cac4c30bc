package dto

// RegisterRequest represents the registration request. Presence and format
// are checked by the auth service so every violation is reported at once.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse represents a user in API responses. The password hash is
// never serialized.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}
