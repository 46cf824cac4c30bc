package dto

import "github.com/martijn/evently/internal/core/domain"

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string                  `json:"error"`
	Message string                  `json:"message"`
	Code    int                     `json:"code"`
	Errors  []domain.FieldViolation `json:"errors,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}
