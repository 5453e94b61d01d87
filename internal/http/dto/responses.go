package dto

import "github.com/fliproyale/waitlist/internal/models"

type ErrorResponse struct {
	OK        bool   `json:"ok"`
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type SignupResponse struct {
	Created bool         `json:"created"`
	Token   string       `json:"token"`
	Stats   models.Stats `json:"stats"`
}
