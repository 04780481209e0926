// Package dto defines data transfer objects for the auth HTTP API.
package dto

// SignupRequest is the request body for user registration.
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}
