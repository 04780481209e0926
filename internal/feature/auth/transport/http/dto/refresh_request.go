package dto

// RefreshRequest is the request body for refresh token rotation and logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
