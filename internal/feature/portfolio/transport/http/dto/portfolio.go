// Package dto defines data transfer objects for the portfolio HTTP API.
package dto

// PortfolioRequest is the request body for creating or updating a portfolio.
type PortfolioRequest struct {
	Name    string   `json:"name"`
	Tickers []string `json:"tickers" binding:"required"`
}

// PortfolioResponse represents a portfolio in the API response.
type PortfolioResponse struct {
	Name    string   `json:"name"`
	Tickers []string `json:"tickers"`
}
