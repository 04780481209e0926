// Package entity defines the domain models for the portfolio feature.
package entity

import "time"

// Portfolio is a named basket of tickers tracked by a user.
// Tickers are stored normalized: uppercased, deduplicated, sorted.
type Portfolio struct {
	ID        uint
	Name      string
	Tickers   []string
	UpdatedAt time.Time
}
