// Package entity defines the domain models for the marketdata feature.
package entity

import "time"

// Bar represents one daily price bar for a ticker.
// Date carries no time component; it is normalized to midnight UTC.
type Bar struct {
	Ticker    string
	Date      time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Change    float64
	ChangePct float64
	Volume    int64
}
