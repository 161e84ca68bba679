package domain

import "time"

type HealthStatus struct {
	Healthy       bool      `json:"healthy"`
	CheckedAt     time.Time `json:"checked_at"`
	TotalConns    int32     `json:"total_conns"`
	IdleConns     int32     `json:"idle_conns"`
	AcquiredConns int32     `json:"acquired_conns"`
	MaxConns      int32     `json:"max_conns"`
}
