package entity

import "time"

type Stream struct {
	ID        string    `json:"stream_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type StreamClaims struct {
	StreamID string
}
