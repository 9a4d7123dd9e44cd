package models

import "time"

// Event is one entry of the append-only realtime fan-out feed. Topic is the
// board or conversation id the subscribers are scoped by.
type Event struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Type      string    `json:"type"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
}
