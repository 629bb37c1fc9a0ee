package domain

import "time"

// MediaID identifies one playable entry (file path, URL or magnet).
type MediaID string

// ResumePosition is a persisted playback position for one media entry.
type ResumePosition struct {
	MediaID   MediaID   `json:"mediaId"`
	Title     string    `json:"title,omitempty"`
	Position  float64   `json:"position"`
	Duration  float64   `json:"duration"`
	UpdatedAt time.Time `json:"updatedAt"`
}
