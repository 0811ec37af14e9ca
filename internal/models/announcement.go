package models

import "time"

// Announcement is a site-wide notice shown above the feed while IsActive.
type Announcement struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	CreatedByName string    `json:"createdByName"`
	IsActive      bool      `json:"isActive"`
}
