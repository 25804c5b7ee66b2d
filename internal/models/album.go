package models

import "time"

// Album is owned by the user that created it; CreatedBy never changes
// after creation.
type Album struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	Genre       string    `json:"genre,omitempty"`
	ReleaseDate time.Time `json:"release_date"`
	CoverImage  string    `json:"cover_image,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
