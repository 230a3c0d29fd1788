package entity

import "time"

const (
	DefaultAuthor      = "Unknown"
	DefaultDescription = ""
)

// Book is a catalog record. CreatedBy references the admin who added it.
type Book struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	CoverURL    string    `json:"coverUrl,omitempty"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// BookPatch carries a partial update; nil fields are left unchanged.
type BookPatch struct {
	Title       *string
	Author      *string
	Description *string
	CoverURL    *string
}

// Apply copies the set fields onto b.
func (p BookPatch) Apply(b *Book) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.CoverURL != nil {
		b.CoverURL = *p.CoverURL
	}
}
