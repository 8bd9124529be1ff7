package models

import "time"

// Post is a single blog post. AuthorID is immutable after creation;
// only title and content are ever updated.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PostRequest is the JSON body for POST /api/posts and PUT /api/posts/{id}.
type PostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
