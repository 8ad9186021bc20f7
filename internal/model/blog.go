// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data, similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Blog is a stored blog entry.
//
// UserID is serialized as "user" and holds the owner's id. List responses use
// PopulatedBlog instead, which replaces it with the owner's public fields.
//
// The validate tags are the blog schema. They are checked by the service layer
// with go-playground/validator before anything reaches the database.
type Blog struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"  validate:"required"`
	Author    string    `json:"author"`
	URL       string    `json:"url"    validate:"required"`
	Likes     int       `json:"likes"  validate:"gte=0"`
	UserID    string    `json:"user"   validate:"required"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// BlogOwner is the populated view of a blog's owner.
type BlogOwner struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	ID       string `json:"id"`
}

// PopulatedBlog is a blog whose "user" reference has been expanded.
//
// EMBEDDING AND JSON:
// Blog.UserID and User both map to the "user" key. encoding/json picks the
// field at the shallowest depth, so the outer User wins and the id string is
// hidden. That gives us the expanded shape without copying every Blog field.
type PopulatedBlog struct {
	Blog
	User *BlogOwner `json:"user"`
}

// CreateBlogRequest is the body of POST /api/blogs.
// Likes is a pointer so we can tell "absent" from "0"; both end up as 0.
type CreateBlogRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  *int   `json:"likes"`
}

// UpdateBlogRequest is the body of PUT /api/blogs/{id}.
// Every field is optional; only the ones present in the body are applied.
// A present null clears the field: title and url then fail as required,
// author becomes "" and likes falls back to 0.
type UpdateBlogRequest struct {
	Title  Optional[string] `json:"title"`
	Author Optional[string] `json:"author"`
	URL    Optional[string] `json:"url"`
	Likes  Optional[int]    `json:"likes"`
}

// BlogStats is the response of GET /api/blogs/stats.
// The aggregate fields are any because each helper has its own result shape.
type BlogStats struct {
	TotalLikes   int `json:"totalLikes"`
	FavoriteBlog any `json:"favoriteBlog"`
	MostBlogs    any `json:"mostBlogs"`
	MostLikes    any `json:"mostLikes"`
}
