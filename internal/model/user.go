// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered user account.
//
// WHY PasswordHash HAS json:"-"?
// The hash must never leave the server. The "-" tag tells encoding/json to skip
// the field entirely, so every response that embeds a User is safe by default.
//
// Blogs is the ordered list of ids of the blogs this user owns. The service
// layer keeps it in sync when blogs are created and deleted.
type User struct {
	ID           string    `json:"id"       db:"id"`
	Username     string    `json:"username" db:"username" validate:"required,min=3"`
	Name         string    `json:"name"     db:"name"`
	PasswordHash string    `json:"-"        db:"password_hash"`
	Blogs        []string  `json:"blogs"`
	CreatedAt    time.Time `json:"-"        db:"created_at"`
	UpdatedAt    time.Time `json:"-"        db:"updated_at"`
}

// BlogSummary is the populated view of one entry of a user's blog list.
type BlogSummary struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Author string `json:"author"`
	ID     string `json:"id"`
}

// PopulatedUser is a user whose "blogs" ids have been expanded.
// Same shadowing trick as PopulatedBlog: the outer Blogs field wins.
type PopulatedUser struct {
	User
	Blogs []BlogSummary `json:"blogs"`
}

// CreateUserRequest is the body of POST /api/users.
type CreateUserRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Name     string `json:"name"`
}
