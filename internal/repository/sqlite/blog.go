package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/model"
	"github.com/sakif/bloglist/internal/repository"
)

// compile-time check that *DB implements repository.BlogRepository
var _ repository.BlogRepository = (*DB)(nil)

const blogColumns = `id, title, author, url, likes, user_id, created_at, updated_at`

// CreateBlog inserts a new blog. The ID and timestamps are generated here and
// written back into blog.
//
// xid ids are 20 chars, URL-safe and sortable by creation time, e.g.
// "cv37rs3pp9olc6atsptg". The service layer relies on xid.FromString to tell a
// malformed id from a missing one.
func (db *DB) CreateBlog(ctx context.Context, blog *model.Blog) error {
	blog.ID = xid.New().String()

	now := time.Now()
	blog.CreatedAt = now
	blog.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO blogs (id, title, author, url, likes, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		blog.ID,
		blog.Title,
		blog.Author,
		blog.URL,
		blog.Likes,
		blog.UserID,
		blog.CreatedAt,
		blog.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating blog: %w", err)
	}

	return nil
}

// GetBlogByID retrieves a single blog by its ID.
// Returns apperror.ErrNotFound if no blog has that ID.
func (db *DB) GetBlogByID(ctx context.Context, id string) (*model.Blog, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+blogColumns+` FROM blogs WHERE id = ?`,
		id,
	)

	blog, err := scanBlog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("blog not found")
		}
		return nil, fmt.Errorf("sqlite: getting blog %s: %w", id, err)
	}

	return blog, nil
}

// ListBlogs returns every blog in insertion order, without populating owners.
func (db *DB) ListBlogs(ctx context.Context) ([]model.Blog, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+blogColumns+` FROM blogs ORDER BY created_at, rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing blogs: %w", err)
	}
	defer rows.Close()

	blogs := make([]model.Blog, 0)
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning blog row: %w", err)
		}
		blogs = append(blogs, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating blogs: %w", err)
	}

	return blogs, nil
}

// ListPopulatedBlogs returns every blog with its owner expanded to
// {username, name, id}.
//
// LEFT JOIN keeps a blog even if its owner row has vanished; User is then nil
// and serializes as null, which is what a populate of a dangling reference gives.
func (db *DB) ListPopulatedBlogs(ctx context.Context) ([]model.PopulatedBlog, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT b.id, b.title, b.author, b.url, b.likes, b.user_id, b.created_at, b.updated_at,
		        u.id, u.username, u.name
		 FROM blogs b
		 LEFT JOIN users u ON u.id = b.user_id
		 ORDER BY b.created_at, b.rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing populated blogs: %w", err)
	}
	defer rows.Close()

	blogs := make([]model.PopulatedBlog, 0)
	for rows.Next() {
		var (
			pb                          model.PopulatedBlog
			ownerID, username, userName sql.NullString
		)
		if err := rows.Scan(
			&pb.ID, &pb.Title, &pb.Author, &pb.URL, &pb.Likes, &pb.UserID,
			&pb.CreatedAt, &pb.UpdatedAt,
			&ownerID, &username, &userName,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning populated blog row: %w", err)
		}
		if ownerID.Valid {
			pb.User = &model.BlogOwner{
				Username: username.String,
				Name:     userName.String,
				ID:       ownerID.String,
			}
		}
		blogs = append(blogs, pb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating populated blogs: %w", err)
	}

	return blogs, nil
}

// UpdateBlog overwrites the mutable fields of an existing blog.
// The owner and created_at are immutable and never touched here.
func (db *DB) UpdateBlog(ctx context.Context, blog *model.Blog) error {
	blog.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE blogs
		 SET title = ?, author = ?, url = ?, likes = ?, updated_at = ?
		 WHERE id = ?`,
		blog.Title,
		blog.Author,
		blog.URL,
		blog.Likes,
		blog.UpdatedAt,
		blog.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating blog %s: %w", blog.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("blog not found")
	}

	return nil
}

// DeleteBlog removes a blog by its ID.
// Returns apperror.ErrNotFound if nothing was deleted.
func (db *DB) DeleteBlog(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM blogs WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting blog %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("blog not found")
	}

	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlog(s rowScanner) (*model.Blog, error) {
	var b model.Blog
	if err := s.Scan(
		&b.ID, &b.Title, &b.Author, &b.URL, &b.Likes, &b.UserID,
		&b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}
