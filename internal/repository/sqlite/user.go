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

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new user and writes the generated ID and timestamps
// back into user. A taken username yields apperror.ErrDuplicate.
//
// user.Blogs is stored as well, so a user created with a pre-filled list
// (only tests do that) round-trips.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Blogs == nil {
		user.Blogs = []string{}
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, name, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Name,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Duplicate("username")
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	if len(user.Blogs) > 0 {
		if err := db.SaveUserBlogs(ctx, user); err != nil {
			return err
		}
	}

	return nil
}

// GetUserByID retrieves a user, including its blog-id list, by internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `WHERE id = ?`, id)
}

// GetUserByUsername is used by login.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.getUser(ctx, `WHERE username = ?`, username)
}

func (db *DB) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, name, password_hash, created_at, updated_at
		 FROM users `+where,
		arg,
	).Scan(
		&u.ID,
		&u.Username,
		&u.Name,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, fmt.Errorf("sqlite: getting user (%v): %w", arg, err)
	}

	blogs, err := db.userBlogIDs(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.Blogs = blogs

	return &u, nil
}

func (db *DB) userBlogIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT blog_id FROM user_blogs WHERE user_id = ? ORDER BY position`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing blog ids of user %s: %w", userID, err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning blog id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating blog ids: %w", err)
	}

	return ids, nil
}

// SaveUserBlogs replaces the stored blog-id list of user with user.Blogs.
//
// The delete + inserts run in one transaction so readers never see a half
// written list. This is the only transaction in the repository; the blog row
// and the owner's list are still written separately by the service.
func (db *DB) SaveUserBlogs(ctx context.Context, user *model.User) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	// Rollback after a successful Commit is a no-op that returns ErrTxDone.
	defer tx.Rollback()

	user.UpdatedAt = time.Now()
	result, err := tx.ExecContext(ctx,
		`UPDATE users SET updated_at = ? WHERE id = ?`,
		user.UpdatedAt, user.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: touching user %s: %w", user.ID, err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	} else if n == 0 {
		return apperror.NotFound("user not found")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_blogs WHERE user_id = ?`, user.ID); err != nil {
		return fmt.Errorf("sqlite: clearing blog ids of user %s: %w", user.ID, err)
	}

	for i, blogID := range user.Blogs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_blogs (user_id, blog_id, position) VALUES (?, ?, ?)`,
			user.ID, blogID, i,
		); err != nil {
			return fmt.Errorf("sqlite: storing blog id %s of user %s: %w", blogID, user.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing blog ids of user %s: %w", user.ID, err)
	}

	return nil
}

// ListPopulatedUsers returns every user with its blog list expanded to
// {url, title, author, id}.
//
// Two queries instead of one per user: all users first, then every
// (user, blog) pair joined against blogs. The INNER JOIN drops ids whose blog
// no longer exists. Rows are fully read before the next query starts, which
// matters for ":memory:" where the pool holds a single connection.
func (db *DB) ListPopulatedUsers(ctx context.Context) ([]model.PopulatedUser, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, username, name, created_at, updated_at
		 FROM users ORDER BY created_at, rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}

	users := make([]model.PopulatedUser, 0)
	index := make(map[string]int)
	for rows.Next() {
		var pu model.PopulatedUser
		if err := rows.Scan(&pu.ID, &pu.Username, &pu.Name, &pu.CreatedAt, &pu.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		pu.Blogs = []model.BlogSummary{}
		index[pu.ID] = len(users)
		users = append(users, pu)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	rows.Close()

	rows, err = db.conn.QueryContext(ctx,
		`SELECT ub.user_id, b.id, b.url, b.title, b.author
		 FROM user_blogs ub
		 JOIN blogs b ON b.id = ub.blog_id
		 ORDER BY ub.user_id, ub.position`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing user blogs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID string
			s      model.BlogSummary
		)
		if err := rows.Scan(&userID, &s.ID, &s.URL, &s.Title, &s.Author); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user blog row: %w", err)
		}
		if i, ok := index[userID]; ok {
			users[i].Blogs = append(users[i].Blogs, s)
			users[i].User.Blogs = append(users[i].User.Blogs, s.ID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating user blogs: %w", err)
	}

	return users, nil
}
