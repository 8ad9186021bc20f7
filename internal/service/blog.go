// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Handlers only know about HTTP (status codes, headers, JSON). Services only
// know about business rules: validation, ownership, keeping a user's blog list
// in step with the blogs it owns. Neither knows about SQL.
//
// DEPENDENCY INJECTION:
// BlogService takes repository interfaces, NOT a *sqlite.DB. In tests we pass
// in-memory fakes (see blog_test.go); in main we pass the SQLite store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/rs/xid"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/listhelper"
	"github.com/sakif/bloglist/internal/model"
	"github.com/sakif/bloglist/internal/repository"
)

// BlogService handles business logic for blogs.
//
// It needs the user repository too: creating or deleting a blog also rewrites
// the owner's list of blog ids.
type BlogService struct {
	blogs  repository.BlogRepository
	users  repository.UserRepository
	logger *slog.Logger
}

// NewBlogService creates a new BlogService.
func NewBlogService(blogs repository.BlogRepository, users repository.UserRepository, logger *slog.Logger) *BlogService {
	return &BlogService{
		blogs:  blogs,
		users:  users,
		logger: logger,
	}
}

// List returns every blog with its owner populated, in insertion order.
func (s *BlogService) List(ctx context.Context) ([]model.PopulatedBlog, error) {
	blogs, err := s.blogs.ListPopulatedBlogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: listing blogs: %w", err)
	}
	return blogs, nil
}

// Create stores a new blog owned by owner and appends its id to the owner's
// blog list.
//
// Missing likes default to 0. The blog row and the owner's list are two
// separate writes; if the second fails the blog still exists.
func (s *BlogService) Create(ctx context.Context, owner *model.User, req model.CreateBlogRequest) (*model.Blog, error) {
	if owner == nil {
		return nil, apperror.TokenInvalid()
	}

	likes := 0
	if req.Likes != nil {
		likes = *req.Likes
	}

	blog := &model.Blog{
		Title:  req.Title,
		Author: req.Author,
		URL:    req.URL,
		Likes:  likes,
		UserID: owner.ID,
	}

	if err := validateStruct("Blog", blog); err != nil {
		return nil, err
	}

	if err := s.blogs.CreateBlog(ctx, blog); err != nil {
		return nil, fmt.Errorf("service: creating blog: %w", err)
	}

	// Copy before appending so the caller's slice is never aliased.
	owner.Blogs = append(slices.Clone(owner.Blogs), blog.ID)
	if err := s.users.SaveUserBlogs(ctx, owner); err != nil {
		return nil, fmt.Errorf("service: adding blog %s to user %s: %w", blog.ID, owner.ID, err)
	}

	s.logger.Info("blog created",
		slog.String("id", blog.ID),
		slog.String("user", owner.ID),
	)

	return blog, nil
}

// Delete removes a blog owned by caller and drops its id from the caller's
// blog list.
//
// Errors, in the order they are checked:
//   - malformed id            → apperror.ErrMalformedID
//   - no such blog            → apperror.ErrNotFound ("blog not found")
//   - blog owned by someone else → apperror.ErrForbidden
func (s *BlogService) Delete(ctx context.Context, caller *model.User, id string) error {
	if caller == nil {
		return apperror.TokenInvalid()
	}
	if err := checkID(id); err != nil {
		return err
	}

	blog, err := s.blogs.GetBlogByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service: deleting blog: %w", err)
	}

	if blog.UserID != caller.ID {
		s.logger.Warn("delete of foreign blog refused",
			slog.String("id", id),
			slog.String("owner", blog.UserID),
			slog.String("caller", caller.ID),
		)
		return apperror.Forbidden("you cannot delete this blog")
	}

	if err := s.blogs.DeleteBlog(ctx, id); err != nil {
		return fmt.Errorf("service: deleting blog %s: %w", id, err)
	}

	caller.Blogs = slices.DeleteFunc(slices.Clone(caller.Blogs), func(b string) bool {
		return b == id
	})
	if err := s.users.SaveUserBlogs(ctx, caller); err != nil {
		return fmt.Errorf("service: removing blog %s from user %s: %w", id, caller.ID, err)
	}

	s.logger.Info("blog deleted", slog.String("id", id), slog.String("user", caller.ID))
	return nil
}

// blogPatch is what Update validates before touching the store. nil means
// the key was absent; a JSON null arrives as the zero value, so a null
// title or url fails min=1 and is reported as required.
type blogPatch struct {
	Title *string `json:"title" validate:"omitnil,min=1"`
	URL   *string `json:"url"   validate:"omitnil,min=1"`
	Likes *int    `json:"likes" validate:"omitnil,gte=0"`
}

// Update applies a partial update to a blog and returns the stored result.
// Absent fields keep their values. No authentication is required.
func (s *BlogService) Update(ctx context.Context, id string, req model.UpdateBlogRequest) (*model.Blog, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	patch := blogPatch{
		Title: req.Title.Ptr(),
		URL:   req.URL.Ptr(),
		Likes: req.Likes.Ptr(),
	}
	if err := validateStruct("", patch); err != nil {
		return nil, err
	}

	blog, err := s.blogs.GetBlogByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("Blog not found")
		}
		return nil, fmt.Errorf("service: updating blog %s: %w", id, err)
	}

	if req.Title.Set {
		blog.Title = req.Title.Value
	}
	if req.Author.Set {
		blog.Author = req.Author.Value
	}
	if req.URL.Set {
		blog.URL = req.URL.Value
	}
	if req.Likes.Set {
		blog.Likes = req.Likes.Value
	}

	if err := validateStruct("", blog); err != nil {
		return nil, err
	}

	if err := s.blogs.UpdateBlog(ctx, blog); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("Blog not found")
		}
		return nil, fmt.Errorf("service: updating blog %s: %w", id, err)
	}

	s.logger.Info("blog updated", slog.String("id", id))
	return blog, nil
}

// Stats runs the list helpers over every stored blog.
//
// mostBlogs and mostLikes are computed over per-author totals; favoriteBlog
// picks from the individual blogs.
func (s *BlogService) Stats(ctx context.Context) (*model.BlogStats, error) {
	blogs, err := s.blogs.ListBlogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: computing stats: %w", err)
	}

	entries := listhelper.FromBlogs(blogs)

	return &model.BlogStats{
		TotalLikes:   listhelper.TotalLikes(entries),
		FavoriteBlog: listhelper.FavoriteBlog(entries),
		MostBlogs:    listhelper.MostBlogs(listhelper.BlogsPerAuthor(blogs)),
		MostLikes:    listhelper.MostLikes(listhelper.LikesPerAuthor(blogs)),
	}, nil
}

// checkID rejects ids that could never have been issued by the store.
func checkID(id string) error {
	if _, err := xid.FromString(id); err != nil {
		return apperror.MalformedID()
	}
	return nil
}
