package repository

import (
	"context"

	"github.com/sakif/bloglist/internal/model"
)

type BlogRepository interface {
	CreateBlog(ctx context.Context, blog *model.Blog) error
	GetBlogByID(ctx context.Context, id string) (*model.Blog, error)
	ListBlogs(ctx context.Context) ([]model.Blog, error)
	ListPopulatedBlogs(ctx context.Context) ([]model.PopulatedBlog, error)
	UpdateBlog(ctx context.Context, blog *model.Blog) error
	DeleteBlog(ctx context.Context, id string) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListPopulatedUsers(ctx context.Context) ([]model.PopulatedUser, error)
	// SaveUserBlogs replaces the stored blog-id list of user with user.Blogs.
	SaveUserBlogs(ctx context.Context, user *model.User) error
}
