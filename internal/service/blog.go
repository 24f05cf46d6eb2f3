// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces ownership, orchestrates
//	Repository (Data layer)  → reads/writes the database
//
// Services take repository interfaces, never *sqlite.DB, so the tests in this
// package run against in-memory fakes.
//
// Blogs and users are separate records linked by id in both directions
// (blog.OwnerID and user.BlogIDs). The services keep both sides in step with
// two writes; there is no transaction spanning them, and a failure of the
// second write is logged and tolerated.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/auth"
	"github.com/sakif/bloglist/internal/model"
	"github.com/sakif/bloglist/internal/repository"
	"github.com/sakif/bloglist/internal/stats"
)

// BlogService handles business logic for blogs.
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

// List returns every blog in insertion order with its owner projected.
func (s *BlogService) List(ctx context.Context) ([]model.Blog, error) {
	blogs, err := s.blogs.List(ctx)
	if err != nil {
		s.logger.Error("failed to list blogs", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing blogs: %w", err)
	}
	return blogs, nil
}

// Get retrieves a single blog.
// Returns apperror.ErrInvalidID or apperror.ErrNotFound from the store as is.
func (s *BlogService) Get(ctx context.Context, id string) (*model.Blog, error) {
	return s.blogs.GetByID(ctx, id)
}

// Create validates and saves a new blog owned by owner, then appends its id
// to the owner's blogIds.
//
// Validation runs before anything is written, so a rejected blog leaves no
// trace in either store.
func (s *BlogService) Create(ctx context.Context, owner *model.User, in model.BlogInput) (*model.Blog, error) {
	if owner == nil || owner.ID == "" {
		return nil, apperror.Unauthenticated(auth.ErrUnknownUser, "invalid user")
	}

	// === VALIDATION ===
	if in.Title == "" {
		return nil, apperror.ValidationFailed("title", "blog validation failed: title is required")
	}
	if in.URL == "" {
		return nil, apperror.ValidationFailed("url", "blog validation failed: url is required")
	}
	likes := 0
	if in.Likes != nil {
		likes = *in.Likes
	}
	if likes < 0 {
		return nil, apperror.ValidationFailed("likes", "blog validation failed: likes must not be negative")
	}

	ownerID := owner.ID
	blog := &model.Blog{
		Title:   in.Title,
		Author:  in.Author,
		URL:     in.URL,
		Likes:   likes,
		OwnerID: &ownerID,
	}

	if err := s.blogs.Create(ctx, blog); err != nil {
		if !errors.Is(err, apperror.ErrValidation) {
			s.logger.Error("failed to create blog",
				slog.String("title", blog.Title),
				slog.String("error", err.Error()),
			)
		}
		return nil, fmt.Errorf("creating blog: %w", err)
	}

	// Second write: the owner's back-reference list.
	if err := s.users.AppendBlog(ctx, ownerID, blog.ID); err != nil {
		s.logger.Warn("blog created but not added to owner's blogIds",
			slog.String("blogID", blog.ID),
			slog.String("userID", ownerID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("blog created",
		slog.String("id", blog.ID),
		slog.String("title", blog.Title),
		slog.String("owner", ownerID),
	)

	return blog, nil
}

// Update applies patch to the blog with the given id on behalf of caller
// (nil for an anonymous request).
//
// The store runs the update scoped to the caller (see auth.UpdateScope).
// When nothing matches, an unscoped read tells "no such blog" (404) apart
// from "someone else's blog" (403).
func (s *BlogService) Update(ctx context.Context, caller *auth.Identity, id string, patch model.BlogPatch) (*model.Blog, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	blog, err := s.blogs.Update(ctx, id, patch, auth.UpdateScope(caller))
	if err == nil {
		s.logger.Info("blog updated", slog.String("id", blog.ID))
		return blog, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		if !errors.Is(err, apperror.ErrValidation) && !errors.Is(err, apperror.ErrInvalidID) {
			s.logger.Error("failed to update blog",
				slog.String("id", id),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}

	existing, getErr := s.blogs.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if authErr := auth.AuthorizeUpdate(caller, existing); authErr != nil {
		return nil, authErr
	}
	// Matched the policy but not the scoped statement: the blog changed
	// owner or vanished between the two reads.
	return nil, err
}

// Delete removes the blog with the given id on behalf of caller and drops
// the id from the owner's blogIds.
//
// Deleting a well-formed id that does not exist succeeds and writes nothing.
func (s *BlogService) Delete(ctx context.Context, caller auth.Identity, id string) error {
	blog, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := auth.AuthorizeDelete(caller, blog); err != nil {
		s.logger.Info("blog delete refused",
			slog.String("id", id),
			slog.String("caller", caller.SubjectID),
		)
		return err
	}

	if err := s.blogs.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete blog",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting blog: %w", err)
	}

	if err := s.users.RemoveBlog(ctx, *blog.OwnerID, id); err != nil {
		s.logger.Warn("blog deleted but still listed in owner's blogIds",
			slog.String("blogID", id),
			slog.String("userID", *blog.OwnerID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("blog deleted", slog.String("id", id))
	return nil
}

// Stats computes aggregate statistics over all blogs.
func (s *BlogService) Stats(ctx context.Context) (stats.Summary, error) {
	blogs, err := s.List(ctx)
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.Summarize(blogs), nil
}

func validatePatch(p model.BlogPatch) error {
	if p.Title != nil && *p.Title == "" {
		return apperror.ValidationFailed("title", "blog validation failed: title must not be empty")
	}
	if p.URL != nil && *p.URL == "" {
		return apperror.ValidationFailed("url", "blog validation failed: url must not be empty")
	}
	if p.Likes != nil && *p.Likes < 0 {
		return apperror.ValidationFailed("likes", "blog validation failed: likes must not be negative")
	}
	return nil
}
