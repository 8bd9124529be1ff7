// Package posts implements post CRUD with ownership enforcement. Every
// mutation passes through the authz guard against the post's author.
package posts

import (
	"context"
	"errors"
	"fmt"

	"github.com/davberk/microblog/internal/authz"
	"github.com/davberk/microblog/internal/models"
)

var (
	// ErrInvalidState flags a caller bug: handlers must never reach the
	// repository with an anonymous author.
	ErrInvalidState = errors.New("invalid state")
	// ErrValidation flags an empty or oversized title/content.
	ErrValidation = errors.New("invalid post")
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
	maxTitleLen     = 255
)

// Store defines the interface for post persistence.
type Store interface {
	CreatePost(ctx context.Context, authorID, title, content string) (*models.Post, error)
	ListPosts(ctx context.Context, limit, offset int) ([]models.Post, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	UpdatePost(ctx context.Context, id, title, content string) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
}

// Service is the post repository with authorization layered on top.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func validate(title, content string) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len(title) > maxTitleLen {
		return fmt.Errorf("%w: title exceeds %d characters", ErrValidation, maxTitleLen)
	}
	if content == "" {
		return fmt.Errorf("%w: content is required", ErrValidation)
	}
	return nil
}

// Create persists a new post owned by actor.
func (s *Service) Create(ctx context.Context, actor authz.Actor, title, content string) (*models.Post, error) {
	if actor.Anonymous() {
		return nil, fmt.Errorf("%w: anonymous author", ErrInvalidState)
	}
	if err := validate(title, content); err != nil {
		return nil, err
	}
	return s.store.CreatePost(ctx, actor.ID, title, content)
}

// List returns the requested page of posts, newest first. Out-of-range
// pages yield an empty slice, never an error.
func (s *Service) List(ctx context.Context, page, size int) ([]models.Post, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	posts, err := s.store.ListPosts(ctx, size, (page-1)*size)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

// Get returns a single post; store.ErrNotFound when absent.
func (s *Service) Get(ctx context.Context, id string) (*models.Post, error) {
	return s.store.GetPost(ctx, id)
}

// Update replaces title and content after the guard confirms actor owns
// the post.
func (s *Service) Update(ctx context.Context, id string, actor authz.Actor, title, content string) (*models.Post, error) {
	if err := validate(title, content); err != nil {
		return nil, err
	}
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, post.AuthorID, authz.ActionEditPost); err != nil {
		return nil, err
	}
	return s.store.UpdatePost(ctx, id, title, content)
}

// Delete removes the post permanently after the guard confirms
// ownership. No soft delete.
func (s *Service) Delete(ctx context.Context, id string, actor authz.Actor) error {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Authorize(actor, post.AuthorID, authz.ActionDeletePost); err != nil {
		return err
	}
	return s.store.DeletePost(ctx, id)
}
