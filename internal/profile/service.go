// Package profile mutates a user's own bio and avatar. The target is
// always the actor's record, so the guard is invoked with the actor as
// owner; it still rejects anonymous callers.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/davberk/microblog/internal/authz"
	"github.com/davberk/microblog/internal/models"
)

// ErrNoAvatar is returned when a user has never uploaded an avatar.
var ErrNoAvatar = errors.New("no avatar")

// UserStore defines the interface for profile persistence.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id, bio, avatarKey string) (*models.User, error)
}

// AvatarStore defines the interface for avatar binary storage.
type AvatarStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
	Remove(ctx context.Context, key string) error
}

// Service applies bio and avatar changes.
type Service struct {
	users   UserStore
	avatars AvatarStore
}

func NewService(users UserStore, avatars AvatarStore) *Service {
	return &Service{users: users, avatars: avatars}
}

// Update applies the requested changes to the actor's own profile. A nil
// bio leaves the bio alone; an empty avatar leaves the avatar alone. The
// returned bool reports whether anything changed, so callers can tell
// "updated" from "nothing changed"; a no-op is not an error.
func (s *Service) Update(ctx context.Context, actor authz.Actor, bio *string, avatar []byte, avatarContentType string) (*models.User, bool, error) {
	if err := authz.Authorize(actor, actor.ID, authz.ActionUpdateProfile); err != nil {
		return nil, false, err
	}

	current, err := s.users.GetUserByID(ctx, actor.ID)
	if err != nil {
		return nil, false, err
	}

	newBio := current.Bio
	if bio != nil && *bio != current.Bio {
		newBio = *bio
	}

	newKey := current.AvatarKey
	if len(avatar) > 0 {
		key := fmt.Sprintf("avatars/%s/%s", actor.ID, uuid.New().String())
		if err := s.avatars.Upload(ctx, key, avatar, avatarContentType); err != nil {
			return nil, false, fmt.Errorf("upload avatar: %w", err)
		}
		newKey = key
	}

	if newBio == current.Bio && newKey == current.AvatarKey {
		return current, false, nil
	}

	updated, err := s.users.UpdateProfile(ctx, actor.ID, newBio, newKey)
	if err != nil {
		return nil, false, err
	}

	// Old avatar is unreachable once the key is replaced; removal failure
	// only leaks an orphan object.
	if current.AvatarKey != "" && newKey != current.AvatarKey {
		if err := s.avatars.Remove(ctx, current.AvatarKey); err != nil {
			log.Printf("remove old avatar %s: %v", current.AvatarKey, err)
		}
	}

	return updated, true, nil
}

// Avatar returns the stored avatar bytes and content type for a user.
func (s *Service) Avatar(ctx context.Context, userID string) ([]byte, string, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if user.AvatarKey == "" {
		return nil, "", ErrNoAvatar
	}
	return s.avatars.Download(ctx, user.AvatarKey)
}
