package services

import (
	"context"
	"errors"

	"playdate-buddy-backend/internal/apperror"
	"playdate-buddy-backend/internal/repository"
)

// FriendService handles friendship-related business logic
type FriendService struct {
	users    UserStore
	friends  FriendStore
	notifier Notifier
}

// NewFriendService creates a new friend service; notifier may be nil
func NewFriendService(users UserStore, friends FriendStore, notifier Notifier) *FriendService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &FriendService{
		users:    users,
		friends:  friends,
		notifier: notifier,
	}
}

// Add records that username has friended friended
func (s *FriendService) Add(ctx context.Context, username, friended string) error {
	if username == friended {
		return apperror.BadRequest("You cannot friend yourself")
	}
	if err := ensureUser(ctx, s.users, username); err != nil {
		return err
	}
	if err := ensureUser(ctx, s.users, friended); err != nil {
		return err
	}

	if err := s.friends.Create(ctx, username, friended); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return apperror.BadRequest("%s is already friends with %s", username, friended)
		case errors.Is(err, repository.ErrMissingReference):
			return apperror.NotFound("No user: %s", friended)
		default:
			return apperror.Wrap(err, "failed to add friend")
		}
	}

	s.notifier.Notify(ctx, []string{friended}, Event{Type: EventFriendAdded, From: username})
	return nil
}

// List returns the usernames username has friended
func (s *FriendService) List(ctx context.Context, username string) ([]string, error) {
	if err := ensureUser(ctx, s.users, username); err != nil {
		return nil, err
	}
	friends, err := s.friends.ListFriended(ctx, username)
	if err != nil {
		return nil, apperror.Wrap(err, "failed to list friends")
	}
	return friends, nil
}

// Remove deletes the friendship edge from username to friended
func (s *FriendService) Remove(ctx context.Context, username, friended string) error {
	err := s.friends.Delete(ctx, username, friended)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound("No friendship between %s and %s found.", username, friended)
	}
	if err != nil {
		return apperror.Wrap(err, "failed to remove friend")
	}
	return nil
}
