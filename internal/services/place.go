package services

import (
	"context"
	"errors"

	"playdate-buddy-backend/internal/apperror"
	"playdate-buddy-backend/internal/models"
	"playdate-buddy-backend/internal/repository"
)

// PlaceService handles place lookup and saved places
type PlaceService struct {
	users    UserStore
	places   PlaceStore
	reviews  ReviewStore
	resolver *PlaceResolver
}

// NewPlaceService creates a new place service
func NewPlaceService(users UserStore, places PlaceStore, reviews ReviewStore, resolver *PlaceResolver) *PlaceService {
	return &PlaceService{
		users:    users,
		places:   places,
		reviews:  reviews,
		resolver: resolver,
	}
}

// Search resolves a query to a place, storing it on first sight
func (s *PlaceService) Search(ctx context.Context, q SearchQuery) (*models.Place, error) {
	return s.resolver.Resolve(ctx, q)
}

// Get returns a stored place with its reviews
func (s *PlaceService) Get(ctx context.Context, id string) (*models.PlaceDetail, error) {
	place, err := getPlace(ctx, s.places, id)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListByPlace(ctx, id)
	if err != nil {
		return nil, apperror.Wrap(err, "failed to list reviews")
	}
	return &models.PlaceDetail{
		Place:   *place,
		Reviews: models.ReviewViews(reviews),
	}, nil
}

// Save bookmarks a place for a user, fetching the place if it is not stored yet
func (s *PlaceService) Save(ctx context.Context, username, id string) error {
	if err := ensureUser(ctx, s.users, username); err != nil {
		return err
	}
	if _, err := s.resolver.ResolveByID(ctx, id); err != nil {
		return err
	}

	if err := s.places.Save(ctx, username, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return apperror.BadRequest("This place is already saved for %s.", username)
		case errors.Is(err, repository.ErrMissingReference):
			return apperror.NotFound("No user: %s", username)
		default:
			return apperror.Wrap(err, "failed to save place")
		}
	}
	return nil
}

// ListSaved returns a user's saved places
func (s *PlaceService) ListSaved(ctx context.Context, username string) ([]models.Place, error) {
	if err := ensureUser(ctx, s.users, username); err != nil {
		return nil, err
	}
	saved, err := s.places.ListSaved(ctx, username)
	if err != nil {
		return nil, apperror.Wrap(err, "failed to list saved places")
	}
	return saved, nil
}

// Unsave removes a saved place
func (s *PlaceService) Unsave(ctx context.Context, username, id string) error {
	err := s.places.Unsave(ctx, username, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound("No saved place: %s for user: %s", id, username)
	}
	if err != nil {
		return apperror.Wrap(err, "failed to unsave place")
	}
	return nil
}

// getPlace loads a stored place, failing with NotFound when it is unknown
func getPlace(ctx context.Context, places PlaceStore, id string) (*models.Place, error) {
	place, err := places.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("No place: %s", id)
	}
	if err != nil {
		return nil, apperror.Wrap(err, "failed to get place")
	}
	return place, nil
}
