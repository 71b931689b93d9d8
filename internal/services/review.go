package services

import (
	"context"
	"errors"

	"playdate-buddy-backend/internal/apperror"
	"playdate-buddy-backend/internal/models"
	"playdate-buddy-backend/internal/repository"

	"github.com/google/uuid"
)

// ReviewService handles place reviews; a user reviews a place at most once
type ReviewService struct {
	users   UserStore
	places  PlaceStore
	reviews ReviewStore
}

// NewReviewService creates a new review service
func NewReviewService(users UserStore, places PlaceStore, reviews ReviewStore) *ReviewService {
	return &ReviewService{
		users:   users,
		places:  places,
		reviews: reviews,
	}
}

// Leave records username's review of a stored place
func (s *ReviewService) Leave(ctx context.Context, username, placeID string, req ReviewRequest) error {
	if err := ensureUser(ctx, s.users, username); err != nil {
		return err
	}
	exists, err := s.places.Exists(ctx, placeID)
	if err != nil {
		return apperror.Wrap(err, "failed to check place")
	}
	if !exists {
		return apperror.NotFound("No place: %s", placeID)
	}

	review := &models.Review{
		ID:       uuid.New(),
		Username: username,
		PlaceID:  placeID,
		Amenities: models.Amenities{
			Bathroom:      req.Bathroom,
			ChangingTable: req.ChangingTable,
			Highchair:     req.Highchair,
			Parking:       req.Parking,
		},
		OtherNotes: req.OtherNotes,
		Stars:      req.Stars,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return apperror.BadRequest("%s has already reviewed place: %s", username, placeID)
		case errors.Is(err, repository.ErrMissingReference):
			return apperror.NotFound("No place: %s", placeID)
		default:
			return apperror.Wrap(err, "failed to leave review")
		}
	}
	return nil
}

// Remove deletes username's review of a place
func (s *ReviewService) Remove(ctx context.Context, username, placeID string) error {
	err := s.reviews.Delete(ctx, username, placeID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound("No review found by user: %s for place: %s", username, placeID)
	}
	if err != nil {
		return apperror.Wrap(err, "failed to remove review")
	}
	return nil
}
