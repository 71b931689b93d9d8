package services

import (
	"context"
	"errors"
	"time"

	"playdate-buddy-backend/internal/apperror"
	"playdate-buddy-backend/internal/models"
	"playdate-buddy-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// UserService handles user-related business logic
type UserService struct {
	users      UserStore
	children   ChildStore
	geocoder   Geocoder
	bcryptCost int
	now        func() time.Time
}

// NewUserService creates a new user service
func NewUserService(users UserStore, children ChildStore, geocoder Geocoder, bcryptCost int) *UserService {
	return &UserService{
		users:      users,
		children:   children,
		geocoder:   geocoder,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// FindUsers lists users, optionally only those with a child matching the filter
func (s *UserService) FindUsers(ctx context.Context, filter models.UserFilter) ([]models.UserSummary, error) {
	if filter.MinAge != nil && filter.MaxAge != nil && *filter.MinAge > *filter.MaxAge {
		return nil, apperror.BadRequest("minAge cannot be greater than maxAge")
	}
	filter.Today = s.now()
	users, err := s.users.Search(ctx, filter)
	if err != nil {
		return nil, apperror.Wrap(err, "failed to search users")
	}
	return users, nil
}

// Get returns a user's profile with their children's ages
func (s *UserService) Get(ctx context.Context, username string) (*models.Profile, error) {
	user, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, user)
}

// Update applies a partial update. A new city or country re-geocodes the user
// and a new password is re-hashed.
func (s *UserService) Update(ctx context.Context, username string, req UpdateUserRequest) (*models.Profile, error) {
	if req.IsEmpty() {
		return nil, apperror.BadRequest("No data to update")
	}

	current, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}

	upd := models.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		City:      req.City,
		Country:   req.Country,
		Avatar:    req.Avatar,
	}

	if req.Password != nil {
		hashed, err := hashPassword(*req.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		upd.Password = &hashed
	}

	if req.City != nil || req.Country != nil {
		q := SearchQuery{City: current.City, Country: current.Country}
		if req.City != nil {
			q.City = *req.City
		}
		if req.Country != nil {
			q.Country = *req.Country
		}
		location, err := s.geocoder.Resolve(ctx, q)
		if err != nil {
			return nil, err
		}
		upd.Lat = &location.Lat
		upd.Lng = &location.Lng
	}

	user, err := s.users.Update(ctx, username, upd)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("No user: %s", username)
	}
	if err != nil {
		return nil, apperror.Wrap(err, "failed to update user")
	}
	return s.profile(ctx, user)
}

// Remove deletes a user and everything they own
func (s *UserService) Remove(ctx context.Context, username string) error {
	err := s.users.Delete(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound("No user: %s", username)
	}
	if err != nil {
		return apperror.Wrap(err, "failed to delete user")
	}
	log.Info().Str("username", username).Msg("User deleted")
	return nil
}

// AddChild adds a child to a user and returns all of the user's children
func (s *UserService) AddChild(ctx context.Context, username string, req AddChildRequest) ([]models.ChildView, error) {
	dob, err := time.Parse(models.DOBLayout, req.DOB)
	if err != nil {
		return nil, apperror.BadRequest("Invalid date of birth: %s", req.DOB)
	}
	if dob.After(s.now()) {
		return nil, apperror.BadRequest("Date of birth cannot be in the future")
	}

	if err := ensureUser(ctx, s.users, username); err != nil {
		return nil, err
	}

	child := &models.Child{
		ID:             uuid.New(),
		ParentUsername: username,
		DOB:            dob,
		Gender:         req.Gender,
	}
	if err := s.children.Create(ctx, child); err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, apperror.NotFound("No user: %s", username)
		}
		return nil, apperror.Wrap(err, "failed to add child")
	}

	children, err := s.children.ListByParent(ctx, username)
	if err != nil {
		return nil, apperror.Wrap(err, "failed to list children")
	}
	return models.ChildViews(children, s.now()), nil
}

// SetPushToken stores or clears the device token used for push notifications
func (s *UserService) SetPushToken(ctx context.Context, username string, token *string) error {
	err := s.users.UpdatePushToken(ctx, username, token)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound("No user: %s", username)
	}
	if err != nil {
		return apperror.Wrap(err, "failed to update push token")
	}
	return nil
}

func (s *UserService) load(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("No user: %s", username)
	}
	if err != nil {
		return nil, apperror.Wrap(err, "failed to get user")
	}
	return user, nil
}

func (s *UserService) profile(ctx context.Context, user *models.User) (*models.Profile, error) {
	children, err := s.children.ListByParent(ctx, user.Username)
	if err != nil {
		return nil, apperror.Wrap(err, "failed to list children")
	}
	return models.NewProfile(user, children, s.now()), nil
}

// ensureUser fails with NotFound unless username exists
func ensureUser(ctx context.Context, users UserStore, username string) error {
	exists, err := users.Exists(ctx, username)
	if err != nil {
		return apperror.Wrap(err, "failed to check user")
	}
	if !exists {
		return apperror.NotFound("No user: %s", username)
	}
	return nil
}
