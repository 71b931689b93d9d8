package services

import (
	"context"
	"time"

	"playdate-buddy-backend/internal/models"
	"playdate-buddy-backend/internal/places"
)

// UserStore is the user persistence used by the services
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Exists(ctx context.Context, username string) (bool, error)
	Search(ctx context.Context, filter models.UserFilter) ([]models.UserSummary, error)
	Update(ctx context.Context, username string, upd models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, username string) error
	UpdatePushToken(ctx context.Context, username string, pushToken *string) error
	GetPushTokens(ctx context.Context, usernames []string) (map[string]string, error)
}

// ChildStore is the child persistence used by the services
type ChildStore interface {
	Create(ctx context.Context, child *models.Child) error
	ListByParent(ctx context.Context, username string) ([]models.Child, error)
}

// FriendStore is the friendship persistence used by the services
type FriendStore interface {
	Create(ctx context.Context, friending, friended string) error
	ListFriended(ctx context.Context, username string) ([]string, error)
	Delete(ctx context.Context, friending, friended string) error
}

// PlaceStore is the place and saved-place persistence used by the services
type PlaceStore interface {
	GetByID(ctx context.Context, id string) (*models.Place, error)
	Upsert(ctx context.Context, place *models.Place) (*models.Place, error)
	Exists(ctx context.Context, id string) (bool, error)
	Save(ctx context.Context, username, placeID string) error
	ListSaved(ctx context.Context, username string) ([]models.Place, error)
	Unsave(ctx context.Context, username, placeID string) error
}

// ReviewStore is the review persistence used by the services
type ReviewStore interface {
	Create(ctx context.Context, review *models.Review) error
	ListByPlace(ctx context.Context, placeID string) ([]models.Review, error)
	Delete(ctx context.Context, username, placeID string) error
}

// DateStore is the scheduled date persistence used by the services
type DateStore interface {
	Create(ctx context.Context, date *models.Date) error
	ListUpcomingByUser(ctx context.Context, username string) ([]models.Date, error)
	ListUpcomingByPlace(ctx context.Context, placeID string) ([]models.Date, error)
	ListAttendees(ctx context.Context, placeID string, when time.Time) ([]string, error)
	Delete(ctx context.Context, date *models.Date) error
}

// PlaceLookup is the external place provider
type PlaceLookup interface {
	FindFromText(ctx context.Context, input string) (*places.Place, error)
	Details(ctx context.Context, placeID string) (*places.Place, error)
}

// QueryCache remembers which place id a search query resolved to
type QueryCache interface {
	Get(ctx context.Context, query string) (string, bool, error)
	Set(ctx context.Context, query, placeID string) error
}

// ChatTokenIssuer exchanges a username for an external chat token
type ChatTokenIssuer interface {
	IssueToken(ctx context.Context, username string) (string, error)
}

// Geocoder resolves a free-text query to a stored place
type Geocoder interface {
	Resolve(ctx context.Context, q SearchQuery) (*models.Place, error)
}

// Notifier delivers events to users; delivery is best-effort
type Notifier interface {
	Notify(ctx context.Context, usernames []string, event Event)
}

// nopNotifier is used when notifications are not wired
type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, []string, Event) {}
