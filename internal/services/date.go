package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"playdate-buddy-backend/internal/apperror"
	"playdate-buddy-backend/internal/models"
	"playdate-buddy-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// DateService handles scheduled playdates. Users attend the same date by
// scheduling the same place and timestamp.
type DateService struct {
	users    UserStore
	places   PlaceStore
	dates    DateStore
	notifier Notifier
}

// NewDateService creates a new date service; notifier may be nil
func NewDateService(users UserStore, places PlaceStore, dates DateStore, notifier Notifier) *DateService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &DateService{
		users:    users,
		places:   places,
		dates:    dates,
		notifier: notifier,
	}
}

// Schedule puts username at a place at the requested time
func (s *DateService) Schedule(ctx context.Context, username, placeID string, req DateRequest) (*models.ScheduledDate, error) {
	when, err := parseTimestamp(req.Timestamp)
	if err != nil {
		return nil, err
	}
	if err := ensureUser(ctx, s.users, username); err != nil {
		return nil, err
	}
	place, err := getPlace(ctx, s.places, placeID)
	if err != nil {
		return nil, err
	}

	date := &models.Date{Username: username, PlaceID: placeID, PlaceName: place.Name, When: when}
	if err := s.dates.Create(ctx, date); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperror.BadRequest("Date for %s at %s at %s already exists.", username, place.Name, models.FormatTimestamp(when))
		case errors.Is(err, repository.ErrMissingReference):
			return nil, apperror.NotFound("No place: %s", placeID)
		default:
			return nil, apperror.Wrap(err, "failed to schedule date")
		}
	}

	s.notifyAttendees(ctx, date)

	return &models.ScheduledDate{
		Who:   username,
		Where: place.Name,
		When:  models.FormatTimestamp(when),
	}, nil
}

// ListForUser returns a user's dates from today onwards
func (s *DateService) ListForUser(ctx context.Context, username string) ([]models.UserDate, error) {
	if err := ensureUser(ctx, s.users, username); err != nil {
		return nil, err
	}
	dates, err := s.dates.ListUpcomingByUser(ctx, username)
	if err != nil {
		return nil, apperror.Wrap(err, "failed to list dates")
	}

	out := make([]models.UserDate, 0, len(dates))
	for _, d := range dates {
		out = append(out, models.UserDate{ID: d.PlaceID, Name: d.PlaceName, Date: models.FormatTimestamp(d.When)})
	}
	return out, nil
}

// Get describes the date at a place and time and who else attends it
func (s *DateService) Get(ctx context.Context, username, placeID, timestamp string) (*models.DateDetail, error) {
	when, err := parseTimestamp(timestamp)
	if err != nil {
		return nil, err
	}
	place, err := getPlace(ctx, s.places, placeID)
	if err != nil {
		return nil, err
	}

	attendees, err := s.dates.ListAttendees(ctx, placeID, when)
	if err != nil {
		return nil, apperror.Wrap(err, "failed to list attendees")
	}
	if len(attendees) == 0 {
		return nil, apperror.NotFound("No date found for user: %s, at place: %s at %s", username, place.Name, models.FormatTimestamp(when))
	}

	detail := &models.DateDetail{Where: place.Name, When: models.FormatTimestamp(when)}
	for _, a := range attendees {
		if a != username {
			detail.With = append(detail.With, models.Attendee{Username: a})
		}
	}
	return detail, nil
}

// ListForPlace returns a place's dates from today onwards
func (s *DateService) ListForPlace(ctx context.Context, placeID string) ([]models.PlaceDate, error) {
	if _, err := getPlace(ctx, s.places, placeID); err != nil {
		return nil, err
	}
	dates, err := s.dates.ListUpcomingByPlace(ctx, placeID)
	if err != nil {
		return nil, apperror.Wrap(err, "failed to list dates")
	}

	out := make([]models.PlaceDate, 0, len(dates))
	for _, d := range dates {
		out = append(out, models.PlaceDate{Username: d.Username, Place: d.PlaceName, Date: models.FormatTimestamp(d.When)})
	}
	return out, nil
}

// Cancel removes username's date and returns a description of it
func (s *DateService) Cancel(ctx context.Context, username, placeID string, req DateRequest) (string, error) {
	when, err := parseTimestamp(req.Timestamp)
	if err != nil {
		return "", err
	}

	err = s.dates.Delete(ctx, &models.Date{Username: username, PlaceID: placeID, When: when})
	if errors.Is(err, repository.ErrNotFound) {
		return "", apperror.NotFound("No date found for user: %s at place: %s at %s", username, placeID, models.FormatTimestamp(when))
	}
	if err != nil {
		return "", apperror.Wrap(err, "failed to cancel date")
	}
	return fmt.Sprintf("Date for %s at %s at %s", username, placeID, models.FormatTimestamp(when)), nil
}

func (s *DateService) notifyAttendees(ctx context.Context, date *models.Date) {
	attendees, err := s.dates.ListAttendees(ctx, date.PlaceID, date.When)
	if err != nil {
		log.Warn().Err(err).Str("place_id", date.PlaceID).Msg("Failed to list attendees for notification")
		return
	}
	others := make([]string, 0, len(attendees))
	for _, a := range attendees {
		if a != date.Username {
			others = append(others, a)
		}
	}
	if len(others) == 0 {
		return
	}
	s.notifier.Notify(ctx, others, Event{
		Type:    EventDateJoined,
		From:    date.Username,
		PlaceID: date.PlaceID,
		Place:   date.PlaceName,
		When:    models.FormatTimestamp(date.When),
	})
}

func parseTimestamp(raw string) (time.Time, error) {
	when, err := models.ParseTimestamp(raw)
	if err != nil {
		return time.Time{}, apperror.BadRequest("Invalid timestamp: %s", raw)
	}
	return when, nil
}
