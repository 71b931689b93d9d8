package services

import (
	"context"
	"testing"

	"playdate-buddy-backend/internal/apperror"
	"playdate-buddy-backend/internal/models"
	"playdate-buddy-backend/internal/services/servicetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const parkID = "park-1"

func newDateFixture(t *testing.T) (*DateService, *fakeNotifier) {
	t.Helper()
	ctx := context.Background()

	users := servicetest.NewUsers()
	for _, name := range []string{"u1", "u2", "u3"} {
		require.NoError(t, users.Create(ctx, &models.User{Username: name}))
	}
	store := servicetest.NewPlaces()
	_, err := store.Upsert(ctx, &models.Place{ID: parkID, Name: "Central Park"})
	require.NoError(t, err)

	notifier := &fakeNotifier{}
	return NewDateService(users, store, &servicetest.Dates{}, notifier), notifier
}

func TestDateService_Schedule(t *testing.T) {
	svc, _ := newDateFixture(t)

	scheduled, err := svc.Schedule(context.Background(), "u1", parkID, DateRequest{Timestamp: "2030-06-01T10:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, &models.ScheduledDate{Who: "u1", Where: "Central Park", When: "2030-06-01 10:00:00"}, scheduled)
}

func TestDateService_ScheduleErrors(t *testing.T) {
	svc, _ := newDateFixture(t)
	ctx := context.Background()
	req := DateRequest{Timestamp: "2030-06-01 10:00:00"}

	_, err := svc.Schedule(ctx, "u1", parkID, DateRequest{Timestamp: "soon"})
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))

	_, err = svc.Schedule(ctx, "ghost", parkID, req)
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.Schedule(ctx, "u1", "nowhere", req)
	require.Error(t, err)
	assert.Equal(t, "No place: nowhere", err.Error())

	_, err = svc.Schedule(ctx, "u1", parkID, req)
	require.NoError(t, err)
	_, err = svc.Schedule(ctx, "u1", parkID, req)
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))
}

func TestDateService_GetListsOtherAttendees(t *testing.T) {
	svc, notifier := newDateFixture(t)
	ctx := context.Background()
	req := DateRequest{Timestamp: "2030-06-01T10:00:00Z"}

	_, err := svc.Schedule(ctx, "u1", parkID, req)
	require.NoError(t, err)
	assert.Empty(t, notifier.sent)

	// same instant written differently
	_, err = svc.Schedule(ctx, "u2", parkID, DateRequest{Timestamp: "2030-06-01 10:00:00"})
	require.NoError(t, err)

	detail, err := svc.Get(ctx, "u1", parkID, req.Timestamp)
	require.NoError(t, err)
	assert.Equal(t, "Central Park", detail.Where)
	assert.Equal(t, "2030-06-01 10:00:00", detail.When)
	assert.Equal(t, []models.Attendee{{Username: "u2"}}, detail.With)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, []string{"u1"}, notifier.sent[0].usernames)
	assert.Equal(t, EventDateJoined, notifier.sent[0].event.Type)
	assert.Equal(t, "Central Park", notifier.sent[0].event.Place)
}

func TestDateService_GetAlone(t *testing.T) {
	svc, _ := newDateFixture(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, "u1", parkID, "2030-06-01 10:00:00")
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.Schedule(ctx, "u1", parkID, DateRequest{Timestamp: "2030-06-01 10:00:00"})
	require.NoError(t, err)

	detail, err := svc.Get(ctx, "u1", parkID, "2030-06-01 10:00:00")
	require.NoError(t, err)
	assert.Nil(t, detail.With)
}

func TestDateService_ListingsAndCancel(t *testing.T) {
	svc, _ := newDateFixture(t)
	ctx := context.Background()
	req := DateRequest{Timestamp: "2030-06-01 10:00:00"}

	_, err := svc.Schedule(ctx, "u1", parkID, req)
	require.NoError(t, err)
	_, err = svc.Schedule(ctx, "u3", parkID, req)
	require.NoError(t, err)

	mine, err := svc.ListForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []models.UserDate{{ID: parkID, Name: "Central Park", Date: "2030-06-01 10:00:00"}}, mine)

	none, err := svc.ListForUser(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, none)

	atPark, err := svc.ListForPlace(ctx, parkID)
	require.NoError(t, err)
	assert.Len(t, atPark, 2)

	_, err = svc.ListForPlace(ctx, "nowhere")
	assert.True(t, apperror.IsNotFound(err))

	cancelled, err := svc.Cancel(ctx, "u1", parkID, req)
	require.NoError(t, err)
	assert.Equal(t, "Date for u1 at park-1 at 2030-06-01 10:00:00", cancelled)

	_, err = svc.Cancel(ctx, "u1", parkID, req)
	assert.True(t, apperror.IsNotFound(err))
}
