package services

import (
	"context"
	"testing"
	"time"

	"playdate-buddy-backend/internal/apperror"
	"playdate-buddy-backend/internal/models"
	"playdate-buddy-backend/internal/services/servicetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type placeFixture struct {
	svc     *PlaceService
	reviews *ReviewService
	users   *servicetest.Users
	places  *servicetest.Places
	lookup  *servicetest.Lookup
}

func newPlaceFixture(t *testing.T) *placeFixture {
	t.Helper()

	users := servicetest.NewUsers()
	store := servicetest.NewPlaces()
	reviewStore := &servicetest.Reviews{}
	lookup := servicetest.NewLookup()
	lookup.ByID[servicetest.Toronto().PlaceID] = servicetest.Toronto()
	lookup.ByText["splash pad Toronto"] = servicetest.Toronto()
	resolver := NewPlaceResolver(store, lookup, nil)

	for _, name := range []string{"u1", "u2"} {
		require.NoError(t, users.Create(context.Background(), &models.User{Username: name}))
	}

	return &placeFixture{
		svc:     NewPlaceService(users, store, reviewStore, resolver),
		reviews: NewReviewService(users, store, reviewStore),
		users:   users,
		places:  store,
		lookup:  lookup,
	}
}

func TestPlaceService_Search(t *testing.T) {
	f := newPlaceFixture(t)

	place, err := f.svc.Search(context.Background(), SearchQuery{SearchName: "splash pad", City: "Toronto"})
	require.NoError(t, err)
	assert.Equal(t, servicetest.Toronto().PlaceID, place.ID)

	_, err = f.svc.Search(context.Background(), SearchQuery{SearchName: "X"})
	require.Error(t, err)
	assert.Equal(t, "No search results found for X", err.Error())
}

func TestPlaceService_SaveTwiceKeepsOneRow(t *testing.T) {
	f := newPlaceFixture(t)
	ctx := context.Background()
	id := servicetest.Toronto().PlaceID

	require.NoError(t, f.svc.Save(ctx, "u1", id))

	err := f.svc.Save(ctx, "u1", id)
	require.Error(t, err)
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))
	assert.Equal(t, "This place is already saved for u1.", err.Error())
	assert.Equal(t, 1, f.places.SavedCount("u1", id))

	saved, err := f.svc.ListSaved(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "Toronto", saved[0].Name)
}

func TestPlaceService_SaveErrors(t *testing.T) {
	f := newPlaceFixture(t)
	ctx := context.Background()

	assert.True(t, apperror.IsNotFound(f.svc.Save(ctx, "ghost", servicetest.Toronto().PlaceID)))
	assert.True(t, apperror.IsNotFound(f.svc.Save(ctx, "u1", "missing")))
}

func TestPlaceService_ListSavedEmpty(t *testing.T) {
	f := newPlaceFixture(t)

	saved, err := f.svc.ListSaved(context.Background(), "u2")
	require.NoError(t, err)
	assert.Empty(t, saved)
	assert.NotNil(t, saved)

	_, err = f.svc.ListSaved(context.Background(), "ghost")
	assert.True(t, apperror.IsNotFound(err))
}

func TestPlaceService_Unsave(t *testing.T) {
	f := newPlaceFixture(t)
	ctx := context.Background()
	id := servicetest.Toronto().PlaceID

	require.NoError(t, f.svc.Save(ctx, "u1", id))
	require.NoError(t, f.svc.Unsave(ctx, "u1", id))

	err := f.svc.Unsave(ctx, "u1", id)
	require.Error(t, err)
	assert.Equal(t, "No saved place: "+id+" for user: u1", err.Error())
}

func TestPlaceService_GetWithReviews(t *testing.T) {
	f := newPlaceFixture(t)
	ctx := context.Background()
	id := servicetest.Toronto().PlaceID

	_, err := f.svc.Get(ctx, id)
	assert.True(t, apperror.IsNotFound(err))

	require.NoError(t, f.svc.Save(ctx, "u1", id))
	require.NoError(t, f.reviews.Leave(ctx, "u1", id, ReviewRequest{Bathroom: true, Parking: true, OtherNotes: "shady", Stars: 4}))

	detail, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Toronto", detail.Name)
	require.Len(t, detail.Reviews, 1)

	review := detail.Reviews[0]
	assert.Equal(t, "u1", review.User)
	assert.Equal(t, 4, review.Stars)
	assert.True(t, review.Content.Bathroom)
	assert.False(t, review.Content.Highchair)
	assert.Equal(t, "shady", review.Content.OtherNotes)
	assert.Equal(t, models.FormatReviewDate(f.reviewTime(t, id)), review.Date)
}

func (f *placeFixture) reviewTime(t *testing.T, placeID string) time.Time {
	t.Helper()
	reviews, err := f.reviews.reviews.ListByPlace(context.Background(), placeID)
	require.NoError(t, err)
	require.NotEmpty(t, reviews)
	return reviews[0].Timestamp
}

func TestReviewService(t *testing.T) {
	f := newPlaceFixture(t)
	ctx := context.Background()
	id := servicetest.Toronto().PlaceID

	err := f.reviews.Leave(ctx, "u1", id, ReviewRequest{Stars: 3})
	assert.Equal(t, "No place: "+id, err.Error())

	_, err = f.svc.Search(ctx, SearchQuery{SearchName: "splash pad", City: "Toronto"})
	require.NoError(t, err)

	require.NoError(t, f.reviews.Leave(ctx, "u1", id, ReviewRequest{Stars: 3}))
	err = f.reviews.Leave(ctx, "u1", id, ReviewRequest{Stars: 5})
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))

	err = f.reviews.Leave(ctx, "ghost", id, ReviewRequest{Stars: 5})
	assert.True(t, apperror.IsNotFound(err))

	require.NoError(t, f.reviews.Remove(ctx, "u1", id))
	err = f.reviews.Remove(ctx, "u1", id)
	require.Error(t, err)
	assert.Equal(t, "No review found by user: u1 for place: "+id, err.Error())
}
