package services

import (
	"context"
	"errors"

	"playdate-buddy-backend/internal/apperror"
	"playdate-buddy-backend/internal/models"
	"playdate-buddy-backend/internal/places"
	"playdate-buddy-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// PlaceResolver turns search queries and provider ids into stored places,
// calling the external provider only for places the store does not know.
type PlaceResolver struct {
	places PlaceStore
	lookup PlaceLookup
	cache  QueryCache
}

// NewPlaceResolver creates a new place resolver; cache may be nil
func NewPlaceResolver(places PlaceStore, lookup PlaceLookup, cache QueryCache) *PlaceResolver {
	return &PlaceResolver{
		places: places,
		lookup: lookup,
		cache:  cache,
	}
}

// Resolve returns the best match for a free-text query
func (r *PlaceResolver) Resolve(ctx context.Context, q SearchQuery) (*models.Place, error) {
	query := q.String()

	if place := r.fromCache(ctx, query); place != nil {
		return place, nil
	}

	found, err := r.lookup.FindFromText(ctx, query)
	if errors.Is(err, places.ErrNoResults) {
		return nil, apperror.NotFound("No search results found for %s", q.Label())
	}
	if err != nil {
		return nil, apperror.Wrap(err, "failed to look up place")
	}

	place, err := r.store(ctx, found)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, query, place.ID); err != nil {
			log.Warn().Err(err).Str("query", query).Msg("Failed to cache place query")
		}
	}
	return place, nil
}

// ResolveByID returns the place with the given provider id, fetching it on first use
func (r *PlaceResolver) ResolveByID(ctx context.Context, id string) (*models.Place, error) {
	place, err := r.places.GetByID(ctx, id)
	if err == nil {
		return place, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Wrap(err, "failed to get place")
	}

	found, err := r.lookup.Details(ctx, id)
	if errors.Is(err, places.ErrNoResults) {
		return nil, apperror.NotFound("No search results found for %s", id)
	}
	if err != nil {
		return nil, apperror.Wrap(err, "failed to look up place details")
	}
	return r.store(ctx, found)
}

func (r *PlaceResolver) fromCache(ctx context.Context, query string) *models.Place {
	if r.cache == nil {
		return nil
	}
	id, ok, err := r.cache.Get(ctx, query)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("Place query cache unavailable")
		return nil
	}
	if !ok {
		return nil
	}
	place, err := r.places.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Warn().Err(err).Str("place_id", id).Msg("Failed to load cached place")
		}
		return nil
	}
	return place
}

// store upserts the provider's place and returns the stored record
func (r *PlaceResolver) store(ctx context.Context, found *places.Place) (*models.Place, error) {
	place, err := r.places.Upsert(ctx, &models.Place{
		ID:      found.PlaceID,
		Name:    found.Name,
		Address: found.FormattedAddress,
		Lat:     found.Lat,
		Lng:     found.Lng,
		Type:    found.Type(),
	})
	if err != nil {
		return nil, apperror.Wrap(err, "failed to store place")
	}
	return place, nil
}
