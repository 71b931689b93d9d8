// Package servicetest provides in-memory stores and provider stubs that
// satisfy the service interfaces, for tests of the services and the HTTP layer.
package servicetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"playdate-buddy-backend/internal/models"
	"playdate-buddy-backend/internal/places"
	"playdate-buddy-backend/internal/repository"
)

// Users is an in-memory user store
type Users struct {
	mu       sync.Mutex
	users    map[string]models.User
	children *Children
}

// NewUsers creates an empty user store
func NewUsers() *Users {
	return &Users{users: make(map[string]models.User)}
}

// WithChildren lets Search filter on the given children
func (f *Users) WithChildren(children *Children) *Users {
	f.children = children
	return f
}

func (f *Users) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.Username]; ok {
		return repository.ErrDuplicate
	}
	user.CreatedAt = time.Now()
	f.users[user.Username] = *user
	return nil
}

func (f *Users) GetByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (f *Users) Exists(_ context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[username]
	return ok, nil
}

func (f *Users) Search(ctx context.Context, filter models.UserFilter) ([]models.UserSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.UserSummary, 0, len(f.users))
	for _, u := range f.users {
		if !filter.IsEmpty() && !f.hasMatchingChild(ctx, u.Username, filter) {
			continue
		}
		out = append(out, models.UserSummary{Username: u.Username, FirstName: u.FirstName, Avatar: u.Avatar})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (f *Users) hasMatchingChild(ctx context.Context, username string, filter models.UserFilter) bool {
	if f.children == nil {
		return false
	}
	children, _ := f.children.ListByParent(ctx, username)
	today := filter.Today
	if today.IsZero() {
		today = time.Now()
	}
	for _, c := range children {
		age := models.AgeYears(c.DOB, today)
		if filter.MinAge != nil && age < *filter.MinAge {
			continue
		}
		if filter.MaxAge != nil && age > *filter.MaxAge {
			continue
		}
		if filter.Gender != "" && c.Gender != filter.Gender {
			continue
		}
		return true
	}
	return false
}

func (f *Users) Update(_ context.Context, username string, upd models.UserUpdate) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&u.Password, upd.Password)
	set(&u.FirstName, upd.FirstName)
	set(&u.LastName, upd.LastName)
	set(&u.Email, upd.Email)
	set(&u.City, upd.City)
	set(&u.Country, upd.Country)
	set(&u.Avatar, upd.Avatar)
	if upd.Lat != nil {
		u.Lat = *upd.Lat
	}
	if upd.Lng != nil {
		u.Lng = *upd.Lng
	}
	f.users[username] = u
	return &u, nil
}

func (f *Users) Delete(_ context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[username]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, username)
	return nil
}

func (f *Users) UpdatePushToken(_ context.Context, username string, pushToken *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return repository.ErrNotFound
	}
	u.PushToken = pushToken
	f.users[username] = u
	return nil
}

func (f *Users) GetPushTokens(_ context.Context, usernames []string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string)
	for _, name := range usernames {
		if u, ok := f.users[name]; ok && u.PushToken != nil {
			out[name] = *u.PushToken
		}
	}
	return out, nil
}

// Children is an in-memory child store
type Children struct {
	mu       sync.Mutex
	children []models.Child
}

func (f *Children) Create(_ context.Context, child *models.Child) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.children = append(f.children, *child)
	return nil
}

func (f *Children) ListByParent(_ context.Context, username string) ([]models.Child, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Child{}
	for _, c := range f.children {
		if c.ParentUsername == username {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DOB.Before(out[j].DOB) })
	return out, nil
}

// Friends is an in-memory friendship store
type Friends struct {
	mu    sync.Mutex
	edges map[[2]string]bool
}

// NewFriends creates an empty friendship store
func NewFriends() *Friends {
	return &Friends{edges: make(map[[2]string]bool)}
}

func (f *Friends) Create(_ context.Context, friending, friended string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]string{friending, friended}
	if f.edges[key] {
		return repository.ErrDuplicate
	}
	f.edges[key] = true
	return nil
}

func (f *Friends) ListFriended(_ context.Context, username string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []string{}
	for key := range f.edges {
		if key[0] == username {
			out = append(out, key[1])
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *Friends) Delete(_ context.Context, friending, friended string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]string{friending, friended}
	if !f.edges[key] {
		return repository.ErrNotFound
	}
	delete(f.edges, key)
	return nil
}

// Places is an in-memory place and saved-place store
type Places struct {
	mu     sync.Mutex
	places map[string]models.Place
	saved  map[[2]string]bool
}

// NewPlaces creates an empty place store
func NewPlaces() *Places {
	return &Places{
		places: make(map[string]models.Place),
		saved:  make(map[[2]string]bool),
	}
}

func (f *Places) GetByID(_ context.Context, id string) (*models.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.places[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (f *Places) Upsert(_ context.Context, place *models.Place) (*models.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.places[place.ID]; !ok {
		f.places[place.ID] = *place
	}
	p := f.places[place.ID]
	return &p, nil
}

func (f *Places) Exists(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.places[id]
	return ok, nil
}

func (f *Places) Save(_ context.Context, username, placeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]string{username, placeID}
	if f.saved[key] {
		return repository.ErrDuplicate
	}
	f.saved[key] = true
	return nil
}

func (f *Places) ListSaved(_ context.Context, username string) ([]models.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Place{}
	for key := range f.saved {
		if key[0] == username {
			out = append(out, f.places[key[1]])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Places) Unsave(_ context.Context, username, placeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]string{username, placeID}
	if !f.saved[key] {
		return repository.ErrNotFound
	}
	delete(f.saved, key)
	return nil
}

// SavedCount returns how many saved rows exist for the pair
func (f *Places) SavedCount(username, placeID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saved[[2]string{username, placeID}] {
		return 1
	}
	return 0
}

// Reviews is an in-memory review store
type Reviews struct {
	mu      sync.Mutex
	reviews []models.Review
}

func (f *Reviews) Create(_ context.Context, review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reviews {
		if r.Username == review.Username && r.PlaceID == review.PlaceID {
			return repository.ErrDuplicate
		}
	}
	review.Timestamp = time.Now().UTC()
	f.reviews = append(f.reviews, *review)
	return nil
}

func (f *Reviews) ListByPlace(_ context.Context, placeID string) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Review{}
	for _, r := range f.reviews {
		if r.PlaceID == placeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *Reviews) Delete(_ context.Context, username, placeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.reviews {
		if r.Username == username && r.PlaceID == placeID {
			f.reviews = append(f.reviews[:i], f.reviews[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// Dates is an in-memory scheduled date store. Unlike the database it does not
// drop past dates from listings.
type Dates struct {
	mu    sync.Mutex
	dates []models.Date
}

func (f *Dates) Create(_ context.Context, date *models.Date) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.dates {
		if sameDate(d, *date) {
			return repository.ErrDuplicate
		}
	}
	f.dates = append(f.dates, *date)
	return nil
}

func (f *Dates) ListUpcomingByUser(_ context.Context, username string) ([]models.Date, error) {
	return f.filter(func(d models.Date) bool { return d.Username == username }), nil
}

func (f *Dates) ListUpcomingByPlace(_ context.Context, placeID string) ([]models.Date, error) {
	return f.filter(func(d models.Date) bool { return d.PlaceID == placeID }), nil
}

func (f *Dates) ListAttendees(_ context.Context, placeID string, when time.Time) ([]string, error) {
	out := []string{}
	for _, d := range f.filter(func(d models.Date) bool { return d.PlaceID == placeID && d.When.Equal(when) }) {
		out = append(out, d.Username)
	}
	sort.Strings(out)
	return out, nil
}

func (f *Dates) Delete(_ context.Context, date *models.Date) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, d := range f.dates {
		if sameDate(d, *date) {
			f.dates = append(f.dates[:i], f.dates[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *Dates) filter(keep func(models.Date) bool) []models.Date {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Date{}
	for _, d := range f.dates {
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].When.Before(out[j].When) })
	return out
}

func sameDate(a, b models.Date) bool {
	return a.Username == b.Username && a.PlaceID == b.PlaceID && a.When.Equal(b.When)
}

// Lookup answers place searches from fixed tables keyed by query text and by
// place id. Err, when set, fails every call.
type Lookup struct {
	mu          sync.Mutex
	ByText      map[string]*places.Place
	ByID        map[string]*places.Place
	Err         error
	TextCalls   int
	DetailCalls int
}

// NewLookup creates a lookup with empty tables
func NewLookup() *Lookup {
	return &Lookup{
		ByText: make(map[string]*places.Place),
		ByID:   make(map[string]*places.Place),
	}
}

// Add makes p findable by id and by each of the given queries
func (f *Lookup) Add(p *places.Place, queries ...string) *Lookup {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ByID[p.PlaceID] = p
	for _, q := range queries {
		f.ByText[q] = p
	}
	return f
}

// Fail makes every following call return err
func (f *Lookup) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Err = err
}

func (f *Lookup) FindFromText(_ context.Context, input string) (*places.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.TextCalls++
	if f.Err != nil {
		return nil, f.Err
	}
	p, ok := f.ByText[input]
	if !ok {
		return nil, places.ErrNoResults
	}
	return p, nil
}

func (f *Lookup) Details(_ context.Context, placeID string) (*places.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DetailCalls++
	if f.Err != nil {
		return nil, f.Err
	}
	p, ok := f.ByID[placeID]
	if !ok {
		return nil, places.ErrNoResults
	}
	return p, nil
}

// QueryCache is an in-memory place query cache
type QueryCache struct {
	Entries map[string]string
	Err     error
}

// NewQueryCache creates an empty cache
func NewQueryCache() *QueryCache {
	return &QueryCache{Entries: make(map[string]string)}
}

func (f *QueryCache) Get(_ context.Context, query string) (string, bool, error) {
	if f.Err != nil {
		return "", false, f.Err
	}
	id, ok := f.Entries[query]
	return id, ok, nil
}

func (f *QueryCache) Set(_ context.Context, query, placeID string) error {
	if f.Err != nil {
		return f.Err
	}
	f.Entries[query] = placeID
	return nil
}

// ChatTokens issues a fixed chat token, or fails with Err
type ChatTokens struct {
	Token string
	Err   error
}

func (f ChatTokens) IssueToken(context.Context, string) (string, error) {
	return f.Token, f.Err
}

// Ottawa is a locality as the place provider returns it
func Ottawa() *places.Place {
	return &places.Place{
		PlaceID:          "ChIJrxNRX7IFzkwRCR5iKVZC-HA",
		Name:             "Ottawa",
		FormattedAddress: "Ottawa, ON, Canada",
		Lat:              45.4215296,
		Lng:              -75.69719309999999,
		Types:            []string{"locality", "political"},
	}
}

// Toronto is a locality as the place provider returns it
func Toronto() *places.Place {
	return &places.Place{
		PlaceID:          "ChIJpTvG15DL1IkRd8S0KlBVNTI",
		Name:             "Toronto",
		FormattedAddress: "Toronto, ON, Canada",
		Lat:              43.653226,
		Lng:              -79.3831843,
		Types:            []string{"locality", "political"},
	}
}
