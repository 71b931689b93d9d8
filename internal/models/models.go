package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered parent
type User struct {
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	FirstName string    `json:"firstname"`
	LastName  string    `json:"lastname"`
	Email     string    `json:"email"`
	City      string    `json:"city"`
	Country   string    `json:"country"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Avatar    string    `json:"avatar"`
	ChatToken string    `json:"-"`
	PushToken *string   `json:"-"`
	CreatedAt time.Time `json:"-"`
}

// Child represents a child belonging to a user
type Child struct {
	ID             uuid.UUID `json:"-"`
	ParentUsername string    `json:"-"`
	DOB            time.Time `json:"dob"`
	Gender         string    `json:"gender"`
}

// Place is a point of interest keyed by the external provider's identifier
type Place struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Type    string  `json:"type"`
}

// Amenities are the structured flags a review reports for a place
type Amenities struct {
	Bathroom      bool `json:"bathroom"`
	ChangingTable bool `json:"changingTable"`
	Highchair     bool `json:"highchair"`
	Parking       bool `json:"parking"`
}

// Review represents a user's review of a place
type Review struct {
	ID         uuid.UUID
	Username   string
	PlaceID    string
	Amenities  Amenities
	OtherNotes string
	Stars      int
	Timestamp  time.Time
}

// Date represents a scheduled meetup of one user at a place
type Date struct {
	Username  string
	PlaceID   string
	PlaceName string
	When      time.Time
}

// ChildView is the public projection of a child
type ChildView struct {
	Age    string `json:"age"`
	Gender string `json:"gender"`
}

// Profile is the public projection of a user
type Profile struct {
	Username  string      `json:"username"`
	FirstName string      `json:"firstname"`
	LastName  string      `json:"lastname"`
	Email     string      `json:"email"`
	City      string      `json:"city"`
	Country   string      `json:"country"`
	Lat       float64     `json:"lat"`
	Lng       float64     `json:"lng"`
	Avatar    string      `json:"avatar"`
	Children  []ChildView `json:"children"`
}

// UserSummary is the projection returned by user searches
type UserSummary struct {
	Username  string `json:"username"`
	FirstName string `json:"firstname"`
	Avatar    string `json:"avatar"`
}

// ReviewContent groups the free-form parts of a review view
type ReviewContent struct {
	Amenities
	OtherNotes string `json:"otherNotes"`
}

// ReviewView is the public projection of a review
type ReviewView struct {
	ID      uuid.UUID     `json:"id"`
	User    string        `json:"user"`
	Content ReviewContent `json:"content"`
	Stars   int           `json:"stars"`
	Date    string        `json:"date"`
}

// PlaceDetail is a place with its reviews
type PlaceDetail struct {
	Place
	Reviews []ReviewView `json:"reviews"`
}

// ScheduledDate is returned after scheduling a date
type ScheduledDate struct {
	Who   string `json:"who"`
	Where string `json:"where"`
	When  string `json:"when"`
}

// UserDate is one entry of a user's upcoming dates
type UserDate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"`
}

// PlaceDate is one entry of a place's upcoming dates
type PlaceDate struct {
	Username string `json:"username"`
	Place    string `json:"place"`
	Date     string `json:"date"`
}

// Attendee is another user scheduled for the same date
type Attendee struct {
	Username string `json:"username"`
}

// DateDetail describes a date and who else attends it
type DateDetail struct {
	Where string     `json:"where"`
	When  string     `json:"when"`
	With  []Attendee `json:"with,omitempty"`
}

// UserFilter narrows a user search by their children
type UserFilter struct {
	MinAge *int
	MaxAge *int
	Gender string
	// Today is the date ages are measured on
	Today time.Time
}

// IsEmpty reports whether no filter field is set
func (f UserFilter) IsEmpty() bool {
	return f.MinAge == nil && f.MaxAge == nil && f.Gender == ""
}

// UserUpdate is a sparse set of user columns to change
type UserUpdate struct {
	Password  *string
	FirstName *string
	LastName  *string
	Email     *string
	City      *string
	Country   *string
	Lat       *float64
	Lng       *float64
	Avatar    *string
}
