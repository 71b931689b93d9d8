package services

import "strings"

// LoginRequest represents a request for a token
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=25"`
	Password string `json:"password" validate:"required,min=1"`
}

// RegisterRequest represents a request to create an account
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=1,max=25"`
	Password  string `json:"password" validate:"required,min=5,max=72"`
	FirstName string `json:"firstname" validate:"required,min=1,max=30"`
	LastName  string `json:"lastname" validate:"required,min=1,max=30"`
	Email     string `json:"email" validate:"required,email,max=60"`
	City      string `json:"city" validate:"required,min=1,max=60"`
	Country   string `json:"country" validate:"required,min=1,max=60"`
	Avatar    string `json:"avatar" validate:"omitempty,url"`
}

// UpdateUserRequest represents a partial user update; absent fields are left unchanged
type UpdateUserRequest struct {
	Password  *string `json:"password" validate:"omitempty,min=5,max=72"`
	FirstName *string `json:"firstname" validate:"omitempty,min=1,max=30"`
	LastName  *string `json:"lastname" validate:"omitempty,min=1,max=30"`
	Email     *string `json:"email" validate:"omitempty,email,max=60"`
	City      *string `json:"city" validate:"omitempty,min=1,max=60"`
	Country   *string `json:"country" validate:"omitempty,min=1,max=60"`
	Avatar    *string `json:"avatar" validate:"omitempty,url"`
}

// IsEmpty reports whether the request changes nothing
func (r UpdateUserRequest) IsEmpty() bool {
	return r.Password == nil && r.FirstName == nil && r.LastName == nil && r.Email == nil &&
		r.City == nil && r.Country == nil && r.Avatar == nil
}

// AddChildRequest represents a request to add a child
type AddChildRequest struct {
	DOB    string `json:"dob" validate:"required,datetime=2006-01-02"`
	Gender string `json:"gender" validate:"required,min=1,max=20"`
}

// SearchQuery is a free-text place search, optionally narrowed by city and country
type SearchQuery struct {
	SearchName string `json:"searchName" validate:"required_without_all=City Country,max=200"`
	City       string `json:"city" validate:"max=60"`
	Country    string `json:"country" validate:"max=60"`
}

// String composes the query sent to the place provider
func (q SearchQuery) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{q.SearchName, q.City, q.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Label names the query in error messages
func (q SearchQuery) Label() string {
	if name := strings.TrimSpace(q.SearchName); name != "" {
		return name
	}
	return q.String()
}

// ReviewRequest represents a request to review a place
type ReviewRequest struct {
	Bathroom      bool   `json:"bathroom"`
	ChangingTable bool   `json:"changingTable"`
	Highchair     bool   `json:"highchair"`
	Parking       bool   `json:"parking"`
	OtherNotes    string `json:"otherNotes" validate:"max=1000"`
	Stars         int    `json:"stars" validate:"required,min=1,max=5"`
}

// DateRequest identifies a date by its timestamp
type DateRequest struct {
	Timestamp string `json:"timestamp" validate:"required"`
}

// PushTokenRequest sets or clears the device token used for push notifications
type PushTokenRequest struct {
	PushToken *string `json:"push_token" validate:"omitempty,min=1,max=200"`
}

// AvatarUploadRequest represents a request for a pre-signed avatar upload URL
type AvatarUploadRequest struct {
	ContentType string `json:"content_type" validate:"required,oneof=image/jpeg image/png image/webp"`
}

// AvatarConfirmRequest confirms an uploaded avatar
type AvatarConfirmRequest struct {
	AvatarURL string `json:"avatar_url" validate:"required,url"`
}
