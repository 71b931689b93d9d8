package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// TimestampLayout is how date timestamps are rendered to clients.
const TimestampLayout = "2006-01-02 15:04:05"

// DOBLayout is the accepted date-of-birth format.
const DOBLayout = "2006-01-02"

var timestampLayouts = []string{
	time.RFC3339,
	TimestampLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ageMagnitudes label ages under 45 days
var ageMagnitudes = []humanize.RelTimeMagnitude{
	{D: humanize.Day, Format: "a few hours", DivBy: 1},
	{D: 2 * humanize.Day, Format: "a day", DivBy: 1},
	{D: 26 * humanize.Day, Format: "%d days", DivBy: humanize.Day},
	{D: time.Duration(math.MaxInt64), Format: "a month", DivBy: 1},
}

// AgeYears returns the whole calendar years between dob and now. Someone born
// on Feb 29 turns a year older on Mar 1 in common years.
func AgeYears(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if beforeAnniversary(dob, now) {
		years--
	}
	return years
}

// ageMonths returns the whole calendar months between dob and now
func ageMonths(dob, now time.Time) int {
	months := (now.Year()-dob.Year())*12 + int(now.Month()) - int(dob.Month())
	if now.Day() < dob.Day() {
		months--
	}
	return months
}

func beforeAnniversary(dob, now time.Time) bool {
	return now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day())
}

// AgeLabel renders the age of someone born on dob as of now, e.g. "3 years old".
func AgeLabel(dob, now time.Time) string {
	switch years := AgeYears(dob, now); {
	case years == 1:
		return "a year old"
	case years > 1:
		return fmt.Sprintf("%d years old", years)
	}
	if now.Sub(dob) >= 45*humanize.Day {
		return fmt.Sprintf("%d months old", ageMonths(dob, now))
	}
	return humanize.CustomRelTime(dob, now, "", "", ageMagnitudes) + " old"
}

// BornBetween turns the filter's age bounds into date-of-birth bounds as of
// today, agreeing with AgeYears: a child matches when after < dob <= onOrBefore.
// Nil means unbounded.
func (f UserFilter) BornBetween(today time.Time) (after, onOrBefore *time.Time) {
	if f.MinAge != nil {
		t := yearsBefore(today, *f.MinAge)
		onOrBefore = &t
	}
	if f.MaxAge != nil {
		t := yearsBefore(today, *f.MaxAge+1)
		after = &t
	}
	return after, onOrBefore
}

// yearsBefore returns the date n years before day, clamping Feb 29 to Feb 28
func yearsBefore(day time.Time, n int) time.Time {
	t := time.Date(day.Year()-n, day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	if t.Month() != day.Month() {
		t = time.Date(day.Year()-n, day.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	}
	return t
}

// ChildViews projects children to their public form.
func ChildViews(children []Child, now time.Time) []ChildView {
	views := make([]ChildView, 0, len(children))
	for _, c := range children {
		views = append(views, ChildView{Age: AgeLabel(c.DOB, now), Gender: c.Gender})
	}
	return views
}

// Coordinate coerces a stored NUMERIC value to a float.
func Coordinate(raw string) (float64, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid coordinate %q: %w", raw, err)
	}
	return d.InexactFloat64(), nil
}

// ParseTimestamp accepts the timestamp formats clients send for dates. A
// positive offset whose "+" was decoded to a space in a query string, as in
// "2024-06-01T12:30:00 02:00", is read as "+02:00".
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, ok := parseLayouts(raw); ok {
		return t, nil
	}
	if n := len(raw); n > 6 && raw[n-6] == ' ' && raw[n-3] == ':' {
		if t, ok := parseLayouts(raw[:n-6] + "+" + raw[n-5:]); ok {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
}

func parseLayouts(raw string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders a date timestamp.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// FormatReviewDate renders a review time, e.g. "Tuesday, May 7th 2024, 3:04:05 pm".
func FormatReviewDate(t time.Time) string {
	return t.Format("Monday, January ") + humanize.Ordinal(t.Day()) + t.Format(" 2006, 3:04:05 pm")
}

// ReviewViews projects reviews to their public form.
func ReviewViews(reviews []Review) []ReviewView {
	views := make([]ReviewView, 0, len(reviews))
	for _, r := range reviews {
		views = append(views, ReviewView{
			ID:   r.ID,
			User: r.Username,
			Content: ReviewContent{
				Amenities:  r.Amenities,
				OtherNotes: r.OtherNotes,
			},
			Stars: r.Stars,
			Date:  FormatReviewDate(r.Timestamp),
		})
	}
	return views
}

// NewProfile builds the public projection of a user and their children.
func NewProfile(u *User, children []Child, now time.Time) *Profile {
	return &Profile{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		City:      u.City,
		Country:   u.Country,
		Lat:       u.Lat,
		Lng:       u.Lng,
		Avatar:    u.Avatar,
		Children:  ChildViews(children, now),
	}
}
