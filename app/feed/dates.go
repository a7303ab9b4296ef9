package feed

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

type DateSource string

const (
	DateSourceField    DateSource = "date"
	DateSourceTag      DateSource = "tag"
	DateSourceFallback DateSource = "fallback"
	DateSourceInvalid  DateSource = "invalid"
)

// dateTagPattern matches a day/month token, a dash and a four digit year,
// e.g. "15-Feb-2024", "Aug-16-2022" or "02-15-2024".
var dateTagPattern = regexp.MustCompile(`(\d{1,2}-[A-Za-z]{3,9}|[A-Za-z]{3,9}-\d{1,2}|\d{1,2}-\d{1,2})-\d{4}`)

var tagLayouts = []string{
	"2-Jan-2006",
	"2-January-2006",
	"Jan-2-2006",
	"January-2-2006",
	"1-2-2006",
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type DateResolution struct {
	Time   time.Time
	Source DateSource
	Err    error // Set when Source is DateSourceInvalid
}

type DateResolver struct {
	now      func() time.Time
	location *time.Location
}

func NewDateResolver(now func() time.Time, location *time.Location) *DateResolver {
	if now == nil {
		now = time.Now
	}
	if location == nil {
		location = time.Local
	}
	return &DateResolver{now: now, location: location}
}

func (r *DateResolver) Resolve(metadata map[string]any) DateResolution {
	if raw, ok := metadata["date"]; ok && raw != nil && raw != "" {
		t, err := r.parseDate(raw)
		if err != nil {
			return r.invalid(err)
		}
		return DateResolution{Time: t, Source: DateSourceField}
	}

	if tag, ok := findDateTag(stringSlice(metadata["tags"])); ok {
		t, err := r.parseLayouts(tag, tagLayouts)
		if err != nil {
			return r.invalid(err)
		}
		return DateResolution{Time: t, Source: DateSourceTag}
	}

	return DateResolution{Time: r.now(), Source: DateSourceFallback}
}

func (r *DateResolver) invalid(err error) DateResolution {
	return DateResolution{Time: r.now(), Source: DateSourceInvalid, Err: err}
}

func (r *DateResolver) parseDate(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		return r.parseLayouts(strings.TrimSpace(v), dateLayouts)
	default:
		return r.parseLayouts(fmt.Sprint(v), dateLayouts)
	}
}

func (r *DateResolver) parseLayouts(value string, layouts []string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, r.location); err == nil {
			return t, nil
		}
	}

	t, err := dateparse.ParseIn(value, r.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrUnparseableDate, value, err)
	}
	return t, nil
}

// findDateTag returns the date substring of the first tag matching dateTagPattern.
func findDateTag(tags []string) (string, bool) {
	for _, tag := range tags {
		if match := dateTagPattern.FindString(tag); match != "" {
			return match, true
		}
	}
	return "", false
}
