package fitbit

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// ResourceHeart is the heart-rate time-series resource.
const ResourceHeart = "activities/heart"

// DetailLevel is the granularity of the intraday series.
type DetailLevel string

const (
	DetailLevel1Sec DetailLevel = "1sec"
	DetailLevel1Min DetailLevel = "1min"
)

// ParseDetailLevel validates a detail level string.
func ParseDetailLevel(s string) (DetailLevel, error) {
	switch DetailLevel(s) {
	case DetailLevel1Sec, DetailLevel1Min:
		return DetailLevel(s), nil
	default:
		return "", fmt.Errorf("invalid detail level %q: must be %s or %s", s, DetailLevel1Sec, DetailLevel1Min)
	}
}

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// IsClockTime reports whether s is a 24-hour HH:mm time.
func IsClockTime(s string) bool {
	return clockPattern.MatchString(s)
}

// IsBaseDate reports whether s is a yyyy-MM-dd calendar date or "today".
func IsBaseDate(s string) bool {
	if s == "today" {
		return true
	}
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

// IntradayParams selects one day of intraday data.
type IntradayParams struct {
	// Resource defaults to ResourceHeart.
	Resource string

	// BaseDate is yyyy-MM-dd or "today".
	BaseDate string

	DetailLevel DetailLevel

	// StartTime and EndTime (HH:mm) narrow the window. Both or neither.
	StartTime string
	EndTime   string
}

// Validate checks the parameters before any request is made.
func (p IntradayParams) Validate() error {
	var errs []error

	if !IsBaseDate(p.BaseDate) {
		errs = append(errs, fmt.Errorf("invalid base date %q: expected yyyy-MM-dd or today", p.BaseDate))
	}

	if _, err := ParseDetailLevel(string(p.DetailLevel)); err != nil {
		errs = append(errs, err)
	}

	if (p.StartTime == "") != (p.EndTime == "") {
		errs = append(errs, errors.New("start time and end time must be given together"))
	}
	for _, t := range []string{p.StartTime, p.EndTime} {
		if t != "" && !IsClockTime(t) {
			errs = append(errs, fmt.Errorf("invalid time %q: expected HH:mm", t))
		}
	}

	return errors.Join(errs...)
}

// Path returns the API path for the request, e.g.
// /1/user/-/activities/heart/date/2023-01-01/1d/1min/time/08:00/09:00.json
func (p IntradayParams) Path() string {
	resource := p.Resource
	if resource == "" {
		resource = ResourceHeart
	}
	resource = strings.Trim(resource, "/")

	var b strings.Builder
	fmt.Fprintf(&b, "/1/user/-/%s/date/%s/1d/%s", resource, url.PathEscape(p.BaseDate), p.DetailLevel)
	if p.StartTime != "" && p.EndTime != "" {
		fmt.Fprintf(&b, "/time/%s/%s", p.StartTime, p.EndTime)
	}
	b.WriteString(".json")
	return b.String()
}
