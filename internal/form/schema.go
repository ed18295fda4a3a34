// Package form validates raw prediction-form input against a catalog of
// accepted districts, crops, and seasons. Validation is pure: no storage,
// no network, and every violation is reported, not just the first.
package form

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for sowing dates.
const DateLayout = "2006-01-02"

// minSowYear guards against obviously bogus calendar input when date
// bounds are enabled.
const minSowYear = 1900

// Schema holds the enumerated domains a request is checked against.
// Values come from configuration, not code, so different deployments can
// serve different regions.
type Schema struct {
	Districts []string
	Crops     []string
	Seasons   []string
}

// Fields is the raw, untrusted form input.
type Fields struct {
	District string
	Crop     string
	Season   string
	SowDate  string
}

// Request is a validated, immutable prediction request. Construct it only
// through Schema.Validate.
type Request struct {
	District string
	Crop     string
	Season   string
	SowDate  time.Time
}

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Options tunes validation per call site.
type Options struct {
	// BoundSowDate additionally rejects dates in the future or before 1900.
	BoundSowDate bool

	// Now is the reference time for the future check; zero means time.Now().
	Now time.Time
}

// Validate checks every field and returns the canonical request together
// with one FieldError per violation. The request is only meaningful when
// the error slice is empty.
func (s Schema) Validate(f Fields, opts Options) (Request, []FieldError) {
	var errs []FieldError
	var req Request

	if v, ok := match(s.Districts, f.District); ok {
		req.District = v
	} else {
		errs = append(errs, missingOrUnknown("district", f.District, "district"))
	}

	if v, ok := match(s.Crops, f.Crop); ok {
		req.Crop = v
	} else {
		errs = append(errs, missingOrUnknown("crop", f.Crop, "crop"))
	}

	if v, ok := match(s.Seasons, f.Season); ok {
		req.Season = v
	} else {
		errs = append(errs, missingOrUnknown("season", f.Season, "season"))
	}

	if strings.TrimSpace(f.SowDate) == "" {
		errs = append(errs, FieldError{Field: "sow_date", Message: "sowing date is required"})
	} else if d, err := time.Parse(DateLayout, strings.TrimSpace(f.SowDate)); err != nil {
		errs = append(errs, FieldError{
			Field:   "sow_date",
			Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", f.SowDate),
		})
	} else if opts.BoundSowDate {
		now := opts.Now
		if now.IsZero() {
			now = time.Now()
		}
		switch {
		case d.Year() < minSowYear:
			errs = append(errs, FieldError{Field: "sow_date", Message: "sowing date is before 1900"})
		case d.After(now):
			errs = append(errs, FieldError{Field: "sow_date", Message: "sowing date is in the future"})
		default:
			req.SowDate = d
		}
	} else {
		req.SowDate = d
	}

	if len(errs) > 0 {
		return Request{}, errs
	}
	return req, nil
}

// match finds the canonical catalog entry for the input, ignoring case and
// surrounding whitespace. Empty input never matches.
func match(catalog []string, input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	for _, v := range catalog {
		if strings.EqualFold(v, input) {
			return v, true
		}
	}
	return "", false
}

func missingOrUnknown(field, value, noun string) FieldError {
	if strings.TrimSpace(value) == "" {
		return FieldError{Field: field, Message: noun + " is required"}
	}
	return FieldError{Field: field, Message: fmt.Sprintf("unknown %s %q", noun, value)}
}
