package events

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"devevent/errs"
	"devevent/models"
	"devevent/validation"
)

const dateLayout = "2006-01-02"

var (
	slugStrip  = regexp.MustCompile(`[^\w` + validation.SpaceClass + `-]`)
	slugSpaces = regexp.MustCompile(`[` + validation.SpaceClass + `]+`)
	slugDashes = regexp.MustCompile(`-+`)

	time24 = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
	time12 = regexp.MustCompile(`(?i)^([1-9]|1[0-2]):([0-5]\d)\s*([AP]M)$`)
)

// Slugify turns a title into its URL slug. Slugify(Slugify(x)) == Slugify(x).
func Slugify(title string) string {
	s := validation.TrimSpace(strings.ToLower(title))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	return slugDashes.ReplaceAllString(s, "-")
}

// NormalizeDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// calendar date as YYYY-MM-DD. Timestamps are read in UTC.
func NormalizeDate(value string) (string, error) {
	v := strings.TrimSpace(value)
	if d, err := time.Parse(dateLayout, v); err == nil {
		return d.Format(dateLayout), nil
	}
	if ts, err := time.Parse(time.RFC3339, v); err == nil {
		return ts.UTC().Format(dateLayout), nil
	}
	return "", errs.NewValidationError("date", "invalid date")
}

// NormalizeTime accepts 24-hour HH:mm or 12-hour H:mm AM/PM and returns
// zero-padded 24-hour HH:mm.
func NormalizeTime(value string) (string, error) {
	v := strings.TrimSpace(value)

	var hours, minutes int
	if m := time24.FindStringSubmatch(v); m != nil {
		hours, _ = strconv.Atoi(m[1])
		minutes, _ = strconv.Atoi(m[2])
	} else if m := time12.FindStringSubmatch(v); m != nil {
		hours, _ = strconv.Atoi(m[1])
		minutes, _ = strconv.Atoi(m[2])
		hours %= 12
		if strings.EqualFold(m[3], "PM") {
			hours += 12
		}
	} else {
		return "", errs.NewValidationError("time", "invalid time")
	}
	return fmt.Sprintf("%02d:%02d", hours, minutes), nil
}

// ValidateAndNormalize is the pre-persist pipeline. Structural checks run
// first; derived fields (slug, date, time) are computed only from input that
// passed them. Every violated field ends up in one *errs.ValidationError.
// The returned event has no ID or timestamps.
func ValidateAndNormalize(in models.EventInput) (*models.Event, error) {
	in = trimInput(in)

	verr := validation.Struct(in)

	var date, clock string
	if verr == nil || !verr.Has("date") {
		d, err := NormalizeDate(in.Date)
		if err != nil {
			verr = validation.Merge(verr, err.(*errs.ValidationError))
		}
		date = d
	}
	if verr == nil || !verr.Has("time") {
		c, err := NormalizeTime(in.Time)
		if err != nil {
			verr = validation.Merge(verr, err.(*errs.ValidationError))
		}
		clock = c
	}

	slug := Slugify(in.Title)
	if slug == "" && (verr == nil || !verr.Has("title")) {
		verr = validation.Merge(verr, errs.NewValidationError("title", "must contain at least one letter or digit"))
	}

	if verr != nil {
		return nil, verr
	}

	return &models.Event{
		Title:       in.Title,
		Slug:        slug,
		Description: in.Description,
		Overview:    in.Overview,
		Image:       in.Image,
		Venue:       in.Venue,
		Location:    in.Location,
		Date:        date,
		Time:        clock,
		Mode:        models.Mode(in.Mode),
		Audience:    in.Audience,
		Agenda:      in.Agenda,
		Organizer:   in.Organizer,
		Tags:        in.Tags,
	}, nil
}

func trimInput(in models.EventInput) models.EventInput {
	for _, s := range []*string{
		&in.Title, &in.Description, &in.Overview, &in.Image, &in.Venue,
		&in.Location, &in.Date, &in.Time, &in.Mode, &in.Audience, &in.Organizer,
	} {
		*s = strings.TrimSpace(*s)
	}
	in.Agenda = trimAll(in.Agenda)
	in.Tags = trimAll(in.Tags)
	return in
}

func trimAll(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = strings.TrimSpace(item)
	}
	return out
}
