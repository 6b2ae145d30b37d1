package validators

import (
	"fmt"
	"net/url"
	"time"

	pkgerrors "github.com/quickkart/storefront-gateway/pkg/errors"
)

// DateRange is an inclusive window over order history.
type DateRange struct {
	From time.Time
	To   time.Time
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// ParseDateRange reads from/to query params. Both are required; a date-only
// "to" value is widened to the end of that day.
func ParseDateRange(query url.Values) (DateRange, error) {
	rawFrom := query.Get("from")
	rawTo := query.Get("to")
	if rawFrom == "" || rawTo == "" {
		return DateRange{}, pkgerrors.New(pkgerrors.CodeValidation, "from and to query parameters are required")
	}

	from, _, err := parseDate(rawFrom)
	if err != nil {
		return DateRange{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid from parameter")
	}

	to, layout, err := parseDate(rawTo)
	if err != nil {
		return DateRange{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid to parameter")
	}
	if layout == "2006-01-02" {
		to = to.Add(24*time.Hour - time.Nanosecond)
	}

	if to.Before(from) {
		return DateRange{}, pkgerrors.New(pkgerrors.CodeValidation, "to must not precede from")
	}

	return DateRange{From: from.UTC(), To: to.UTC()}, nil
}

func parseDate(raw string) (time.Time, string, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, layout, nil
		}
	}
	return time.Time{}, "", fmt.Errorf("unrecognized date %q, expected RFC3339 or YYYY-MM-DD", raw)
}
