package progress

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	dateLayout = "2-1-2006"
	day        = 24 * time.Hour
)

// earliest is the implicit start of a range with an open lower bound.
var earliest = time.Date(2005, time.January, 1, 0, 0, 0, 0, time.UTC)

// Range is an inclusive window of entry ctimes in unix nanoseconds.
type Range struct {
	From int64
	To   int64
}

// All matches every entry.
func All() Range {
	return Range{From: math.MinInt64, To: math.MaxInt64}
}

// Contains reports whether ctime lies inside the window.
func (r Range) Contains(ctime int64) bool {
	return ctime >= r.From && ctime <= r.To
}

// ParseDateQuery parses an entry date filter:
//
//	""  or "all"            every entry
//	"dd-mm-yyyy"            that day
//	"dd-mm-yyyy..dd-mm-yyyy" between the two dates
//	"..dd-mm-yyyy"           from 2005-01-01
//	"dd-mm-yyyy.."           until a day after now
//
// Dates are taken as UTC midnight.
func ParseDateQuery(q string, now time.Time) (Range, error) {
	q = strings.TrimSpace(q)
	if q == "" || q == "all" {
		return All(), nil
	}

	parts := strings.Split(q, "..")
	switch len(parts) {
	case 1:
		d, err := parseDate(parts[0])
		if err != nil {
			return Range{}, err
		}
		return Range{From: d.UnixNano(), To: d.Add(day).UnixNano()}, nil
	case 2:
		from, to := earliest, now.UTC().Add(day)
		var err error
		if parts[0] != "" {
			if from, err = parseDate(parts[0]); err != nil {
				return Range{}, err
			}
		}
		if parts[1] != "" {
			if to, err = parseDate(parts[1]); err != nil {
				return Range{}, err
			}
		}
		return Range{From: from.UnixNano(), To: to.UnixNano()}, nil
	default:
		return Range{}, fmt.Errorf("%w: at most a start and an end date are allowed", ErrInvalidDateQuery)
	}
}

func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not dd-mm-yyyy", ErrInvalidDateQuery, s)
	}
	return t, nil
}
