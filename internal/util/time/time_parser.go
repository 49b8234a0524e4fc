package time_parser

import (
	"fmt"
	"time"
)

var isoFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp converts various timestamp representations to time.Time in UTC.
// Supported inputs:
//   - nil or empty string: uses current time
//   - ISO strings: RFC3339, RFC3339Nano, "2006-01-02T15:04:05Z", "2006-01-02T15:04:05", "2006-01-02 15:04:05"
//   - Unix timestamps: seconds (< 1e12) or milliseconds (>= 1e12) as int, int64, or float64
//
// Unparseable values fall back to the current time.
func ParseTimestamp(timestamp any) time.Time {
	parsed, err := ParseTimestampStrict(timestamp)
	if err != nil {
		return time.Now().UTC()
	}

	return parsed
}

// ParseTimestampStrict is the validating variant: nil and empty still mean
// "now", but a present value that cannot be interpreted is an error.
func ParseTimestampStrict(timestamp any) (time.Time, error) {
	if timestamp == nil {
		return time.Now().UTC(), nil
	}

	switch v := timestamp.(type) {
	case string:
		if v == "" {
			return time.Now().UTC(), nil
		}

		for _, format := range isoFormats {
			if t, err := time.Parse(format, v); err == nil {
				return t.UTC(), nil
			}
		}

		return time.Time{}, fmt.Errorf("unparseable timestamp string: %q", v)

	case float64:
		// JSON numbers arrive as float64; distinguish seconds from
		// milliseconds with a magnitude threshold (~2001-09-09)
		if v > 1e12 {
			return time.Unix(0, int64(v)*int64(time.Millisecond)).UTC(), nil
		}
		return time.Unix(int64(v), 0).UTC(), nil

	case int64:
		if v > 1e12 {
			return time.Unix(0, v*int64(time.Millisecond)).UTC(), nil
		}
		return time.Unix(v, 0).UTC(), nil

	case int:
		return ParseTimestampStrict(int64(v))

	case time.Time:
		return v.UTC(), nil

	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type: %T", timestamp)
	}
}
