package sqlh

import "time"

// Layouts of the date formats used in stored data. "Compact" is the
// digits-only form found in legacy columns.
const (
	LayoutISODate      = `2006-01-02`
	LayoutISOTime      = `15:04:05`
	LayoutCompactDate  = `20060102`
	LayoutCompactTime  = `150405`
	layoutCompactShort = `1504`
	layoutISOShortTime = `15:04`
)

// Parses `yyyy-mm-dd`.
func ParseISODate(val string) (time.Time, bool) {
	return parseLayout(LayoutISODate, val)
}

// Parses `HH:MM:SS`, or `HH:MM` with zero seconds. The date part is zero.
func ParseISOTime(val string) (time.Time, bool) {
	if len(val) == len(layoutISOShortTime) {
		return parseLayout(layoutISOShortTime, val)
	}
	return parseLayout(LayoutISOTime, val)
}

// Parses `yyyymmdd`.
func ParseCompactDate(val string) (time.Time, bool) {
	return parseLayout(LayoutCompactDate, val)
}

// Parses `HHMMSS` or `HHMM`. Any other length fails.
func ParseCompactTime(val string) (time.Time, bool) {
	switch len(val) {
	case len(LayoutCompactTime):
		return parseLayout(LayoutCompactTime, val)
	case len(layoutCompactShort):
		return parseLayout(layoutCompactShort, val)
	default:
		return time.Time{}, false
	}
}

func ParseCompactDateOpt(val *string) (time.Time, bool) {
	if val == nil {
		return time.Time{}, false
	}
	return ParseCompactDate(*val)
}

func ParseCompactTimeOpt(val *string) (time.Time, bool) {
	if val == nil {
		return time.Time{}, false
	}
	return ParseCompactTime(*val)
}

// Combines a compact date and a compact time. Fails if the date is invalid;
// an invalid time means midnight.
func ParseCompactDateTime(date, clock string) (time.Time, bool) {
	return ParseCompactDateTimeOpt(&date, &clock)
}

func ParseCompactDateTimeOpt(date, clock *string) (time.Time, bool) {
	day, ok := ParseCompactDateOpt(date)
	if !ok {
		return time.Time{}, false
	}

	tod, ok := ParseCompactTimeOpt(clock)
	if !ok {
		return day, true
	}

	return time.Date(
		day.Year(), day.Month(), day.Day(),
		tod.Hour(), tod.Minute(), tod.Second(), 0,
		time.UTC,
	), true
}

func FormatISODate(val time.Time) string     { return val.Format(LayoutISODate) }
func FormatCompactDate(val time.Time) string { return val.Format(LayoutCompactDate) }

// Returns nil for an empty string, otherwise a pointer to a copy.
func EmptyAsNil(val string) *string {
	if val == "" {
		return nil
	}
	return &val
}

func parseLayout(layout, val string) (time.Time, bool) {
	out, err := time.Parse(layout, val)
	if err != nil {
		return time.Time{}, false
	}
	return out, true
}
