package timestamp

import "time"

// Layout is an ISO date time format of bookkeeping fields (lastSynced, dateCreated, ...)
const Layout = "2006-01-02T15:04:05.000000Z"

// DashDayLayout is a VrijBRP date format
const DashDayLayout = "2006-01-02"

// ClockLayout is a time of day format with seconds
const ClockLayout = "15:04:05"

// MinutesLayout is a VrijBRP time of day format
const MinutesLayout = "15:04"

// LogsLayout is a date time representation for log records prefixes
const LogsLayout = "2006-01-02 15:04:05"

var dateLayouts = []string{DashDayLayout, time.RFC3339Nano, Layout, "20060102", "2006-01-02 15:04:05"}
var clockLayouts = []string{ClockLayout, MinutesLayout, "150405", "1504", time.RFC3339Nano}

// NowUTC returns ISO string representation of current UTC time
func NowUTC() string {
	return Now().UTC().Format(Layout)
}

// ToISOFormat returns ISO string representation of input time.Time
func ToISOFormat(t time.Time) string {
	return t.UTC().Format(Layout)
}

// ParseDate parses a date written in one of the layouts ZGW and ZDS use
func ParseDate(value string) (time.Time, bool) {
	return parse(value, dateLayouts)
}

// ParseClock parses a time of day written in one of the layouts ZGW and ZDS use
func ParseClock(value string) (time.Time, bool) {
	return parse(value, clockLayouts)
}

func parse(value string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
