package domain

import (
	"strings"
	"time"
)

// TimestampLayout renders sunrise and sunset as YYYY-MM-DD HH:MM:SS.
const TimestampLayout = "2006-01-02 15:04:05"

// lineBreaker replaces characters that would split or terminate a message.
var lineBreaker = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ", "\x00", " ")

// FormatReading renders a reading as two protocol-safe lines: current
// conditions, then sun times in loc. A nil loc means UTC.
func FormatReading(r WeatherReading, loc *time.Location) []string {
	if loc == nil {
		loc = time.UTC
	}
	return []string{
		SafeLine("[Temperature: " + r.Temperature.String() +
			"] [Humidity: " + r.Humidity.String() +
			"] [Sky: " + r.Sky +
			"] [Wind speed: " + r.WindSpeed.String() + "]"),
		"[Sunrise: " + FormatTimestamp(r.Sunrise, loc) + "] [Sunset: " + FormatTimestamp(r.Sunset, loc) + "]",
	}
}

// FormatTimestamp converts Unix seconds to TimestampLayout in loc.
func FormatTimestamp(unix int64, loc *time.Location) string {
	return time.Unix(unix, 0).In(loc).Format(TimestampLayout)
}

// SafeLine replaces CR, LF and NUL with spaces.
func SafeLine(s string) string {
	return lineBreaker.Replace(s)
}
