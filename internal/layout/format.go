package layout

import (
	"strconv"
	"strings"
	"time"
)

// Money renders an amount with a fixed currency prefix and exactly two
// decimals. All monetary formatting in the document goes through here so the
// rounding policy lives in one place. Negative amounts pass through as-is.
func Money(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

// Quantity renders a quantity without trailing zeros.
func Quantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CalendarDate formats a stored ISO-8601 date as a human-readable calendar
// date. The value is parsed as a plain calendar date, never as a UTC instant,
// so the displayed day cannot shift with the viewer's timezone. Free-text
// values that are not ISO dates pass through verbatim.
func CalendarDate(s string) string {
	trimmed := strings.TrimSpace(s)
	parsed, err := time.Parse("2006-01-02", trimmed)
	if err != nil {
		return s
	}
	return parsed.Format("January 2, 2006")
}

type RGB struct {
	R int
	G int
	B int
}

// defaultAccent is used when a theme token is absent or unparseable.
var defaultAccent = RGB{R: 31, G: 41, B: 55} // #1f2937

var namedColors = map[string]RGB{
	"black":  {0, 0, 0},
	"white":  {255, 255, 255},
	"gray":   {107, 114, 128},
	"grey":   {107, 114, 128},
	"red":    {220, 38, 38},
	"orange": {249, 115, 22},
	"yellow": {234, 179, 8},
	"green":  {22, 163, 74},
	"teal":   {13, 148, 136},
	"blue":   {37, 99, 235},
	"navy":   {30, 58, 138},
	"purple": {124, 58, 237},
}

// Accent resolves a theme color token (hex or named) to RGB, falling back to
// the neutral default when the token is empty or invalid.
func Accent(token string) RGB {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return defaultAccent
	}

	if c, ok := namedColors[token]; ok {
		return c
	}

	if strings.HasPrefix(token, "#") {
		hex := token[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) == 6 {
			if v, err := strconv.ParseUint(hex, 16, 32); err == nil {
				return RGB{
					R: int(v >> 16 & 0xff),
					G: int(v >> 8 & 0xff),
					B: int(v & 0xff),
				}
			}
		}
	}

	return defaultAccent
}
