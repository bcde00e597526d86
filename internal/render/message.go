package render

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// FitWidth truncates by display width with an ellipsis and pads on the right
func FitWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = runewidth.Truncate(s, width, "...")
	if pad := width - runewidth.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// RightFit truncates from the left and right-aligns to width
func RightFit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = runewidth.TruncateLeft(s, width, "")
	if pad := width - runewidth.StringWidth(s); pad > 0 {
		s = strings.Repeat(" ", pad) + s
	}
	return s
}

// Preview flattens message content to a single line fitted to width
func Preview(content string, width int) string {
	flat := strings.Join(strings.Fields(sanitizeForTerminal(content)), " ")
	return runewidth.Truncate(flat, width, "...")
}

// SenderName returns the display name of an address header, or the input
func SenderName(from string) string {
	from = strings.TrimSpace(from)
	if from == "" {
		return ""
	}
	if addr, err := mail.ParseAddress(from); err == nil {
		if addr.Name != "" {
			return addr.Name
		}
		return addr.Address
	}
	if i := strings.Index(from, "<"); i > 0 {
		return strings.Trim(strings.TrimSpace(from[:i]), `"`)
	}
	return from
}

// FormatDate renders t as a local calendar date
func FormatDate(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

// RelativeTime renders the age of t compactly: now, 5m, 3h, 2d, then "Jan 2"
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(diff.Hours()/24))
	default:
		return t.Local().Format("Jan 2")
	}
}
