package metrics

import (
	"time"

	pperrors "github.com/pkgpulse/pkgpulse/pkg/errors"
)

// Window is a trailing date range used for trend queries and plot
// references. Days of 0 means all time.
type Window struct {
	Label string // short identifier used in filenames and flags ("7d")
	Name  string // display name ("Last 7 Days")
	Days  int    // trailing length in days; 0 = all time
}

// The fixed window set, ordered shortest to longest.
var (
	Window7d   = Window{Label: "7d", Name: "Last 7 Days", Days: 7}
	Window14d  = Window{Label: "14d", Name: "Last 14 Days", Days: 14}
	Window30d  = Window{Label: "30d", Name: "Last 30 Days", Days: 30}
	Window365d = Window{Label: "365d", Name: "Last 365 Days", Days: 365}
	WindowAll  = Window{Label: "all", Name: "All Time", Days: 0}
)

// Windows returns all windows in display order.
func Windows() []Window {
	return []Window{Window7d, Window14d, Window30d, Window365d, WindowAll}
}

// ParseWindow resolves a window label like "7d" or "all".
func ParseWindow(label string) (Window, error) {
	for _, w := range Windows() {
		if w.Label == label {
			return w, nil
		}
	}
	return Window{}, pperrors.New(pperrors.ErrCodeInvalidWindow, "unknown window %q (valid: 7d, 14d, 30d, 365d, all)", label)
}

// Cutoff returns the earliest date (inclusive) inside the window relative
// to now. For the all-time window the zero time is returned, which sorts
// before any reading date.
func (w Window) Cutoff(now time.Time) time.Time {
	if w.Days == 0 {
		return time.Time{}
	}
	return now.UTC().Truncate(24 * time.Hour).AddDate(0, 0, -w.Days)
}

// Contains reports whether the date (in DateLayout) falls inside the
// window relative to now. Unparseable dates are excluded.
func (w Window) Contains(date string, now time.Time) bool {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return false
	}
	return !t.Before(w.Cutoff(now))
}
