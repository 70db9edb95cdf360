package report

import (
	"fmt"
	"time"
)

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// Window is an inclusive date range; a nil bound is open
type Window struct {
	Start *time.Time
	End   *time.Time
}

// ParseWindow reads startDate and endDate query values. Empty values leave
// the bound open.
func ParseWindow(startDate, endDate string) (Window, error) {
	var w Window
	var err error
	if w.Start, err = parseDate(startDate); err != nil {
		return Window{}, fmt.Errorf("invalid startDate: %w", err)
	}
	if w.End, err = parseDate(endDate); err != nil {
		return Window{}, fmt.Errorf("invalid endDate: %w", err)
	}
	return w, nil
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return &t, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// Active reports whether either bound is set
func (w Window) Active() bool {
	return w.Start != nil || w.End != nil
}

// Contains checks an ISO timestamp against the window. Records without a
// readable timestamp never match an active window.
func (w Window) Contains(iso string) bool {
	if !w.Active() {
		return true
	}
	t, err := parseDate(iso)
	if err != nil || t == nil {
		return false
	}
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	if w.End != nil && t.After(*w.End) {
		return false
	}
	return true
}

// isoDate is the {"iso": "..."} shape timestamps are exported in
type isoDate struct {
	ISO string `json:"iso"`
}

func (d *isoDate) value() string {
	if d == nil {
		return ""
	}
	return d.ISO
}
