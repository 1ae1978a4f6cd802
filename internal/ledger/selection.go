package ledger

import (
	"sort"
	"strconv"
	"time"

	"repairbox/internal/errs"
	"repairbox/internal/model"
)

// Selection is the transient bulk-select state: a set of indices into one
// day's sequence, valid only while select mode is active. It is cleared on
// every mode toggle and on any structural mutation of the day.
type Selection struct {
	active bool
	day    string
	picked map[int]struct{}
}

func NewSelection() *Selection {
	return &Selection{picked: make(map[int]struct{})}
}

// ToggleMode flips between idle and selecting for the given day. Entering
// or leaving always clears the set. Returns the resulting mode.
func (s *Selection) ToggleMode(dateKey string) bool {
	s.active = !s.active
	s.day = dateKey
	s.picked = make(map[int]struct{})
	return s.active
}

func (s *Selection) Active() bool { return s.active }

func (s *Selection) Day() string { return s.day }

// Toggle flips membership of an index while selecting.
func (s *Selection) Toggle(index int, dayLen int) error {
	if !s.active {
		return errs.ErrNotSelecting
	}
	if index < 0 || index >= dayLen {
		return errs.ErrIndexOutOfRange
	}
	if _, ok := s.picked[index]; ok {
		delete(s.picked, index)
	} else {
		s.picked[index] = struct{}{}
	}
	return nil
}

// SelectAll marks every index of the current day.
func (s *Selection) SelectAll(dayLen int) error {
	if !s.active {
		return errs.ErrNotSelecting
	}
	for i := 0; i < dayLen; i++ {
		s.picked[i] = struct{}{}
	}
	return nil
}

func (s *Selection) Count() int { return len(s.picked) }

// Indices returns the selected indices in ascending order.
func (s *Selection) Indices() []int {
	out := make([]int, 0, len(s.picked))
	for i := range s.picked {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Reset drops back to idle and clears the set. Called after every bulk
// mutation and on structural changes to the selected day.
func (s *Selection) Reset() {
	s.active = false
	s.picked = make(map[int]struct{})
}

// BulkStatus sets the status of every given index. The status must be one
// of the enumerated values; indices are validated against the current
// sequence state before any record changes.
func (l *Ledger) BulkStatus(dateKey string, indices []int, status model.Status) (int, error) {
	if !status.Valid() {
		return 0, errs.ErrInvalidStatus
	}
	day := l.days[dateKey]
	for _, i := range indices {
		if i < 0 || i >= len(day) {
			return 0, errs.ErrIndexOutOfRange
		}
	}
	for _, i := range indices {
		day[i].Status = status
	}
	return len(indices), nil
}

// TrackTime refreshes the computed time-spent label on every in-progress
// record (diagnostic or waiting) of the given day: hours elapsed since
// creation, one decimal.
func (l *Ledger) TrackTime(dateKey string, now time.Time) int {
	updated := 0
	for _, d := range l.days[dateKey] {
		if d.Status != model.StatusDiagnostic && d.Status != model.StatusWaiting {
			continue
		}
		start := d.CreatedAt
		if start.IsZero() {
			start = now
		}
		d.TimeSpent = formatHours(now.Sub(start).Hours())
		updated++
	}
	return updated
}

func formatHours(h float64) string {
	if h < 0 {
		h = 0
	}
	return strconv.FormatFloat(h, 'f', 1, 64)
}
