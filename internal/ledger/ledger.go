package ledger

import (
	"sort"
	"strings"
	"time"

	"repairbox/internal/errs"
	"repairbox/internal/model"
)

// TimeLayout is the display time-of-day label format stamped on records.
const TimeLayout = "15:04"

// CopyMarker is appended to the client name of a duplicated record.
const CopyMarker = " (copy)"

// Ledger is the in-memory device ledger: an ordered sequence of repair
// tickets per ISO date key, plus the three autocomplete suggestion pools.
// It is a plain owned state struct; the application service serializes
// access to it.
type Ledger struct {
	days map[string][]*model.Device

	clients suggestionSet
	models  suggestionSet
	parts   suggestionSet
}

func New() *Ledger {
	return &Ledger{
		days:    make(map[string][]*model.Device),
		clients: newSuggestionSet(),
		models:  newSuggestionSet(),
		parts:   newSuggestionSet(),
	}
}

// GetDay returns the day's records, or an empty sequence if none exist.
// The entry for a date is created lazily on first insert; GetDay never
// creates one.
func (l *Ledger) GetDay(dateKey string) []*model.Device {
	return l.days[dateKey]
}

// DayLen returns the current sequence length for a date.
func (l *Ledger) DayLen(dateKey string) int {
	return len(l.days[dateKey])
}

// Upsert appends the record when index is nil, or replaces the record at
// index while preserving its original creation instant. The record is
// normalized (enum defaults, warranty default) before it enters the ledger.
func (l *Ledger) Upsert(dateKey string, index *int, d *model.Device) error {
	d.Normalize()
	d.Date = dateKey

	if index == nil {
		l.days[dateKey] = append(l.days[dateKey], d)
		return nil
	}

	day := l.days[dateKey]
	if *index < 0 || *index >= len(day) {
		return errs.ErrIndexOutOfRange
	}
	// Edits must not move the creation instant.
	if !day[*index].CreatedAt.IsZero() {
		d.CreatedAt = day[*index].CreatedAt
	}
	day[*index] = d
	return nil
}

// Get resolves an index against the current sequence state.
func (l *Ledger) Get(dateKey string, index int) (*model.Device, error) {
	day := l.days[dateKey]
	if index < 0 || index >= len(day) {
		return nil, errs.ErrDeviceNotFound
	}
	return day[index], nil
}

// Delete removes the record at index. An empty sequence persists for the
// date; day entries are never removed.
func (l *Ledger) Delete(dateKey string, index int) error {
	day := l.days[dateKey]
	if index < 0 || index >= len(day) {
		return errs.ErrIndexOutOfRange
	}
	l.days[dateKey] = append(day[:index], day[index+1:]...)
	return nil
}

// DeleteMany removes the given indices in descending order, so removals
// within the batch cannot shift the indices still to be processed.
// All indices are validated against the sequence state before any removal.
func (l *Ledger) DeleteMany(dateKey string, indices []int) (int, error) {
	day := l.days[dateKey]
	seen := make(map[int]bool, len(indices))
	batch := make([]int, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(day) {
			return 0, errs.ErrIndexOutOfRange
		}
		if !seen[i] {
			seen[i] = true
			batch = append(batch, i)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(batch)))
	for _, i := range batch {
		day = append(day[:i], day[i+1:]...)
	}
	l.days[dateKey] = day
	return len(batch), nil
}

// Duplicate clones the record at index and appends the clone to the same
// day with status reset to received, a fresh creation instant and time
// label, and a copy marker on the client name.
func (l *Ledger) Duplicate(dateKey string, index int, now time.Time) (*model.Device, error) {
	src, err := l.Get(dateKey, index)
	if err != nil {
		return nil, err
	}
	dup := src.Clone()
	dup.Client = src.Client + CopyMarker
	dup.Status = model.StatusReceived
	dup.CreatedAt = now
	dup.Time = now.Format(TimeLayout)
	l.days[dateKey] = append(l.days[dateKey], dup)
	return dup, nil
}

// Admit feeds the suggestion pools from a submitted record. Parts is a
// comma-separated multi-value field; each part is admitted on its own.
func (l *Ledger) Admit(d *model.Device) {
	l.clients.add(d.Client)
	l.models.add(d.Model)
	for _, part := range strings.Split(d.Parts, ",") {
		l.parts.add(part)
	}
}

// Suggestions returns the three pools as sorted slices.
func (l *Ledger) Suggestions() (clients, models, parts []string) {
	return l.clients.values(), l.models.values(), l.parts.values()
}

// CountRecords sums sequence lengths across all date keys.
func (l *Ledger) CountRecords() int {
	n := 0
	for _, day := range l.days {
		n += len(day)
	}
	return n
}

// DayKeys returns all date keys in lexicographic (= chronological) order.
func (l *Ledger) DayKeys() []string {
	keys := make([]string, 0, len(l.days))
	for k := range l.days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Days exposes the full day map for read-only consumers (persistence
// snapshotting, cross-day aggregation). Callers must not mutate it.
func (l *Ledger) Days() map[string][]*model.Device {
	return l.days
}

// Replace swaps in a wholesale new state, as load and import do. Records
// are normalized on the way in so enum fallbacks never leak past this
// boundary.
func (l *Ledger) Replace(days map[string][]*model.Device, clients, models, parts []string) {
	if days == nil {
		days = make(map[string][]*model.Device)
	}
	for _, day := range days {
		for _, d := range day {
			d.Normalize()
		}
	}
	l.days = days
	l.clients = suggestionSetOf(clients)
	l.models = suggestionSetOf(models)
	l.parts = suggestionSetOf(parts)
}

// Clear wipes all state.
func (l *Ledger) Clear() {
	l.Replace(nil, nil, nil, nil)
}

// suggestionSet is a deduplicated pool of free-text values. Values are
// whitespace-trimmed and must be at least 2 characters to be admitted.
// The pool grows monotonically except on full wipe.
type suggestionSet map[string]struct{}

func newSuggestionSet() suggestionSet {
	return make(suggestionSet)
}

func suggestionSetOf(vals []string) suggestionSet {
	s := newSuggestionSet()
	for _, v := range vals {
		s.add(v)
	}
	return s
}

func (s suggestionSet) add(v string) {
	v = strings.TrimSpace(v)
	if len(v) < 2 {
		return
	}
	s[v] = struct{}{}
}

func (s suggestionSet) values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
