package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"repairbox/internal/artifact"
	"repairbox/internal/errs"
	"repairbox/internal/ledger"
	"repairbox/internal/model"
	"repairbox/internal/query"
	"repairbox/internal/smsgw"
	"repairbox/internal/store"
)

// RepairService owns the application state: the day ledger, the suggestion
// pools and the bulk-select state, all behind one mutex. HTTP handlers, CLI
// commands and the background tickers go through it; every mutating
// operation persists afterwards.
type RepairService struct {
	mu  sync.Mutex
	l   *ledger.Ledger
	sel *ledger.Selection
	gw  *store.Gateway
	sms *smsgw.Client
	log *slog.Logger
	now func() time.Time
}

func NewRepairService(gw *store.Gateway, sms *smsgw.Client, log *slog.Logger) *RepairService {
	return &RepairService{
		l:   ledger.New(),
		sel: ledger.NewSelection(),
		gw:  gw,
		sms: sms,
		log: log.With("component", "service"),
		now: time.Now,
	}
}

// Load pulls the persisted snapshot into memory. With seed set, an empty
// store gets demo tickets on first run.
func (s *RepairService) Load(seed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	found, err := s.gw.Load(s.l)
	if err != nil {
		return err
	}
	if !found && seed {
		s.seedSampleData()
		return s.gw.Save(s.l, s.now())
	}
	return nil
}

// DeviceView pairs a record with its index in the current day sequence.
// Indices are only stable until the next structural mutation.
type DeviceView struct {
	Index  int           `json:"index"`
	Device *model.Device `json:"device"`
}

// ListDay returns the day's records with their current indices, optionally
// narrowed by a search term and a status filter (all, urgent, repaired).
// Returned records are detached copies: callers marshal them after the lock
// is released, while the time-track ticker keeps mutating the originals.
func (s *RepairService) ListDay(dateKey, q, filter string) []DeviceView {
	s.mu.Lock()
	defer s.mu.Unlock()

	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]DeviceView, 0)
	for i, d := range s.l.GetDay(dateKey) {
		if q != "" && !matches(d, q) {
			continue
		}
		switch filter {
		case "urgent":
			if d.Urgency != model.UrgencyUrgent && d.Urgency != model.UrgencyExpress {
				continue
			}
		case "repaired":
			if d.Status != model.StatusRepaired {
				continue
			}
		}
		out = append(out, DeviceView{Index: i, Device: d.Clone()})
	}
	return out
}

func matches(d *model.Device, q string) bool {
	for _, field := range []string{d.Client, d.Phone, d.Model, d.Problem, d.Parts} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func (s *RepairService) GetDevice(dateKey string, index int) (*model.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.l.Get(dateKey, index)
	if err != nil {
		return nil, err
	}
	return d.Clone(), nil
}

// CreateDevice appends a new ticket to the day, stamps its time-of-day
// label and creation instant, feeds the suggestion pools and persists.
// The returned record is a detached copy of the stored one.
func (s *RepairService) CreateDevice(dateKey string, d *model.Device) (*model.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	d.Time = now.Format(ledger.TimeLayout)
	d.CreatedAt = now
	if err := s.l.Upsert(dateKey, nil, d); err != nil {
		return nil, err
	}
	s.l.Admit(d)
	s.structuralChange(dateKey)
	return d.Clone(), s.persist()
}

// UpdateDevice replaces the record at index. The original creation instant
// survives the edit; the time label is refreshed to the edit time, matching
// how a form resubmission behaves. The returned record is a detached copy.
func (s *RepairService) UpdateDevice(dateKey string, index int, d *model.Device) (*model.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	d.Time = now.Format(ledger.TimeLayout)
	d.CreatedAt = now
	if err := s.l.Upsert(dateKey, &index, d); err != nil {
		return nil, err
	}
	s.l.Admit(d)
	return d.Clone(), s.persist()
}

func (s *RepairService) DeleteDevice(dateKey string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.l.Delete(dateKey, index); err != nil {
		return err
	}
	s.structuralChange(dateKey)
	return s.persist()
}

func (s *RepairService) DuplicateDevice(dateKey string, index int) (*model.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dup, err := s.l.Duplicate(dateKey, index, s.now())
	if err != nil {
		return nil, err
	}
	s.structuralChange(dateKey)
	return dup.Clone(), s.persist()
}

// PhotoKind selects which photo slot an upload fills.
type PhotoKind string

const (
	PhotoBefore PhotoKind = "before"
	PhotoAfter  PhotoKind = "after"
)

// SetPhoto attaches a data-URL encoded image to the record.
func (s *RepairService) SetPhoto(dateKey string, index int, kind PhotoKind, dataURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.l.Get(dateKey, index)
	if err != nil {
		return err
	}
	switch kind {
	case PhotoBefore:
		d.PhotoBefore = dataURL
	case PhotoAfter:
		d.PhotoAfter = dataURL
	default:
		return fmt.Errorf("unknown photo kind %q", kind)
	}
	return s.persist()
}

// --- selection / bulk ---

// SelectionState is the transient bulk-select view.
type SelectionState struct {
	Active  bool   `json:"active"`
	Day     string `json:"day,omitempty"`
	Count   int    `json:"count"`
	Indices []int  `json:"indices"`
}

func (s *RepairService) ToggleSelectMode(dateKey string) SelectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.ToggleMode(dateKey)
	return s.selectionState()
}

func (s *RepairService) ToggleSelect(index int) (SelectionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.sel.Toggle(index, s.l.DayLen(s.sel.Day())); err != nil {
		return SelectionState{}, err
	}
	return s.selectionState(), nil
}

func (s *RepairService) SelectAll() (SelectionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.sel.SelectAll(s.l.DayLen(s.sel.Day())); err != nil {
		return SelectionState{}, err
	}
	return s.selectionState(), nil
}

func (s *RepairService) Selection() SelectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectionState()
}

func (s *RepairService) selectionState() SelectionState {
	return SelectionState{
		Active:  s.sel.Active(),
		Day:     s.sel.Day(),
		Count:   s.sel.Count(),
		Indices: s.sel.Indices(),
	}
}

// BulkStatus applies a status to every selected record, then drops back to
// idle and persists.
func (s *RepairService) BulkStatus(status model.Status) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sel.Count() == 0 {
		return 0, errs.ErrEmptySelection
	}
	n, err := s.l.BulkStatus(s.sel.Day(), s.sel.Indices(), status)
	if err != nil {
		return 0, err
	}
	s.sel.Reset()
	return n, s.persist()
}

// BulkDelete removes every selected record (descending index order), then
// drops back to idle and persists.
func (s *RepairService) BulkDelete() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sel.Count() == 0 {
		return 0, errs.ErrEmptySelection
	}
	n, err := s.l.DeleteMany(s.sel.Day(), s.sel.Indices())
	if err != nil {
		return 0, err
	}
	s.sel.Reset()
	return n, s.persist()
}

// SMSOut is one composed message: the sms: link for the UI plus the raw
// parts handed to the optional gateway.
type SMSOut struct {
	Client  string `json:"client"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

// BulkSMS personalizes the template for every selected record that has a
// phone number and hands the messages to the gateway. No ledger data
// changes, but the selection still returns to idle.
func (s *RepairService) BulkSMS(template string) ([]SMSOut, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sel.Count() == 0 {
		return nil, errs.ErrEmptySelection
	}
	day := s.sel.Day()
	var out []SMSOut
	for _, i := range s.sel.Indices() {
		d, err := s.l.Get(day, i)
		if err != nil || d.Phone == "" {
			continue
		}
		msg := artifact.PersonalizeSMS(template, d)
		out = append(out, SMSOut{
			Client:  d.Client,
			Phone:   d.Phone,
			Message: msg,
			URL:     artifact.SMSURL(d.Phone, msg),
		})
		s.sms.SendAsync(d.Phone, msg)
	}
	s.sel.Reset()
	return out, nil
}

// SMSFor composes the per-status message for one record.
func (s *RepairService) SMSFor(dateKey string, index int) (SMSOut, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.l.Get(dateKey, index)
	if err != nil {
		return SMSOut{}, err
	}
	msg := artifact.SMSMessage(d)
	s.sms.SendAsync(d.Phone, msg)
	return SMSOut{
		Client:  d.Client,
		Phone:   d.Phone,
		Message: msg,
		URL:     artifact.SMSURL(d.Phone, msg),
	}, nil
}

// structuralChange drops the selection when the day it points at mutates
// structurally; previously computed indices are no longer valid.
func (s *RepairService) structuralChange(dateKey string) {
	if s.sel.Active() && s.sel.Day() == dateKey {
		s.sel.Reset()
	}
}

// --- queries ---

func (s *RepairService) Stats(dateKey string) query.DayStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return query.Stats(s.l.GetDay(dateKey))
}

func (s *RepairService) Reminders(dateKey string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return query.Reminders(s.l.GetDay(dateKey))
}

func (s *RepairService) PhotoReminder(dateKey string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return query.PhotoReminder(s.l.GetDay(dateKey))
}

func (s *RepairService) Week(ref time.Time) query.WeekStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return query.Week(s.l.Days(), ref)
}

func (s *RepairService) Analytics() query.AnalyticsReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return query.Analytics(s.l.Days())
}

func (s *RepairService) TopProblems(n int) []query.RankedProblem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return query.Analytics(s.l.Days()).TopProblems(n)
}

func (s *RepairService) Clients() []query.ClientSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return query.ClientHistory(s.l.Days())
}

// Suggestions returns the three autocomplete pools.
func (s *RepairService) Suggestions() (clients, models, parts []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.l.Suggestions()
}

// --- artifacts ---

func (s *RepairService) DailyReport(dateKey string) (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return artifact.DailyReport(dateKey, s.l.GetDay(dateKey)), artifact.DailyReportFilename(dateKey)
}

func (s *RepairService) WeekReport(ref time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return artifact.WeekReport(query.Week(s.l.Days(), ref))
}

func (s *RepairService) ClientReport(top int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return artifact.ClientReport(query.ClientHistory(s.l.Days()), top)
}

func (s *RepairService) Invoice(dateKey string, index int) (text, filename string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.l.Get(dateKey, index)
	if err != nil {
		return "", "", err
	}
	now := s.now()
	return artifact.Invoice(d, now), artifact.InvoiceFilename(d, now), nil
}

func (s *RepairService) ThermalTicket(dateKey string, index int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.l.Get(dateKey, index)
	if err != nil {
		return "", err
	}
	return artifact.ThermalTicket(d, dateKey, index, s.now())
}

func (s *RepairService) QRLabel(dateKey string, index int) (artifact.QRPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.l.Get(dateKey, index)
	if err != nil {
		return artifact.QRPayload{}, err
	}
	return artifact.QRLabel(d, dateKey, index), nil
}

// --- persistence ---

// Save flushes the current state. Used by the autosave ticker and on
// shutdown; it is also called after every mutation.
func (s *RepairService) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist()
}

func (s *RepairService) persist() error {
	return s.gw.Save(s.l, s.now())
}

func (s *RepairService) Indicator() store.Indicator {
	return s.gw.Indicator()
}

func (s *RepairService) Export() (data []byte, filename string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gw.Export(s.l, s.now())
}

// ImportPreview parses and validates a backup document without mutating any
// state, returning the record count for the confirmation prompt.
func (s *RepairService) ImportPreview(data []byte) (int, error) {
	_, count, err := s.gw.ParseImport(data)
	return count, err
}

// ImportApply atomically replaces the entire state with the imported
// document. Callers must only invoke it after explicit user confirmation.
func (s *RepairService) ImportApply(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, count, err := s.gw.ParseImport(data)
	if err != nil {
		return 0, err
	}
	if err := s.gw.ApplyImport(s.l, snap, s.now()); err != nil {
		return 0, err
	}
	s.sel.Reset()
	s.log.Info("imported backup", "records", count)
	return count, nil
}

// Wipe clears everything, memory and stored document both.
func (s *RepairService) Wipe() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Reset()
	return s.gw.Wipe(s.l)
}

func (s *RepairService) CountRecords() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.l.CountRecords()
}

// --- background timers ---

// TrackTime refreshes the computed time-spent labels for today's
// in-progress tickets.
func (s *RepairService) TrackTime() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	return s.l.TrackTime(now.Format("2006-01-02"), now)
}

// RunBackground drives the two periodic tasks: the belt-and-suspenders
// persistence flush and the time-spent recomputation. Both only ever save,
// never load, so they cannot clobber in-memory edits with stale stored
// state. Blocks until ctx is cancelled.
func (s *RepairService) RunBackground(ctx context.Context, autosave, timetrack time.Duration) {
	saveTick := time.NewTicker(autosave)
	trackTick := time.NewTicker(timetrack)
	defer saveTick.Stop()
	defer trackTick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-saveTick.C:
			if err := s.Save(); err != nil {
				s.log.Error("autosave failed", "error", err)
			}
		case <-trackTick.C:
			s.TrackTime()
		}
	}
}
