// Package store is the persistence gateway: it serializes the ledger and
// suggestion pools to a single JSON document stored under one well-known
// key in the local database, and round-trips the same shape through
// import/export backup files.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"repairbox/internal/errs"
	"repairbox/internal/ledger"
	"repairbox/internal/model"
)

const (
	// StorageKey is the well-known document key.
	StorageKey = "repairbox_data"

	// SnapshotVersion tags every document this build writes. Documents
	// carrying other versions are accepted best-effort and re-tagged on
	// the next save.
	SnapshotVersion = "2.0"
)

// Snapshot is the persisted document shape. LastSaved is set by Save,
// ExportDate by Export; a document carries one or the other.
type Snapshot struct {
	Devices           map[string][]*model.Device `json:"devices"`
	ClientSuggestions []string                   `json:"clientSuggestions"`
	DeviceSuggestions []string                   `json:"deviceSuggestions"`
	PartsSuggestions  []string                   `json:"partsSuggestions"`
	LastSaved         string                     `json:"lastSaved,omitempty"`
	ExportDate        string                     `json:"exportDate,omitempty"`
	Version           string                     `json:"version"`
}

// CountRecords sums sequence lengths across all date keys.
func (s *Snapshot) CountRecords() int {
	n := 0
	for _, day := range s.Devices {
		n += len(day)
	}
	return n
}

// IndicatorStatus mirrors the save indicator states of the UI.
type IndicatorStatus string

const (
	IndicatorReady  IndicatorStatus = "ready"
	IndicatorSaved  IndicatorStatus = "saved"
	IndicatorError  IndicatorStatus = "error"
	IndicatorSaving IndicatorStatus = "saving"
)

// Indicator is the externally visible persistence state.
type Indicator struct {
	Status    IndicatorStatus `json:"status"`
	LastSaved *time.Time      `json:"lastSaved,omitempty"`
	LastError string          `json:"lastError,omitempty"`
}

type document struct {
	Key       string `gorm:"primaryKey;column:key"`
	Value     []byte
	UpdatedAt time.Time
}

func (document) TableName() string { return "documents" }

// Gateway persists snapshots to the documents table.
type Gateway struct {
	db  *gorm.DB
	log *slog.Logger

	mu        sync.Mutex
	indicator Indicator
}

func NewGateway(db *gorm.DB, log *slog.Logger) *Gateway {
	return &Gateway{
		db:        db,
		log:       log.With("component", "store"),
		indicator: Indicator{Status: IndicatorReady},
	}
}

// Save serializes the ledger state and replaces the stored document
// entirely. The upsert runs in a transaction, so a failed write leaves the
// prior document intact. Failures are reported to the caller and on the
// indicator; they never corrupt in-memory state.
func (g *Gateway) Save(l *ledger.Ledger, now time.Time) error {
	g.setIndicator(IndicatorSaving, nil, "")

	snap := g.snapshot(l)
	snap.LastSaved = now.UTC().Format(time.RFC3339)
	snap.Version = SnapshotVersion

	data, err := json.Marshal(snap)
	if err != nil {
		g.setIndicator(IndicatorError, nil, err.Error())
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	err = g.db.Transaction(func(tx *gorm.DB) error {
		row := document{Key: StorageKey, Value: data, UpdatedAt: now}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			UpdateAll: true,
		}).Create(&row).Error
	})
	if err != nil {
		g.setIndicator(IndicatorError, nil, err.Error())
		g.log.Error("save failed", "error", err)
		return fmt.Errorf("write document: %w", err)
	}

	saved := now
	g.setIndicator(IndicatorSaved, &saved, "")
	g.log.Debug("saved", "days", len(l.Days()), "records", l.CountRecords())
	return nil
}

// Load reads and parses the stored document, replacing the ledger state
// wholesale on success. A missing document is not an error and returns
// found=false. A malformed document returns an error and leaves in-memory
// state untouched.
func (g *Gateway) Load(l *ledger.Ledger) (found bool, err error) {
	var row document
	if err := g.db.First(&row, "key = ?", StorageKey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("read document: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(row.Value, &snap); err != nil {
		g.log.Error("stored document is malformed", "error", err)
		return false, fmt.Errorf("parse document: %w", err)
	}

	l.Replace(snap.Devices, snap.ClientSuggestions, snap.DeviceSuggestions, snap.PartsSuggestions)
	if ts, perr := time.Parse(time.RFC3339, snap.LastSaved); perr == nil {
		g.setIndicator(IndicatorReady, &ts, "")
	}
	g.log.Info("loaded", "days", len(l.Days()), "records", l.CountRecords(), "version", snap.Version)
	return true, nil
}

// Export produces the downloadable backup artifact: the save shape with an
// explicit export timestamp, pretty-printed, named by the current date.
func (g *Gateway) Export(l *ledger.Ledger, now time.Time) (data []byte, filename string, err error) {
	snap := g.snapshot(l)
	snap.ExportDate = now.UTC().Format(time.RFC3339)
	snap.Version = SnapshotVersion

	data, err = json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("marshal export: %w", err)
	}
	filename = fmt.Sprintf("RepairBox_Backup_%s.json", now.Format("2006-01-02"))
	return data, filename, nil
}

// ParseImport validates an externally supplied backup document without
// mutating any state. A document whose top-level devices field is absent
// is rejected. The returned count sums record sequence lengths across all
// date keys, for the caller's confirmation prompt.
func (g *Gateway) ParseImport(data []byte) (*Snapshot, int, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, 0, fmt.Errorf("parse import: %w", err)
	}
	if snap.Devices == nil {
		return nil, 0, errs.ErrInvalidSnapshot
	}
	return &snap, snap.CountRecords(), nil
}

// ApplyImport atomically replaces the entire ledger state with the imported
// snapshot and persists it. Partial import is not a supported mode.
func (g *Gateway) ApplyImport(l *ledger.Ledger, snap *Snapshot, now time.Time) error {
	l.Replace(snap.Devices, snap.ClientSuggestions, snap.DeviceSuggestions, snap.PartsSuggestions)
	return g.Save(l, now)
}

// Wipe removes the persisted document, then clears in-memory state. The row
// delete goes first: if it fails, memory still matches the stored document.
// Confirmation policy belongs to the caller boundary.
func (g *Gateway) Wipe(l *ledger.Ledger) error {
	if err := g.db.Delete(&document{}, "key = ?", StorageKey).Error; err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	l.Clear()
	g.setIndicator(IndicatorReady, nil, "")
	return nil
}

// Indicator returns the current save indicator state.
func (g *Gateway) Indicator() Indicator {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.indicator
}

func (g *Gateway) snapshot(l *ledger.Ledger) Snapshot {
	clients, models, parts := l.Suggestions()
	return Snapshot{
		Devices:           l.Days(),
		ClientSuggestions: clients,
		DeviceSuggestions: models,
		PartsSuggestions:  parts,
	}
}

func (g *Gateway) setIndicator(status IndicatorStatus, saved *time.Time, lastErr string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.indicator.Status = status
	g.indicator.LastError = lastErr
	if saved != nil {
		g.indicator.LastSaved = saved
	}
}
