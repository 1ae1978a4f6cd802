package model

import "time"

type Status string

const (
	StatusReceived   Status = "received"
	StatusDiagnostic Status = "diagnostic"
	StatusWaiting    Status = "waiting"
	StatusRepaired   Status = "repaired"
	StatusDelivered  Status = "delivered"
)

func (s Status) Valid() bool {
	switch s {
	case StatusReceived, StatusDiagnostic, StatusWaiting, StatusRepaired, StatusDelivered:
		return true
	}
	return false
}

// Resolved reports whether the ticket no longer needs work.
func (s Status) Resolved() bool {
	return s == StatusRepaired || s == StatusDelivered
}

func (s Status) Label() string {
	switch s {
	case StatusReceived:
		return "Received"
	case StatusDiagnostic:
		return "Diagnostic"
	case StatusWaiting:
		return "Waiting for parts"
	case StatusRepaired:
		return "Repaired"
	case StatusDelivered:
		return "Delivered"
	}
	return string(s)
}

type Urgency string

const (
	UrgencyNormal  Urgency = "normal"
	UrgencyUrgent  Urgency = "urgent"
	UrgencyExpress Urgency = "express"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyNormal, UrgencyUrgent, UrgencyExpress:
		return true
	}
	return false
}

func (u Urgency) Label() string {
	switch u {
	case UrgencyUrgent:
		return "Urgent"
	case UrgencyExpress:
		return "Express"
	}
	return "Normal"
}

type Priority string

const (
	PriorityNormal   Priority = "normal"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityNormal, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// DefaultWarrantyMonths applies when a ticket is created without an explicit
// warranty period.
const DefaultWarrantyMonths = "3"

// Device is one repair ticket. Price, Duration and Warranty stay
// text-convertible: they round-trip through the snapshot document unchanged
// and are parsed only where arithmetic needs them.
type Device struct {
	Client   string   `json:"client"`
	Phone    string   `json:"phone,omitempty"`
	Model    string   `json:"model"`
	Problem  string   `json:"problem"`
	Price    string   `json:"price,omitempty"`
	Duration string   `json:"duration,omitempty"`
	Status   Status   `json:"status"`
	Urgency  Urgency  `json:"urgency,omitempty"`
	Priority Priority `json:"priority,omitempty"`
	Parts    string   `json:"parts,omitempty"`
	Warranty string   `json:"warranty,omitempty"`

	// Time is the display time-of-day label ("09:15"); Date is the day key
	// the record belongs to; CreatedAt is the creation instant and is
	// immutable across edits.
	Time      string    `json:"time"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"createdAt"`

	// TimeSpent is recomputed periodically for in-progress tickets (hours
	// elapsed while in diagnostic/waiting, one decimal).
	TimeSpent string `json:"timeSpent,omitempty"`

	// Photo fields hold data-URL encoded images.
	PhotoBefore string `json:"photoBefore,omitempty"`
	PhotoAfter  string `json:"photoAfter,omitempty"`
}

// Normalize enforces the closed enumerations and defaults at construction
// time instead of resolving fallbacks at each read site.
func (d *Device) Normalize() {
	if !d.Status.Valid() {
		d.Status = StatusReceived
	}
	if !d.Urgency.Valid() {
		d.Urgency = UrgencyNormal
	}
	if !d.Priority.Valid() {
		d.Priority = PriorityNormal
	}
	if d.Warranty == "" {
		d.Warranty = DefaultWarrantyMonths
	}
}

func (d *Device) Clone() *Device {
	c := *d
	return &c
}

// EffectiveWarranty returns the warranty period with the default applied.
func (d *Device) EffectiveWarranty() string {
	if d.Warranty == "" {
		return DefaultWarrantyMonths
	}
	return d.Warranty
}

// NeedsPhoto reports whether a photo reminder applies: a received ticket
// without a before photo, or a repaired ticket without an after photo.
func (d *Device) NeedsPhoto() bool {
	return (d.Status == StatusReceived && d.PhotoBefore == "") ||
		(d.Status == StatusRepaired && d.PhotoAfter == "")
}
