package service

import (
	"time"

	"repairbox/internal/ledger"
	"repairbox/internal/model"
)

// seedSampleData loads a small demo day on first run so the UI has
// something to show. Caller holds the mutex and persists afterwards.
func (s *RepairService) seedSampleData() {
	now := s.now()
	today := now.Format("2006-01-02")
	yesterday := now.AddDate(0, 0, -1)
	yesterdayKey := yesterday.Format("2006-01-02")

	samples := []struct {
		day string
		d   model.Device
	}{
		{today, model.Device{
			Client: "Sarah Bennett", Phone: "06 12 34 56 78",
			Model: "iPhone 15 Pro Max", Problem: "Cracked screen after a fall, touch partly unresponsive",
			Price: "320", Duration: "2.5", Status: model.StatusDiagnostic,
			Urgency: model.UrgencyUrgent, Priority: model.PriorityHigh,
			Parts: "OLED screen, Glass protector", Warranty: "6",
			Time: "09:15", CreatedAt: now.Add(-2 * time.Hour),
		}},
		{today, model.Device{
			Client: "Marco Diaz", Phone: "07 89 01 23 45",
			Model: "Samsung Galaxy S24 Ultra", Problem: "Battery drains very fast, abnormal overheating",
			Price: "95", Duration: "1", Status: model.StatusWaiting,
			Parts: "Original Samsung battery", Warranty: "12",
			Time: "10:30", CreatedAt: now.Add(-time.Hour),
		}},
		{today, model.Device{
			Client: "Lena Fischer", Phone: "06 55 44 33 22",
			Model: "iPhone 13 Mini", Problem: "Charging issue, faulty Lightning connector",
			Price: "75", Duration: "1.5", Status: model.StatusRepaired,
			Parts: "Lightning connector", Warranty: "3",
			Time: "14:20", CreatedAt: now.Add(-4 * time.Hour),
		}},
		{yesterdayKey, model.Device{
			Client: "Omar Haddad", Phone: "06 77 88 99 00",
			Model: "iPhone 12", Problem: "Swollen battery, replacement needed",
			Price: "80", Duration: "1", Status: model.StatusDelivered,
			Urgency: model.UrgencyUrgent, Priority: model.PriorityHigh,
			Parts: "Battery", Warranty: "6",
			Time: "10:00", CreatedAt: yesterday,
		}},
	}

	for i := range samples {
		d := samples[i].d
		d.Date = samples[i].day
		if d.Time == "" {
			d.Time = now.Format(ledger.TimeLayout)
		}
		_ = s.l.Upsert(samples[i].day, nil, &d)
		s.l.Admit(&d)
	}
	s.log.Info("seeded sample data", "records", s.l.CountRecords())
}
