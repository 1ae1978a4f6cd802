// Package artifact renders the generate-only documents derived from the
// ledger: daily reports, invoices, printable thermal tickets, QR labels and
// SMS messages. Nothing here is re-imported.
package artifact

import (
	"fmt"
	"strings"

	"repairbox/internal/model"
	"repairbox/internal/query"
)

const shopSignature = "RepairBox - Your mobile repair specialist"

// DailyReport renders the plain-text report for one day.
func DailyReport(dateKey string, day []*model.Device) string {
	var b strings.Builder
	b.WriteString("REPAIRBOX - DAILY REPORT\n")
	b.WriteString("=====================================================\n")
	fmt.Fprintf(&b, "Date: %s\n", dateKey)
	fmt.Fprintf(&b, "Total devices: %d\n\n", len(day))

	for i, d := range day {
		fmt.Fprintf(&b, "%d. %s\n", i+1, d.Model)
		if d.Phone != "" {
			fmt.Fprintf(&b, "   Client: %s (%s)\n", d.Client, d.Phone)
		} else {
			fmt.Fprintf(&b, "   Client: %s\n", d.Client)
		}
		fmt.Fprintf(&b, "   Problem: %s\n", d.Problem)
		fmt.Fprintf(&b, "   Status: %s\n", d.Status.Label())
		fmt.Fprintf(&b, "   Urgency: %s\n", d.Urgency.Label())
		fmt.Fprintf(&b, "   Price: %s\n", orDefault(d.Price+"€", "€", "TBD"))
		fmt.Fprintf(&b, "   Parts: %s\n", orDefault(d.Parts, "", "None"))
		fmt.Fprintf(&b, "   Time: %s\n\n", d.Time)
	}

	s := query.Stats(day)
	b.WriteString("STATISTICS:\n")
	fmt.Fprintf(&b, "- Total: %d\n", s.Total)
	fmt.Fprintf(&b, "- Repaired: %d\n", s.Repaired)
	fmt.Fprintf(&b, "- Pending: %d\n", s.Pending)
	fmt.Fprintf(&b, "- Revenue: %.0f€\n", s.Revenue)
	return b.String()
}

// DailyReportFilename names the downloadable report artifact.
func DailyReportFilename(dateKey string) string {
	return fmt.Sprintf("RepairBox_Report_%s.txt", dateKey)
}

// WeekReport renders the trailing-week statistics block.
func WeekReport(w query.WeekStats) string {
	var b strings.Builder
	b.WriteString("WEEK STATISTICS\n\n")
	fmt.Fprintf(&b, "Total devices: %d\n", w.Total)
	fmt.Fprintf(&b, "Repaired: %d\n", w.Repaired)
	fmt.Fprintf(&b, "Revenue: %.0f€\n", w.Revenue)
	fmt.Fprintf(&b, "Average/day: %.1f devices\n", w.AvgPerDay)
	return b.String()
}

// ClientReport renders the top-clients history report. A top of zero or
// less lists every client; the header always carries the listed count.
func ClientReport(clients []query.ClientSummary, top int) string {
	if top > 0 && len(clients) > top {
		clients = clients[:top]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "TOP %d CLIENTS REPAIRBOX\n\n", len(clients))
	for i, c := range clients {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c.Name)
		fmt.Fprintf(&b, "   Phone: %s\n", orDefault(c.Phone, "", "not provided"))
		fmt.Fprintf(&b, "   Spent: %.0f€\n", c.TotalSpent)
		fmt.Fprintf(&b, "   Devices: %d\n", c.Visits)
		fmt.Fprintf(&b, "   Last visit: %s\n\n", c.LastVisit)
	}
	return b.String()
}

// orDefault returns value unless it equals empty, in which case def.
// empty allows suffixed fields ("€") to fall back cleanly.
func orDefault(value, empty, def string) string {
	if value == empty {
		return def
	}
	return value
}
