package artifact

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"repairbox/internal/model"
)

var spaceRun = regexp.MustCompile(`\s+`)

// Invoice renders the plain-text invoice for one ticket.
func Invoice(d *model.Device, now time.Time) string {
	var b strings.Builder
	b.WriteString("# REPAIRBOX - INVOICE\n\n")
	fmt.Fprintf(&b, "Date: %s\n", now.Format("2006-01-02"))
	fmt.Fprintf(&b, "Time: %s\n\n", now.Format("15:04:05"))

	b.WriteString("## CLIENT:\n")
	fmt.Fprintf(&b, "Name: %s\n", d.Client)
	fmt.Fprintf(&b, "Phone: %s\n\n", orDefault(d.Phone, "", "not provided"))

	b.WriteString("## DEVICE:\n")
	fmt.Fprintf(&b, "Model: %s\n", d.Model)
	fmt.Fprintf(&b, "Problem: %s\n", d.Problem)
	fmt.Fprintf(&b, "Status: %s\n\n", d.Status.Label())

	b.WriteString("## REPAIR DETAILS:\n")
	fmt.Fprintf(&b, "Parts used: %s\n", orDefault(d.Parts, "", "None"))
	fmt.Fprintf(&b, "Time spent: %s hours\n", orDefault(d.Duration, "", "not set"))
	fmt.Fprintf(&b, "Warranty: %s months\n\n", d.EffectiveWarranty())

	b.WriteString("## TOTAL:\n")
	fmt.Fprintf(&b, "Total incl. tax: %s€\n\n", orDefault(d.Price, "", "0"))

	b.WriteString("Thank you for your trust!\n")
	b.WriteString(shopSignature + "\n")
	return b.String()
}

// InvoiceFilename names the downloadable invoice artifact after the client
// and the current date.
func InvoiceFilename(d *model.Device, now time.Time) string {
	client := spaceRun.ReplaceAllString(d.Client, "_")
	return fmt.Sprintf("RepairBox_Invoice_%s_%s.txt", client, now.Format("2006-01-02"))
}
