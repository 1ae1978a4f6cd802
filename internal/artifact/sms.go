package artifact

import (
	"fmt"
	"net/url"
	"strings"

	"repairbox/internal/model"
)

// SMSMessage composes the per-status client message for a ticket.
func SMSMessage(d *model.Device) string {
	price := orDefault(d.Price, "", "TBD")
	switch d.Status {
	case model.StatusDiagnostic:
		return fmt.Sprintf("Hello %s, diagnostic completed for your %s. Estimated cost: %s€. Do you confirm the repair?",
			d.Client, d.Model, price)
	case model.StatusWaiting:
		return fmt.Sprintf("Hello %s, your %s is waiting for parts. Expected delivery in 2-3 days. Thank you for your patience.",
			d.Client, d.Model)
	case model.StatusRepaired:
		return fmt.Sprintf("Great news! Your %s is repaired at RepairBox. Amount: %s€. Come pick it up!",
			d.Model, price)
	case model.StatusDelivered:
		return fmt.Sprintf("Thank you %s for your trust. Your %s comes with a %s month warranty. See you soon at RepairBox!",
			d.Client, d.Model, d.EffectiveWarranty())
	default:
		return fmt.Sprintf("Hello %s, we have received your %s at RepairBox. Diagnostic in progress, we will get back to you shortly.",
			d.Client, d.Model)
	}
}

// PersonalizeSMS fills the {client} and {model} placeholders of a bulk
// message template.
func PersonalizeSMS(template string, d *model.Device) string {
	msg := strings.Replace(template, "{client}", d.Client, 1)
	return strings.Replace(msg, "{model}", d.Model, 1)
}

// SMSURL builds the sms: link the UI hands to the OS messaging app.
func SMSURL(phone, message string) string {
	return "sms:" + phone + "?body=" + url.QueryEscape(message)
}
