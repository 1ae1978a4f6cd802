package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"repairbox/internal/model"
)

// QRPayload is the machine-readable label content. ID follows the
// RB-<dateKey>-<index> pattern and addresses the record's position within
// its day sequence.
type QRPayload struct {
	ID     string `json:"id"`
	Client string `json:"client"`
	Model  string `json:"model"`
	Date   string `json:"date"`
	Status string `json:"status"`
}

// QRLabel builds the payload for the record at index of its day.
func QRLabel(d *model.Device, dateKey string, index int) QRPayload {
	return QRPayload{
		ID:     fmt.Sprintf("RB-%s-%d", dateKey, index),
		Client: d.Client,
		Model:  d.Model,
		Date:   d.Date,
		Status: string(d.Status),
	}
}

// QRJSON serializes the payload the way it is encoded into the QR image.
func (p QRPayload) QRJSON() ([]byte, error) {
	return json.Marshal(p)
}

// qrImageSize matches the 200px rendering of the on-screen label.
const qrImageSize = 200

// QRPNG encodes the payload as a scannable PNG image.
func (p QRPayload) QRPNG() ([]byte, error) {
	data, err := p.QRJSON()
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(string(data), qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// thermalTmpl is the 80mm printable ticket. Ticket numbers on the printed
// ticket are 1-based (RB-<date>-<index+1>), unlike the QR payload id.
var thermalTmpl = template.Must(template.New("thermal").Parse(`<html>
<head>
<title>RepairBox Ticket</title>
<style>
@media print {
    * { margin: 0; padding: 0; box-sizing: border-box; }
    body { font-family: 'Courier New', monospace; font-size: 12px; line-height: 1.2; color: black; background: white; }
    .thermal-ticket { width: 80mm; margin: 0; padding: 5mm; }
    .thermal-header { text-align: center; font-weight: bold; font-size: 14px; margin-bottom: 10px; border-bottom: 1px dashed black; padding-bottom: 5px; }
    .thermal-section { margin: 8px 0; }
    .thermal-line { display: flex; justify-content: space-between; margin: 2px 0; }
    .thermal-separator { border-top: 1px dashed black; margin: 8px 0; }
    .thermal-qr { text-align: center; margin: 10px 0; }
    .thermal-footer { text-align: center; font-size: 10px; margin-top: 10px; border-top: 1px dashed black; padding-top: 5px; }
}
</style>
</head>
<body>
<div class="thermal-ticket">
    <div class="thermal-header">
        REPAIRBOX
        <br>Repair Ticket
    </div>
    <div class="thermal-section">
        <div class="thermal-line"><span>Ticket no:</span><span>{{.TicketNo}}</span></div>
        <div class="thermal-line"><span>Date:</span><span>{{.PrintedDate}}</span></div>
        <div class="thermal-line"><span>Time:</span><span>{{.Device.Time}}</span></div>
    </div>
    <div class="thermal-separator"></div>
    <div class="thermal-section">
        <strong>CLIENT:</strong><br>
        {{.Device.Client}}<br>
        {{.Phone}}
    </div>
    <div class="thermal-separator"></div>
    <div class="thermal-section">
        <strong>DEVICE:</strong><br>
        {{.Device.Model}}<br><br>
        <strong>PROBLEM:</strong><br>
        {{.Device.Problem}}
    </div>
    <div class="thermal-separator"></div>
    <div class="thermal-section">
        <div class="thermal-line"><span>Status:</span><span>{{.StatusLabel}}</span></div>
        <div class="thermal-line"><span>Urgency:</span><span>{{.UrgencyLabel}}</span></div>
        <div class="thermal-line"><span>Estimated price:</span><span>{{.Price}}</span></div>
        {{if .Device.Warranty}}<div class="thermal-line"><span>Warranty:</span><span>{{.Device.Warranty}} months</span></div>{{end}}
    </div>
    <div class="thermal-separator"></div>
    <div class="thermal-qr">
        [QR CODE PLACEHOLDER]
        <br>ID: {{.TicketNo}}
    </div>
    <div class="thermal-footer">
        Thank you for your trust<br>
        {{.Signature}}<br>
        Please keep this ticket
    </div>
</div>
</body>
</html>
`))

type thermalData struct {
	Device       *model.Device
	TicketNo     string
	PrintedDate  string
	Phone        string
	StatusLabel  string
	UrgencyLabel string
	Price        string
	Signature    string
}

// ThermalTicket renders the printable 80mm ticket HTML.
func ThermalTicket(d *model.Device, dateKey string, index int, now time.Time) (string, error) {
	data := thermalData{
		Device:       d,
		TicketNo:     fmt.Sprintf("RB-%s-%d", dateKey, index+1),
		PrintedDate:  now.Format("2006-01-02"),
		Phone:        orDefault(d.Phone, "", "Tel: not provided"),
		StatusLabel:  d.Status.Label(),
		UrgencyLabel: d.Urgency.Label(),
		Price:        orDefault(d.Price+"€", "€", "TBD"),
		Signature:    shopSignature,
	}
	var buf bytes.Buffer
	if err := thermalTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render thermal ticket: %w", err)
	}
	return buf.String(), nil
}
