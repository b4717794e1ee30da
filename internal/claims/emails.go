package claims

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/google/uuid"

	"github.com/aidanjnn/lost-found-app/pkg/enums"
	"github.com/aidanjnn/lost-found-app/pkg/mailer"
)

type emailKind string

const (
	emailSubmitted emailKind = "submitted"
	emailApproved  emailKind = "approved"
	emailRejected  emailKind = "rejected"
	emailPickedUp  emailKind = "picked_up"
)

var emailSubjects = map[emailKind]string{
	emailSubmitted: "Claim Submitted - UW Lost & Found",
	emailApproved:  "✅ Claim Approved - UW Lost & Found",
	emailRejected:  "❌ Claim Update - UW Lost & Found",
	emailPickedUp:  "✅ Item Picked Up - UW Lost & Found",
}

// emailData feeds both the text and HTML bodies.
type emailData struct {
	Kind           emailKind
	ClaimantName   string
	ClaimID        uuid.UUID
	Item           string
	PickupLocation string
	StaffNotes     string
}

const textEmail = `UW Lost & Found - {{.Headline}}

Hi {{.ClaimantName}},
{{if eq .Kind "submitted"}}
Your claim has been successfully submitted!

Claim ID: #{{.ClaimID}}
Item: {{.Item}}
Status: Pending Review

Our staff will review your claim shortly. You will receive another email when your claim status is updated.
{{- else if eq .Kind "approved"}}
Great news! Your claim has been approved.

Claim ID: #{{.ClaimID}}
Item: {{.Item}}
Status: APPROVED

PICKUP LOCATION: {{.PickupLocation}}

What to bring:
- Valid student ID or government-issued photo ID
- This email confirmation
- Any additional proof of ownership if requested

Please pick up your item as soon as possible.
{{- else if eq .Kind "rejected"}}
We've reviewed your claim for the following item.

Claim ID: #{{.ClaimID}}
Item: {{.Item}}
Status: Not Approved
{{if .StaffNotes}}
Staff Notes: {{.StaffNotes}}
{{end}}
If you believe this is an error, visit the Lost & Found desk with proof of ownership or submit a new claim with more detail.
{{- else}}
Your item has been picked up.

Claim ID: #{{.ClaimID}}
Item: {{.Item}}
Status: Picked Up

This claim is now complete.
{{- end}}

Thank you for using UW Lost & Found!

---
University of Waterloo Lost & Found System
This is an automated message. Please do not reply to this email.
`

const htmlEmail = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: #003366; color: white; padding: 20px; text-align: center;">
    <h1>{{.Headline}}</h1>
  </div>
  <div style="background: #f9f9f9; padding: 30px; border: 1px solid #ddd;">
    <p>Hi <strong>{{.ClaimantName}}</strong>,</p>
    <p>
      <strong>Claim ID:</strong> #{{.ClaimID}}<br>
      <strong>Item:</strong> {{.Item}}<br>
      <strong>Status:</strong> {{.StatusLabel}}
    </p>
    {{- if eq .Kind "submitted"}}
    <p>Our staff will review your claim and verification details shortly. You will receive another email when your claim status is updated.</p>
    {{- else if eq .Kind "approved"}}
    <p><strong>Pickup Location:</strong> {{.PickupLocation}}</p>
    <p><strong>What to bring:</strong></p>
    <ul>
      <li>Valid student ID or government-issued photo ID</li>
      <li>This email confirmation (digital or printed)</li>
      <li>Any additional proof of ownership if requested</li>
    </ul>
    {{- else if eq .Kind "rejected"}}
    {{- if .StaffNotes}}
    <p><strong>Staff Notes:</strong><br>{{.StaffNotes}}</p>
    {{- end}}
    <p>If you believe this is an error, visit the Lost &amp; Found desk with proof of ownership or submit a new claim with more detail.</p>
    {{- else}}
    <p>Your item has been picked up. This claim is now complete.</p>
    {{- end}}
    <p>Thank you for using UW Lost &amp; Found!</p>
  </div>
  <div style="text-align: center; padding: 20px; color: #888; font-size: 12px;">
    <p>University of Waterloo Lost &amp; Found System</p>
    <p>This is an automated message. Please do not reply to this email.</p>
  </div>
</div>
</body>
</html>
`

var (
	textTmpl = texttemplate.Must(texttemplate.New("claim_text").Parse(textEmail))
	htmlTmpl = htmltemplate.Must(htmltemplate.New("claim_html").Parse(htmlEmail))
)

func (d emailData) Headline() string {
	switch d.Kind {
	case emailSubmitted:
		return "Claim Submitted"
	case emailApproved:
		return "Claim Approved"
	case emailRejected:
		return "Claim Status Update"
	default:
		return "Item Picked Up"
	}
}

func (d emailData) StatusLabel() string {
	switch d.Kind {
	case emailSubmitted:
		return "Pending Review"
	case emailApproved:
		return "Approved"
	case emailRejected:
		return "Not Approved"
	default:
		return "Picked Up"
	}
}

// emailKindFor maps a transition target to its email; pending has none.
func emailKindFor(status enums.ClaimStatus) (emailKind, bool) {
	switch status {
	case enums.ClaimStatusApproved:
		return emailApproved, true
	case enums.ClaimStatusRejected:
		return emailRejected, true
	case enums.ClaimStatusPickedUp:
		return emailPickedUp, true
	default:
		return "", false
	}
}

func renderEmail(to string, data emailData) (mailer.Message, error) {
	subject, ok := emailSubjects[data.Kind]
	if !ok {
		return mailer.Message{}, fmt.Errorf("unknown email kind %q", data.Kind)
	}
	var text, html bytes.Buffer
	if err := textTmpl.Execute(&text, data); err != nil {
		return mailer.Message{}, fmt.Errorf("render text body: %w", err)
	}
	if err := htmlTmpl.Execute(&html, data); err != nil {
		return mailer.Message{}, fmt.Errorf("render html body: %w", err)
	}
	return mailer.Message{
		To:      to,
		Subject: subject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
