package email

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	subjectLeadAssigned         = "New patient lead assigned to your clinic"
	subjectSubscriptionExpiring = "Your lead subscription is about to expire"
)

type expiryTemplateData struct {
	ExpiryNotice
	ExpiresOn string
}

var templates = template.Must(template.New("email").Parse(`
{{define "lead_assigned"}}
<html><body>
<p>Hello {{.ClinicName}},</p>
<p>A new patient lead was assigned to your clinic:</p>
<ul>
<li><strong>Name:</strong> {{.ConsumerName}}</li>
<li><strong>Phone:</strong> {{.ConsumerPhone}}</li>
<li><strong>City:</strong> {{.City}}</li>
<li><strong>Treatment:</strong> {{.Service}}</li>
</ul>
<p>You have {{.QuotaRemaining}} lead(s) remaining on your current subscription.</p>
{{if .PanelURL}}<p><a href="{{.PanelURL}}">Open your panel</a> to contact the patient.</p>{{end}}
</body></html>
{{end}}

{{define "subscription_expiring"}}
<html><body>
<p>Hello {{.ClinicName}},</p>
<p>Your lead subscription expires on <strong>{{.ExpiresOn}}</strong>.</p>
<p>You still have {{.QuotaRemaining}} lead(s) available until then.</p>
{{if .PanelURL}}<p><a href="{{.PanelURL}}">Open your panel</a> to renew.</p>{{end}}
</body></html>
{{end}}
`))

func renderTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render email template %s: %w", name, err)
	}
	return buf.String(), nil
}
