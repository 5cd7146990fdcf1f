package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// Kind is the type of transactional email requested by a client
type Kind string

const (
	KindSignup        Kind = "signup"
	KindPasswordReset Kind = "password-reset"
	KindContact       Kind = "contact"
)

// IsValid reports whether k is a known email kind
func (k Kind) IsValid() bool {
	return k == KindSignup || k == KindPasswordReset || k == KindContact
}

// TemplateData is the data rendered into every template
type TemplateData struct {
	Name         string
	Email        string
	PharmacyName string
	Message      string
	Link         string
}

var templates = template.Must(template.New("mail").Parse(`
{{define "signup"}}<h1>Willkommen{{if .Name}}, {{.Name}}{{end}}!</h1>
<p>Thank you for registering{{if .PharmacyName}} {{.PharmacyName}}{{end}}. Please confirm your email address:</p>
<p><a href="{{.Link}}">Confirm email</a></p>{{end}}

{{define "password-reset"}}<h1>Password reset</h1>
<p>We received a request to reset the password for {{.Email}}.</p>
<p><a href="{{.Link}}">Choose a new password</a></p>
<p>If you did not request this, you can ignore this email.</p>{{end}}

{{define "contact-staff"}}<h1>New contact request</h1>
<p><strong>From:</strong> {{.Name}} &lt;{{.Email}}&gt;</p>
{{if .PharmacyName}}<p><strong>Pharmacy:</strong> {{.PharmacyName}}</p>{{end}}
<p>{{.Message}}</p>{{end}}

{{define "contact-reply"}}<h1>Thank you{{if .Name}}, {{.Name}}{{end}}</h1>
<p>We have received your message and will get back to you shortly.</p>{{end}}
`))

// Render executes the named template
func Render(name string, data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", name, err)
	}
	return buf.String(), nil
}
