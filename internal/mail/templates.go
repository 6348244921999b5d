package mail

import (
	"html/template"
	"strings"
)

const resetSubject = "Reset your password"
const adminResetSubject = "Your password reset request"

var resetTemplate = template.Must(template.New("reset").Parse(`
<p>Hello {{.Name}},</p>
<p>You requested a password reset. Click the link below to set a new password:</p>
<p><a href="{{.Link}}">Reset your password</a></p>
<p>This link expires in 15 minutes.</p>
`))

var adminResetTemplate = template.Must(template.New("adminReset").Parse(`
<p>Hello {{.Name}},</p>
<p>An administrator has requested a password reset for your account.
Click the link below to choose a new password:</p>
<p><a href="{{.Link}}">Reset your password</a></p>
<p>This link expires in 15 minutes.</p>
`))

// ResetEmail renders the password-reset message for a user-requested
// reset. The greeting falls back to the email address when the user has
// no full name.
func ResetEmail(to, fullName, resetLink string) Email {
	return renderReset(resetTemplate, resetSubject, to, fullName, resetLink)
}

// AdminResetEmail renders the message for an admin-triggered reset.
func AdminResetEmail(to, fullName, resetLink string) Email {
	return renderReset(adminResetTemplate, adminResetSubject, to, fullName, resetLink)
}

func renderReset(tmpl *template.Template, subject, to, fullName, resetLink string) Email {
	name := fullName
	if name == "" {
		name = to
	}

	var body strings.Builder
	_ = tmpl.Execute(&body, struct {
		Name string
		Link string
	}{Name: name, Link: resetLink})

	return Email{
		To:       to,
		Subject:  subject,
		HTMLBody: body.String(),
	}
}
