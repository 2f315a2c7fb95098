package email

import (
	"bytes"
	"fmt"
	"html/template"
)

const WelcomeSubject = "Welcome to My Newsletter!"

const RecoverySubject = "Reset your password"

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"></head>
<body style="margin:0;padding:0;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Arial,sans-serif;background-color:#f4f4f5;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width:600px;margin:0 auto;padding:40px 20px;">
    <tr><td style="background:linear-gradient(135deg,#6366f1 0%,#8b5cf6 100%);border-radius:16px 16px 0 0;padding:40px;text-align:center;">
      <h1 style="color:#ffffff;margin:0;font-size:28px;">Welcome!</h1>
    </td></tr>
    <tr><td style="background-color:#ffffff;padding:40px;border-radius:0 0 16px 16px;color:#374151;font-size:16px;line-height:1.6;">
      <p>Thank you for subscribing to my newsletter! I'm thrilled to have you on board.</p>
      <p>You'll receive updates about:</p>
      <ul>
        <li>New projects and innovations</li>
        <li>Research publications and findings</li>
        <li>Industry insights and tech trends</li>
      </ul>
      <p style="text-align:center;margin:30px 0;">
        <a href="{{.SiteURL}}" style="display:inline-block;background:#6366f1;color:#ffffff;text-decoration:none;padding:14px 32px;border-radius:8px;font-weight:600;">Visit My Portfolio</a>
      </p>
      <p style="color:#6b7280;font-size:14px;border-top:1px solid #e5e7eb;padding-top:20px;">
        Best regards,<br><strong style="color:#374151;">{{.Owner}}</strong>
      </p>
    </td></tr>
  </table>
</body>
</html>`))

var recoveryTmpl = template.Must(template.New("recovery").Parse(
	`<p>Someone asked to reset the password for {{.Email}}.</p>` +
		`<p><a href="{{.Link}}">Choose a new password</a> (the link expires in {{.TTL}}).</p>` +
		`<p>If this wasn't you, ignore this email.</p>`))

type WelcomeData struct {
	SiteURL string
	Owner   string
}

type RecoveryData struct {
	Email string
	Link  string
	TTL   string
}

func RenderWelcome(d WelcomeData) (string, error) {
	return render(welcomeTmpl, d)
}

func RenderRecovery(d RecoveryData) (string, error) {
	return render(recoveryTmpl, d)
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}
