package mailer

import (
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"
	"time"
)

// DefaultBaseURL is used for links when no base URL is configured.
const DefaultBaseURL = "http://localhost:3000"

const (
	verifyPath = "/verify-email"
	resetPath  = "/reset-password"
)

// Composer renders account emails with links rooted at BaseURL.
type Composer struct {
	product         string
	baseURL         string
	verificationTTL time.Duration
	resetTTL        time.Duration
}

func NewComposer(product, baseURL string, verificationTTL, resetTTL time.Duration) *Composer {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Composer{
		product:         product,
		baseURL:         baseURL,
		verificationTTL: verificationTTL,
		resetTTL:        resetTTL,
	}
}

// VerificationLink is the confirmation URL placed in verification emails.
func (c *Composer) VerificationLink(token string) string {
	return c.baseURL + verifyPath + "?token=" + url.QueryEscape(token)
}

// RecoveryLink is the reset URL placed in recovery emails.
func (c *Composer) RecoveryLink(token string) string {
	return c.baseURL + resetPath + "?token=" + url.QueryEscape(token)
}

type bodyData struct {
	Product string
	Name    string
	Link    string
	Expiry  string
}

var (
	verificationHTML = htmltemplate.Must(htmltemplate.New("verification").Parse(
		`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #4F46E5;">Welcome to {{.Product}}, {{.Name}}!</h2>
  <p>Thanks for signing up. Confirm your email address to finish creating your account:</p>
  <p style="text-align: center; margin: 30px 0;"><a href="{{.Link}}" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px;">Confirm email</a></p>
  <p>Or paste this link into your browser:</p>
  <p style="color: #6b7280; font-size: 12px; word-break: break-all;">{{.Link}}</p>
  <p style="color: #6b7280; font-size: 12px;">This link expires in {{.Expiry}}.</p>
</div>`))

	verificationText = texttemplate.Must(texttemplate.New("verification").Parse(
		`Welcome to {{.Product}}, {{.Name}}!

Thanks for signing up. Confirm your email address by opening the link below:

{{.Link}}

This link expires in {{.Expiry}}.
`))

	recoveryHTML = htmltemplate.Must(htmltemplate.New("recovery").Parse(
		`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #4F46E5;">Password reset</h2>
  <p>Hello, {{.Name}}!</p>
  <p>We received a request to reset your password. Use the button below to choose a new one:</p>
  <p style="text-align: center; margin: 30px 0;"><a href="{{.Link}}" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px;">Reset password</a></p>
  <p>Or paste this link into your browser:</p>
  <p style="color: #6b7280; font-size: 12px; word-break: break-all;">{{.Link}}</p>
  <p style="color: #6b7280; font-size: 12px;">This link expires in {{.Expiry}}.</p>
  <p style="color: #dc2626; font-size: 12px;">If you did not ask for a password reset, ignore this email.</p>
</div>`))

	recoveryText = texttemplate.Must(texttemplate.New("recovery").Parse(
		`Password reset

Hello, {{.Name}}!

We received a request to reset your password. Open the link below to choose a new one:

{{.Link}}

This link expires in {{.Expiry}}.
If you did not ask for a password reset, ignore this email.
`))
)

func (c *Composer) Verification(to, name, token string) (Message, error) {
	data := bodyData{Product: c.product, Name: name, Link: c.VerificationLink(token), Expiry: humanizeTTL(c.verificationTTL)}
	return render(to, "Confirm your email - "+c.product, verificationHTML, verificationText, data)
}

func (c *Composer) Recovery(to, name, token string) (Message, error) {
	data := bodyData{Product: c.product, Name: name, Link: c.RecoveryLink(token), Expiry: humanizeTTL(c.resetTTL)}
	return render(to, "Password reset - "+c.product, recoveryHTML, recoveryText, data)
}

func render(to, subject string, html *htmltemplate.Template, text *texttemplate.Template, data bodyData) (Message, error) {
	var hb, tb strings.Builder
	if err := html.Execute(&hb, data); err != nil {
		return Message{}, err
	}
	if err := text.Execute(&tb, data); err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: subject, HTML: hb.String(), Text: tb.String()}, nil
}

// humanizeTTL renders whole hours ("1 hour", "24 hours") and falls back to
// minutes for shorter spans.
func humanizeTTL(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		return plural(int(d/time.Hour), "hour")
	}
	return plural(int(d/time.Minute), "minute")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
