// Package templates renders the HTML and plain-text bodies of queued emails.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io"
	texttemplate "text/template"
)

// Each template type has a <name>.html body and an optional <name>.txt body.
//
//go:embed *.html *.txt
var templateFS embed.FS

// Renderer holds the parsed email templates.
type Renderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

func NewRenderer() (*Renderer, error) {
	html, err := htmltemplate.ParseFS(templateFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML templates: %w", err)
	}
	text, err := texttemplate.ParseFS(templateFS, "*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse text templates: %w", err)
	}
	return &Renderer{html: html, text: text}, nil
}

// Render returns the HTML and text bodies of name. The text body is empty when the
// template has no .txt version.
func (r *Renderer) Render(name string, data any) (string, string, error) {
	html, err := execute(r.html, name+".html", data)
	if err != nil {
		return "", "", err
	}
	if r.text.Lookup(name+".txt") == nil {
		return html, "", nil
	}

	text, err := execute(r.text, name+".txt", data)
	if err != nil {
		return "", "", err
	}
	return html, text, nil
}

type executor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

func execute(tmpl executor, name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}

// VerificationData fills email_verification.
type VerificationData struct {
	UserName        string
	VerificationURL string
	ExpiresIn       string
}

// BudgetAlertData fills budget_alert.
type BudgetAlertData struct {
	UserName      string
	MonthLabel    string
	MonthlyBudget string
	MonthlySpent  string
}
