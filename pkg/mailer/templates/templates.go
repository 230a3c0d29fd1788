package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	htmpl "html/template"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// Welcome is sent after a successful registration.
const Welcome = "welcome"

var ErrUnknownTemplate = errors.New("unknown email template")

// EmailData is the data every catalog email template can use.
type EmailData struct {
	Name    string `json:"Name"`
	Email   string `json:"Email"`
	Type    string `json:"Type"`
	AppName string `json:"AppName"`

	Time   string    `json:"Time"`
	TimeAt time.Time `json:"TimeAt"`
}

// ToMap converts EmailData into the generic map carried by a queued job.
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// defaultFn supports pipe usage: {{ .Name | default "reader" }}. Jobs arrive
// as decoded JSON, so only nil and blank strings count as empty.
func defaultFn(fallback, value any) any {
	switch x := value.(type) {
	case nil:
		return fallback
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
	}
	return value
}

var funcs = map[string]any{
	"upper":   strings.ToUpper,
	"default": defaultFn,
}

// Both sets are parsed once; a broken template fails at startup.
var (
	textSet = texttpl.Must(texttpl.New("email").Funcs(funcs).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl"))
	htmlSet = htmpl.Must(htmpl.New("email").Funcs(funcs).ParseFS(FS, "*.html.tmpl"))
)

// Render executes <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl.
// The subject is trimmed to one line.
func Render(name string, data any) (subject, text, html string, err error) {
	if textSet.Lookup(name+".subject.tmpl") == nil {
		return "", "", "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	var buf bytes.Buffer
	if err := textSet.ExecuteTemplate(&buf, name+".subject.tmpl", data); err != nil {
		return "", "", "", fmt.Errorf("render %s subject: %w", name, err)
	}
	subject = strings.Join(strings.Fields(buf.String()), " ")

	buf.Reset()
	if textSet.Lookup(name+".text.tmpl") != nil {
		if err := textSet.ExecuteTemplate(&buf, name+".text.tmpl", data); err != nil {
			return "", "", "", fmt.Errorf("render %s text: %w", name, err)
		}
		text = buf.String()
	}

	buf.Reset()
	if htmlSet.Lookup(name+".html.tmpl") != nil {
		if err := htmlSet.ExecuteTemplate(&buf, name+".html.tmpl", data); err != nil {
			return "", "", "", fmt.Errorf("render %s html: %w", name, err)
		}
		html = buf.String()
	}
	return subject, text, html, nil
}
