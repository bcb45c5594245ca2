package view

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/chezflora/flora-admin/internal/shared"
	"github.com/chezflora/flora-admin/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates. Every admin page
// renders inside the layout shell, which consumes Prefs, Nav and UserName;
// Data carries the page specific view model.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	Prefs       shared.UIPrefs
	Nav         []NavSection
	UserName    string
	Data        any
}

var frenchPrinter = message.NewPrinter(language.French)

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"formatDate": func(value string) string {
			for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
				if t, err := time.Parse(layout, value); err == nil {
					return t.Format("02/01/2006")
				}
			}
			return value
		},
		"formatDateTime": func(value string) string {
			for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
				if t, err := time.Parse(layout, value); err == nil {
					return t.Format("02/01/2006 15:04")
				}
			}
			return value
		},
		"euro": Euro,
		"statusClass": func(status string) string {
			switch status {
			case "en_attente":
				return "badge-warning"
			case "en_cours":
				return "badge-info"
			case "expediee", "livree", "succes", "accepte":
				return "badge-success"
			case "annulee", "echec", "refuse":
				return "badge-danger"
			default:
				return "badge-neutral"
			}
		},
		"statusLabel": func(status string) string {
			label := strings.ReplaceAll(status, "_", " ")
			if label == "" {
				return label
			}
			return strings.ToUpper(label[:1]) + label[1:]
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}

// Euro formats an API money string (decimal) as a French EUR amount.
// Unparseable values pass through untouched.
func Euro(value string) string {
	amount, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return value
	}
	return frenchPrinter.Sprintf("%.2f €", amount)
}
