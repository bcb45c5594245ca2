package crud

import (
	"fmt"
	"html/template"
	"net/url"
)

// BoolBadge renders a yes/no badge cell.
func BoolBadge(v bool) template.HTML {
	if v {
		return `<span class="badge badge-success">Oui</span>`
	}
	return `<span class="badge badge-neutral">Non</span>`
}

// CountBadge renders a numeric badge cell.
func CountBadge(n int) template.HTML {
	return template.HTML(fmt.Sprintf(`<span class="badge badge-info">%d</span>`, n))
}

// StatusBadge renders a status string with its colour class. The mapping
// mirrors the API's French status vocabulary.
func StatusBadge(status string) template.HTML {
	class := "badge-neutral"
	switch status {
	case "en_attente":
		class = "badge-warning"
	case "en_cours":
		class = "badge-info"
	case "expediee", "livree", "succes", "accepte", "confirme":
		class = "badge-success"
	case "annulee", "echec", "refuse":
		class = "badge-danger"
	}
	return template.HTML(`<span class="badge ` + class + `">` + template.HTMLEscapeString(status) + `</span>`)
}

// BoolField renders a boolean as the form value a checkbox draft expects.
func BoolField(v bool) string {
	if v {
		return "true"
	}
	return ""
}

// Checked reads a submitted checkbox value.
func Checked(values url.Values, name string) bool {
	switch values.Get(name) {
	case "on", "true", "1":
		return true
	}
	return false
}
