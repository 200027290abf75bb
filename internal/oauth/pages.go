package oauth

import (
	"embed"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/Masterminds/sprig/v3"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(
	template.New("pages").Funcs(sprig.HtmlFuncMap()).ParseFS(templateFS, "templates/*.html"),
)

type pageData struct {
	Kind       string
	Message    string
	Hint       string
	Diagnostic string
	Time       time.Time
}

// statusFor picks the HTTP status of the result page.
func statusFor(o *AuthOutcome) int {
	switch o.Kind {
	case OutcomeSuccess:
		return http.StatusOK
	case OutcomeExchangeFault:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// renderOutcome writes the result page for o.
func renderOutcome(w io.Writer, o *AuthOutcome) error {
	name := "failure.html"
	if o.Succeeded() {
		name = "success.html"
	}
	return pageTemplates.ExecuteTemplate(w, name, pageData{
		Kind:       o.Kind.String(),
		Message:    o.Message,
		Hint:       o.Hint,
		Diagnostic: o.Diagnostic,
		Time:       time.Now(),
	})
}
