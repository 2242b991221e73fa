package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"libris/internal/logging"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"yesno": func(v bool) string {
		if v {
			return "yes"
		}
		return "no"
	},
}).ParseFS(templatesFS, "templates/*.html"))

// renderPage executes a page template into a buffer first so a template
// failure still yields a clean 500.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		logging.WithContext(r.Context(), s.logger).Error("render template",
			logging.String("template", name), logging.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
