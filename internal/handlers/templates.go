package handlers

import (
	"embed"
	"html/template"
	"time"

	"hospitalms/web/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded views once at startup. Every page shares the
// head/navbar/footer partials defined in layout.html.
func Templates() *template.Template {
	funcs := template.FuncMap{
		"fmtDateTime": func(t time.Time) string {
			if t.IsZero() {
				return "N/A"
			}
			return t.Format("Jan 2, 2006 3:04 PM")
		},
		"statusColor": statusColor,
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// statusColor maps an appointment status to its bootstrap badge variant.
func statusColor(status models.AppointmentStatus) string {
	switch status {
	case models.StatusScheduled:
		return "primary"
	case models.StatusConfirmed:
		return "success"
	case models.StatusInProgress:
		return "warning"
	case models.StatusCompleted:
		return "info"
	case models.StatusCancelled:
		return "danger"
	case models.StatusNoShow:
		return "secondary"
	}
	return "secondary"
}
