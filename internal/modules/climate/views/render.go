package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
	"strconv"

	"github.com/asymonsziebart/TempHumidityMonitor/internal/modules/climate/types"
)

var dashboardTmpl *template.Template

// loadTemplatesFromFS loads dashboard templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	dashboardTmpl = tmpl
	return nil
}

// LoadTemplates loads embedded dashboard templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

var funcs = template.FuncMap{
	"fixed1": func(f float64) string { return strconv.FormatFloat(f, 'f', 1, 64) },
}

// DashboardData is the view model for the main page.
type DashboardData struct {
	Connected    bool
	HasReading   bool
	TemperatureF float64
	HumidityPct  float64
	Timestamp    string
	Extrema      types.Extrema
	Alerts       types.Alerts
	Thresholds   types.Thresholds
	// Series seeds the charts; the page keeps them current afterwards.
	Series         []types.SeriesPoint
	WeatherEnabled bool
}

func RenderDashboard(w io.Writer, data *DashboardData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "dashboard.html", data)
}
