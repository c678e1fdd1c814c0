package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/arclabs561/runctl/pkg/models/domain"
)

type TableConfig struct {
	NameWidth        int
	ValueWidth       int
	UnitWidth        int
	DescriptionWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:        24,
		ValueWidth:       20,
		UnitWidth:        12,
		DescriptionWidth: 44,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (c *Reporter) funcMap() template.FuncMap {
	return template.FuncMap{
		"formatRow": func(name string, value interface{}, unit string, desc string) string {
			unitStr := unit
			if unit == "" {
				unitStr = strings.Repeat(" ", c.config.UnitWidth)
			}
			return fmt.Sprintf("| %-*s | %-*v | %-*s | %-*s |",
				c.config.NameWidth, name,
				c.config.ValueWidth, value,
				c.config.UnitWidth, unitStr,
				c.config.DescriptionWidth, desc)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.NameWidth+2),
				strings.Repeat("-", c.config.ValueWidth+2),
				strings.Repeat("-", c.config.UnitWidth+2),
				strings.Repeat("-", c.config.DescriptionWidth+2))
		},
	}
}

// Handle renders a fleet cost report.
func (c *Reporter) Handle(report *domain.Report) error {
	tmpl := `
{{.Title}}

Tracked Period: {{.Period.Start.Format "2006-01-02 15:04"}} to {{.Period.End.Format "2006-01-02 15:04"}}
Total Cost: {{.Currency}} {{printf "%.4f" .TotalAmount}}

{{range .Sections}}
=== {{.Title}} ===
{{range $key, $value := .Summary}}{{$key}}: {{$value}}
{{end}}
{{separator}}
{{formatRow "Name" "Value" "Unit" "Description"}}
{{separator}}
{{range .Details}}{{formatRow .Name .Value .Unit .Description}}
{{end}}{{separator}}
{{end}}
`

	t, err := template.New("report").Funcs(c.funcMap()).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, report)
}

// HandleCleanup renders a cleanup classification, flagging dry-run
// previews so operators know nothing was touched.
func (c *Reporter) HandleCleanup(result *domain.CleanupResult, dryRun bool) error {
	tmpl := `
Cleanup {{if .DryRun}}preview (dry run, nothing deleted){{else}}result{{end}}

{{if .Result.Deleted}}Deletable:
{{range .Result.Deleted}}  - {{.}}
{{end}}{{else}}Nothing is safe to delete.
{{end}}{{if .Result.Skipped}}
Skipped:
{{range .Result.Skipped}}  - {{.ID}}: {{.Reason}}
{{end}}{{end}}{{if .Result.Errors}}
Errors:
{{range .Result.Errors}}  - {{.ID}}: {{.Err}}
{{end}}{{end}}`

	t, err := template.New("cleanup").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, struct {
		Result *domain.CleanupResult
		DryRun bool
	}{result, dryRun})
}
