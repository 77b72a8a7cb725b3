package export

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/template"

	"github.com/de-tools/report-forge/pkg/models/domain"
)

type TableConfig struct {
	NameWidth  int
	ValueWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:  40,
		ValueWidth: 16,
	}
}

// Reporter prints the aggregate summary to the console in a formatted
// text form after a run.
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

type categoryRow struct {
	Name   string
	Amount float64
}

type reportView struct {
	domain.AggregateView
	SortedCategories []categoryRow
}

func (c *Reporter) Handle(view domain.AggregateView) error {
	funcMap := template.FuncMap{
		"formatRow": func(name string, value interface{}) string {
			return fmt.Sprintf("| %-*s | %*v |",
				c.config.NameWidth, name,
				c.config.ValueWidth, value)
		},
		"formatAmount": func(v float64) string {
			return fmt.Sprintf("%.2f", v)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+",
				strings.Repeat("-", c.config.NameWidth+2),
				strings.Repeat("-", c.config.ValueWidth+2))
		},
	}

	tmpl := `
Sales Summary ({{.RecordCount}} records)

Total: {{formatAmount .Total}}
Average: {{formatAmount .Average}}
Top Seller: {{.Top.Name}} ({{formatAmount .Top.Amount}})

{{separator}}
{{formatRow "Category" "Amount"}}
{{separator}}
{{range .SortedCategories}}{{formatRow .Name (formatAmount .Amount)}}
{{end}}{{separator}}
`

	t, err := template.New("summary").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	rows := make([]categoryRow, 0, len(view.Categories))
	for name, amount := range view.Categories {
		rows = append(rows, categoryRow{Name: name, Amount: amount})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Amount > rows[j].Amount })

	return t.Execute(c.writer, reportView{AggregateView: view, SortedCategories: rows})
}
