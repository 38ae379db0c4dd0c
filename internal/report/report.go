// Package report renders the analysis leaderboards into a static HTML page
// and offers to open it in a platform viewer. Opening is best-effort; the
// report on disk is the deliverable.
package report

import (
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"strconv"

	"tsecli/internal/analyze"
	"tsecli/internal/errors"
)

// Writer renders an Analysis to an HTML file.
type Writer struct {
	logger *slog.Logger
	opener Opener
}

// NewWriter creates a report writer. The opener may be nil to disable the
// viewer entirely.
func NewWriter(logger *slog.Logger, opener Opener) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger, opener: opener}
}

// section is one leaderboard table on the page.
type section struct {
	Title string
	Head  []string
	Rows  [][]string
}

// pageData feeds the report template: sections are laid out two per row.
type pageData struct {
	Pairs [][2]section
}

// Write renders the analysis to path and then tries to open it in a viewer.
// Failure to open is logged and never escalated.
func (w *Writer) Write(analysis *analyze.Analysis, path string) error {
	data := pageData{
		Pairs: [][2]section{
			{
				metricSection("Highest Exchange Turnover", "Volume", analysis.HighestVolume),
				metricSection("Lowest Exchange Turnover", "Volume", analysis.LowestVolume),
			},
			{
				metricSection("Highest Exchange Number", "Trades", analysis.HighestCount),
				metricSection("Lowest Exchange Number", "Trades", analysis.LowestCount),
			},
			{
				metricSection("Highest Exchange Value", "Value", analysis.HighestValue),
				metricSection("Lowest Exchange Value", "Value", analysis.LowestValue),
			},
			{
				changeSection("Highest Price Increase", analysis.TopIncrease),
				changeSection("Highest Price Decrease", analysis.TopDecrease),
			},
		},
	}

	out, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create report "+path, err)
	}
	defer out.Close()

	if err := pageTemplate.Execute(out, data); err != nil {
		return errors.NewStorageError("failed to render report "+path, err)
	}

	w.logger.Info("report written", slog.String("path", path))

	if w.opener != nil {
		if err := w.opener.Open(path); err != nil {
			w.logger.Error("could not open the report in a viewer",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
	}

	return nil
}

func metricSection(title, metric string, entries []analyze.Entry) section {
	s := section{Title: title, Head: []string{"Symbol", metric}}
	for _, e := range entries {
		s.Rows = append(s.Rows, []string{e.Symbol, formatNumber(e.Metric)})
	}
	return s
}

func changeSection(title string, entries []analyze.ChangeEntry) section {
	s := section{Title: title, Head: []string{"Symbol", "First", "Last", "Change %"}}
	for _, e := range entries {
		s.Rows = append(s.Rows, []string{
			e.Symbol,
			formatNumber(e.FirstPrice),
			formatNumber(e.LastPrice),
			fmt.Sprintf("%.2f", e.ChangePct),
		})
	}
	return s
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en-US">
<head>
<meta charset="UTF-8" />
<meta name="viewport" content="width=device-width, initial-scale=1.0" />
<title>Analysis Results</title>
<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
body { background-color: #777; font-family: sans-serif; }
.container { display: flex; justify-content: space-between; width: 100%; padding: 10px 5% 25px 5%; }
.inner_cont { width: 45%; margin: 10px 0; padding: 20px 0; text-align: center; background-color: rgba(27, 190, 208, 0.6); border-radius: 20px; }
table { margin: 0 auto; border-collapse: collapse; }
th, td { border: 1px solid #333; padding: 4px 12px; }
h1 { margin-bottom: 15px; font-size: 1.2rem; }
</style>
</head>
<body>
{{- range .Pairs}}
<div class="container">
{{- range .}}
<div class="inner_cont">
<h1>{{.Title}}</h1>
<table>
<thead><tr>{{range .Head}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
</div>
{{- end}}
</div>
{{- end}}
</body>
</html>
`))
