package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pterm/pterm"

	"github.com/fr4nk3nst1ner/langsalary/internal/models"
)

// Formats accepted by Render
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatHTML  = "html"
)

// TableOptions controls the text rendering of a report
type TableOptions struct {
	AreaLabel string
	Locale    string
	// Color enables salary band colors
	Color bool
}

var columnTitles = []string{"Vacancies found", "Vacancies processed", "Average salary"}

// Title is the first header cell, e.g. "HeadHunter Moscow"
func Title(report *models.StatsReport, areaLabel string) string {
	return strings.TrimSpace(report.Source.Title() + " " + areaLabel)
}

// Rows returns the header and one row per term in report order
func Rows(report *models.StatsReport, opts TableOptions) [][]string {
	rows := [][]string{append([]string{Title(report, opts.AreaLabel)}, columnTitles...)}
	report.Each(func(stats models.TermStats) {
		average := FormatSalary(stats.AverageSalary, opts.Locale)
		if opts.Color {
			average = ColorizeSalary(stats.AverageSalary, opts.Locale)
		}
		rows = append(rows, []string{
			stats.Term,
			strconv.Itoa(stats.VacanciesFound),
			strconv.Itoa(stats.VacanciesProcessed),
			average,
		})
	})
	return rows
}

// RenderTable writes one boxed table per report
func RenderTable(w io.Writer, reports []*models.StatsReport, opts TableOptions) error {
	for _, report := range reports {
		table, err := pterm.DefaultTable.
			WithHasHeader().
			WithBoxed().
			WithData(Rows(report, opts)).
			Srender()
		if err != nil {
			return fmt.Errorf("rendering %s table: %w", report.Source, err)
		}
		if _, err := fmt.Fprintln(w, table); err != nil {
			return err
		}
	}
	return nil
}

// RenderJSON writes the reports as an indented JSON array
func RenderJSON(w io.Writer, reports []*models.StatsReport) error {
	if reports == nil {
		reports = []*models.StatsReport{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

const htmlSkeleton = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Programming language salaries</title>
<style>
table { border-collapse: collapse; margin-bottom: 2em; }
th, td { border: 1px solid #999; padding: 4px 8px; }
td.number { text-align: right; }
td.no-data { color: #999; }
</style>
</head>
<body><main></main></body>
</html>`

const htmlSection = `<section><h2></h2><table><thead><tr></tr></thead><tbody></tbody></table></section>`

// RenderHTML writes a standalone page with one table per report
func RenderHTML(w io.Writer, reports []*models.StatsReport, opts TableOptions) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlSkeleton))
	if err != nil {
		return err
	}

	container := doc.Find("main")
	for _, report := range reports {
		container.AppendHtml(htmlSection)
		section := container.Children().Last()
		section.SetAttr("data-source", string(report.Source))
		section.Find("h2").SetText(Title(report, opts.AreaLabel))

		head := section.Find("thead tr")
		for _, title := range append([]string{"Language"}, columnTitles...) {
			appendCell(head, "th", title, "")
		}

		body := section.Find("tbody")
		report.Each(func(stats models.TermStats) {
			body.AppendHtml("<tr></tr>")
			row := body.Children().Last()
			appendCell(row, "td", stats.Term, "term")
			appendCell(row, "td", FormatCount(stats.VacanciesFound, opts.Locale), "number")
			appendCell(row, "td", FormatCount(stats.VacanciesProcessed, opts.Locale), "number")
			class := "number"
			if stats.AverageSalary == nil {
				class = "no-data"
			}
			appendCell(row, "td", FormatSalary(stats.AverageSalary, opts.Locale), class)
		})
	}

	out, err := goquery.OuterHtml(doc.Find("html"))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "<!DOCTYPE html>\n"+out+"\n")
	return err
}

func appendCell(row *goquery.Selection, tag, text, class string) {
	row.AppendHtml("<" + tag + "></" + tag + ">")
	cell := row.Children().Last()
	cell.SetText(text)
	if class != "" {
		cell.SetAttr("class", class)
	}
}

// Render dispatches on format
func Render(w io.Writer, format string, reports []*models.StatsReport, opts TableOptions) error {
	switch format {
	case FormatTable, "":
		return RenderTable(w, reports, opts)
	case FormatJSON:
		return RenderJSON(w, reports)
	case FormatHTML:
		return RenderHTML(w, reports, opts)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
