package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"libris/internal/api"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

var statusStyles = map[statusKind]struct{ label, color string }{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// renderer writes tables and status sections, colouring only on a terminal.
type renderer struct {
	out      io.Writer
	colorize bool
}

func newRenderer(out io.Writer) *renderer {
	return &renderer{out: out, colorize: shouldColorize(out)}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func passFail(ok bool) statusKind {
	if ok {
		return statusOK
	}
	return statusError
}

func formatStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style, ok := statusStyles[kind]
	if !ok {
		style = statusStyles[statusInfo]
	}
	status := "[" + style.label + "]"
	if message != "" {
		status += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", status)
	if colorize {
		return style.color + line + ansiReset
	}
	return line
}

func (r *renderer) statusLine(label string, kind statusKind, message string) string {
	return formatStatusLine(label, kind, message, r.colorize)
}

func (r *renderer) section(title string, lines []string) {
	heading := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(heading))
	if r.colorize {
		heading = ansiBlue + heading + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	fmt.Fprintln(r.out, heading)
	fmt.Fprintln(r.out, rule)
	for _, line := range lines {
		fmt.Fprintln(r.out, line)
	}
	fmt.Fprintln(r.out)
}

func formatTable(headers []string, rows [][]string, aligns []columnAlignment, colorize bool) string {
	if len(headers) == 0 {
		return ""
	}

	tw := table.NewWriter()
	style := table.StyleRounded
	if colorize {
		style.Color.Header = text.Colors{text.Bold, text.FgHiBlue}
	}
	tw.SetStyle(style)

	header := make(table.Row, len(headers))
	configs := make([]table.ColumnConfig, len(headers))
	for i, h := range headers {
		header[i] = h
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}

func (r *renderer) table(headers []string, rows [][]string, aligns []columnAlignment) {
	fmt.Fprintln(r.out, formatTable(headers, rows, aligns, r.colorize))
}

func (r *renderer) books(books []api.Book) {
	rows := make([][]string, 0, len(books))
	for _, b := range books {
		rows = append(rows, []string{
			strconv.FormatInt(b.ID, 10), b.Title, b.Author,
			strconv.Itoa(b.YearPublished), strconv.Itoa(b.Stock),
		})
	}
	r.table([]string{"ID", "Title", "Author", "Year", "Stock"}, rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight})
}

func (r *renderer) users(users []api.User) {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{strconv.FormatInt(u.ID, 10), u.Name, u.City, strconv.Itoa(u.Age)})
	}
	r.table([]string{"ID", "Name", "City", "Age"}, rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight})
}

func (r *renderer) loans(loans []api.Loan) {
	rows := make([][]string, 0, len(loans))
	for _, l := range loans {
		rows = append(rows, []string{
			strconv.FormatInt(l.ID, 10),
			strconv.FormatInt(l.BookID, 10),
			strconv.FormatInt(l.UserID, 10),
			strconv.FormatInt(l.LoanDate, 10),
			strconv.Itoa(l.LoanLength),
			yesNo(l.Returned),
		})
	}
	r.table([]string{"ID", "Book", "User", "Date", "Days", "Returned"}, rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft})
}

func (r *renderer) health(h api.DatabaseHealth) []string {
	overall, detail := statusOK, "Healthy"
	if !h.Healthy {
		overall, detail = statusError, "Unhealthy"
		if h.Error != "" {
			detail += ": " + h.Error
		}
	}
	lines := []string{
		r.statusLine("Database", overall, detail),
		r.statusLine("Path", statusInfo, h.Path),
		r.statusLine("Readable", passFail(h.DatabaseReadable), yesNo(h.DatabaseReadable)),
		r.statusLine("Schema version", statusInfo, strconv.Itoa(h.SchemaVersion)),
		r.statusLine("Integrity check", passFail(h.IntegrityCheck), yesNo(h.IntegrityCheck)),
	}
	if len(h.MissingTables) > 0 {
		lines = append(lines, r.statusLine("Missing tables", statusError, strings.Join(h.MissingTables, ", ")))
	}
	return lines
}
