// Package output provides formatters for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"taskdesk/internal/service"
)

// Format is an output format for task data.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// NoDueDate is shown in place of a missing due date.
const NoDueDate = "none"

// MaxTitleWidth is the widest title cell before truncation.
const MaxTitleWidth = 60

// Headers are the task table columns.
var Headers = []string{"Title", "Priority", "Status", "Due", "Created"}

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	}
	return "", fmt.Errorf("unknown format %q (want table, json or yaml)", s)
}

// Cells returns the table cells of a task, in Headers order.
func Cells(task service.Task) []string {
	return []string{
		truncate(NormalizeTitle(task.Title), MaxTitleWidth),
		task.Priority.Label(),
		task.Status.Label(),
		FormatDate(task.DueDate),
		task.CreatedAt.UTC().Format(service.DateLayout),
	}
}

// FormatDate renders an optional date as YYYY-MM-DD, or "none".
func FormatDate(t *time.Time) string {
	if t == nil {
		return NoDueDate
	}
	return t.UTC().Format(service.DateLayout)
}

// WriteTable writes a numbered, column-aligned task table.
// Format: "#  Title  Priority  Status  Due  Created", one task per line,
// numbered from 1 in list order.
func WriteTable(w io.Writer, tasks []service.Task) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\t"+strings.Join(Headers, "\t"))
	for i, task := range tasks {
		fmt.Fprintln(tw, strconv.Itoa(i+1)+"\t"+strings.Join(Cells(task), "\t"))
	}
	return tw.Flush()
}

// WriteTasks writes a task list in the given format.
func WriteTasks(w io.Writer, f Format, tasks []service.Task) error {
	if tasks == nil {
		tasks = []service.Task{}
	}
	switch f {
	case FormatJSON:
		return writeJSON(w, tasks)
	case FormatYAML:
		return writeYAML(w, tasks)
	}
	return WriteTable(w, tasks)
}

// WriteTask writes one task in the given format. The table format is a
// list of "Field: value" lines.
func WriteTask(w io.Writer, f Format, task service.Task) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, task)
	case FormatYAML:
		return writeYAML(w, task)
	}

	description := ""
	if task.Description != nil {
		description = *task.Description
	}
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", task.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", NormalizeTitle(task.Title))
	fmt.Fprintf(tw, "Description:\t%s\n", singleLine(description))
	fmt.Fprintf(tw, "Priority:\t%s\n", task.Priority.Label())
	fmt.Fprintf(tw, "Status:\t%s\n", task.Status.Label())
	fmt.Fprintf(tw, "Due:\t%s\n", FormatDate(task.DueDate))
	fmt.Fprintf(tw, "Created:\t%s\n", task.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(tw, "Updated:\t%s\n", task.UpdatedAt.UTC().Format(time.RFC3339))
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// NormalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func NormalizeTitle(title string) string {
	title = singleLine(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func singleLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return s
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}
