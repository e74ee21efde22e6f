package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskdesk/internal/output"
	"taskdesk/internal/service"
	"taskdesk/internal/toast"
	"taskdesk/internal/view"
)

var palette = map[service.Color]lipgloss.Color{
	service.ColorGray:   lipgloss.Color("245"),
	service.ColorBlue:   lipgloss.Color("33"),
	service.ColorOrange: lipgloss.Color("208"),
	service.ColorRed:    lipgloss.Color("196"),
	service.ColorGreen:  lipgloss.Color("42"),
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250"))
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("236"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	modalStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
	focusedLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
	buttonStyle  = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("235"))
	activeButton = buttonStyle.
			Foreground(lipgloss.Color("235")).
			Background(lipgloss.Color("62"))
	disabledButton = buttonStyle.Faint(true)
	successToast   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorToast     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// badge renders a label in its value's color. Unknown colors are gray.
func badge(label string, c service.Color) string {
	fg, ok := palette[c]
	if !ok {
		fg = palette[service.ColorGray]
	}
	return lipgloss.NewStyle().Foreground(fg).Render(label)
}

// columnWidths sizes the table columns to their widest cell.
func columnWidths(rows []view.Row) []int {
	widths := make([]int, len(output.Headers))
	for i, h := range output.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for i, c := range r.Cells {
			if w := lipgloss.Width(c); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// renderTable draws the task table with the cursor row highlighted.
func renderTable(rows []view.Row, cursor int) string {
	widths := columnWidths(rows)
	cell := func(i int, s string) string {
		return lipgloss.NewStyle().Width(widths[i] + 2).Render(s)
	}

	var b strings.Builder
	var header []string
	for i, h := range output.Headers {
		header = append(header, cell(i, headerStyle.Render(h)))
	}
	b.WriteString("  " + strings.Join(header, "") + "\n")

	for n, r := range rows {
		cells := make([]string, len(r.Cells))
		for i, c := range r.Cells {
			switch i {
			case 1:
				c = badge(c, r.Task.Priority.Color())
			case 2:
				c = badge(c, r.Task.Status.Color())
			}
			cells[i] = cell(i, c)
		}
		line := strings.Join(cells, "")
		if n == cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderToast(t toast.Toast) string {
	if t.Kind == toast.Error {
		return errorToast.Render("✗ " + t.Message)
	}
	return successToast.Render("✓ " + t.Message)
}
