package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
	labelColor   = color.New(color.FgWhite, color.Bold)
	valueColor   = color.New(color.FgHiBlack)
	dimColor     = color.New(color.FgHiBlack)
)

// statusColor picks the color for a file, texture, leaf or task status.
func statusColor(status string) *color.Color {
	switch status {
	case "new", "converted", "optimized", "created":
		return successColor
	case "modified", "skipped":
		return warningColor
	case "deleted", "failed":
		return errorColor
	case "valid":
		return valueColor
	}
	if strings.HasPrefix(status, "Completed") {
		return successColor
	}
	return infoColor
}

// PrintSection prints a blank-line padded section title.
func PrintSection(title string) {
	fmt.Println()
	_, _ = headerColor.Printf("▸ %s\n", title)
	fmt.Println()
}

func PrintSubsection(title string) {
	_, _ = infoColor.Printf("  %s\n", title)
}

func PrintSuccess(msg string) {
	_, _ = successColor.Printf("✓ %s\n", msg)
}

func PrintWarning(msg string) {
	_, _ = warningColor.Printf("⚠ %s\n", msg)
}

// PrintError writes to stderr so it survives stdout redirection.
func PrintError(msg string) {
	_, _ = errorColor.Fprintf(os.Stderr, "✗ %s\n", msg)
}

func PrintInfo(msg string) {
	fmt.Println(msg)
}

// PrintLabelValue prints an indented "label: value" line.
func PrintLabelValue(label, value string) {
	PrintLabelValueWithColor(label, value, valueColor)
}

func PrintLabelValueWithColor(label, value string, clr *color.Color) {
	_, _ = labelColor.Printf("  %s: ", label)
	_, _ = clr.Println(value)
}

// PrintList prints items as bullets, indented by two spaces per level.
func PrintList(items []string, indent int) {
	pad := strings.Repeat("  ", indent)
	for _, item := range items {
		_, _ = infoColor.Printf("%s• %s\n", pad, item)
	}
}

func PrintNumberedList(items []string, indent int) {
	pad := strings.Repeat("  ", indent)
	for i, item := range items {
		_, _ = infoColor.Printf("%s%d. %s\n", pad, i+1, item)
	}
}

// PrintTable prints rows under a header and a dashed rule. Column widths are
// measured in terminal cells so non-ASCII file names line up. The column at
// statusCol, if any, is colored by statusColor.
func PrintTable(headers []string, rows [][]string, statusCol int) {
	if len(headers) == 0 || len(rows) == 0 {
		return
	}
	widths := columnWidths(headers, rows)

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	printRow(headers, widths, func(int, string) *color.Color { return headerColor })
	printRow(rule, widths, func(int, string) *color.Color { return dimColor })
	for _, row := range rows {
		printRow(row, widths, func(i int, cell string) *color.Color {
			if i == statusCol {
				return statusColor(cell)
			}
			return valueColor
		})
	}
}

func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}
	return widths
}

func printRow(cells []string, widths []int, pick func(int, string) *color.Color) {
	var b strings.Builder
	b.WriteString("  ")
	for i := 0; i < len(cells) && i < len(widths); i++ {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(pick(i, cells[i]).Sprint(runewidth.FillRight(cells[i], widths[i])))
	}
	fmt.Println(b.String())
}

// PrintEmptyState prints a dimmed placeholder for an empty listing.
func PrintEmptyState(msg string) {
	_, _ = dimColor.Printf("  %s\n", msg)
}

func PrintSeparator() {
	_, _ = labelColor.Println("\n  " + strings.Repeat("─", 58))
}

// PrintCount returns "1 file" or "3 files".
func PrintCount(count int, singular, plural string) string {
	noun := plural
	if count == 1 {
		noun = singular
	}
	return fmt.Sprintf("%d %s", count, noun)
}

// formatBytes renders a byte count with a binary unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
