package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/hexplanner/pkg/reach"
)

// stdout receives all human-readable command output. Tests swap it.
var stdout io.Writer = os.Stdout

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - titles, possible nodes
	colorGreen  = lipgloss.Color("35")  // Green - success, active nodes
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - orphaned nodes
	colorBlue   = lipgloss.Color("75")  // Light blue - suggested commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - labels
	colorDim    = lipgloss.Color("240") // Dim gray - muted text, inactive nodes
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)

	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	// stateStyles color a node by its classification.
	stateStyles = map[reach.NodeState]lipgloss.Style{
		reach.Active:   lipgloss.NewStyle().Foreground(colorGreen),
		reach.Possible: lipgloss.NewStyle().Foreground(colorCyan),
		reach.Orphan:   lipgloss.NewStyle().Foreground(colorRed),
		reach.Inactive: lipgloss.NewStyle().Foreground(colorDim),
	}
)

// =============================================================================
// Status Lines
// =============================================================================

type statusKind int

const (
	statusSuccess statusKind = iota
	statusWarning
	statusInfo
)

var statusIcons = map[statusKind]string{
	statusSuccess: StyleSuccess.Render("✓"),
	statusWarning: StyleWarning.Render("!"),
	statusInfo:    lipgloss.NewStyle().Foreground(colorGray).Render("›"),
}

func printStatus(kind statusKind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if kind == statusWarning {
		msg = StyleWarning.Render(msg)
	}
	fmt.Fprintln(stdout, statusIcons[kind]+" "+msg)
}

func printSuccess(format string, args ...any) { printStatus(statusSuccess, format, args...) }
func printWarning(format string, args ...any) { printStatus(statusWarning, format, args...) }
func printInfo(format string, args ...any)    { printStatus(statusInfo, format, args...) }

// printDetail prints an indented, muted line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints the path of a written file.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() { fmt.Fprintln(stdout) }

// =============================================================================
// Planner Output
// =============================================================================

// printSelectionStats prints selection counts on one line, followed by any
// extra parts.
func printSelectionStats(selected, active, orphan int, extra ...string) {
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d selected", selected)),
		StyleDim.Render(fmt.Sprintf("%d active", active)),
	}
	if orphan > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d orphaned", orphan)))
	}
	parts = append(parts, extra...)
	fmt.Fprintln(stdout, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// cacheStatus labels an artifact as cached or freshly rendered.
func cacheStatus(cached bool) string {
	if cached {
		return StyleSuccess.Render("cached")
	}
	return lipgloss.NewStyle().Foreground(colorGray).Render("fresh")
}

// stateLabel renders a node state in its color.
func stateLabel(s reach.NodeState) string {
	return stateStyles[s].Render(s.String())
}
