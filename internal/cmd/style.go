package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/pmos/internal/gate"
	"github.com/felixgeelhaar/pmos/internal/role"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 2)
)

func roleStyle(r role.Role) lipgloss.Style {
	switch r {
	case role.Manager, role.Both:
		return okStyle
	case role.TeamMember:
		return valueStyle
	default:
		return warnStyle
	}
}

func actionStyle(a gate.Action) lipgloss.Style {
	switch a {
	case gate.Allow:
		return okStyle
	case gate.Redirect:
		return warnStyle
	default:
		return errStyle
	}
}

// keyValues prints aligned "key  value" lines.
func keyValues(w io.Writer, pairs ...string) {
	width := 0
	for i := 0; i < len(pairs); i += 2 {
		if len(pairs[i]) > width {
			width = len(pairs[i])
		}
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		pad := strings.Repeat(" ", width-len(pairs[i]))
		fmt.Fprintf(w, "  %s%s  %s\n", keyStyle.Render(pairs[i]), pad, pairs[i+1])
	}
}
