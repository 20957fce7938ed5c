package inspector

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) render() string {
	innerWidth := max(m.width-4, 20)
	listHeight := max(m.height-8, 3)

	title := fmt.Sprintf(" respkv-inspect %s (%d keys) ", m.addr, m.dbsize)

	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(innerWidth).
		BorderForeground(lipgloss.Color("240"))

	start := 0
	if len(m.keys) > listHeight {
		start = max(m.cursor-listHeight/2, 0)
		if start+listHeight > len(m.keys) {
			start = len(m.keys) - listHeight
		}
	}
	end := min(start+listHeight, len(m.keys))

	var rows []string
	if len(m.keys) == 0 {
		rows = append(rows, "(empty keyspace)")
	}
	for i := start; i < end; i++ {
		marker := "  "
		if i == m.cursor {
			marker = "▶ "
		}
		row := marker + m.keys[i]
		if i == m.cursor {
			row = lipgloss.NewStyle().Bold(true).Render(row)
		}
		rows = append(rows, row)
	}

	content := strings.Join(rows, "\n")
	box := border.Render(content)

	lines := strings.Split(box, "\n")
	if len(lines) > 0 {
		borderFg := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
		titleStyle := lipgloss.NewStyle().Bold(true)
		dashes := max(innerWidth-len([]rune(title)), 0)
		lines[0] = borderFg.Render("╭") +
			titleStyle.Render(title) +
			borderFg.Render(strings.Repeat("─", dashes)+"╮")
		box = strings.Join(lines, "\n")
	}

	preview := m.renderPreview(innerWidth)
	footer := "q: quit  j/k: navigate  enter: fetch value"

	return strings.Join([]string{box, preview, footer}, "\n")
}

func (m Model) renderPreview(innerWidth int) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(innerWidth).
		BorderForeground(lipgloss.Color("240"))

	if m.selectedKey == "" {
		return border.Render("(select a key and press enter)")
	}

	if m.selectedMiss {
		return border.Render(fmt.Sprintf("%s: (expired or removed since last refresh)", m.selectedKey))
	}

	return border.Render(fmt.Sprintf("%s: %s", m.selectedKey, m.selectedValue))
}
