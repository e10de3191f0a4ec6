package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/shopease/backend/internal/model/chat"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	roleStyles = map[chat.Role]lipgloss.Style{
		chat.RoleUser:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		chat.RoleAssistant: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		chat.RoleSystem:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
)

func roleLabel(role chat.Role) string {
	label := "[" + string(role) + "]"
	if style, ok := roleStyles[role]; ok {
		return style.Render(label)
	}
	return label
}
