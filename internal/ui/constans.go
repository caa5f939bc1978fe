package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
)

const listHeight = 14
const defaultWidth = 30

// wantSelected is the number of environments a comparison needs.
const wantSelected = 2

var (
	appStyle          = lipgloss.NewStyle()
	titleStyle        = lipgloss.NewStyle().MarginTop(1)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(2)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	statusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	paginationStyle   = list.DefaultStyles().PaginationStyle
	helpStyle         = list.DefaultStyles().HelpStyle.PaddingBottom(1)
)
