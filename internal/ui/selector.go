package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrCancelled = errors.New("environment selection cancelled")

// Item is one snapshot environment in the picker. Order is the position in
// which it was picked, 0 when not picked.
type Item struct {
	Value string
	Order int
}

func (i Item) FilterValue() string { return i.Value }

func (i Item) Selected() bool { return i.Order > 0 }

type keyMap struct {
	Toggle key.Binding
	Accept key.Binding
	Quit   key.Binding
	Help   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Accept, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Accept, k.Quit, k.Help},
	}
}

var keys = keyMap{
	Toggle: key.NewBinding(
		key.WithKeys("space", " "),
		key.WithHelp("space", "pick environment"),
	),
	Accept: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "compare"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q/esc", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
}

type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(Item)
	if !ok {
		return
	}

	style := itemStyle
	checkbox := "[ ]"
	if i.Selected() {
		checkbox = fmt.Sprintf("[%d]", i.Order)
		style = selectedItemStyle
	}

	str := fmt.Sprintf("%s %s", checkbox, i.Value)

	fn := style.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

type Model struct {
	List      list.Model
	keys      keyMap
	help      help.Model
	status    string
	picked    []string
	quitting  bool
	cancelled bool
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.List.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Accept):
			if len(m.picked) != wantSelected {
				m.status = fmt.Sprintf("pick exactly %d environments (%d picked)", wantSelected, len(m.picked))
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			m.toggle()
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.List, cmd = m.List.Update(msg)
	return m, cmd
}

// toggle picks or unpicks the item under the cursor, keeping pick order
// dense (1, 2, ...) after an unpick.
func (m *Model) toggle() {
	i, ok := m.List.SelectedItem().(Item)
	if !ok {
		return
	}

	if i.Selected() {
		m.picked = removeValue(m.picked, i.Value)
	} else {
		if len(m.picked) >= wantSelected {
			m.status = fmt.Sprintf("only %d environments can be compared", wantSelected)
			return
		}
		m.picked = append(m.Picked(), i.Value)
	}
	m.status = ""

	for idx, listItem := range m.List.Items() {
		item := listItem.(Item)
		item.Order = 0
		for n, v := range m.picked {
			if v == item.Value {
				item.Order = n + 1
			}
		}
		m.List.SetItem(idx, item)
	}
}

func (m Model) View() string {
	if m.quitting {
		if m.cancelled || len(m.picked) == 0 {
			return "No environments picked.\n"
		}
		return fmt.Sprintf("Comparing %s\n", strings.Join(m.picked, " vs "))
	}

	view := fmt.Sprintf(
		"%s\n\n%s\n\n%s",
		titleStyle.Render("Pick two environments to compare"),
		m.List.View(),
		m.help.View(m.keys),
	)
	if m.status != "" {
		view += "\n" + statusStyle.Render(m.status)
	}
	return appStyle.Render(view)
}

// Picked returns the environments in the order they were picked.
func (m Model) Picked() []string {
	return append([]string(nil), m.picked...)
}

func (m Model) Cancelled() bool {
	return m.cancelled
}

func NewSelectorModel(options []string) Model {
	items := []list.Item{}
	for _, option := range options {
		items = append(items, Item{Value: option})
	}

	l := list.New(items, itemDelegate{}, defaultWidth, listHeight)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle

	h := help.New()
	h.ShowAll = false

	m := Model{List: l, keys: keys, help: h}

	return m
}

// SelectEnvironments runs the picker and returns the two environments to
// compare, first pick first.
func SelectEnvironments(options []string, opts ...tea.ProgramOption) (string, string, error) {
	if len(options) < wantSelected {
		return "", "", fmt.Errorf("need at least %d snapshots to compare, found %d", wantSelected, len(options))
	}

	program := tea.NewProgram(NewSelectorModel(options), opts...)
	m, err := program.Run()
	if err != nil {
		return "", "", err
	}

	finalModel := m.(Model)
	if finalModel.Cancelled() {
		return "", "", ErrCancelled
	}
	picked := finalModel.Picked()
	return picked[0], picked[1], nil
}

func removeValue(slice []string, value string) []string {
	var out []string
	for _, s := range slice {
		if s != value {
			out = append(out, s)
		}
	}
	return out
}
