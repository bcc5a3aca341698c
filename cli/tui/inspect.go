package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fuselage-sh/fuselage/cli/reader"
)

// InspectModel is a Bubble Tea model for inspect views.
type InspectModel struct {
	viewType string
	data     any
	width    int
	height   int
	quitting bool
}

// NewInspectModel creates a new inspect model.
func NewInspectModel(viewType string, data any) InspectModel {
	return InspectModel{
		viewType: viewType,
		data:     data,
	}
}

// Init implements tea.Model.
func (m InspectModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m InspectModel) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.viewType {
	case "inspect_resource":
		content = m.renderInspectResource()
	case "inspect_status":
		content = m.renderInspectStatus()
	default:
		content = fmt.Sprintf("Unknown view type: %s", m.viewType)
	}

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return content + "\n" + help
}

func (m InspectModel) renderInspectResource() string {
	data, ok := m.data.(*reader.ResourceDetail)
	if !ok {
		return "Invalid data type for inspect_resource"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Resource Details"))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%s %s\n",
		LabelStyle.Render("ID:"),
		ValueStyle.Render(data.ID)))
	b.WriteString(fmt.Sprintf("%s %s\n",
		LabelStyle.Render("Type:"),
		ValueStyle.Render(data.Type)))
	b.WriteString(fmt.Sprintf("%s %s\n",
		LabelStyle.Render("Policy:"),
		StateStyle(data.Policy).Render(data.Policy)))
	if data.Implicit {
		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render("Implicit:"),
			ValueStyle.Render("true")))
	}

	if len(data.Watches) > 0 {
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render("Watches:\n"))
		for _, id := range data.Watches {
			b.WriteString(fmt.Sprintf("  • %s\n", ValueStyle.Render(id)))
		}
	}

	if len(data.Changes) > 0 {
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render("Changes (watched paths):\n"))
		for _, path := range data.Changes {
			b.WriteString(fmt.Sprintf("  • %s\n", ValueStyle.Render(path)))
		}
	}

	if len(data.Observers) > 0 {
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render("Observers:\n"))
		for _, id := range data.Observers {
			b.WriteString(fmt.Sprintf("  • %s\n", ValueStyle.Render(id)))
		}
	}

	if len(data.Fields) > 0 {
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render("Arguments"))
		b.WriteString("\n")
		keys := make([]string, 0, len(data.Fields))
		for k := range data.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(fmt.Sprintf("%s %s\n",
				LabelStyle.Render("  "+k+":"),
				ValueStyle.Render(fmt.Sprintf("%v", data.Fields[k]))))
		}
	}

	return BoxStyle.Render(b.String())
}

func (m InspectModel) renderInspectStatus() string {
	data, ok := m.data.(*reader.BundleStatus)
	if !ok {
		return "Invalid data type for inspect_status"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Bundle Status"))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%s %s\n",
		LabelStyle.Render("Bundle ID:"),
		ValueStyle.Render(data.BundleID)))
	b.WriteString(fmt.Sprintf("%s %s\n",
		LabelStyle.Render("Resources:"),
		ValueStyle.Render(fmt.Sprintf("%d", data.ResourceCount))))
	b.WriteString(fmt.Sprintf("%s %s\n",
		LabelStyle.Render("State Path:"),
		ValueStyle.Render(data.StatePath)))

	if len(data.PendingTriggers) > 0 {
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render("Pending Triggers:\n"))
		for _, id := range data.PendingTriggers {
			b.WriteString(fmt.Sprintf("  • %s\n", ValueStyle.Render(id)))
		}
	}

	if data.LastRunAt != nil {
		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render("Last Run:"),
			ValueStyle.Render(data.LastRunAt.Format("2006-01-02 15:04:05"))))
	}

	return BoxStyle.Render(b.String())
}

// keyMap defines key bindings.
type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// RunInspectTUI runs the inspect TUI.
func RunInspectTUI(viewType string, data any) error {
	model := NewInspectModel(viewType, data)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderInspectStatic renders inspect data without full TUI (for fallback).
func RenderInspectStatic(viewType string, data any) string {
	model := NewInspectModel(viewType, data)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
