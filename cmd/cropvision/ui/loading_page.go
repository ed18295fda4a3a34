package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"cropvision/internal/form"
)

// LoadingPageModel shows the spinner while a prediction is in flight.
type LoadingPageModel struct {
	spinner spinner.Model
	styles  Styles
	request form.Request
	width   int
	height  int
}

// NewLoadingPageModel creates the loading page.
func NewLoadingPageModel(styles Styles) LoadingPageModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner
	return LoadingPageModel{spinner: sp, styles: styles}
}

// SetSize updates the page dimensions.
func (m *LoadingPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetRequest records the request being predicted for the status line.
func (m *LoadingPageModel) SetRequest(req form.Request) {
	m.request = req
}

// Tick starts the spinner animation.
func (m LoadingPageModel) Tick() tea.Cmd {
	return m.spinner.Tick
}

// Update advances the spinner.
func (m LoadingPageModel) Update(msg tea.Msg) (LoadingPageModel, tea.Cmd) {
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// View renders the page.
func (m LoadingPageModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Generating prediction"))
	sb.WriteString("\n")
	sb.WriteString(m.spinner.View())
	sb.WriteString(m.styles.Body.Render(" Contacting the prediction service..."))
	sb.WriteString("\n\n")
	if m.request.District != "" {
		sb.WriteString(m.styles.Muted.Render(
			m.request.Crop + " · " + m.request.District + " · " + m.request.Season))
		sb.WriteString("\n")
	}
	return m.styles.Content.Render(sb.String())
}
