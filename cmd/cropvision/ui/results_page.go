package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"cropvision/internal/present"
)

// ResultsPageModel renders the prediction payload and owns the download
// action's local state. A download failure never leaves this page; it is
// shown inline and retryable.
type ResultsPageModel struct {
	viewport viewport.Model
	progress progress.Model
	styles   Styles
	width    int
	height   int

	model   present.DisplayModel
	hasData bool

	// Download state, local to this page by contract.
	downloading bool
	downloadErr string
	savedPath   string

	// generation invalidates in-flight downloads once the page is left.
	generation uint64
}

// NewResultsPageModel creates the results page.
func NewResultsPageModel(styles Styles) ResultsPageModel {
	vp := viewport.New(80, 20)
	pr := progress.New(progress.WithSolidFill(string(styles.Theme.Primary)))
	pr.ShowPercentage = false
	pr.Width = 30
	return ResultsPageModel{viewport: vp, progress: pr, styles: styles}
}

// SetSize updates the size of the viewport.
func (m *ResultsPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.viewport.Height = h - 4 // Reserve space for header/footer
	m.refresh()
}

// UpdateContent replaces the displayed prediction.
func (m *ResultsPageModel) UpdateContent(model present.DisplayModel) {
	m.model = model
	m.hasData = true
	m.downloading = false
	m.downloadErr = ""
	m.savedPath = ""
	m.refresh()
}

// Leave invalidates the page state when the workflow moves on. Any
// download still in flight reports against a stale generation and is
// dropped in FinishDownload.
func (m *ResultsPageModel) Leave() {
	m.generation++
	m.hasData = false
	m.downloading = false
	m.downloadErr = ""
	m.savedPath = ""
}

// StartDownload flips the local loading flag and returns the generation
// the completion must present.
func (m *ResultsPageModel) StartDownload() uint64 {
	m.downloading = true
	m.downloadErr = ""
	m.savedPath = ""
	m.refresh()
	return m.generation
}

// Downloading reports whether a download is in flight.
func (m ResultsPageModel) Downloading() bool {
	return m.downloading
}

// FinishDownload applies a download completion. Completions carrying a
// stale generation are ignored.
func (m *ResultsPageModel) FinishDownload(generation uint64, path string, err error) {
	if generation != m.generation {
		return
	}
	m.downloading = false
	if err != nil {
		m.downloadErr = "Report download failed: " + err.Error()
	} else {
		m.savedPath = path
	}
	m.refresh()
}

// Update handles scrolling.
func (m ResultsPageModel) Update(msg tea.Msg) (ResultsPageModel, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// refresh rebuilds the viewport content.
func (m *ResultsPageModel) refresh() {
	if !m.hasData {
		m.viewport.SetContent("")
		return
	}

	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("Crop Yield Prediction Results"))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Subtitle.Render(m.model.Headline))
	sb.WriteString("\n\n")

	sb.WriteString(m.styles.Bold.Render("Harvest Timeline"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  %d days to harvest (expected %s)\n",
		m.model.HarvestDays, m.model.HarvestDate.Format("02 Jan 2006")))
	sb.WriteString("\n")

	sb.WriteString(m.styles.Bold.Render("Estimated Yield"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  %.0f kg/ha\n\n", m.model.YieldKgPerHa))

	sb.WriteString(m.styles.Bold.Render("Recommended Fertilizer (N-P-K)"))
	sb.WriteString("\n")
	for _, bar := range m.model.Fertilizer {
		sb.WriteString(fmt.Sprintf("  %-16s %6.1f kg/ha  %s\n",
			bar.Label, bar.KgHa, m.progress.ViewAs(bar.Ratio)))
	}
	sb.WriteString("\n")

	renderRows := func(title string, rows []present.Row) {
		sb.WriteString(m.styles.Bold.Render(title))
		sb.WriteString("\n")
		for _, row := range rows {
			sb.WriteString(fmt.Sprintf("  %-26s %s\n", row.Label, row.Value))
		}
		sb.WriteString("\n")
	}
	renderRows("Soil Health", m.model.Soil)
	renderRows("Predicted Environmental Conditions", m.model.Environmental)

	switch {
	case m.downloading:
		sb.WriteString(m.styles.Info.Render("Generating report..."))
		sb.WriteString("\n")
	case m.downloadErr != "":
		sb.WriteString(m.styles.Error.Render(m.downloadErr))
		sb.WriteString("\n")
	case m.savedPath != "":
		sb.WriteString(m.styles.Success.Render("Report saved to " + m.savedPath))
		sb.WriteString("\n")
	}

	m.viewport.SetContent(sb.String())
}

// View renders the page.
func (m ResultsPageModel) View() string {
	footer := m.styles.Footer.Render("d download report · r start over · ↑/↓ scroll · ctrl+c quit")
	return m.viewport.View() + "\n" + footer
}
