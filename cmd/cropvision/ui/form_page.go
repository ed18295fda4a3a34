package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"cropvision/internal/form"
)

// Field indices for focus handling.
const (
	fieldDistrict = iota
	fieldCrop
	fieldSeason
	fieldSowDate
	fieldCount
)

// FormPageModel renders the prediction form: three catalog-backed choice
// fields cycled with left/right and a free-text sowing date.
type FormPageModel struct {
	schema form.Schema
	styles Styles
	width  int
	height int

	focus    int
	district int // index into schema.Districts, -1 when unselected
	crop     int
	season   int
	sowDate  textinput.Model

	fieldErrs []form.FieldError
	notice    string
}

// NewFormPageModel creates the form page for the given catalog.
func NewFormPageModel(schema form.Schema, styles Styles) FormPageModel {
	ti := textinput.New()
	ti.Placeholder = "YYYY-MM-DD"
	ti.CharLimit = 10
	ti.Width = 14
	ti.Prompt = ""

	return FormPageModel{
		schema:   schema,
		styles:   styles,
		district: -1,
		crop:     -1,
		season:   -1,
		sowDate:  ti,
	}
}

// SetSize updates the page dimensions.
func (m *FormPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Fields returns the raw entered values for validation.
func (m FormPageModel) Fields() form.Fields {
	f := form.Fields{SowDate: strings.TrimSpace(m.sowDate.Value())}
	if m.district >= 0 {
		f.District = m.schema.Districts[m.district]
	}
	if m.crop >= 0 {
		f.Crop = m.schema.Crops[m.crop]
	}
	if m.season >= 0 {
		f.Season = m.schema.Seasons[m.season]
	}
	return f
}

// SetFields restores previously entered values, e.g. after a failed
// submission returns the workflow to the form.
func (m *FormPageModel) SetFields(f form.Fields) {
	m.district = indexOf(m.schema.Districts, f.District)
	m.crop = indexOf(m.schema.Crops, f.Crop)
	m.season = indexOf(m.schema.Seasons, f.Season)
	m.sowDate.SetValue(f.SowDate)
}

// SetFieldErrors records validation errors for display.
func (m *FormPageModel) SetFieldErrors(errs []form.FieldError) {
	m.fieldErrs = errs
}

// SetNotice sets the transient banner message (e.g. a failed prediction).
func (m *FormPageModel) SetNotice(notice string) {
	m.notice = notice
}

// Reset returns the form to its blank state.
func (m *FormPageModel) Reset() {
	m.district, m.crop, m.season = -1, -1, -1
	m.sowDate.SetValue("")
	m.fieldErrs = nil
	m.notice = ""
	m.focus = fieldDistrict
	m.sowDate.Blur()
}

// Update handles key events for the form page.
func (m FormPageModel) Update(msg tea.Msg) (FormPageModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.sowDate, cmd = m.sowDate.Update(msg)
		return m, cmd
	}

	switch keyMsg.Type {
	case tea.KeyUp, tea.KeyShiftTab:
		m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, nil

	case tea.KeyDown, tea.KeyTab:
		m.setFocus((m.focus + 1) % fieldCount)
		return m, nil

	case tea.KeyLeft:
		m.cycle(-1)
		return m, nil

	case tea.KeyRight:
		m.cycle(1)
		return m, nil
	}

	// Everything else belongs to the date input when it has focus.
	if m.focus == fieldSowDate {
		var cmd tea.Cmd
		m.sowDate, cmd = m.sowDate.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *FormPageModel) setFocus(focus int) {
	m.focus = focus
	if focus == fieldSowDate {
		m.sowDate.Focus()
	} else {
		m.sowDate.Blur()
	}
}

// cycle advances the focused choice field through its catalog. An
// unselected field starts at the first (or last) entry.
func (m *FormPageModel) cycle(delta int) {
	step := func(current, size int) int {
		if current < 0 {
			if delta > 0 {
				return 0
			}
			return size - 1
		}
		return (current + delta + size) % size
	}

	switch m.focus {
	case fieldDistrict:
		m.district = step(m.district, len(m.schema.Districts))
	case fieldCrop:
		m.crop = step(m.crop, len(m.schema.Crops))
	case fieldSeason:
		m.season = step(m.season, len(m.schema.Seasons))
	}
}

// View renders the form.
func (m FormPageModel) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("Crop Yield Prediction"))
	sb.WriteString("\n")

	if m.notice != "" {
		sb.WriteString(m.styles.Error.Render(m.notice))
		sb.WriteString("\n\n")
	}

	sb.WriteString(m.renderChoice(fieldDistrict, "District", m.choiceValue(m.schema.Districts, m.district, "Select District")))
	sb.WriteString(m.renderChoice(fieldCrop, "Crop", m.choiceValue(m.schema.Crops, m.crop, "Select Crop")))
	sb.WriteString(m.renderChoice(fieldSeason, "Season", m.choiceValue(m.schema.Seasons, m.season, "Select Season")))

	label := m.styles.Label
	if m.focus == fieldSowDate {
		label = m.styles.LabelFocused
	}
	sb.WriteString(fmt.Sprintf("%s %s\n", label.Render(fmt.Sprintf("%-14s", "Sowing Date")), m.sowDate.View()))

	for _, e := range m.fieldErrs {
		sb.WriteString(m.styles.FieldError.Render("• " + e.Message))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.Footer.Render("↑/↓ field · ←/→ value · enter predict · ctrl+c quit"))

	return m.styles.Content.Render(sb.String())
}

func (m FormPageModel) renderChoice(field int, name, value string) string {
	label := m.styles.Label
	if m.focus == field {
		label = m.styles.LabelFocused
	}
	return fmt.Sprintf("%s %s\n", label.Render(fmt.Sprintf("%-14s", name)), m.styles.Value.Render(value))
}

func (m FormPageModel) choiceValue(catalog []string, idx int, placeholder string) string {
	if idx < 0 || idx >= len(catalog) {
		return m.styles.Muted.Render("‹ " + placeholder + " ›")
	}
	return "‹ " + catalog[idx] + " ›"
}

func indexOf(catalog []string, value string) int {
	for i, v := range catalog {
		if strings.EqualFold(v, value) {
			return i
		}
	}
	return -1
}
