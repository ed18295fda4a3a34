package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"cropvision/internal/form"
	"cropvision/internal/prediction"
	"cropvision/internal/present"
	"cropvision/internal/workflow"
)

func testSchema() form.Schema {
	return form.Schema{
		Districts: []string{"Angul", "Cuttack", "Puri"},
		Crops:     []string{"Paddy", "Wheat"},
		Seasons:   []string{"Kharif", "Rabi", "Summer"},
	}
}

type stubClient struct {
	result    *prediction.Result
	report    []byte
	err       error
	reportErr error
}

func (s *stubClient) Predict(ctx context.Context, req form.Request) (*prediction.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubClient) DownloadReport(ctx context.Context, req form.Request) ([]byte, error) {
	if s.reportErr != nil {
		return nil, s.reportErr
	}
	return s.report, nil
}

func sampleResult() *prediction.Result {
	return &prediction.Result{
		YieldKgPerHa: 3500,
		HarvestDays:  110,
		Fertilizer:   prediction.Fertilizer{N: 100, P: 50, K: 40},
	}
}

func TestFormPageRendersFieldsAndCycles(t *testing.T) {
	page := NewFormPageModel(testSchema(), DefaultStyles())
	page.SetSize(80, 24)

	view := page.View()
	for _, label := range []string{"District", "Crop", "Season", "Sowing Date"} {
		if !strings.Contains(view, label) {
			t.Errorf("expected label %q in view", label)
		}
	}
	if !strings.Contains(view, "Select District") {
		t.Error("expected unselected district placeholder")
	}

	// Cycling right on the focused district field picks the first entry.
	page, _ = page.Update(tea.KeyMsg{Type: tea.KeyRight})
	if !strings.Contains(page.View(), "Angul") {
		t.Error("expected first district after cycling right")
	}
	if page.Fields().District != "Angul" {
		t.Errorf("expected district field Angul, got %q", page.Fields().District)
	}
}

func TestFormPageRestoresFields(t *testing.T) {
	page := NewFormPageModel(testSchema(), DefaultStyles())
	page.SetFields(form.Fields{
		District: "Puri", Crop: "Wheat", Season: "Rabi", SowDate: "2025-06-15",
	})

	fields := page.Fields()
	if fields.District != "Puri" || fields.Crop != "Wheat" || fields.Season != "Rabi" {
		t.Errorf("fields not restored: %+v", fields)
	}
	if fields.SowDate != "2025-06-15" {
		t.Errorf("sow date not restored: %q", fields.SowDate)
	}
}

func TestFormPageShowsErrorsAndNotice(t *testing.T) {
	page := NewFormPageModel(testSchema(), DefaultStyles())
	page.SetFieldErrors([]form.FieldError{{Field: "district", Message: "district is required"}})
	page.SetNotice("no data for that combination")

	view := page.View()
	if !strings.Contains(view, "district is required") {
		t.Error("expected field error in view")
	}
	if !strings.Contains(view, "no data for that combination") {
		t.Error("expected notice in view")
	}

	page.Reset()
	view = page.View()
	if strings.Contains(view, "district is required") || strings.Contains(view, "no data") {
		t.Error("reset should clear errors and notice")
	}
}

func TestResultsPageContent(t *testing.T) {
	page := NewResultsPageModel(DefaultStyles())
	page.SetSize(100, 30)

	model := present.Build(sampleResult(), form.Request{
		District: "Angul", Crop: "Paddy", Season: "Kharif",
		SowDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	}, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	page.UpdateContent(model)

	view := page.View()
	if !strings.Contains(view, "3500 kg/ha") {
		t.Error("expected yield in view")
	}
	if !strings.Contains(view, "110 days to harvest") {
		t.Error("expected harvest days in view")
	}
	if !strings.Contains(view, "Paddy cultivation in Angul district") {
		t.Error("expected headline in view")
	}
}

func TestResultsPageDownloadLifecycle(t *testing.T) {
	page := NewResultsPageModel(DefaultStyles())
	page.SetSize(100, 30)
	page.UpdateContent(present.DisplayModel{Headline: "x"})

	generation := page.StartDownload()
	if !page.Downloading() {
		t.Fatal("expected downloading flag set")
	}
	if !strings.Contains(page.View(), "Generating report") {
		t.Error("expected in-flight indicator")
	}

	page.FinishDownload(generation, "", errors.New("boom"))
	if page.Downloading() {
		t.Error("downloading flag should clear on failure")
	}
	if !strings.Contains(page.View(), "Report download failed") {
		t.Error("expected local download error")
	}

	// Retry succeeds.
	generation = page.StartDownload()
	page.FinishDownload(generation, "/tmp/crop_report_paddy.pdf", nil)
	if !strings.Contains(page.View(), "Report saved to /tmp/crop_report_paddy.pdf") {
		t.Error("expected saved path in view")
	}
}

func TestResultsPageIgnoresStaleDownload(t *testing.T) {
	page := NewResultsPageModel(DefaultStyles())
	page.UpdateContent(present.DisplayModel{Headline: "x"})

	generation := page.StartDownload()
	page.Leave() // user started over mid-download

	page.FinishDownload(generation, "", errors.New("late failure"))
	if strings.Contains(page.View(), "late failure") {
		t.Error("stale download completion must be ignored")
	}
}

func newTestApp(client workflow.Client) App {
	controller := workflow.New(testSchema(), form.Options{}, client, nil)
	return NewApp(AppConfig{
		Controller:  controller,
		Client:      client,
		DisplayName: "Asha",
		ReportsDir:  "/tmp",
	}, DefaultStyles())
}

func fillForm(t *testing.T, a App) App {
	t.Helper()
	a.formPage.SetFields(form.Fields{
		District: "Angul", Crop: "Paddy", Season: "Kharif", SowDate: "2025-06-15",
	})
	return a
}

func TestAppSubmitInvalidShowsFieldErrors(t *testing.T) {
	a := newTestApp(&stubClient{})

	model, _ := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = model.(App)

	view := a.View()
	if !strings.Contains(view, "required") {
		t.Error("expected validation errors after submitting empty form")
	}
	if a.controller.State() != workflow.StateForm {
		t.Errorf("expected Form, got %v", a.controller.State())
	}
}

func TestAppFullWorkflow(t *testing.T) {
	client := &stubClient{result: sampleResult(), report: []byte("%PDF")}
	a := fillForm(t, newTestApp(client))

	model, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = model.(App)
	if a.controller.State() != workflow.StateLoading {
		t.Fatalf("expected Loading after submit, got %v", a.controller.State())
	}
	if !strings.Contains(a.View(), "Contacting the prediction service") {
		t.Error("expected loading view")
	}

	// Run the batched fetch command and feed the outcome back.
	outcome := collectMsg(t, cmd, func(msg tea.Msg) bool {
		_, ok := msg.(fetchDoneMsg)
		return ok
	})
	model, _ = a.Update(outcome)
	a = model.(App)

	if a.controller.State() != workflow.StateResults {
		t.Fatalf("expected Results, got %v", a.controller.State())
	}
	if !strings.Contains(a.View(), "3500 kg/ha") {
		t.Error("expected results content")
	}

	// Start over returns to a blank form.
	model, _ = a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	a = model.(App)
	if a.controller.State() != workflow.StateForm {
		t.Errorf("expected Form after start over, got %v", a.controller.State())
	}
	if a.formPage.Fields() != (form.Fields{}) {
		t.Errorf("form not blank after start over: %+v", a.formPage.Fields())
	}
}

func TestAppFailureReturnsToFormWithNotice(t *testing.T) {
	client := &stubClient{err: prediction.NewRemoteError("unsupported district")}
	a := fillForm(t, newTestApp(client))

	model, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = model.(App)

	outcome := collectMsg(t, cmd, func(msg tea.Msg) bool {
		_, ok := msg.(fetchDoneMsg)
		return ok
	})
	model, _ = a.Update(outcome)
	a = model.(App)

	if a.controller.State() != workflow.StateForm {
		t.Fatalf("expected Form after failure, got %v", a.controller.State())
	}
	view := a.View()
	if !strings.Contains(view, "unsupported district") {
		t.Error("expected remote detail in form notice")
	}
	if a.formPage.Fields().District != "Angul" {
		t.Error("entered fields should survive the failure")
	}
}

func TestAppEditingDismissesNotice(t *testing.T) {
	client := &stubClient{err: prediction.NewRemoteError("unsupported district")}
	a := fillForm(t, newTestApp(client))

	model, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = model.(App)
	outcome := collectMsg(t, cmd, func(msg tea.Msg) bool {
		_, ok := msg.(fetchDoneMsg)
		return ok
	})
	model, _ = a.Update(outcome)
	a = model.(App)
	if !strings.Contains(a.View(), "unsupported district") {
		t.Fatal("expected notice before editing")
	}

	// Touching the form clears the notice everywhere.
	model, _ = a.Update(tea.KeyMsg{Type: tea.KeyDown})
	a = model.(App)
	if strings.Contains(a.View(), "unsupported district") {
		t.Error("editing should dismiss the notice")
	}
	if a.controller.Notice() != "" {
		t.Errorf("controller notice should be cleared, got %q", a.controller.Notice())
	}
}

// collectMsg runs a command tree until a message satisfies the predicate.
func collectMsg(t *testing.T, cmd tea.Cmd, match func(tea.Msg) bool) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}

	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		if match(msg) {
			return msg
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
		}
	}
	t.Fatal("no matching message produced")
	return nil
}
