package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"cropvision/internal/present"
	"cropvision/internal/workflow"
)

// Messages for tea updates.
type (
	fetchDoneMsg    workflow.Outcome
	downloadDoneMsg struct {
		generation uint64
		path       string
		err        error
	}
)

// AppConfig wires the workflow into the TUI.
type AppConfig struct {
	Controller  *workflow.Controller
	Client      workflow.Client
	DisplayName string
	ReportsDir  string
	Logger      *zap.Logger
}

// App is the top-level model for the interactive prediction workflow. It
// routes events to the page matching the controller's state; the
// controller itself owns every transition decision.
type App struct {
	controller  *workflow.Controller
	client      workflow.Client
	displayName string
	reportsDir  string
	logger      *zap.Logger
	styles      Styles

	formPage    FormPageModel
	loadingPage LoadingPageModel
	resultsPage ResultsPageModel

	width  int
	height int
}

// NewApp builds the TUI around an initialized controller.
func NewApp(cfg AppConfig, styles Styles) App {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return App{
		controller:  cfg.Controller,
		client:      cfg.Client,
		displayName: cfg.DisplayName,
		reportsDir:  cfg.ReportsDir,
		logger:      logger.Named("ui"),
		styles:      styles,
		formPage:    NewFormPageModel(cfg.Controller.Schema(), styles),
		loadingPage: NewLoadingPageModel(styles),
		resultsPage: NewResultsPageModel(styles),
	}
}

func (a App) Init() tea.Cmd {
	return a.loadingPage.Tick()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.formPage.SetSize(msg.Width, msg.Height-2)
		a.loadingPage.SetSize(msg.Width, msg.Height-2)
		a.resultsPage.SetSize(msg.Width, msg.Height-2)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case fetchDoneMsg:
		return a.handleFetchDone(workflow.Outcome(msg))

	case downloadDoneMsg:
		a.resultsPage.FinishDownload(msg.generation, msg.path, msg.err)
		return a, nil
	}

	// Spinner ticks and other component messages.
	var cmd tea.Cmd
	if a.controller.State() == workflow.StateLoading {
		a.loadingPage, cmd = a.loadingPage.Update(msg)
	}
	return a, cmd
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
		return a, tea.Quit
	}

	switch a.controller.State() {
	case workflow.StateForm:
		if msg.Type == tea.KeyEnter {
			return a.submit()
		}
		// Editing the form dismisses a lingering failure notice.
		if a.controller.Notice() != "" {
			a.controller.ClearNotice()
			a.formPage.SetNotice("")
		}
		var cmd tea.Cmd
		a.formPage, cmd = a.formPage.Update(msg)
		return a, cmd

	case workflow.StateLoading:
		// The submit control is suppressed while a fetch is in flight;
		// keys are swallowed here.
		return a, nil

	case workflow.StateResults:
		switch msg.String() {
		case "d":
			return a.download()
		case "r":
			a.controller.StartOver()
			a.resultsPage.Leave()
			a.formPage.Reset()
			return a, nil
		}
		var cmd tea.Cmd
		a.resultsPage, cmd = a.resultsPage.Update(msg)
		return a, cmd
	}
	return a, nil
}

// submit hands the entered fields to the controller and, when they
// validate, launches the fetch.
func (a App) submit() (tea.Model, tea.Cmd) {
	task, errs := a.controller.Submit(a.formPage.Fields())
	if task == nil {
		a.formPage.SetFieldErrors(errs)
		return a, nil
	}

	a.formPage.SetFieldErrors(nil)
	a.formPage.SetNotice("")
	a.loadingPage.SetRequest(task.Request)

	fetch := func() tea.Msg {
		return fetchDoneMsg(a.controller.Run(context.Background(), task))
	}
	return a, tea.Batch(fetch, a.loadingPage.Tick())
}

func (a App) handleFetchDone(outcome workflow.Outcome) (tea.Model, tea.Cmd) {
	if !a.controller.Apply(outcome) {
		return a, nil
	}

	switch a.controller.State() {
	case workflow.StateResults:
		model := present.Build(a.controller.Result(), a.controller.Request(), time.Now())
		a.resultsPage.UpdateContent(model)
	case workflow.StateForm:
		a.formPage.SetFields(a.controller.Fields())
		a.formPage.SetNotice(a.controller.Notice())
		a.formPage.SetFieldErrors(nil)
	}
	return a, nil
}

// download runs the report fetch with page-local state; it never touches
// the workflow controller.
func (a App) download() (tea.Model, tea.Cmd) {
	if a.resultsPage.Downloading() {
		return a, nil
	}

	generation := a.resultsPage.StartDownload()
	req := a.controller.Request()
	client := a.client
	reportsDir := a.reportsDir

	run := func() tea.Msg {
		data, err := client.DownloadReport(context.Background(), req)
		if err != nil {
			return downloadDoneMsg{generation: generation, err: err}
		}
		path, err := present.SaveReport(reportsDir, req.Crop, data)
		return downloadDoneMsg{generation: generation, path: path, err: err}
	}
	return a, run
}

func (a App) View() string {
	header := a.styles.Header.Render("Crop Vision") +
		a.styles.Muted.Render("  Logged in as "+a.displayName)

	var page string
	switch a.controller.State() {
	case workflow.StateLoading:
		page = a.loadingPage.View()
	case workflow.StateResults:
		page = a.resultsPage.View()
	default:
		page = a.formPage.View()
	}
	return header + "\n" + page
}
