package main

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"cropvision/cmd/cropvision/ui"
	"cropvision/internal/form"
	"cropvision/internal/prediction"
	"cropvision/internal/workflow"
)

// runInteractive launches the full-screen prediction workflow. It refuses
// to start without an active session.
func runInteractive() error {
	store, err := openStore()
	if err != nil {
		return err
	}
	name, active, err := store.Current()
	store.Close()
	if err != nil {
		return err
	}
	if !active {
		return errors.New(`not logged in; run "cropvision login" first (or "cropvision signup" to create an account)`)
	}

	client := prediction.NewClient(prediction.Config{
		BaseURL: cfg.Service.BaseURL,
		Timeout: cfg.ServiceTimeout(),
	}, logger)

	schema := form.Schema{
		Districts: cfg.Catalog.Districts,
		Crops:     cfg.Catalog.Crops,
		Seasons:   cfg.Catalog.Seasons,
	}
	controller := workflow.New(schema, form.Options{BoundSowDate: true}, client, logger)

	app := ui.NewApp(ui.AppConfig{
		Controller:  controller,
		Client:      client,
		DisplayName: name,
		ReportsDir:  cfg.Storage.ReportsDir,
		Logger:      logger,
	}, ui.DefaultStyles())

	program := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run UI: %w", err)
	}
	return nil
}
