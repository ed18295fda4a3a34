package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cropvision/internal/form"
	"cropvision/internal/prediction"
	"cropvision/internal/present"
	"cropvision/internal/workflow"
)

var (
	predictDistrict string
	predictCrop     string
	predictSeason   string
	predictSowDate  string
	predictJSON     bool
	predictReport   bool
)

// predictCmd runs a single prediction without the interactive UI. It goes
// through the same controller as the TUI, so validation, session gating,
// and error classification behave identically.
var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Run a one-shot prediction",
	Long: `Submits one prediction request and prints the result. All four inputs
are required. Use --json for machine-readable output and --report to also
save the PDF report into the configured reports directory.`,
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().StringVar(&predictDistrict, "district", "", "district name")
	predictCmd.Flags().StringVar(&predictCrop, "crop", "", "crop name")
	predictCmd.Flags().StringVar(&predictSeason, "season", "", "season name")
	predictCmd.Flags().StringVar(&predictSowDate, "sow-date", "", "sowing date (YYYY-MM-DD)")
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "print the raw prediction as JSON")
	predictCmd.Flags().BoolVar(&predictReport, "report", false, "also download the PDF report")
}

func runPredict(cmd *cobra.Command, args []string) error {
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
		return errors.New(`not logged in; run "cropvision login" first`)
	}

	client := prediction.NewClient(prediction.Config{
		BaseURL: cfg.Service.BaseURL,
		Timeout: cfg.ServiceTimeout(),
	}, logger)

	controller := workflow.New(form.Schema{
		Districts: cfg.Catalog.Districts,
		Crops:     cfg.Catalog.Crops,
		Seasons:   cfg.Catalog.Seasons,
	}, form.Options{}, client, logger)

	task, fieldErrs := controller.Submit(form.Fields{
		District: predictDistrict,
		Crop:     predictCrop,
		Season:   predictSeason,
		SowDate:  predictSowDate,
	})
	if task == nil {
		for _, fe := range fieldErrs {
			fmt.Fprintln(os.Stderr, "  -", fe.Message)
		}
		return errors.New("invalid input")
	}

	logger.Debug("one-shot prediction submitted")
	outcome := controller.Run(cmd.Context(), task)
	if !controller.Apply(outcome) || controller.State() != workflow.StateResults {
		if controller.Notice() != "" {
			return errors.New(controller.Notice())
		}
		return outcome.Err
	}

	model := present.Build(controller.Result(), controller.Request(), time.Now())

	if predictJSON {
		if err := printJSON(cmd, controller.Result(), model); err != nil {
			return err
		}
	} else {
		printModel(cmd, model, name)
	}

	if predictReport {
		return saveReport(cmd, client, controller.Request())
	}
	return nil
}

func printJSON(cmd *cobra.Command, result *prediction.Result, model present.DisplayModel) error {
	out := struct {
		*prediction.Result
		HarvestDate string `json:"harvest_date"`
	}{result, model.HarvestDate.Format(form.DateLayout)}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printModel(cmd *cobra.Command, model present.DisplayModel, name string) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s\n\n", model.Headline)
	fmt.Fprintf(w, "Estimated yield:   %.0f kg/ha\n", model.YieldKgPerHa)
	fmt.Fprintf(w, "Days to harvest:   %d (around %s)\n",
		model.HarvestDays, model.HarvestDate.Format("02 Jan 2006"))

	fmt.Fprintln(w, "\nFertilizer recommendation:")
	for _, bar := range model.Fertilizer {
		fmt.Fprintf(w, "  %-12s %.1f kg/ha\n", bar.Label, bar.KgHa)
	}

	fmt.Fprintln(w, "\nPredicted soil conditions:")
	for _, row := range model.Soil {
		fmt.Fprintf(w, "  %-22s %s\n", row.Label, row.Value)
	}

	fmt.Fprintln(w, "\nPredicted environmental conditions:")
	for _, row := range model.Environmental {
		fmt.Fprintf(w, "  %-22s %s\n", row.Label, row.Value)
	}
}

func saveReport(cmd *cobra.Command, client *prediction.Client, req form.Request) error {
	data, err := client.DownloadReport(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("download report: %w", err)
	}
	path, err := present.SaveReport(cfg.Storage.ReportsDir, req.Crop, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report saved to %s\n", path)
	return nil
}
