// Package present shapes a prediction result for display and handles the
// save-to-disk side of report downloads. It performs no network calls and
// holds no state; everything is a pure function of its inputs.
package present

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cropvision/internal/form"
	"cropvision/internal/prediction"
)

// Reference maxima for the fertilizer bars. Display scaling only; the
// service may legitimately recommend more.
const (
	FertilizerMaxN = 200.0
	FertilizerMaxP = 100.0
	FertilizerMaxK = 80.0
)

// NutrientBar is one fertilizer row with its bar fill ratio.
type NutrientBar struct {
	Label string
	KgHa  float64
	Ratio float64 // 0..1, clamped
}

// Row is a generic label/value display pair.
type Row struct {
	Label string
	Value string
}

// DisplayModel is everything the results view renders.
type DisplayModel struct {
	Headline      string
	HarvestDays   int
	HarvestDate   time.Time
	YieldKgPerHa  float64
	Soil          []Row
	Environmental []Row
	Fertilizer    []NutrientBar
}

// Build derives the display model from a result and the request that
// produced it. Harvest days are rounded down; the harvest date is that
// many days after now.
func Build(result *prediction.Result, req form.Request, now time.Time) DisplayModel {
	days := int(math.Floor(result.HarvestDays))

	return DisplayModel{
		Headline: fmt.Sprintf("Based on your %s cultivation in %s district",
			req.Crop, req.District),
		HarvestDays:  days,
		HarvestDate:  now.AddDate(0, 0, days),
		YieldKgPerHa: result.YieldKgPerHa,
		Soil: []Row{
			{Label: "pH Level", Value: formatNumber(result.Soil.PH)},
			{Label: "Nitrogen", Value: formatNumber(result.Soil.NKgHa) + " kg/ha"},
			{Label: "Phosphorus", Value: formatNumber(result.Soil.PKgHa) + " kg/ha"},
			{Label: "Potassium", Value: formatNumber(result.Soil.KKgHa) + " kg/ha"},
			{Label: "Organic Carbon", Value: formatNumber(result.Soil.OrganicCarbonPct) + " %"},
			{Label: "Moisture", Value: formatNumber(result.Soil.MoisturePct) + " %"},
		},
		Environmental: []Row{
			{Label: "Rainfall (Season total)", Value: formatNumber(result.Environmental.SeasonTotalRainfallMm) + " mm"},
			{Label: "Temperature (Season avg.)", Value: formatNumber(result.Environmental.SeasonAvgTempC) + " C"},
			{Label: "Humidity (Season avg.)", Value: formatNumber(result.Environmental.SeasonAvgHumidity) + " %"},
		},
		Fertilizer: []NutrientBar{
			{Label: "Nitrogen (N)", KgHa: result.Fertilizer.N, Ratio: clamp(result.Fertilizer.N / FertilizerMaxN)},
			{Label: "Phosphorus (P)", KgHa: result.Fertilizer.P, Ratio: clamp(result.Fertilizer.P / FertilizerMaxP)},
			{Label: "Potassium (K)", KgHa: result.Fertilizer.K, Ratio: clamp(result.Fertilizer.K / FertilizerMaxK)},
		},
	}
}

// ReportFilename returns the artifact filename for a crop.
func ReportFilename(crop string) string {
	return fmt.Sprintf("crop_report_%s.pdf", strings.ToLower(crop))
}

// SaveReport writes the report artifact into dir and returns its path.
func SaveReport(dir, crop string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}
	path := filepath.Join(dir, ReportFilename(crop))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}
	return path, nil
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// formatNumber trims trailing zeros so whole numbers render bare.
func formatNumber(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
