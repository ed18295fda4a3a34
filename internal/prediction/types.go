package prediction

// requestBody is the wire shape both endpoints accept.
type requestBody struct {
	District   string `json:"district"`
	Crop       string `json:"crop"`
	Season     string `json:"season"`
	SowingDate string `json:"sowing_date"` // YYYY-MM-DD
}

// Environmental holds predicted season-level weather aggregates.
type Environmental struct {
	SeasonTotalRainfallMm float64 `json:"season_total_rainfall_mm"`
	SeasonAvgTempC        float64 `json:"season_avg_temp_c"`
	SeasonAvgHumidity     float64 `json:"season_avg_humidity"`
}

// Soil holds predicted soil conditions.
type Soil struct {
	PH               float64 `json:"soil_pH"`
	NKgHa            float64 `json:"soil_N_kg_ha"`
	PKgHa            float64 `json:"soil_P_kg_ha"`
	KKgHa            float64 `json:"soil_K_kg_ha"`
	OrganicCarbonPct float64 `json:"soil_organic_carbon_pct"`
	MoisturePct      float64 `json:"soil_moisture_pct"`
}

// Fertilizer holds the recommended N-P-K application in kg/ha.
type Fertilizer struct {
	N float64 `json:"N"`
	P float64 `json:"P"`
	K float64 `json:"K"`
}

// Result is the decoded prediction payload. Fields are carried through
// exactly as the service returned them; no bounds are enforced here.
type Result struct {
	Environmental Environmental `json:"predicted_environmental_conditions"`
	Soil          Soil          `json:"predicted_soil_conditions"`
	Fertilizer    Fertilizer    `json:"predicted_fertilizer_recommendation"`
	YieldKgPerHa  float64       `json:"predicted_yield_kg_per_ha"`
	HarvestDays   float64       `json:"predicted_harvest_days"`
}
