package form

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func testSchema() Schema {
	return Schema{
		Districts: []string{"Angul", "Cuttack", "Puri"},
		Crops:     []string{"Paddy", "Wheat", "Maize"},
		Seasons:   []string{"Kharif", "Rabi", "Summer"},
	}
}

func TestValidateRoundTrip(t *testing.T) {
	req, errs := testSchema().Validate(Fields{
		District: "Angul",
		Crop:     "Paddy",
		Season:   "Kharif",
		SowDate:  "2025-06-15",
	}, Options{})
	if len(errs) != 0 {
		t.Fatalf("expected no field errors, got %v", errs)
	}

	want := Request{
		District: "Angul",
		Crop:     "Paddy",
		Season:   "Kharif",
		SowDate:  time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	}
	if diff := cmp.Diff(want, req); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateCanonicalizesCase(t *testing.T) {
	req, errs := testSchema().Validate(Fields{
		District: "cuttack",
		Crop:     "WHEAT",
		Season:   "rabi",
		SowDate:  "2024-11-01",
	}, Options{})
	if len(errs) != 0 {
		t.Fatalf("expected no field errors, got %v", errs)
	}
	if req.District != "Cuttack" || req.Crop != "Wheat" || req.Season != "Rabi" {
		t.Errorf("values not canonicalized: %+v", req)
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	tests := []struct {
		name       string
		fields     Fields
		wantFields []string
	}{
		{
			name:       "everything empty",
			fields:     Fields{},
			wantFields: []string{"district", "crop", "season", "sow_date"},
		},
		{
			name: "missing district only",
			fields: Fields{
				Crop:    "Paddy",
				Season:  "Kharif",
				SowDate: "2025-06-15",
			},
			wantFields: []string{"district"},
		},
		{
			name: "unknown crop and bad date",
			fields: Fields{
				District: "Puri",
				Crop:     "Barley",
				Season:   "Kharif",
				SowDate:  "15-06-2025",
			},
			wantFields: []string{"crop", "sow_date"},
		},
		{
			name: "unknown season",
			fields: Fields{
				District: "Puri",
				Crop:     "Paddy",
				Season:   "Monsoon",
				SowDate:  "2025-06-15",
			},
			wantFields: []string{"season"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := testSchema().Validate(tt.fields, Options{})
			var got []string
			for _, e := range errs {
				got = append(got, e.Field)
			}
			if diff := cmp.Diff(tt.wantFields, got); diff != "" {
				t.Errorf("field error set mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateDateBounds(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	opts := Options{BoundSowDate: true, Now: now}

	_, errs := testSchema().Validate(Fields{
		District: "Angul", Crop: "Paddy", Season: "Kharif", SowDate: "2026-01-01",
	}, opts)
	if len(errs) != 1 || errs[0].Field != "sow_date" {
		t.Errorf("future date should be rejected, got %v", errs)
	}

	_, errs = testSchema().Validate(Fields{
		District: "Angul", Crop: "Paddy", Season: "Kharif", SowDate: "1899-12-31",
	}, opts)
	if len(errs) != 1 || errs[0].Field != "sow_date" {
		t.Errorf("pre-1900 date should be rejected, got %v", errs)
	}

	// Bounds off: both dates pass.
	_, errs = testSchema().Validate(Fields{
		District: "Angul", Crop: "Paddy", Season: "Kharif", SowDate: "2026-01-01",
	}, Options{})
	if len(errs) != 0 {
		t.Errorf("unbounded validation should accept future dates, got %v", errs)
	}
}

func TestValidateRejectsWhitespaceOnly(t *testing.T) {
	_, errs := testSchema().Validate(Fields{
		District: "   ",
		Crop:     "Paddy",
		Season:   "Kharif",
		SowDate:  "2025-06-15",
	}, Options{})
	if len(errs) != 1 || errs[0].Field != "district" {
		t.Errorf("whitespace-only district should be missing, got %v", errs)
	}
}
