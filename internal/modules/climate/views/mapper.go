package views

import "surfsup-server/internal/modules/climate/types"

// PrecipitationRow is one element of the precipitation response.
// A nil Precipitation encodes as JSON null, never as 0 or a missing key.
type PrecipitationRow struct {
	Date          string   `json:"date"`
	Precipitation *float64 `json:"precipitation"`
}

// TemperatureSummary is the aggregate object. Nil fields encode as null.
type TemperatureSummary struct {
	Tmin *float64 `json:"Tmin"`
	Tavg *float64 `json:"Tavg"`
	Tmax *float64 `json:"Tmax"`
}

func MapPrecipitation(measurements []types.Measurement) []PrecipitationRow {
	out := make([]PrecipitationRow, 0, len(measurements))
	for _, m := range measurements {
		out = append(out, PrecipitationRow{Date: m.Date, Precipitation: m.Precipitation})
	}
	return out
}

// MapStationNames passes names through unchanged; duplicates are kept.
func MapStationNames(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}

func MapTemperatures(temps []float64) []float64 {
	if temps == nil {
		return []float64{}
	}
	return temps
}

// MapAggregate wraps the aggregate in a one-element array, mirroring the
// single group a grouped aggregate query returns.
func MapAggregate(agg types.Aggregate) []TemperatureSummary {
	return []TemperatureSummary{{Tmin: agg.Min, Tavg: agg.Avg, Tmax: agg.Max}}
}
