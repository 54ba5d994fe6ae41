package types

// Measurement is one daily observation row.
// Precipitation is nil when none was recorded, which is distinct from zero.
type Measurement struct {
	StationID           string
	Date                string
	Precipitation       *float64
	TemperatureObserved float64
}

type Station struct {
	StationID string
	Name      string
	Latitude  *float64
	Longitude *float64
	Elevation *float64
}

// Filter is a conjunction of optional predicates over measurement rows.
// An empty field means the predicate is not applied. Dates are compared
// as text, exactly as given.
type Filter struct {
	From      string
	To        string
	StationID string
}

// Aggregate is a min/avg/max reduction over temperature_observed.
// All three fields are nil when no rows matched.
type Aggregate struct {
	Min *float64
	Avg *float64
	Max *float64
}
