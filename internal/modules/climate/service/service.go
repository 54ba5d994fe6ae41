package service

import (
	"context"
	"time"

	"surfsup-server/internal/config"
	"surfsup-server/internal/modules/climate/repository"
	"surfsup-server/internal/modules/climate/types"
)

const trailingYear = 365 * 24 * time.Hour

// Window is the fixed trailing-year range anchored at the dataset's latest date.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow returns the window ending at end and starting 365 days earlier.
func NewWindow(end time.Time) Window {
	return Window{Start: end.Add(-trailingYear), End: end}
}

// StartDate is the inclusive lower bound in dataset date format.
func (w Window) StartDate() string { return w.Start.Format(config.DateLayout) }

// EndDate is the anchor date in dataset date format.
func (w Window) EndDate() string { return w.End.Format(config.DateLayout) }

// Service maps each climate route onto a single read against the repository.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	repository    repository.ClimateRepository
	window        Window
	tobsStationID string
}

func NewService(repository repository.ClimateRepository, window Window, tobsStationID string) *Service {
	return &Service{repository: repository, window: window, tobsStationID: tobsStationID}
}

func (s *Service) Window() Window { return s.window }

func (s *Service) TobsStationID() string { return s.tobsStationID }

// Precipitation returns every measurement on or after the window start,
// across all stations, ordered by date. There is no upper bound.
func (s *Service) Precipitation(ctx context.Context) ([]types.Measurement, error) {
	return s.repository.GetMeasurements(ctx, types.Filter{From: s.window.StartDate()})
}

// StationNames returns the name of every station in store order.
func (s *Service) StationNames(ctx context.Context) ([]string, error) {
	stations, err := s.repository.GetStations(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(stations))
	for _, st := range stations {
		names = append(names, st.Name)
	}
	return names, nil
}

// TemperatureObservations returns the observed temperatures of the tobs
// station within the window, ordered by date.
func (s *Service) TemperatureObservations(ctx context.Context) ([]float64, error) {
	measurements, err := s.repository.GetMeasurements(ctx, types.Filter{
		From:      s.window.StartDate(),
		StationID: s.tobsStationID,
	})
	if err != nil {
		return nil, err
	}
	temps := make([]float64, 0, len(measurements))
	for _, m := range measurements {
		temps = append(temps, m.TemperatureObserved)
	}
	return temps, nil
}

// TemperatureFrom aggregates temperatures on or after start. start is used
// verbatim; a value that is not a date simply matches nothing.
func (s *Service) TemperatureFrom(ctx context.Context, start string) (types.Aggregate, error) {
	return s.repository.GetTemperatureAggregate(ctx, types.Filter{From: start})
}

// TemperatureRange aggregates temperatures in [start, end]. An inverted
// range is not rejected; it yields the empty aggregate.
func (s *Service) TemperatureRange(ctx context.Context, start, end string) (types.Aggregate, error) {
	return s.repository.GetTemperatureAggregate(ctx, types.Filter{From: start, To: end})
}
