package controller

import (
	"context"
	"net/http"

	"surfsup-server/internal/modules/climate/types"
	"surfsup-server/internal/modules/climate/views"
)

const (
	RoutePrecipitation = "/api/v1.0/precipitation"
	RouteStations      = "/api/v1.0/stations"
	RouteTobs          = "/api/v1.0/tobs"
	RouteFrom          = "/api/v1.0/{start_date}"
	RouteRange         = "/api/v1.0/{start_date}/{end_date}"
)

// QueryService is the query layer the controller serves.
type QueryService interface {
	Precipitation(ctx context.Context) ([]types.Measurement, error)
	StationNames(ctx context.Context) ([]string, error)
	TemperatureObservations(ctx context.Context) ([]float64, error)
	TemperatureFrom(ctx context.Context, start string) (types.Aggregate, error)
	TemperatureRange(ctx context.Context, start, end string) (types.Aggregate, error)
}

type ClimateController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type climateControllerImpl struct {
	service QueryService
	home    views.HomeData
}

func NewClimateController(service QueryService, home views.HomeData) ClimateController {
	return &climateControllerImpl{service: service, home: home}
}

// RegisterRoutes binds the climate routes. ServeMux prefers the literal
// segments over {start_date}, so precipitation, stations and tobs are never
// captured as dates.
func (c *climateControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleHome)
	mux.HandleFunc("GET "+RoutePrecipitation, c.handlePrecipitation)
	mux.HandleFunc("GET "+RouteStations, c.handleStations)
	mux.HandleFunc("GET "+RouteTobs, c.handleTobs)
	mux.HandleFunc("GET "+RouteFrom, c.handleTemperatureFrom)
	mux.HandleFunc("GET "+RouteRange, c.handleTemperatureRange)
}

// HomeLinks lists the fixed routes advertised on the welcome page.
func HomeLinks() []string {
	return []string{RoutePrecipitation, RouteStations, RouteTobs}
}

// HomeTemplates lists the parametric routes advertised on the welcome page.
func HomeTemplates() []string {
	return []string{"/api/v1.0/YYYY-MM-DD", "/api/v1.0/YYYY-MM-DD/YYYY-MM-DD"}
}
