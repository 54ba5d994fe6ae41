package controller

import (
	"bytes"
	"log/slog"
	"net/http"

	"surfsup-server/internal/modules/climate/views"
	"surfsup-server/internal/utils"
)

const dataSourceFailure = "failed to query climate data"

func (c *climateControllerImpl) handleHome(w http.ResponseWriter, r *http.Request) {
	data := c.home
	var buf bytes.Buffer
	if err := views.RenderHome(&buf, &data); err != nil {
		slog.Error("home template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("home: write response failed", "error", err)
	}
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	measurements, err := c.service.Precipitation(r.Context())
	if err != nil {
		slog.Error("precipitation: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, dataSourceFailure)
		return
	}
	utils.WriteJSON(w, http.StatusOK, views.MapPrecipitation(measurements))
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	names, err := c.service.StationNames(r.Context())
	if err != nil {
		slog.Error("stations: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, dataSourceFailure)
		return
	}
	utils.WriteJSON(w, http.StatusOK, views.MapStationNames(names))
}

func (c *climateControllerImpl) handleTobs(w http.ResponseWriter, r *http.Request) {
	temps, err := c.service.TemperatureObservations(r.Context())
	if err != nil {
		slog.Error("tobs: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, dataSourceFailure)
		return
	}
	utils.WriteJSON(w, http.StatusOK, views.MapTemperatures(temps))
}

// Path dates are passed through unvalidated. A malformed date yields the
// empty aggregate with 200, not a 400.
func (c *climateControllerImpl) handleTemperatureFrom(w http.ResponseWriter, r *http.Request) {
	start := r.PathValue("start_date")
	agg, err := c.service.TemperatureFrom(r.Context(), start)
	if err != nil {
		slog.Error("temperature from: query failed", "start_date", start, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, dataSourceFailure)
		return
	}
	utils.WriteJSON(w, http.StatusOK, views.MapAggregate(agg))
}

func (c *climateControllerImpl) handleTemperatureRange(w http.ResponseWriter, r *http.Request) {
	start, end := r.PathValue("start_date"), r.PathValue("end_date")
	agg, err := c.service.TemperatureRange(r.Context(), start, end)
	if err != nil {
		slog.Error("temperature range: query failed", "start_date", start, "end_date", end, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, dataSourceFailure)
		return
	}
	utils.WriteJSON(w, http.StatusOK, views.MapAggregate(agg))
}
