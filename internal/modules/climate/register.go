package climate

import (
	"database/sql"
	"net/http"

	"surfsup-server/internal/config"
	"surfsup-server/internal/modules/climate/controller"
	"surfsup-server/internal/modules/climate/repository"
	"surfsup-server/internal/modules/climate/service"
	"surfsup-server/internal/modules/climate/views"
	"surfsup-server/internal/observability"
)

func RegisterFeature(mux *http.ServeMux, db *sql.DB, cfg config.Config, metrics *observability.Metrics) {
	climateRepository := repository.NewRepository(db, cfg.Driver, metrics)
	climateService := service.NewService(climateRepository, service.NewWindow(cfg.ReferenceEndDate), cfg.TobsStationID)
	window := climateService.Window()
	climateController := controller.NewClimateController(climateService, views.HomeData{
		Links:       controller.HomeLinks(),
		Templates:   controller.HomeTemplates(),
		WindowStart: window.StartDate(),
		WindowEnd:   window.EndDate(),
	})
	climateController.RegisterRoutes(mux)
}
