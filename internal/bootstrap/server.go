package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/rmfarias/fleetreserve/api"
	"github.com/rmfarias/fleetreserve/config"
	"github.com/rmfarias/fleetreserve/internal/auth"
	"github.com/rmfarias/fleetreserve/internal/service/reservation"
	"github.com/rmfarias/fleetreserve/internal/service/users"
	"github.com/rmfarias/fleetreserve/internal/service/vehicles"
)

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(
	ctx context.Context,
	cfg *config.Config,
	tokens *auth.Manager,
	reservationSvc reservation.ReservationUseCase,
	vehicleSvc vehicles.VehicleUseCase,
	userSvc users.UserUseCase,
) error {
	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: newRouter(cfg, tokens, reservationSvc, vehicleSvc, userSvc),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(
	cfg *config.Config,
	tokens *auth.Manager,
	reservationSvc reservation.ReservationUseCase,
	vehicleSvc vehicles.VehicleUseCase,
	userSvc users.UserUseCase,
) *gin.Engine {
	router := gin.Default()

	reservationHandler := api.NewReservationHandler(reservationSvc)
	vehicleHandler := api.NewVehicleHandler(vehicleSvc, reservationSvc)
	userHandler := api.NewUserHandler(userSvc)

	public := router.Group("/api")
	userHandler.RegisterPublic(public)

	authorized := router.Group("/api", api.AuthRequired(tokens))
	reservationHandler.Register(authorized.Group("/reservations"))
	vehicleHandler.Register(authorized.Group("/vehicles"))

	admin := router.Group("/api", api.AuthRequired(tokens), api.AdminOnly())
	vehicleHandler.RegisterAdmin(admin.Group("/vehicles"))
	userHandler.RegisterAdmin(admin.Group("/users"))

	// uploaded evidence images
	router.Static("/uploads", cfg.Storage.UploadDir)

	if cfg.HTTP.SwaggerDoc != "" {
		router.StaticFile("/swagger/doc.json", cfg.HTTP.SwaggerDoc)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json"))))
	}

	return router
}
