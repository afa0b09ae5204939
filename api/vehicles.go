package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rmfarias/fleetreserve/internal/service/reservation"
	"github.com/rmfarias/fleetreserve/internal/service/vehicles"
)

type VehicleHandler struct {
	service      vehicles.VehicleUseCase
	reservations reservation.ReservationUseCase
}

func NewVehicleHandler(service vehicles.VehicleUseCase, reservations reservation.ReservationUseCase) *VehicleHandler {
	return &VehicleHandler{service: service, reservations: reservations}
}

// Register wires the read endpoints available to every authenticated user.
func (h *VehicleHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.GET("/:id/availability", h.availability)
}

// RegisterAdmin wires the catalog management endpoints.
func (h *VehicleHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.delete)
}

func (h *VehicleHandler) list(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	list, err := h.service.List(c.Request.Context(), activeOnly)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *VehicleHandler) get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}
	v, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *VehicleHandler) availability(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}

	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from, use RFC3339"})
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to, use RFC3339"})
		return
	}

	available, err := h.reservations.CheckAvailability(c.Request.Context(), id, from, to, 0)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": available})
}

func (h *VehicleHandler) create(c *gin.Context) {
	var req vehicles.VehicleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *VehicleHandler) update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}
	var req vehicles.VehicleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *VehicleHandler) delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "vehicle deleted"})
}
