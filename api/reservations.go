package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rmfarias/fleetreserve/internal/domain"
	"github.com/rmfarias/fleetreserve/internal/service/reservation"
)

type ReservationHandler struct {
	service reservation.ReservationUseCase
}

type createReservationRequest struct {
	VehicleID        int64     `json:"vehicle_id" binding:"required"`
	Requester        string    `json:"requester" binding:"required"`
	Email            string    `json:"email" binding:"required,email"`
	Department       string    `json:"department" binding:"required"`
	PickupAt         time.Time `json:"pickup_at" binding:"required"`
	ExpectedReturnAt time.Time `json:"expected_return_at" binding:"required"`
}

type rescheduleRequest struct {
	PickupAt         time.Time `json:"pickup_at" binding:"required"`
	ExpectedReturnAt time.Time `json:"expected_return_at" binding:"required"`
}

type reservationResponse struct {
	ID               int64   `json:"id"`
	VehicleID        int64   `json:"vehicle_id"`
	Requester        string  `json:"requester"`
	Email            string  `json:"email"`
	Department       string  `json:"department"`
	PickupAt         string  `json:"pickup_at"`
	ExpectedReturnAt string  `json:"expected_return_at"`
	ActualReturnAt   *string `json:"actual_return_at,omitempty"`
	OdometerAtReturn *int64  `json:"odometer_at_return,omitempty"`
	ParkedLocation   *string `json:"parked_location,omitempty"`
	EvidenceImageRef *string `json:"evidence_image_ref,omitempty"`
	Status           string  `json:"status"`
	Overdue          bool    `json:"overdue"`
}

func toReservationResponse(res *domain.Reservation) reservationResponse {
	out := reservationResponse{
		ID:               res.ID,
		VehicleID:        res.VehicleID,
		Requester:        res.Requester,
		Email:            res.Email,
		Department:       res.Department,
		PickupAt:         res.PickupAt.Format(time.RFC3339),
		ExpectedReturnAt: res.ExpectedReturnAt.Format(time.RFC3339),
		OdometerAtReturn: res.OdometerAtReturn,
		ParkedLocation:   res.ParkedLocation,
		EvidenceImageRef: res.EvidenceImageRef,
		Status:           string(res.Status),
		Overdue:          res.Overdue(time.Now()),
	}
	if res.ActualReturnAt != nil {
		s := res.ActualReturnAt.Format(time.RFC3339)
		out.ActualReturnAt = &s
	}
	return out
}

func NewReservationHandler(service reservation.ReservationUseCase) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.POST("/", h.create)
	router.GET("/:id", h.get)
	router.PUT("/:id", h.reschedule)
	router.DELETE("/:id", h.delete)
	router.POST("/:id/return", h.registerReturn)
}

func (h *ReservationHandler) list(c *gin.Context) {
	var filter domain.ReservationFilter

	if v := c.Query("vehicle_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle_id"})
			return
		}
		filter.VehicleID = id
	}
	filter.Email = c.Query("email")
	if v := c.Query("status"); v != "" {
		status, err := domain.ParseReservationStatus(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		filter.Status = status
	}
	if v := c.Query("date"); v != "" {
		day, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, use YYYY-MM-DD"})
			return
		}
		filter.Date = &day
	}
	filter.OverdueOnly = c.Query("overdue") == "true"

	reservations, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]reservationResponse, 0, len(reservations))
	for i := range reservations {
		out = append(out, toReservationResponse(&reservations[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *ReservationHandler) create(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.service.Create(c.Request.Context(), reservation.CreateReservationInput{
		VehicleID:        req.VehicleID,
		Requester:        req.Requester,
		Email:            req.Email,
		Department:       req.Department,
		PickupAt:         req.PickupAt,
		ExpectedReturnAt: req.ExpectedReturnAt,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toReservationResponse(res))
}

func (h *ReservationHandler) get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}
	res, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReservationResponse(res))
}

func (h *ReservationHandler) reschedule(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}
	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.service.Reschedule(c.Request.Context(), id, req.PickupAt, req.ExpectedReturnAt)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReservationResponse(res))
}

func (h *ReservationHandler) delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reservation deleted"})
}

func (h *ReservationHandler) registerReturn(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}

	odometer, err := strconv.ParseInt(c.PostForm("odometer"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid odometer reading"})
		return
	}

	fileHeader, err := c.FormFile("evidence_image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "evidence_image file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read evidence_image"})
		return
	}
	defer file.Close()

	res, err := h.service.RegisterReturn(c.Request.Context(), reservation.RegisterReturnInput{
		ReservationID:  id,
		Odometer:       odometer,
		ParkedLocation: c.PostForm("parked_location"),
		ImageName:      fileHeader.Filename,
		Image:          file,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toReservationResponse(res))
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, err
	}
	return id, nil
}
