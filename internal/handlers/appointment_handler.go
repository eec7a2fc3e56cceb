package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/field-service/internal/httperr"
	"github.com/BruksfildServices01/field-service/internal/httpresp"
	"github.com/BruksfildServices01/field-service/internal/realtime"
	"github.com/BruksfildServices01/field-service/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/field-service/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	createAppointment *ucAppointment.CreateAppointment
	assignWorkers     *ucAppointment.AssignWorkers
	overrideStatus    *ucAppointment.OverrideStatus
	getView           *ucAppointment.GetAppointmentView
	listByDate        *ucAppointment.ListAppointmentsByDate
	listByMonth       *ucAppointment.ListAppointmentsByMonth
	hub               *realtime.Hub
	clock             timezone.Clock
}

func NewAppointmentHandler(
	createAppointment *ucAppointment.CreateAppointment,
	assignWorkers *ucAppointment.AssignWorkers,
	overrideStatus *ucAppointment.OverrideStatus,
	getView *ucAppointment.GetAppointmentView,
	listByDate *ucAppointment.ListAppointmentsByDate,
	listByMonth *ucAppointment.ListAppointmentsByMonth,
	hub *realtime.Hub,
	clock timezone.Clock,
) *AppointmentHandler {
	return &AppointmentHandler{
		createAppointment: createAppointment,
		assignWorkers:     assignWorkers,
		overrideStatus:    overrideStatus,
		getView:           getView,
		listByDate:        listByDate,
		listByMonth:       listByMonth,
		hub:               hub,
		clock:             clock,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	CustomerID  uint   `json:"customer_id" binding:"required"`
	WorkerIDs   []uint `json:"worker_ids"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Notes       string `json:"notes"`
	Date        string `json:"date" binding:"required"`       // YYYY-MM-DD
	StartTime   string `json:"start_time" binding:"required"` // HH:mm
	EndTime     string `json:"end_time" binding:"required"`   // HH:mm
}

type AssignWorkersRequest struct {
	WorkerIDs []uint `json:"worker_ids" binding:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid data.")
		return
	}

	ap, err := h.createAppointment.Execute(
		c.Request.Context(),
		ucAppointment.CreateAppointmentInput{
			CustomerID:  req.CustomerID,
			WorkerIDs:   req.WorkerIDs,
			Title:       req.Title,
			Description: req.Description,
			Location:    req.Location,
			Notes:       req.Notes,
			Date:        req.Date,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
		},
		currentUserID(c),
	)
	if err != nil {
		fail(c, err)
		return
	}

	view, err := h.getView.ByID(c.Request.Context(), ap.ID)
	if err != nil {
		fail(c, err)
		return
	}

	httpresp.Created(c, view)
}

// ======================================================
// LIST
// ======================================================

// ListByDate defaults to today in the configured timezone.
func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	date := timezone.Today(h.clock())

	if raw := c.Query("date"); raw != "" {
		d, err := timezone.CalendarDate(raw)
		if err != nil {
			fail(c, err)
			return
		}
		date = d
	}

	items, err := h.listByDate.Execute(c.Request.Context(), date)
	if err != nil {
		fail(c, err)
		return
	}

	httpresp.List(c, items)
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	year, errY := strconv.Atoi(c.Query("year"))
	month, errM := strconv.Atoi(c.Query("month"))
	if errY != nil || errM != nil {
		httperr.BadRequest(c, "missing_year_or_month", "Year and month are required.")
		return
	}

	items, err := h.listByMonth.Execute(c.Request.Context(), year, month)
	if err != nil {
		fail(c, err)
		return
	}

	httpresp.List(c, items)
}

// ======================================================
// VIEW
// ======================================================

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	view, err := h.getView.ByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	httpresp.OK(c, view)
}

// Watch streams change signals for one appointment to the dashboard.
func (h *AppointmentHandler) Watch(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	// Unknown ids fail before the upgrade.
	if err := h.getView.Exists(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	h.hub.Serve(c.Writer, c.Request, id)
}

// ======================================================
// WORKERS
// ======================================================

func (h *AppointmentHandler) AssignWorkers(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req AssignWorkersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "worker_ids is required.")
		return
	}

	if _, err := h.assignWorkers.Execute(c.Request.Context(), id, req.WorkerIDs, currentUserID(c)); err != nil {
		fail(c, err)
		return
	}

	view, err := h.getView.ByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	httpresp.OK(c, view)
}

// ======================================================
// STATUS OVERRIDE
// ======================================================

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "status is required.")
		return
	}

	if _, err := h.overrideStatus.Execute(c.Request.Context(), id, req.Status, currentUserID(c)); err != nil {
		fail(c, err)
		return
	}

	view, err := h.getView.ByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	httpresp.OK(c, view)
}
