package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/field-service/internal/httperr"
	"github.com/BruksfildServices01/field-service/internal/httpresp"
	"github.com/BruksfildServices01/field-service/internal/realtime"
	ucAppointment "github.com/BruksfildServices01/field-service/internal/usecase/appointment"
)

const maxPhotoBytes = 15 << 20

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

// PublicHandler serves the unauthenticated appointment link shared with the
// customer and the assigned workers.
type PublicHandler struct {
	getView    *ucAppointment.GetAppointmentView
	startWork  *ucAppointment.StartWork
	stagePhoto *ucAppointment.StagePhoto
	unstage    *ucAppointment.UnstagePhoto
	listStaged *ucAppointment.ListStagedPhotos
	submitWork *ucAppointment.SubmitWork
	saveNote   *ucAppointment.SaveNote
	submitRate *ucAppointment.SubmitRating
	hub        *realtime.Hub
}

func NewPublicHandler(
	getView *ucAppointment.GetAppointmentView,
	startWork *ucAppointment.StartWork,
	stagePhoto *ucAppointment.StagePhoto,
	unstage *ucAppointment.UnstagePhoto,
	listStaged *ucAppointment.ListStagedPhotos,
	submitWork *ucAppointment.SubmitWork,
	saveNote *ucAppointment.SaveNote,
	submitRate *ucAppointment.SubmitRating,
	hub *realtime.Hub,
) *PublicHandler {
	return &PublicHandler{
		getView:    getView,
		startWork:  startWork,
		stagePhoto: stagePhoto,
		unstage:    unstage,
		listStaged: listStaged,
		submitWork: submitWork,
		saveNote:   saveNote,
		submitRate: submitRate,
		hub:        hub,
	}
}

////////////////////////////////////////////////////////
// DTOs
////////////////////////////////////////////////////////

type SubmitWorkRequest struct {
	Note *string `json:"note"`
}

type SaveNoteRequest struct {
	Note string `json:"note"`
}

type SubmitRatingRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

////////////////////////////////////////////////////////
// VIEW
////////////////////////////////////////////////////////

// Get returns the appointment. ?worker=<id> adds that worker's pending
// photos.
func (h *PublicHandler) Get(c *gin.Context) {
	publicID, ok := publicIDParam(c)
	if !ok {
		return
	}

	var stagedFor *uint
	if raw := c.Query("worker"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_workerId", "Invalid workerId.")
			return
		}
		id := uint(v)
		stagedFor = &id
	}

	view, err := h.getView.ByPublicID(c.Request.Context(), publicID, stagedFor)
	if err != nil {
		fail(c, err)
		return
	}

	httpresp.OK(c, view)
}

func (h *PublicHandler) Watch(c *gin.Context) {
	publicID, ok := publicIDParam(c)
	if !ok {
		return
	}

	id, err := h.getView.Resolve(c.Request.Context(), publicID)
	if err != nil {
		fail(c, err)
		return
	}

	h.hub.Serve(c.Writer, c.Request, id)
}

////////////////////////////////////////////////////////
// WORKER ACTIONS
////////////////////////////////////////////////////////

func (h *PublicHandler) Start(c *gin.Context) {
	publicID, ok := publicIDParam(c)
	if !ok {
		return
	}
	workerID, ok := uintParam(c, "workerId")
	if !ok {
		return
	}

	a, err := h.startWork.Execute(c.Request.Context(), publicID, workerID)
	if err != nil {
		fail(c, err)
		return
	}

	httpresp.OK(c, a)
}

func (h *PublicHandler) StagePhoto(c *gin.Context) {
	publicID, ok := publicIDParam(c)
	if !ok {
		return
	}
	workerID, ok := uintParam(c, "workerId")
	if !ok {
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		httperr.BadRequest(c, "missing_photo", "Attach a photo in the 'photo' field.")
		return
	}
	if file.Size > maxPhotoBytes {
		httperr.Write(c, http.StatusRequestEntityTooLarge, "photo_too_large", "Photo is too large.")
		return
	}

	f, err := file.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes))
	if err != nil {
		fail(c, err)
		return
	}

	staged, err := h.stagePhoto.Execute(
		c.Request.Context(),
		publicID,
		workerID,
		data,
		file.Header.Get("Content-Type"),
	)
	if err != nil {
		fail(c, err)
		return
	}

	httpresp.Created(c, staged)
}

func (h *PublicHandler) ListStaged(c *gin.Context) {
	publicID, ok := publicIDParam(c)
	if !ok {
		return
	}
	workerID, ok := uintParam(c, "workerId")
	if !ok {
		return
	}

	items, err := h.listStaged.Execute(c.Request.Context(), publicID, workerID)
	if err != nil {
		fail(c, err)
		return
	}

	httpresp.List(c, items)
}

func (h *PublicHandler) UnstagePhoto(c *gin.Context) {
	publicID, ok := publicIDParam(c)
	if !ok {
		return
	}
	workerID, ok := uintParam(c, "workerId")
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		httperr.BadRequest(c, "invalid_index", "Invalid index.")
		return
	}

	items, err := h.unstage.Execute(c.Request.Context(), publicID, workerID, index)
	if err != nil {
		fail(c, err)
		return
	}

	httpresp.List(c, items)
}

func (h *PublicHandler) Submit(c *gin.Context) {
	publicID, ok := publicIDParam(c)
	if !ok {
		return
	}
	workerID, ok := uintParam(c, "workerId")
	if !ok {
		return
	}

	var req SubmitWorkRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.BadRequest(c, "invalid_request", "Invalid data.")
			return
		}
	}

	res, err := h.submitWork.Execute(c.Request.Context(), ucAppointment.SubmitWorkInput{
		PublicID: publicID,
		WorkerID: workerID,
		Note:     req.Note,
	})
	if err != nil {
		fail(c, err)
		return
	}

	httpresp.OK(c, res)
}

func (h *PublicHandler) SaveNote(c *gin.Context) {
	publicID, ok := publicIDParam(c)
	if !ok {
		return
	}
	workerID, ok := uintParam(c, "workerId")
	if !ok {
		return
	}

	var req SaveNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid data.")
		return
	}

	note, err := h.saveNote.Execute(c.Request.Context(), publicID, workerID, req.Note)
	if err != nil {
		fail(c, err)
		return
	}

	httpresp.OK(c, note)
}

////////////////////////////////////////////////////////
// CUSTOMER ACTIONS
////////////////////////////////////////////////////////

func (h *PublicHandler) Rate(c *gin.Context) {
	publicID, ok := publicIDParam(c)
	if !ok {
		return
	}

	var req SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, httperr.ErrBusiness("invalid_rating"))
		return
	}

	r, err := h.submitRate.Execute(c.Request.Context(), publicID, req.Rating, req.Comment)
	if err != nil {
		fail(c, err)
		return
	}

	httpresp.Created(c, r)
}
