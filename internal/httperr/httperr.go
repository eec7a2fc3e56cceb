package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

type mapping struct {
	status  int
	message string
}

// known maps business codes to the status and message shown to the user.
var known = map[string]mapping{
	"no_evidence":            {http.StatusUnprocessableEntity, "Attach at least one photo before submitting."},
	"not_started":            {http.StatusConflict, "Start the job before submitting it."},
	"already_completed":      {http.StatusConflict, "This job was already submitted."},
	"already_rated":          {http.StatusConflict, "This appointment has already been rated."},
	"not_completed":          {http.StatusConflict, "Ratings open once the appointment is completed."},
	"duplicate_assignment":   {http.StatusConflict, "Worker is already assigned to this appointment."},
	"invalid_rating":         {http.StatusBadRequest, "Rating must be between 1 and 5."},
	"invalid_transition":     {http.StatusConflict, "Status change not allowed."},
	"invalid_status":         {http.StatusBadRequest, "Unknown status."},
	"appointment_not_found":  {http.StatusNotFound, "Appointment not found."},
	"worker_not_found":       {http.StatusNotFound, "Worker not found."},
	"customer_not_found":     {http.StatusNotFound, "Customer not found."},
	"worker_not_assigned":    {http.StatusForbidden, "Worker is not assigned to this appointment."},
	"staged_photo_not_found": {http.StatusNotFound, "Photo not found."},
	"appointment_closed":     {http.StatusConflict, "This appointment is closed."},
	"invalid_image":          {http.StatusBadRequest, "File is not a supported image."},
	"invalid_credentials":    {http.StatusUnauthorized, "Invalid email or password."},
	"invalid_date":           {http.StatusBadRequest, "Invalid date."},
	"invalid_time":           {http.StatusBadRequest, "Invalid time."},
	"invalid_title":          {http.StatusBadRequest, "Title is required."},
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

// FromError writes err as a JSON error. Unknown errors become a generic
// retryable failure; the caller is expected to have logged them.
func FromError(c *gin.Context, err error) {
	if code, ok := CodeOf(err); ok {
		if m, found := known[code]; found {
			Write(c, m.status, code, m.message)
			return
		}
		BadRequest(c, code, code)
		return
	}
	Internal(c, "try_again", "Something went wrong, please try again.")
}
