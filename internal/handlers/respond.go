package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/field-service/internal/httperr"
	"github.com/BruksfildServices01/field-service/internal/middleware"
)

// fail writes err to the client. Business errors are expected outcomes;
// anything else is logged with the request's trace id.
func fail(c *gin.Context, err error) {
	if _, ok := httperr.CodeOf(err); !ok {
		middleware.Logger(c).WithError(err).Error("request error")
	}
	httperr.FromError(c, err)
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		httperr.BadRequest(c, "invalid_"+name, "Invalid "+name+".")
		return 0, false
	}
	return uint(v), true
}

// publicIDParam reports a malformed link as a missing appointment so the
// public surface never distinguishes the two.
func publicIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("publicId"))
	if err != nil {
		httperr.NotFound(c, "appointment_not_found", "Appointment not found.")
		return uuid.Nil, false
	}
	return id, true
}

func currentUserID(c *gin.Context) uint {
	return c.GetUint(middleware.ContextUserID)
}
