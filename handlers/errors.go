package handlers

import (
	"net/http"

	"tailorlink/services/negotiation"
	"tailorlink/utils"

	"github.com/gin-gonic/gin"
)

// respondNegotiationError maps the engine's error taxonomy onto HTTP.
// StateConflict keeps its own code so clients know to refresh and retry.
func respondNegotiationError(c *gin.Context, err error) {
	code := negotiation.ErrorCode(err)
	status := http.StatusInternalServerError
	switch code {
	case negotiation.CodeUnauthorized:
		status = http.StatusForbidden
	case negotiation.CodeValidation:
		status = http.StatusBadRequest
	case negotiation.CodeIllegalTransition, negotiation.CodeDuplicateAppointment, negotiation.CodeStateConflict:
		status = http.StatusConflict
	case negotiation.CodeNotFound:
		status = http.StatusNotFound
	}

	if code == "" {
		utils.JSONError(c, status, "internal error", err.Error())
		return
	}
	c.JSON(status, utils.ErrorResponse{Message: err.Error(), Code: code})
}

// partyID returns the authenticated caller set by the auth middleware.
func partyID(c *gin.Context) string {
	return c.GetString("partyID")
}
