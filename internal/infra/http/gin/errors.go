package ginserver

import (
	"context"
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"tourbook/internal/app/commands"
	"tourbook/internal/app/handlers/assignments"
	bookingapp "tourbook/internal/app/handlers/booking"
	"tourbook/internal/app/middleware"
	"tourbook/internal/app/queries"
	"tourbook/internal/domain/assignment"
	domainbooking "tourbook/internal/domain/booking"
	"tourbook/internal/domain/catalog"
)

var errBadRequest = errors.New("http: malformed request")

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": errBadRequest.Error(), "detail": err.Error()})
}

// writeError maps an application error to a response. Rejections carry a
// stable reason the client shows next to the offending field; anything not
// recognised is a collaborator failure the user can dismiss and retry.
func writeError(c *gin.Context, err error) {
	if rej, ok := domainbooking.AsRejection(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "rejected", "reason": string(rej.Reason)})
		return
	}
	status := statusFor(err)
	c.JSON(status, gin.H{"error": messageFor(status, err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, bookingapp.ErrTargetMissing),
		errors.Is(err, bookingapp.ErrPackageIDMissing),
		errors.Is(err, bookingapp.ErrHotelIDMissing),
		errors.Is(err, assignments.ErrScopeAmbiguous),
		errors.Is(err, assignment.ErrEmptyKey),
		errors.Is(err, assignment.ErrScopeMissing):
		return http.StatusBadRequest
	case errors.Is(err, middleware.ErrKeyReused):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrPackageNotFound),
		errors.Is(err, catalog.ErrHotelNotFound):
		return http.StatusNotFound
	case errors.Is(err, commands.ErrHandlerNotFound),
		errors.Is(err, queries.ErrHandlerNotFound):
		return http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func messageFor(status int, err error) string {
	switch status {
	case http.StatusBadGateway, http.StatusGatewayTimeout:
		return "upstream request failed, please retry"
	case http.StatusInternalServerError:
		return "internal error"
	default:
		return err.Error()
	}
}
