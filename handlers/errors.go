package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"repairhub/middleware"
	"repairhub/services/claim"
	"repairhub/services/feed"
	"repairhub/services/lifecycle"
	"repairhub/services/metrics"
	"repairhub/utils"
)

// writeError maps service errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var te *lifecycle.TransitionError
	switch {
	case errors.As(err, &te):
		utils.JSONError(c, http.StatusUnprocessableEntity, "invalid transition", te.Error())
	case errors.Is(err, claim.ErrInvalidTransition):
		utils.JSONError(c, http.StatusUnprocessableEntity, "invalid transition", err.Error())
	case errors.Is(err, claim.ErrClaimConflict):
		utils.JSONError(c, http.StatusConflict, claim.ErrClaimConflict.Error(), "")
	case errors.Is(err, claim.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "request not found", "")
	case errors.Is(err, claim.ErrInvalidRequest),
		errors.Is(err, metrics.ErrInvalidGranularity),
		errors.Is(err, feed.ErrUnknownFilter):
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
	case errors.Is(err, claim.ErrStoreUnavailable),
		errors.Is(err, metrics.ErrStoreUnavailable),
		errors.Is(err, feed.ErrStoreUnavailable):
		utils.JSONError(c, http.StatusServiceUnavailable, "service temporarily unavailable", err.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
	}
}

// providerFromContext returns the identity set by the provider auth middleware.
func providerFromContext(c *gin.Context) (id, name string, ok bool) {
	id = c.GetString(middleware.ProviderIDKey)
	name = c.GetString(middleware.ProviderNameKey)
	return id, name, id != ""
}
