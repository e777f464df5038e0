package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gvbsvv/eshop-cart/internal/apperrors"
	log "github.com/sirupsen/logrus"
)

// respondError writes the JSON error body for err. Internal failures are
// logged and answered with fallback rather than the underlying cause.
func respondError(c *gin.Context, err error, fallback string) {
	status := apperrors.HTTPStatus(err)

	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperrors.Internal {
		log.WithFields(log.Fields{
			"request_id": c.GetString(requestIDKey),
			"path":       c.Request.URL.Path,
			"error":      err.Error(),
		}).Error(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
		return
	}

	body := gin.H{"error": appErr.Message}
	if appErr.Kind == apperrors.InsufficientStock {
		body["available"] = appErr.Available
		body["requested"] = appErr.Requested
	}
	c.JSON(status, body)
}
