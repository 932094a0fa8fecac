package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/csedclub/club-payments/internal/core/domain"
)

// writeError maps domain errors to HTTP responses.
// Caller faults are 400; configuration, gateway and unknown failures are 500.
func writeError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrInvalidSignature) {
		status = http.StatusBadRequest
	}

	message := fallback
	var svcErr *domain.ServiceError
	if errors.As(err, &svcErr) && svcErr.Message != "" {
		message = svcErr.Message
	}

	c.JSON(status, gin.H{"error": message})
}
