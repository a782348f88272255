package api

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/dpa/pkg/database"
	"github.com/codeready-toolchain/dpa/pkg/services"
)

// writeServiceError maps a pkg/services sentinel/typed error onto an
// HTTP status.
func writeServiceError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case services.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, services.ErrConcurrentModification):
		c.JSON(http.StatusConflict, gin.H{"error": "concurrent modification"})
	default:
		logger.Error("unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func healthCheckDB(ctx context.Context, db *sql.DB) (string, error) {
	status, err := database.Health(ctx, db)
	if err != nil {
		return "", err
	}
	return status.Status, nil
}
