package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"tick-backtest/internal/api/models"
	"tick-backtest/internal/batch"
	"tick-backtest/internal/data"
	"tick-backtest/internal/model"
	"tick-backtest/internal/strategy"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{Code: code, Message: message},
	})
}

// respondFeedError maps a feed loading failure to a status and code.
func respondFeedError(c *gin.Context, err error) {
	var fe *data.FeedError
	switch {
	case errors.As(err, &fe):
		status := http.StatusBadGateway
		switch fe.StatusCode {
		case http.StatusForbidden, http.StatusUnauthorized:
			status = http.StatusUnauthorized
		case http.StatusTooManyRequests:
			status = http.StatusTooManyRequests
		case http.StatusNotFound:
			status = http.StatusNotFound
		}
		c.JSON(status, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    fe.Code,
				Message: fe.Message,
				Details: map[string]any{
					"status_code": fe.StatusCode,
					"retry_after": fe.RetryAfter,
				},
			},
		})
	case errors.Is(err, os.ErrNotExist):
		respondError(c, http.StatusNotFound, "FEED_NOT_FOUND", err.Error())
	default:
		respondError(c, http.StatusBadRequest, "DATA_LOAD_ERROR", err.Error())
	}
}

func respondConfigError(c *gin.Context, err error) {
	if errors.Is(err, os.ErrNotExist) {
		respondError(c, http.StatusNotFound, "FEED_NOT_FOUND", err.Error())
		return
	}
	respondError(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error())
}

// respondRunError maps a failed backtest to a status and code. Problems
// with the request come back as 4xx; strategy faults as 500.
func respondRunError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, strategy.ErrUnknownStrategy):
		respondError(c, http.StatusBadRequest, "INVALID_STRATEGY", err.Error())
	case errors.Is(err, batch.ErrConfiguration):
		respondError(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error())
	case errors.Is(err, model.ErrReadOnly):
		respondError(c, http.StatusInternalServerError, "READ_ONLY_VIOLATION", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "BACKTEST_ERROR", err.Error())
	}
}
