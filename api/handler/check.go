package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/sessionprobe/checker"
	"github.com/use-agent/sessionprobe/models"
)

// Check returns a handler for POST /api/v1/check.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults.
//  2. Checker.Check → parse the blob, then run the plain-HTTP or browser
//     path depending on mode.
//  3. Return the verdict with 200; hard failures of the check itself map
//     to 5xx via respondError.
func Check(ck *checker.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CheckRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.CheckResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		resp, err := ck.Check(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// respondError maps a CheckError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error) {
	checkErr, ok := err.(*models.CheckError)
	if !ok {
		checkErr = models.NewCheckError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(checkErr), models.CheckResponse{
		Success: false,
		Error:   checkErr.ToDetail(),
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.CheckError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeScrape:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
