package handlers

import (
	"fmt"
	"net/http"

	"studyquiz/internal/apierr"
	"studyquiz/internal/models"
	"studyquiz/internal/quiz"

	"github.com/gin-gonic/gin"
)

// HandleCheckAnswer grades one selection against the quiz the client sent.
func (h *Handler) HandleCheckAnswer(c *gin.Context) {
	var req models.AnswerCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		err = apierr.InputValidation("check", fmt.Errorf("invalid request body: %w", err))
		c.JSON(h.statusFor(c, "Answer check", err), models.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := quiz.CheckRequest(req)
	if err != nil {
		c.JSON(h.statusFor(c, "Answer check", err), models.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}
