package handlers

import (
	"net/http"

	"github.com/frosttechequities/migratio-assessment-service/internal/services"
	"github.com/frosttechequities/migratio-assessment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	BaseHandler
	quizService services.QuizService
}

func NewQuizHandler(quizService services.QuizService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: NewBaseHandler(logger),
		quizService: quizService,
	}
}

// StartSession creates a new quiz session or resumes the caller's active one
// @Router /quiz/sessions [post]
func (h *QuizHandler) StartSession(c *gin.Context) {
	h.LogRequest(c, "Starting quiz session")

	var opts services.SessionOptions
	opts.ResumeSession = true
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
			return
		}
	}

	result, err := h.quizService.StartSession(c.Request.Context(), h.UserID(c), &opts)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	status := http.StatusCreated
	message := "Quiz session started"
	if result.Resumed {
		status = http.StatusOK
		message = "Quiz session resumed"
	}
	h.RespondWithSuccess(c, status, message, result)
}

// ResumeSession returns the caller's active session with its answers
// @Router /quiz/sessions/resume [get]
func (h *QuizHandler) ResumeSession(c *gin.Context) {
	userID := h.UserID(c)
	if userID == nil {
		h.RespondWithError(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	result, err := h.quizService.ResumeSession(c.Request.Context(), *userID)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	if result == nil {
		h.RespondWithError(c, http.StatusNotFound, "No active quiz session", nil)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Quiz session resumed", result)
}

// GetSession returns one session by its id
// @Router /quiz/sessions/:session_id [get]
func (h *QuizHandler) GetSession(c *gin.Context) {
	session, err := h.quizService.GetSession(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Quiz session", session)
}

// SubmitAnswer records an answer and returns the next question
// @Router /quiz/answers [post]
func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
	var req services.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	h.LogRequest(c, "Submitting answer",
		"session_id", req.SessionID,
		"question_id", req.QuestionID)

	result, err := h.quizService.SubmitAnswer(c.Request.Context(), &req)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Answer recorded", result)
}

// AbandonSession marks an in-progress session abandoned
// @Router /quiz/sessions/:session_id/abandon [post]
func (h *QuizHandler) AbandonSession(c *gin.Context) {
	sessionID := c.Param("session_id")
	h.LogRequest(c, "Abandoning quiz session", "session_id", sessionID)

	if err := h.quizService.AbandonSession(c.Request.Context(), sessionID); err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Quiz session abandoned", nil)
}
