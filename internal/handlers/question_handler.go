package handlers

import (
	"net/http"
	"strconv"

	"github.com/frosttechequities/migratio-assessment-service/internal/models"
	"github.com/frosttechequities/migratio-assessment-service/internal/repositories"
	"github.com/frosttechequities/migratio-assessment-service/internal/services"
	"github.com/frosttechequities/migratio-assessment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
	importExport    services.ImportExportService
}

func NewQuestionHandler(
	questionService services.QuestionService,
	importExport services.ImportExportService,
	logger utils.Logger,
) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
		importExport:    importExport,
	}
}

// CreateQuestion creates a new catalog question
// @Router /questions [post]
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	h.LogRequest(c, "Creating question")

	var req services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	creatorID := ""
	if userID := h.UserID(c); userID != nil {
		creatorID = *userID
	}

	question, err := h.questionService.Create(c.Request.Context(), &req, creatorID)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Question created", question)
}

// GetQuestion returns a question by its catalog id
// @Router /questions/:question_id [get]
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	question, err := h.questionService.Get(c.Request.Context(), c.Param("question_id"))
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Question", question)
}

// ListQuestions lists catalog questions with filters and pagination
// @Router /questions [get]
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	filters := repositories.QuestionFilters{
		SortBy:    c.DefaultQuery("sort_by", "order"),
		SortOrder: c.DefaultQuery("sort_order", "asc"),
	}

	if section := c.Query("section"); section != "" {
		s := models.QuizSection(section)
		filters.Section = &s
	}
	if questionType := c.Query("type"); questionType != "" {
		t := models.QuestionType(questionType)
		filters.Type = &t
	}
	if active := c.Query("is_active"); active != "" {
		isActive := active == "true"
		filters.IsActive = &isActive
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		filters.Offset = offset
	}

	result, err := h.questionService.List(c.Request.Context(), filters)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Questions", result)
}

// UpdateQuestion updates an existing question
// @Router /questions/:question_id [put]
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	questionID := c.Param("question_id")
	h.LogRequest(c, "Updating question", "question_id", questionID)

	var req services.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	question, err := h.questionService.Update(c.Request.Context(), questionID, &req)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Question updated", question)
}

// DeactivateQuestion retires a question from the active catalog
// @Router /questions/:question_id [delete]
func (h *QuestionHandler) DeactivateQuestion(c *gin.Context) {
	questionID := c.Param("question_id")
	h.LogRequest(c, "Deactivating question", "question_id", questionID)

	if err := h.questionService.Deactivate(c.Request.Context(), questionID); err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Question deactivated", nil)
}

// ImportQuestions bulk-imports questions from an uploaded CSV or Excel file
// @Router /questions/import [post]
func (h *QuestionHandler) ImportQuestions(c *gin.Context) {
	h.LogRequest(c, "Importing questions")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Missing file upload", err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Cannot open uploaded file", err)
		return
	}
	defer file.Close()

	creatorID := ""
	if userID := h.UserID(c); userID != nil {
		creatorID = *userID
	}

	summary, err := h.importExport.ImportQuestionsFromFile(c.Request.Context(), file, fileHeader.Filename, creatorID)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Import completed", summary)
}

// ExportQuestions exports the catalog as CSV or Excel
// @Router /questions/export [get]
func (h *QuestionHandler) ExportQuestions(c *gin.Context) {
	req := models.ExportRequest{
		Format:     c.DefaultQuery("format", "xlsx"),
		ActiveOnly: c.DefaultQuery("active_only", "true") == "true",
	}
	if section := c.Query("section"); section != "" {
		s := models.QuizSection(section)
		req.Section = &s
	}

	data, filename, err := h.importExport.ExportQuestions(c.Request.Context(), &req)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if req.Format == "csv" {
		contentType = "text/csv"
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}
