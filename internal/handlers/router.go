package handlers

import (
	"github.com/frosttechequities/migratio-assessment-service/internal/middleware"
	"github.com/frosttechequities/migratio-assessment-service/internal/services"
	"github.com/frosttechequities/migratio-assessment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	quizHandler     *QuizHandler
	profileHandler  *ProfileHandler
	questionHandler *QuestionHandler
	auth            *middleware.Auth
}

func NewHandlerManager(
	quizService services.QuizService,
	profileService services.ProfileService,
	scoringService services.ScoringService,
	questionService services.QuestionService,
	importExport services.ImportExportService,
	auth *middleware.Auth,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		quizHandler:     NewQuizHandler(quizService, logger),
		profileHandler:  NewProfileHandler(profileService, scoringService, logger),
		questionHandler: NewQuestionHandler(questionService, importExport, logger),
		auth:            auth,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		// Quiz routes: anonymous users may take the quiz, so auth is optional
		quiz := v1.Group("/quiz", hm.auth.Optional())
		{
			quiz.POST("/sessions", hm.quizHandler.StartSession)
			quiz.GET("/sessions/resume", hm.quizHandler.ResumeSession)
			quiz.GET("/sessions/:session_id", hm.quizHandler.GetSession)
			quiz.POST("/sessions/:session_id/abandon", hm.quizHandler.AbandonSession)
			quiz.POST("/answers", hm.quizHandler.SubmitAnswer)
		}

		// Profile routes require a verified identity
		profiles := v1.Group("/profiles", hm.auth.Required())
		{
			profiles.GET("/:user_id", hm.profileHandler.GetProfile)
			profiles.GET("/:user_id/score", hm.profileHandler.GetProfileScore)
			profiles.POST("/rebuild/:session_id", hm.profileHandler.RebuildProfile)
		}

		// Question catalog administration
		questions := v1.Group("/questions", hm.auth.Required())
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/export", hm.questionHandler.ExportQuestions)
			questions.POST("/import", hm.questionHandler.ImportQuestions)
			questions.GET("/:question_id", hm.questionHandler.GetQuestion)
			questions.PUT("/:question_id", hm.questionHandler.UpdateQuestion)
			questions.DELETE("/:question_id", hm.questionHandler.DeactivateQuestion)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "migratio-assessment-service",
		})
	})
}
