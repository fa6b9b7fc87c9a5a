package handlers

import (
	"net/http"

	"github.com/frosttechequities/migratio-assessment-service/internal/services"
	"github.com/frosttechequities/migratio-assessment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	BaseHandler
	profileService services.ProfileService
	scoringService services.ScoringService
}

func NewProfileHandler(profileService services.ProfileService, scoringService services.ScoringService, logger utils.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    NewBaseHandler(logger),
		profileService: profileService,
		scoringService: scoringService,
	}
}

// GetProfile returns the consolidated applicant profile
// @Router /profiles/:user_id [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID := c.Param("user_id")
	h.LogRequest(c, "Getting profile", "profile_user_id", userID)

	profile, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Profile", profile)
}

// GetProfileScore computes the profile-strength score bundle
// @Router /profiles/:user_id/score [get]
func (h *ProfileHandler) GetProfileScore(c *gin.Context) {
	userID := c.Param("user_id")
	h.LogRequest(c, "Scoring profile", "profile_user_id", userID)

	result, err := h.scoringService.ScoreUser(c.Request.Context(), userID)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Profile score", result)
}

// RebuildProfile re-projects a profile from one of the user's sessions
// @Router /profiles/rebuild/:session_id [post]
func (h *ProfileHandler) RebuildProfile(c *gin.Context) {
	sessionID := c.Param("session_id")
	h.LogRequest(c, "Rebuilding profile", "session_id", sessionID)

	profile, err := h.profileService.RebuildFromSession(c.Request.Context(), sessionID)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Profile rebuilt", profile)
}
