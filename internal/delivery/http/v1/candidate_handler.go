package v1

import (
	"net/http"
	"strconv"

	"go-postulation-backend/internal/delivery/http/middleware"
	"go-postulation-backend/internal/delivery/http/response"
	"go-postulation-backend/internal/domain"
	"go-postulation-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type CandidateHandler struct {
	candidateUC domain.CandidateUsecase
}

// NewCandidateHandler registers candidate profile routes
func NewCandidateHandler(r *gin.RouterGroup, candidateUC domain.CandidateUsecase) {
	handler := &CandidateHandler{candidateUC: candidateUC}

	candidates := r.Group("/candidates")
	{
		candidates.GET("/profile", handler.GetProfile)
		candidates.PUT("/profile", handler.UpdateProfile)
		candidates.PUT("/skills", handler.UpsertSkill)
		candidates.DELETE("/skills/:skillId", handler.RemoveSkill)
	}
}

// GetProfile godoc
// @Summary      Get my profile
// @Description  Get the current candidate's profile and skills
// @Tags         candidates
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.CandidateSnapshot}
// @Failure      404  {object}  response.Response
// @Router       /candidates/profile [get]
// @Security     BearerAuth
func (h *CandidateHandler) GetProfile(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	profile, err := h.candidateUC.GetProfile(c, actor)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile retrieved", profile)
}

// UpdateProfile godoc
// @Summary      Update my profile
// @Description  Update the current candidate's profile. Postulations already scored keep their score.
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        body  body      domain.CandidateSnapshot  true  "Profile data"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Router       /candidates/profile [put]
// @Security     BearerAuth
func (h *CandidateHandler) UpdateProfile(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	var snapshot domain.CandidateSnapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	if err := h.candidateUC.UpdateProfile(c, actor, &snapshot); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile updated successfully", nil)
}

// UpsertSkill godoc
// @Summary      Add or update a skill
// @Description  Add a skill to the current candidate's profile, or update its level
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        body  body      domain.CandidateSkill  true  "Skill data"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Router       /candidates/skills [put]
// @Security     BearerAuth
func (h *CandidateHandler) UpsertSkill(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	var skill domain.CandidateSkill
	if err := c.ShouldBindJSON(&skill); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	if err := h.candidateUC.UpsertSkill(c, actor, &skill); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Skill saved", nil)
}

// RemoveSkill godoc
// @Summary      Remove a skill
// @Description  Remove a skill from the current candidate's profile
// @Tags         candidates
// @Produce      json
// @Param        skillId  path      int  true  "Skill ID"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /candidates/skills/{skillId} [delete]
// @Security     BearerAuth
func (h *CandidateHandler) RemoveSkill(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	skillID, err := strconv.ParseInt(c.Param("skillId"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid skill ID"))
		return
	}

	if err := h.candidateUC.RemoveSkill(c, actor, skillID); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Skill removed", nil)
}
