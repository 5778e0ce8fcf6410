package v1

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go-postulation-backend/internal/delivery/http/middleware"
	"go-postulation-backend/internal/delivery/http/response"
	"go-postulation-backend/internal/domain"
	"go-postulation-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type PostulationHandler struct {
	postulationUC domain.PostulationUsecase
}

// NewPostulationHandler registers postulation routes
func NewPostulationHandler(r *gin.RouterGroup, postulationUC domain.PostulationUsecase, submitLimiter gin.HandlerFunc) {
	handler := &PostulationHandler{postulationUC: postulationUC}

	// Candidate routes
	candidates := r.Group("/candidates")
	{
		candidates.POST("/vacancies/:vacancyId/postulations", submitLimiter, handler.SubmitPostulation)
		candidates.GET("/postulations", handler.GetMyPostulations)
	}

	// Company routes
	companies := r.Group("/companies")
	{
		companies.GET("/vacancies/:vacancyId/postulations", handler.ListRanked)
		companies.GET("/vacancies/:vacancyId/postulations/export", handler.ExportRanked)
		companies.POST("/postulations/:id/viewed", handler.MarkViewed)
	}

	// Transitions are shared: the usecase attributes the actor and decides
	// who may drive which transition.
	r.POST("/postulations/:id/transitions", handler.ApplyTransition)
}

// SubmitPostulationRequest is the request payload for applying to a vacancy
type SubmitPostulationRequest struct {
	CoverLetter string `json:"cover_letter" binding:"max=4000"`
}

// SubmitPostulation godoc
// @Summary      Apply to a vacancy
// @Description  Submit a postulation for an open vacancy (Candidate only). The compatibility score is computed at submission.
// @Tags         postulations
// @Accept       json
// @Produce      json
// @Param        vacancyId  path      int                       true   "Vacancy ID"
// @Param        body       body      SubmitPostulationRequest  false  "Postulation data"
// @Success      201        {object}  response.Response{data=domain.Postulation}
// @Failure      404        {object}  response.Response
// @Failure      409        {object}  response.Response
// @Failure      422        {object}  response.Response
// @Router       /candidates/vacancies/{vacancyId}/postulations [post]
// @Security     BearerAuth
func (h *PostulationHandler) SubmitPostulation(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	vacancyID, err := strconv.ParseInt(c.Param("vacancyId"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid vacancy ID"))
		return
	}

	var req SubmitPostulationRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	postulation, err := h.postulationUC.SubmitPostulation(c, actor, vacancyID, req.CoverLetter)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Postulation submitted successfully", postulation)
}

// GetMyPostulations godoc
// @Summary      Get my postulations
// @Description  Get all postulations submitted by the current candidate
// @Tags         postulations
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Postulation}
// @Failure      401  {object}  response.Response
// @Router       /candidates/postulations [get]
// @Security     BearerAuth
func (h *PostulationHandler) GetMyPostulations(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	postulations, err := h.postulationUC.GetMyPostulations(c, actor)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Postulations retrieved", postulations)
}

// ListRanked godoc
// @Summary      List ranked postulations
// @Description  Get a vacancy's postulations ordered by rank ascending (owning company only)
// @Tags         postulations
// @Produce      json
// @Param        vacancyId  path      int     true   "Vacancy ID"
// @Param        states     query     string  false  "Comma-separated state filter"
// @Param        min_score  query     number  false  "Minimum score"
// @Param        unviewed   query     bool    false  "Only postulations not yet viewed"
// @Param        page       query     int     false  "Page"
// @Param        page_size  query     int     false  "Page size"
// @Success      200        {object}  response.Response{data=domain.PaginatedResult[domain.Postulation]}
// @Failure      403        {object}  response.Response
// @Failure      404        {object}  response.Response
// @Router       /companies/vacancies/{vacancyId}/postulations [get]
// @Security     BearerAuth
func (h *PostulationHandler) ListRanked(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	vacancyID, err := strconv.ParseInt(c.Param("vacancyId"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid vacancy ID"))
		return
	}

	filter, err := parsePostulationFilter(c)
	if err != nil {
		c.Error(err)
		return
	}

	result, err := h.postulationUC.ListRanked(c, actor, vacancyID, filter)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Postulations retrieved", result)
}

// ExportRanked godoc
// @Summary      Export ranked postulations
// @Description  Download a vacancy's ranked postulations as XLSX (owning company only)
// @Tags         postulations
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        vacancyId  path  int  true  "Vacancy ID"
// @Success      200
// @Failure      403  {object}  response.Response
// @Router       /companies/vacancies/{vacancyId}/postulations/export [get]
// @Security     BearerAuth
func (h *PostulationHandler) ExportRanked(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	vacancyID, err := strconv.ParseInt(c.Param("vacancyId"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid vacancy ID"))
		return
	}

	filter, err := parsePostulationFilter(c)
	if err != nil {
		c.Error(err)
		return
	}

	data, filename, err := h.postulationUC.ExportRanked(c, actor, vacancyID, filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// TransitionRequest is the request payload for a state transition
type TransitionRequest struct {
	TargetState   string  `json:"target_state" binding:"required"`
	Notes         string  `json:"notes" binding:"max=2000"`
	InterviewDate *string `json:"interview_date"`
	OutcomeNotes  *string `json:"outcome_notes"`
}

// ApplyTransition godoc
// @Summary      Apply a state transition
// @Description  Move a postulation to a new lifecycle state. The company drives the forward path; the candidate may withdraw before interview scheduling.
// @Tags         postulations
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Postulation ID"
// @Param        body  body      TransitionRequest  true  "Transition"
// @Success      200   {object}  response.Response{data=domain.Postulation}
// @Failure      401   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Failure      422   {object}  response.Response
// @Router       /postulations/{id}/transitions [post]
// @Security     BearerAuth
func (h *PostulationHandler) ApplyTransition(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid postulation ID"))
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	change := domain.StateChange{
		Target:       domain.PostulationState(req.TargetState),
		Notes:        req.Notes,
		OutcomeNotes: req.OutcomeNotes,
	}
	if req.InterviewDate != nil {
		t, err := parseRFC3339(*req.InterviewDate)
		if err != nil {
			c.Error(apperror.BadRequest("interview_date must be RFC3339"))
			return
		}
		change.InterviewDate = &t
	}

	postulation, err := h.postulationUC.ApplyTransition(c, actor, id, change)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Postulation state updated", postulation)
}

// MarkViewed godoc
// @Summary      Mark a postulation as viewed
// @Description  Record that the owning company opened the postulation
// @Tags         postulations
// @Produce      json
// @Param        id  path      int  true  "Postulation ID"
// @Success      200 {object}  response.Response
// @Failure      403 {object}  response.Response
// @Router       /companies/postulations/{id}/viewed [post]
// @Security     BearerAuth
func (h *PostulationHandler) MarkViewed(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid postulation ID"))
		return
	}

	if err := h.postulationUC.MarkViewed(c, actor, id); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Postulation marked as viewed", nil)
}

func parsePostulationFilter(c *gin.Context) (domain.PostulationFilter, error) {
	var f domain.PostulationFilter

	if states := c.Query("states"); states != "" {
		f.States = strings.Split(states, ",")
	}
	if minScore := c.Query("min_score"); minScore != "" {
		v, err := strconv.ParseFloat(minScore, 64)
		if err != nil {
			return f, apperror.BadRequest("Invalid min_score")
		}
		f.MinScore = &v
	}
	f.Unviewed = c.Query("unviewed") == "true"
	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	f.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	return f, nil
}
