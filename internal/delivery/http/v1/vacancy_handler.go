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

type VacancyHandler struct {
	vacancyUC domain.VacancyUsecase
}

// NewVacancyHandler registers vacancy routes
func NewVacancyHandler(r *gin.RouterGroup, vacancyUC domain.VacancyUsecase) {
	handler := &VacancyHandler{vacancyUC: vacancyUC}

	vacancies := r.Group("/vacancies")
	{
		vacancies.POST("", handler.CreateVacancy)
		vacancies.GET("/mine", handler.ListMyVacancies)
		vacancies.GET("/:id", handler.GetVacancy)
		vacancies.POST("/:id/state", handler.ChangeState)
		vacancies.PUT("/:id/requirements", handler.SetRequirements)
	}
}

// CreateVacancy godoc
// @Summary      Create a vacancy
// @Description  Create a new vacancy in draft state (Company only)
// @Tags         vacancies
// @Accept       json
// @Produce      json
// @Param        body  body      domain.Vacancy  true  "Vacancy data"
// @Success      201   {object}  response.Response{data=domain.Vacancy}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Router       /vacancies [post]
// @Security     BearerAuth
func (h *VacancyHandler) CreateVacancy(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	var vacancy domain.Vacancy
	if err := c.ShouldBindJSON(&vacancy); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	if err := h.vacancyUC.CreateVacancy(c, actor, &vacancy); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Vacancy created successfully", vacancy)
}

// GetVacancy godoc
// @Summary      Get vacancy detail
// @Description  Get a vacancy together with its skill requirements
// @Tags         vacancies
// @Produce      json
// @Param        id   path      int  true  "Vacancy ID"
// @Success      200  {object}  response.Response{data=domain.Vacancy}
// @Failure      404  {object}  response.Response
// @Router       /vacancies/{id} [get]
// @Security     BearerAuth
func (h *VacancyHandler) GetVacancy(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid vacancy ID"))
		return
	}

	vacancy, err := h.vacancyUC.GetVacancy(c, id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Vacancy retrieved", vacancy)
}

// ListMyVacancies godoc
// @Summary      List my vacancies
// @Description  List vacancies owned by the current company, paginated
// @Tags         vacancies
// @Produce      json
// @Param        page       query     int  false  "Page"
// @Param        page_size  query     int  false  "Page size"
// @Success      200        {object}  response.Response{data=domain.PaginatedResult[domain.Vacancy]}
// @Failure      403        {object}  response.Response
// @Router       /vacancies/mine [get]
// @Security     BearerAuth
func (h *VacancyHandler) ListMyVacancies(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.vacancyUC.ListMyVacancies(c, actor, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Vacancies retrieved", result)
}

// ChangeVacancyStateRequest is the request payload for a vacancy state change
type ChangeVacancyStateRequest struct {
	TargetState string `json:"target_state" binding:"required,oneof=draft open paused closed"`
}

// ChangeState godoc
// @Summary      Change vacancy state
// @Description  Move a vacancy through its lifecycle (draft, open, paused, closed)
// @Tags         vacancies
// @Accept       json
// @Produce      json
// @Param        id    path      int                        true  "Vacancy ID"
// @Param        body  body      ChangeVacancyStateRequest  true  "Target state"
// @Success      200   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Failure      422   {object}  response.Response
// @Router       /vacancies/{id}/state [post]
// @Security     BearerAuth
func (h *VacancyHandler) ChangeState(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid vacancy ID"))
		return
	}

	var req ChangeVacancyStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	if err := h.vacancyUC.ChangeState(c, actor, id, req.TargetState); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Vacancy state updated", nil)
}

// SetRequirementsRequest is the request payload for replacing skill requirements
type SetRequirementsRequest struct {
	Requirements []domain.SkillRequirement `json:"requirements" binding:"required"`
}

// SetRequirements godoc
// @Summary      Replace skill requirements
// @Description  Replace a draft vacancy's skill requirements
// @Tags         vacancies
// @Accept       json
// @Produce      json
// @Param        id    path      int                     true  "Vacancy ID"
// @Param        body  body      SetRequirementsRequest  true  "Requirements"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Router       /vacancies/{id}/requirements [put]
// @Security     BearerAuth
func (h *VacancyHandler) SetRequirements(c *gin.Context) {
	actor := middleware.ActorFromContext(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid vacancy ID"))
		return
	}

	var req SetRequirementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	if err := h.vacancyUC.SetRequirements(c, actor, id, req.Requirements); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Requirements updated", nil)
}
