package controller

import (
	"errors"
	"net/http"
	"strconv"

	"valuate_backend/internal/model"
	"valuate_backend/internal/service"
	"valuate_backend/internal/util"
	"valuate_backend/pkg/openai"

	"github.com/gin-gonic/gin"
)

type ValuatorController struct {
	ValuatorService  *service.ValuatorService
	ValuationService *service.ValuationService
}

func NewValuatorController(valuatorService *service.ValuatorService, valuationService *service.ValuationService) *ValuatorController {
	return &ValuatorController{
		ValuatorService:  valuatorService,
		ValuationService: valuationService,
	}
}

// gradingError maps pipeline failures onto HTTP statuses. Upstream and
// parse failures are the completion service's fault, so they surface as 502.
func gradingError(ctx *gin.Context, err error) {
	var reqErr *openai.RequestError
	var upErr *openai.UpstreamError
	var parseErr *openai.ParseError
	var integrityErr *model.DataIntegrityError

	switch {
	case errors.Is(err, util.ErrValuatorNotFound), errors.Is(err, util.ErrValuationNotFound):
		util.NotFound(ctx, err.Error())
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, openai.ErrAPIKeyMissing):
		util.Error(ctx, http.StatusInternalServerError, "completion service is not configured")
	case errors.As(err, &reqErr), errors.As(err, &upErr):
		util.BadGateway(ctx, "completion service request failed")
	case errors.As(err, &parseErr):
		util.BadGateway(ctx, "completion service returned an unusable response")
	case errors.As(err, &integrityErr):
		util.Error(ctx, http.StatusInternalServerError, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// swagger:model CreateValuatorRequest
type CreateValuatorRequest struct {
	Title         string `json:"title" binding:"required"`
	QuestionPaper string `json:"questionPaper" binding:"required"`
	AnswerKey     string `json:"answerKey" binding:"required"`
}

// Create godoc
// @Summary Create a valuator
// @Description Registers a question paper + answer key pair to grade against
// @Tags valuators
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateValuatorRequest true "Valuator details"
// @Success 201 {object} util.Response{data=model.Valuator} "Created"
// @Failure 400 {object} util.Response "Invalid request"
// @Router /api/valuators [post]
func (c *ValuatorController) Create(ctx *gin.Context) {
	var req CreateValuatorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	valuator, err := c.ValuatorService.Create(claims.UserID, req.Title, req.QuestionPaper, req.AnswerKey)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, valuator)
}

// List godoc
// @Summary List the current user's valuators
// @Description Newest first, each with its valuation count
// @Tags valuators
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.ValuatorSummary} "Success"
// @Router /api/valuators [get]
func (c *ValuatorController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	summaries, err := c.ValuatorService.List(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, summaries)
}

// Get godoc
// @Summary Get one valuator
// @Tags valuators
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Valuator ID"
// @Success 200 {object} util.Response{data=model.Valuator} "Success"
// @Failure 404 {object} util.Response "Valuator not found"
// @Router /api/valuators/{id} [get]
func (c *ValuatorController) Get(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	valuator, err := c.ValuatorService.Get(id, claims.UserID)
	if err != nil {
		gradingError(ctx, err)
		return
	}
	util.Success(ctx, valuator)
}

// Delete godoc
// @Summary Delete a valuator
// @Description The valuator's valuations are kept
// @Tags valuators
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Valuator ID"
// @Success 200 {object} util.Response "Success"
// @Failure 404 {object} util.Response "Valuator not found"
// @Router /api/valuators/{id} [delete]
func (c *ValuatorController) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.ValuatorService.Delete(id, claims.UserID); err != nil {
		gradingError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// swagger:model LinkOrganizationRequest
type LinkOrganizationRequest struct {
	SchoolID  *uint `json:"schoolId"`
	GradeID   *uint `json:"gradeId"`
	ClassID   *uint `json:"classId"`
	SubjectID *uint `json:"subjectId"`
}

// LinkOrganization godoc
// @Summary Attach a valuator to the school hierarchy
// @Tags valuators
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Valuator ID"
// @Param body body LinkOrganizationRequest true "Hierarchy links; null clears a link"
// @Success 200 {object} util.Response "Success"
// @Failure 404 {object} util.Response "Valuator not found"
// @Router /api/valuators/{id}/organization [patch]
func (c *ValuatorController) LinkOrganization(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req LinkOrganizationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.ValuatorService.LinkOrganization(id, claims.UserID, req.SchoolID, req.GradeID, req.ClassID, req.SubjectID); err != nil {
		gradingError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// swagger:model ValuateRequest
type ValuateRequest struct {
	AnswerSheet string `json:"answerSheet" binding:"required"`
}

// Valuate godoc
// @Summary Grade an answer sheet
// @Description Runs the grading pipeline against the valuator's question paper and answer key
// @Tags valuations
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Valuator ID"
// @Param body body ValuateRequest true "Answer sheet image URI"
// @Success 201 {object} util.Response{data=model.Valuation} "Created"
// @Failure 404 {object} util.Response "Valuator not found"
// @Failure 502 {object} util.Response "Completion service failure"
// @Router /api/valuators/{id}/valuate [post]
func (c *ValuatorController) Valuate(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req ValuateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	if _, err := c.ValuatorService.Get(id, claims.UserID); err != nil {
		gradingError(ctx, err)
		return
	}

	valuation, err := c.ValuationService.Valuate(ctx.Request.Context(), id, req.AnswerSheet)
	if err != nil {
		gradingError(ctx, err)
		return
	}
	util.Created(ctx, valuation)
}

// ListValuations godoc
// @Summary List a valuator's valuations
// @Description Newest first
// @Tags valuations
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Valuator ID"
// @Success 200 {object} util.Response{data=[]model.Valuation} "Success"
// @Failure 404 {object} util.Response "Valuator not found"
// @Router /api/valuators/{id}/valuations [get]
func (c *ValuatorController) ListValuations(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	if _, err := c.ValuatorService.Get(id, claims.UserID); err != nil {
		gradingError(ctx, err)
		return
	}

	valuations, err := c.ValuationService.ListValuations(id)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, valuations)
}

// Marksheet godoc
// @Summary Get a valuator's marksheet
// @Description One row per graded sheet, sorted by marks descending; ties keep grading order
// @Tags valuations
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Valuator ID"
// @Success 200 {object} util.Response{data=[]service.MarksheetEntry} "Success"
// @Failure 404 {object} util.Response "Valuator not found"
// @Router /api/valuators/{id}/marksheet [get]
func (c *ValuatorController) Marksheet(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	if _, err := c.ValuatorService.Get(id, claims.UserID); err != nil {
		gradingError(ctx, err)
		return
	}

	entries, err := c.ValuationService.Marksheet(id)
	if err != nil {
		gradingError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// GetValuation godoc
// @Summary Get one valuation
// @Tags valuations
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Valuation ID"
// @Success 200 {object} util.Response{data=model.Valuation} "Success"
// @Failure 404 {object} util.Response "Valuation not found"
// @Router /api/valuations/{id} [get]
func (c *ValuatorController) GetValuation(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	valuation, err := c.ValuationService.GetValuation(id)
	if err != nil {
		gradingError(ctx, err)
		return
	}
	util.Success(ctx, valuation)
}

// TotalMarks godoc
// @Summary Get a valuation's total marks
// @Description Sums awarded and maximum marks across all answers
// @Tags valuations
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Valuation ID"
// @Success 200 {object} util.Response{data=service.TotalMarks} "Success"
// @Failure 404 {object} util.Response "Valuation not found"
// @Router /api/valuations/{id}/total [get]
func (c *ValuatorController) TotalMarks(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	total, err := c.ValuationService.TotalMarks(id)
	if err != nil {
		gradingError(ctx, err)
		return
	}
	util.Success(ctx, total)
}

// swagger:model RevaluateRequest
type RevaluateRequest struct {
	Remarks string `json:"remarks"`
}

// Revaluate godoc
// @Summary Re-grade a valuation with extra remarks
// @Description Overwrites the stored grading payload; identity and answer sheet are unchanged
// @Tags valuations
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Valuation ID"
// @Param body body RevaluateRequest true "Extra remarks for the evaluator"
// @Success 200 {object} util.Response{data=model.Valuation} "Success"
// @Failure 404 {object} util.Response "Valuation not found"
// @Failure 502 {object} util.Response "Completion service failure"
// @Router /api/valuations/{id}/revaluate [post]
func (c *ValuatorController) Revaluate(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req RevaluateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	valuation, err := c.ValuationService.Revaluate(ctx.Request.Context(), id, req.Remarks)
	if err != nil {
		gradingError(ctx, err)
		return
	}
	util.Success(ctx, valuation)
}
