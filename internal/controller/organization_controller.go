package controller

import (
	"errors"

	"valuate_backend/internal/service"
	"valuate_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type OrganizationController struct {
	OrgService *service.OrganizationService
}

func NewOrganizationController(orgService *service.OrganizationService) *OrganizationController {
	return &OrganizationController{OrgService: orgService}
}

func orgError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrSchoolNotFound),
		errors.Is(err, util.ErrGradeNotFound),
		errors.Is(err, util.ErrClassNotFound),
		errors.Is(err, util.ErrSubjectNotFound):
		util.NotFound(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// swagger:model OrgNodeRequest
type OrgNodeRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateSchool godoc
// @Summary Create a school
// @Tags organization
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body OrgNodeRequest true "School details"
// @Success 201 {object} util.Response{data=model.School} "Created"
// @Router /api/schools [post]
func (c *OrganizationController) CreateSchool(ctx *gin.Context) {
	var req OrgNodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	school, err := c.OrgService.CreateSchool(claims.UserID, req.Name)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, school)
}

// ListSchools godoc
// @Summary List the current user's schools
// @Tags organization
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.School} "Success"
// @Router /api/schools [get]
func (c *OrganizationController) ListSchools(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	schools, err := c.OrgService.ListSchools(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, schools)
}

// RenameSchool godoc
// @Summary Rename a school
// @Tags organization
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "School ID"
// @Param body body OrgNodeRequest true "New name"
// @Success 200 {object} util.Response{data=model.School} "Success"
// @Failure 404 {object} util.Response "School not found"
// @Router /api/schools/{id} [put]
func (c *OrganizationController) RenameSchool(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req OrgNodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	school, err := c.OrgService.RenameSchool(id, claims.UserID, req.Name)
	if err != nil {
		orgError(ctx, err)
		return
	}
	util.Success(ctx, school)
}

// DeleteSchool godoc
// @Summary Delete a school and everything under it
// @Description Valuator links to removed nodes are cleared; valuators survive
// @Tags organization
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "School ID"
// @Success 200 {object} util.Response "Success"
// @Failure 404 {object} util.Response "School not found"
// @Router /api/schools/{id} [delete]
func (c *OrganizationController) DeleteSchool(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.OrgService.DeleteSchool(id, claims.UserID); err != nil {
		orgError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// CreateGrade godoc
// @Summary Create a grade inside a school
// @Tags organization
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "School ID"
// @Param body body OrgNodeRequest true "Grade details"
// @Success 201 {object} util.Response{data=model.Grade} "Created"
// @Failure 404 {object} util.Response "School not found"
// @Router /api/schools/{id}/grades [post]
func (c *OrganizationController) CreateGrade(ctx *gin.Context) {
	schoolID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req OrgNodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	grade, err := c.OrgService.CreateGrade(claims.UserID, schoolID, req.Name)
	if err != nil {
		orgError(ctx, err)
		return
	}
	util.Created(ctx, grade)
}

// ListGrades godoc
// @Summary List a school's grades
// @Tags organization
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "School ID"
// @Success 200 {object} util.Response{data=[]model.Grade} "Success"
// @Failure 404 {object} util.Response "School not found"
// @Router /api/schools/{id}/grades [get]
func (c *OrganizationController) ListGrades(ctx *gin.Context) {
	schoolID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	grades, err := c.OrgService.ListGrades(claims.UserID, schoolID)
	if err != nil {
		orgError(ctx, err)
		return
	}
	util.Success(ctx, grades)
}

// RenameGrade godoc
// @Summary Rename a grade
// @Tags organization
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Grade ID"
// @Param body body OrgNodeRequest true "New name"
// @Success 200 {object} util.Response{data=model.Grade} "Success"
// @Failure 404 {object} util.Response "Grade not found"
// @Router /api/grades/{id} [put]
func (c *OrganizationController) RenameGrade(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req OrgNodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	grade, err := c.OrgService.RenameGrade(id, claims.UserID, req.Name)
	if err != nil {
		orgError(ctx, err)
		return
	}
	util.Success(ctx, grade)
}

// DeleteGrade godoc
// @Summary Delete a grade and everything under it
// @Tags organization
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Grade ID"
// @Success 200 {object} util.Response "Success"
// @Failure 404 {object} util.Response "Grade not found"
// @Router /api/grades/{id} [delete]
func (c *OrganizationController) DeleteGrade(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.OrgService.DeleteGrade(id, claims.UserID); err != nil {
		orgError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// CreateClass godoc
// @Summary Create a class inside a grade
// @Tags organization
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Grade ID"
// @Param body body OrgNodeRequest true "Class details"
// @Success 201 {object} util.Response{data=model.Class} "Created"
// @Failure 404 {object} util.Response "Grade not found"
// @Router /api/grades/{id}/classes [post]
func (c *OrganizationController) CreateClass(ctx *gin.Context) {
	gradeID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req OrgNodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	class, err := c.OrgService.CreateClass(claims.UserID, gradeID, req.Name, req.Description)
	if err != nil {
		orgError(ctx, err)
		return
	}
	util.Created(ctx, class)
}

// ListClasses godoc
// @Summary List a grade's classes
// @Tags organization
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Grade ID"
// @Success 200 {object} util.Response{data=[]model.Class} "Success"
// @Failure 404 {object} util.Response "Grade not found"
// @Router /api/grades/{id}/classes [get]
func (c *OrganizationController) ListClasses(ctx *gin.Context) {
	gradeID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	classes, err := c.OrgService.ListClasses(claims.UserID, gradeID)
	if err != nil {
		orgError(ctx, err)
		return
	}
	util.Success(ctx, classes)
}

// RenameClass godoc
// @Summary Rename a class
// @Tags organization
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Class ID"
// @Param body body OrgNodeRequest true "New name and description"
// @Success 200 {object} util.Response{data=model.Class} "Success"
// @Failure 404 {object} util.Response "Class not found"
// @Router /api/classes/{id} [put]
func (c *OrganizationController) RenameClass(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req OrgNodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	class, err := c.OrgService.RenameClass(id, claims.UserID, req.Name, req.Description)
	if err != nil {
		orgError(ctx, err)
		return
	}
	util.Success(ctx, class)
}

// DeleteClass godoc
// @Summary Delete a class and its subjects
// @Tags organization
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Class ID"
// @Success 200 {object} util.Response "Success"
// @Failure 404 {object} util.Response "Class not found"
// @Router /api/classes/{id} [delete]
func (c *OrganizationController) DeleteClass(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.OrgService.DeleteClass(id, claims.UserID); err != nil {
		orgError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// CreateSubject godoc
// @Summary Create a subject inside a class
// @Tags organization
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Class ID"
// @Param body body OrgNodeRequest true "Subject details"
// @Success 201 {object} util.Response{data=model.Subject} "Created"
// @Failure 404 {object} util.Response "Class not found"
// @Router /api/classes/{id}/subjects [post]
func (c *OrganizationController) CreateSubject(ctx *gin.Context) {
	classID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req OrgNodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	subject, err := c.OrgService.CreateSubject(claims.UserID, classID, req.Name)
	if err != nil {
		orgError(ctx, err)
		return
	}
	util.Created(ctx, subject)
}

// ListSubjects godoc
// @Summary List a class's subjects
// @Tags organization
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Class ID"
// @Success 200 {object} util.Response{data=[]model.Subject} "Success"
// @Failure 404 {object} util.Response "Class not found"
// @Router /api/classes/{id}/subjects [get]
func (c *OrganizationController) ListSubjects(ctx *gin.Context) {
	classID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	subjects, err := c.OrgService.ListSubjects(claims.UserID, classID)
	if err != nil {
		orgError(ctx, err)
		return
	}
	util.Success(ctx, subjects)
}

// RenameSubject godoc
// @Summary Rename a subject
// @Tags organization
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Subject ID"
// @Param body body OrgNodeRequest true "New name"
// @Success 200 {object} util.Response{data=model.Subject} "Success"
// @Failure 404 {object} util.Response "Subject not found"
// @Router /api/subjects/{id} [put]
func (c *OrganizationController) RenameSubject(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req OrgNodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	subject, err := c.OrgService.RenameSubject(id, claims.UserID, req.Name)
	if err != nil {
		orgError(ctx, err)
		return
	}
	util.Success(ctx, subject)
}

// DeleteSubject godoc
// @Summary Delete a subject
// @Tags organization
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Subject ID"
// @Success 200 {object} util.Response "Success"
// @Failure 404 {object} util.Response "Subject not found"
// @Router /api/subjects/{id} [delete]
func (c *OrganizationController) DeleteSubject(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.OrgService.DeleteSubject(id, claims.UserID); err != nil {
		orgError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
