package controller

import (
	"errors"
	"net/http"
	"strconv"

	"valuate_backend/internal/service"
	"valuate_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// swagger:model SetupRequest
type SetupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// SetupStatus godoc
// @Summary Check whether first-run setup is needed
// @Description Returns true until the first admin account has been created
// @Tags auth
// @Produce json
// @Success 200 {object} util.Response{data=object} "Success"
// @Router /api/auth/setup [get]
func (c *AuthController) SetupStatus(ctx *gin.Context) {
	required, err := c.AuthService.SetupRequired()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"setupRequired": required})
}

// Setup godoc
// @Summary Create the first admin account
// @Description One-time bootstrap; fails once any account exists
// @Tags auth
// @Accept json
// @Produce json
// @Param body body SetupRequest true "Admin account details"
// @Success 201 {object} util.Response{data=object} "Created"
// @Failure 400 {object} util.Response "Invalid request"
// @Failure 409 {object} util.Response "Setup already completed"
// @Router /api/auth/setup [post]
func (c *AuthController) Setup(ctx *gin.Context) {
	var req SetupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	admin, err := c.AuthService.Setup(req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, util.ErrSetupCompleted) {
			util.Error(ctx, http.StatusConflict, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{"id": admin.ID, "email": admin.Email})
}

// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary Log in with email and password
// @Description Returns a JWT and the user's profile
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 401 {object} util.Response "Invalid credentials"
// @Failure 403 {object} util.Response "Account inactive"
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, user, err := c.AuthService.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidCredentials):
			util.Unauthorized(ctx)
		case errors.Is(err, util.ErrAccountInactive):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// GetProfile godoc
// @Summary Get the current user's profile
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User} "Success"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/auth/profile [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	util.Success(ctx, gin.H{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"role":      user.Role,
		"isActive":  user.IsActive,
		"createdAt": user.CreatedAt,
	})
}

// swagger:model CreateTeacherRequest
type CreateTeacherRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// CreateTeacher godoc
// @Summary Create a teacher account
// @Tags teachers
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateTeacherRequest true "Teacher account details"
// @Success 201 {object} util.Response{data=model.User} "Created"
// @Failure 409 {object} util.Response "Email already registered"
// @Router /api/teachers [post]
func (c *AuthController) CreateTeacher(ctx *gin.Context) {
	var req CreateTeacherRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	teacher, err := c.AuthService.CreateTeacher(claims.UserID, req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, util.ErrEmailRegistered) {
			util.Error(ctx, http.StatusConflict, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, teacher)
}

// ListTeachers godoc
// @Summary List teacher accounts
// @Tags teachers
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.User} "Success"
// @Router /api/teachers [get]
func (c *AuthController) ListTeachers(ctx *gin.Context) {
	teachers, err := c.AuthService.ListTeachers()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, teachers)
}

// swagger:model SetActiveRequest
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetTeacherActive godoc
// @Summary Enable or disable a teacher account
// @Tags teachers
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Teacher ID"
// @Param body body SetActiveRequest true "Desired state"
// @Success 200 {object} util.Response "Success"
// @Failure 404 {object} util.Response "Teacher not found"
// @Router /api/teachers/{id}/active [patch]
func (c *AuthController) SetTeacherActive(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid teacher id")
		return
	}

	var req SetActiveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.AuthService.SetTeacherActive(uint(id), *req.Active); err != nil {
		switch {
		case errors.Is(err, util.ErrUserNotFound):
			util.NotFound(ctx, err.Error())
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, nil)
}
