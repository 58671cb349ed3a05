package service

import (
	"errors"

	"valuate_backend/internal/config"
	"valuate_backend/internal/model"
	"valuate_backend/internal/repository"
	"valuate_backend/internal/util"
	"valuate_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService handles first-run setup, login and teacher account management.
// There is no open registration: the first admin is created through Setup,
// every later account is created by an admin.
type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

// SetupRequired reports whether no account exists yet.
func (s *AuthService) SetupRequired() (bool, error) {
	count, err := s.UserRepo.Count()
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// Setup creates the first admin account. It refuses to run once any user
// exists.
func (s *AuthService) Setup(name, email, password string) (*model.User, error) {
	count, err := s.UserRepo.Count()
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, util.ErrSetupCompleted
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	admin := &model.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     model.Admin,
		IsActive: true,
	}
	if err := s.UserRepo.Create(admin); err != nil {
		return nil, err
	}

	logger.Log.Info("initial admin created", zap.String("email", email))
	return admin, nil
}

func (s *AuthService) Login(email, password string) (string, *model.User, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, util.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, util.ErrAccountInactive
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// CreateTeacher adds a teacher account on behalf of an admin.
func (s *AuthService) CreateTeacher(adminID uint, name, email, password string) (*model.User, error) {
	_, err := s.UserRepo.FindByEmail(email)
	if err == nil {
		return nil, util.ErrEmailRegistered
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	teacher := &model.User{
		Name:        name,
		Email:       email,
		Password:    string(hashed),
		Role:        model.Teacher,
		IsActive:    true,
		CreatedByID: &adminID,
	}
	if err := s.UserRepo.Create(teacher); err != nil {
		return nil, err
	}
	return teacher, nil
}

func (s *AuthService) ListTeachers() ([]model.User, error) {
	return s.UserRepo.ListTeachers()
}

// SetTeacherActive enables or disables a teacher account. Disabled accounts
// fail login but keep all their data.
func (s *AuthService) SetTeacherActive(id uint, active bool) error {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrUserNotFound
		}
		return err
	}
	if user.Role != model.Teacher {
		return util.ErrPermissionDenied
	}
	return s.UserRepo.UpdateActive(id, active)
}

func (s *AuthService) GetCurrentUser(c *gin.Context) *model.User {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		return nil
	}

	user, _ := s.UserRepo.FindByID(claims.UserID)
	return user
}
