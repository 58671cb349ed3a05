package repository

import (
	"valuate_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var u model.User
	err := r.DB.First(&u, id).Error
	return &u, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var u model.User
	err := r.DB.Where("email = ?", email).First(&u).Error
	return &u, err
}

func (r *UserRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Count(&count).Error
	return count, err
}

func (r *UserRepository) ListTeachers() ([]model.User, error) {
	var users []model.User
	err := r.DB.Where("role = ?", model.Teacher).Order("created_at desc").Find(&users).Error
	return users, err
}

func (r *UserRepository) UpdateActive(id uint, active bool) error {
	return r.DB.Model(&model.User{}).Where("id = ?", id).Update("is_active", active).Error
}

func (r *UserRepository) Save(user *model.User) error {
	return r.DB.Save(user).Error
}
