package util

import "errors"

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrSetupCompleted     = errors.New("setup already completed")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrValuatorNotFound   = errors.New("valuator not found")
	ErrValuationNotFound  = errors.New("valuation not found")
	ErrSchoolNotFound     = errors.New("school not found")
	ErrGradeNotFound      = errors.New("grade not found")
	ErrClassNotFound      = errors.New("class not found")
	ErrSubjectNotFound    = errors.New("subject not found")
)
