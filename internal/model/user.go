package model

type UserRole string

const (
	Admin   UserRole = "admin"
	Teacher UserRole = "teacher"
)

// swagger:model User
type User struct {
	BaseModel
	Email       string   `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password    string   `gorm:"size:255;not null" json:"-"`
	Name        string   `gorm:"size:255;not null" json:"name"`
	Role        UserRole `gorm:"size:20;default:'teacher'" json:"role"`
	IsActive    bool     `gorm:"default:true" json:"isActive"`
	CreatedByID *uint    `gorm:"index" json:"createdById,omitempty"`
}

func (User) TableName() string {
	return "users"
}
