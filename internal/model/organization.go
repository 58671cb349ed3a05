package model

// The four-level teaching hierarchy: school -> grade -> class -> subject.
// Every node belongs to the teacher who created it.

// swagger:model School
type School struct {
	BaseModel
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	UserID      uint   `gorm:"index;not null" json:"userId"`
}

func (School) TableName() string {
	return "schools"
}

// swagger:model Grade
type Grade struct {
	BaseModel
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	SchoolID    uint   `gorm:"index;not null" json:"schoolId"`
	UserID      uint   `gorm:"index;not null" json:"userId"`
}

func (Grade) TableName() string {
	return "grades"
}

// swagger:model Class
type Class struct {
	BaseModel
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	GradeID     uint   `gorm:"index;not null" json:"gradeId"`
	SchoolID    uint   `gorm:"index;not null" json:"schoolId"`
	UserID      uint   `gorm:"index;not null" json:"userId"`
}

func (Class) TableName() string {
	return "classes"
}

// swagger:model Subject
type Subject struct {
	BaseModel
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	ClassID     uint   `gorm:"index;not null" json:"classId"`
	GradeID     uint   `gorm:"index;not null" json:"gradeId"`
	SchoolID    uint   `gorm:"index;not null" json:"schoolId"`
	UserID      uint   `gorm:"index;not null" json:"userId"`
}

func (Subject) TableName() string {
	return "subjects"
}
