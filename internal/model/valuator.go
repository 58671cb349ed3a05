package model

// Valuator is a stored question paper + answer key pairing that grading
// requests are issued against. It is created once by a teacher and stays
// read-only afterwards, except for re-linking to the organization hierarchy.
// QuestionPaper and AnswerKey are opaque image URIs resolved by the
// completion service, never downloaded here.
//
// swagger:model Valuator
type Valuator struct {
	BaseModel
	Title         string `gorm:"size:255;not null" json:"title"`
	QuestionPaper string `gorm:"size:1024;not null" json:"questionPaper"`
	AnswerKey     string `gorm:"size:1024;not null" json:"answerKey"`
	UserID        uint   `gorm:"index;not null" json:"userId"`
	SchoolID      *uint  `gorm:"index" json:"schoolId,omitempty"`
	GradeID       *uint  `gorm:"index" json:"gradeId,omitempty"`
	ClassID       *uint  `gorm:"index" json:"classId,omitempty"`
	SubjectID     *uint  `gorm:"index" json:"subjectId,omitempty"`
}

func (Valuator) TableName() string {
	return "valuators"
}
