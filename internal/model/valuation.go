package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
)

// Valuation is one persisted outcome of grading a single answer sheet
// against a valuator. Many valuations accumulate per valuator; deleting a
// valuator keeps its valuations as an audit trail. Data holds the grading
// payload as stored JSON; revaluation overwrites Data in place and leaves
// the identity and AnswerSheet untouched.
//
// swagger:model Valuation
type Valuation struct {
	BaseModel
	ValuatorID  uint           `gorm:"index;not null" json:"valuatorId"`
	Data        datatypes.JSON `gorm:"not null" json:"data"`
	AnswerSheet string         `gorm:"size:1024;not null" json:"answerSheet"`
}

func (Valuation) TableName() string {
	return "valuations"
}

// GradedAnswer is one per-question grading entry. Score is always
// [awarded, maximum].
type GradedAnswer struct {
	QuestionNo int       `json:"question_no"`
	Score      []float64 `json:"score"`
	Remarks    string    `json:"remarks"`
}

// GradedData is the structured grading payload produced by the model and
// validated at the parse boundary before anything is persisted.
type GradedData struct {
	StudentName string         `json:"student_name"`
	RollNo      string         `json:"roll_no"`
	Answers     []GradedAnswer `json:"answers"`
}

// Validate enforces the schema the aggregation engine depends on.
func (d *GradedData) Validate() error {
	if d.StudentName == "" {
		return errors.New("graded data is missing student_name")
	}
	if d.RollNo == "" {
		return errors.New("graded data is missing roll_no")
	}
	if len(d.Answers) == 0 {
		return errors.New("graded data has no answers")
	}
	for i, a := range d.Answers {
		if len(a.Score) != 2 {
			return fmt.Errorf("answer %d has a malformed score pair", i)
		}
	}
	return nil
}

// DataIntegrityError means a stored valuation lacks the answers structure
// aggregation needs. It is surfaced as a hard failure, never a zero score.
type DataIntegrityError struct {
	ValuationID uint
	Reason      string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("valuation %d has corrupt grading data: %s", e.ValuationID, e.Reason)
}

// GradedData decodes the stored payload, re-running the same schema checks
// applied before persistence. A payload that no longer passes them yields a
// *DataIntegrityError.
func (v *Valuation) GradedData() (*GradedData, error) {
	var data GradedData
	if err := json.Unmarshal(v.Data, &data); err != nil {
		return nil, &DataIntegrityError{ValuationID: v.ID, Reason: err.Error()}
	}
	if err := data.Validate(); err != nil {
		return nil, &DataIntegrityError{ValuationID: v.ID, Reason: err.Error()}
	}
	return &data, nil
}
