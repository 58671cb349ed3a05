package model

import (
	"errors"
	"testing"

	"gorm.io/datatypes"
)

func TestGradedDataDecodeValid(t *testing.T) {
	v := &Valuation{
		BaseModel:   BaseModel{ID: 3},
		ValuatorID:  1,
		Data:        datatypes.JSON(`{"student_name":"Asha","roll_no":"42","answers":[{"question_no":1,"score":[4,5],"remarks":"ok"}]}`),
		AnswerSheet: "sheet.png",
	}

	data, err := v.GradedData()
	if err != nil {
		t.Fatalf("GradedData: %v", err)
	}
	if data.StudentName != "Asha" || len(data.Answers) != 1 {
		t.Errorf("unexpected payload: %+v", data)
	}
}

func TestGradedDataRejectsSchemaViolations(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", `{"student_name":`},
		{"missing name", `{"roll_no":"1","answers":[{"question_no":1,"score":[1,2]}]}`},
		{"missing roll no", `{"student_name":"X","answers":[{"question_no":1,"score":[1,2]}]}`},
		{"no answers", `{"student_name":"X","roll_no":"1"}`},
		{"empty answers", `{"student_name":"X","roll_no":"1","answers":[]}`},
		{"malformed score pair", `{"student_name":"X","roll_no":"1","answers":[{"question_no":1,"score":[4]}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := &Valuation{BaseModel: BaseModel{ID: 9}, ValuatorID: 1, Data: datatypes.JSON(tc.raw)}

			_, err := v.GradedData()
			var integrityErr *DataIntegrityError
			if !errors.As(err, &integrityErr) {
				t.Fatalf("error = %v, want *DataIntegrityError", err)
			}
			if integrityErr.ValuationID != 9 {
				t.Errorf("valuation id = %d, want 9", integrityErr.ValuationID)
			}
		})
	}
}

// The decode path and the pre-persistence path must agree on what a valid
// payload is.
func TestGradedDataMatchesValidate(t *testing.T) {
	raw := `{"student_name":"X","roll_no":"1","answers":[{"question_no":1,"score":[4]}]}`
	v := &Valuation{BaseModel: BaseModel{ID: 1}, ValuatorID: 1, Data: datatypes.JSON(raw)}

	_, decodeErr := v.GradedData()
	if decodeErr == nil {
		t.Fatal("expected GradedData to reject the payload")
	}

	data := GradedData{
		StudentName: "X",
		RollNo:      "1",
		Answers:     []GradedAnswer{{QuestionNo: 1, Score: []float64{4}}},
	}
	if data.Validate() == nil {
		t.Fatal("expected Validate to reject the payload")
	}
}
