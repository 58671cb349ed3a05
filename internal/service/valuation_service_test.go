package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"valuate_backend/internal/config"
	"valuate_backend/internal/model"
	"valuate_backend/internal/util"
	"valuate_backend/pkg/logger"
	"valuate_backend/pkg/openai"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

type fakeCompleter struct {
	responses []string
	errs      []error
	calls     int

	lastMessages  []openai.ChatMessage
	lastMaxTokens int
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []openai.ChatMessage, maxTokens int) (string, error) {
	i := f.calls
	f.calls++
	f.lastMessages = messages
	f.lastMaxTokens = maxTokens
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("fake completer exhausted")
}

type fakeValuatorStore struct {
	valuators map[uint]*model.Valuator
}

func (f *fakeValuatorStore) FindByID(id uint) (*model.Valuator, error) {
	v, ok := f.valuators[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

type fakeValuationStore struct {
	valuations []model.Valuation
	nextID     uint
}

func (f *fakeValuationStore) Create(v *model.Valuation) error {
	f.nextID++
	v.ID = f.nextID
	f.valuations = append(f.valuations, *v)
	return nil
}

func (f *fakeValuationStore) FindByID(id uint) (*model.Valuation, error) {
	for i := range f.valuations {
		if f.valuations[i].ID == id {
			v := f.valuations[i]
			return &v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeValuationStore) ListByValuator(valuatorID uint) ([]model.Valuation, error) {
	var out []model.Valuation
	for i := range f.valuations {
		if f.valuations[i].ValuatorID == valuatorID {
			out = append(out, f.valuations[i])
		}
	}
	return out, nil
}

func (f *fakeValuationStore) UpdateData(id uint, data datatypes.JSON) error {
	for i := range f.valuations {
		if f.valuations[i].ID == id {
			f.valuations[i].Data = data
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func testAIConfig() config.AIConfig {
	return config.AIConfig{
		Model:            "gpt-4o",
		MaxRetries:       3,
		RetryBaseDelayMs: 1,
	}
}

func newTestService(completer Completer) (*ValuationService, *fakeValuationStore) {
	valuators := &fakeValuatorStore{valuators: map[uint]*model.Valuator{
		7: {
			BaseModel:     model.BaseModel{ID: 7},
			Title:         "Physics Midterm",
			QuestionPaper: "https://cdn.test/qp.png",
			AnswerKey:     "https://cdn.test/key.png",
			UserID:        1,
		},
	}}
	valuations := &fakeValuationStore{}
	return NewValuationService(completer, valuators, valuations, testAIConfig()), valuations
}

const gradedJSON = `{"student_name":"Asha","roll_no":"42","answers":[` +
	`{"question_no":1,"score":[4,5],"remarks":"minor slip"},` +
	`{"question_no":2,"score":[9,10],"remarks":"good"}]}`

func TestValuatePersistsGradedSheet(t *testing.T) {
	completer := &fakeCompleter{responses: []string{gradedJSON}}
	svc, store := newTestService(completer)

	valuation, err := svc.Valuate(context.Background(), 7, "https://cdn.test/sheet.png")
	if err != nil {
		t.Fatalf("Valuate: %v", err)
	}

	if valuation.ValuatorID != 7 {
		t.Errorf("valuator id = %d, want 7", valuation.ValuatorID)
	}
	if valuation.AnswerSheet != "https://cdn.test/sheet.png" {
		t.Errorf("answer sheet = %q, want original URI", valuation.AnswerSheet)
	}
	if len(store.valuations) != 1 {
		t.Fatalf("stored %d valuations, want 1", len(store.valuations))
	}

	data, err := valuation.GradedData()
	if err != nil {
		t.Fatalf("GradedData: %v", err)
	}
	if data.StudentName != "Asha" || data.RollNo != "42" || len(data.Answers) != 2 {
		t.Errorf("unexpected graded data: %+v", data)
	}

	if completer.lastMaxTokens != 2000 {
		t.Errorf("max tokens = %d, want 2000", completer.lastMaxTokens)
	}
	if len(completer.lastMessages) != 4 {
		t.Fatalf("sent %d messages, want 4", len(completer.lastMessages))
	}
	if completer.lastMessages[0].Role != "system" {
		t.Errorf("first message role = %q, want system", completer.lastMessages[0].Role)
	}
}

func TestValuateParsesFencedResponse(t *testing.T) {
	completer := &fakeCompleter{responses: []string{"Here you go:\n```json\n" + gradedJSON + "\n```"}}
	svc, _ := newTestService(completer)

	valuation, err := svc.Valuate(context.Background(), 7, "sheet.png")
	if err != nil {
		t.Fatalf("Valuate: %v", err)
	}
	data, err := valuation.GradedData()
	if err != nil {
		t.Fatalf("GradedData: %v", err)
	}
	if data.StudentName != "Asha" {
		t.Errorf("student name = %q, want Asha", data.StudentName)
	}
}

func TestValuateRetriesTransientErrors(t *testing.T) {
	completer := &fakeCompleter{
		errs:      []error{&openai.UpstreamError{StatusCode: 503}, &openai.UpstreamError{StatusCode: 503}},
		responses: []string{"", "", gradedJSON},
	}
	svc, _ := newTestService(completer)

	if _, err := svc.Valuate(context.Background(), 7, "sheet.png"); err != nil {
		t.Fatalf("Valuate: %v", err)
	}
	if completer.calls != 3 {
		t.Errorf("completer called %d times, want 3", completer.calls)
	}
}

func TestValuateRequestErrorNotRetried(t *testing.T) {
	reqErr := &openai.RequestError{StatusCode: 401, Body: "bad key"}
	completer := &fakeCompleter{errs: []error{reqErr}}
	svc, store := newTestService(completer)

	_, err := svc.Valuate(context.Background(), 7, "sheet.png")
	var got *openai.RequestError
	if !errors.As(err, &got) {
		t.Fatalf("error = %v, want *RequestError", err)
	}
	if completer.calls != 1 {
		t.Errorf("completer called %d times, want 1", completer.calls)
	}
	if len(store.valuations) != 0 {
		t.Errorf("stored %d valuations after failure, want 0", len(store.valuations))
	}
}

func TestValuateParseFailureKeepsNothing(t *testing.T) {
	completer := &fakeCompleter{responses: []string{"I cannot grade this sheet."}}
	svc, store := newTestService(completer)

	_, err := svc.Valuate(context.Background(), 7, "sheet.png")
	var parseErr *openai.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if parseErr.Raw != "I cannot grade this sheet." {
		t.Errorf("raw = %q, want full model output", parseErr.Raw)
	}
	if len(store.valuations) != 0 {
		t.Errorf("stored %d valuations after parse failure, want 0", len(store.valuations))
	}
}

func TestValuateUnknownValuator(t *testing.T) {
	svc, _ := newTestService(&fakeCompleter{})

	_, err := svc.Valuate(context.Background(), 99, "sheet.png")
	if !errors.Is(err, util.ErrValuatorNotFound) {
		t.Fatalf("error = %v, want ErrValuatorNotFound", err)
	}
}

func TestRevaluateOverwritesDataOnly(t *testing.T) {
	revised := `{"student_name":"Asha","roll_no":"42","answers":[` +
		`{"question_no":1,"score":[5,5],"remarks":"Revaluated"},` +
		`{"question_no":2,"score":[9,10],"remarks":"good"}]}`
	completer := &fakeCompleter{responses: []string{gradedJSON, revised}}
	svc, store := newTestService(completer)

	original, err := svc.Valuate(context.Background(), 7, "sheet.png")
	if err != nil {
		t.Fatalf("Valuate: %v", err)
	}

	updated, err := svc.Revaluate(context.Background(), original.ID, "accept method B for question 1")
	if err != nil {
		t.Fatalf("Revaluate: %v", err)
	}

	if updated.ID != original.ID {
		t.Errorf("revaluation changed identity: %d -> %d", original.ID, updated.ID)
	}
	if updated.AnswerSheet != original.AnswerSheet {
		t.Errorf("revaluation changed answer sheet: %q", updated.AnswerSheet)
	}
	if len(store.valuations) != 1 {
		t.Fatalf("stored %d valuations after revaluation, want 1", len(store.valuations))
	}

	data, err := updated.GradedData()
	if err != nil {
		t.Fatalf("GradedData: %v", err)
	}
	if data.Answers[0].Remarks != "Revaluated" || data.Answers[0].Score[0] != 5 {
		t.Errorf("revised answer not stored: %+v", data.Answers[0])
	}

	prompt, ok := completer.lastMessages[0].Content.(string)
	if !ok {
		t.Fatalf("system message content is %T, want string", completer.lastMessages[0].Content)
	}
	if want := "EXTRA REMARKS (VERY IMPORTANT!!): accept method B for question 1"; !strings.Contains(prompt, want) {
		t.Errorf("prompt missing extra remarks section")
	}
	if !strings.Contains(prompt, "Give remarks as 'Revaluated'") {
		t.Errorf("prompt missing revaluation labeling instruction")
	}
}

func TestRevaluateUnknownValuation(t *testing.T) {
	svc, _ := newTestService(&fakeCompleter{})

	_, err := svc.Revaluate(context.Background(), 123, "remarks")
	if !errors.Is(err, util.ErrValuationNotFound) {
		t.Fatalf("error = %v, want ErrValuationNotFound", err)
	}
}

func TestTotalMarks(t *testing.T) {
	completer := &fakeCompleter{responses: []string{gradedJSON}}
	svc, _ := newTestService(completer)

	valuation, err := svc.Valuate(context.Background(), 7, "sheet.png")
	if err != nil {
		t.Fatalf("Valuate: %v", err)
	}

	total, err := svc.TotalMarks(valuation.ID)
	if err != nil {
		t.Fatalf("TotalMarks: %v", err)
	}
	if total.TotalScore != 13 || total.MaxScore != 15 {
		t.Errorf("total = %+v, want 13/15", total)
	}
	if total.Title != "Physics Midterm" {
		t.Errorf("title = %q, want the valuator's title", total.Title)
	}

	body, err := json.Marshal(total)
	if err != nil {
		t.Fatalf("marshal total: %v", err)
	}
	for _, key := range []string{`"title"`, `"totalScore"`, `"maxScore"`} {
		if !strings.Contains(string(body), key) {
			t.Errorf("serialized total %s is missing %s", body, key)
		}
	}
}

func TestTotalMarksCorruptData(t *testing.T) {
	svc, store := newTestService(&fakeCompleter{})
	store.valuations = append(store.valuations, model.Valuation{
		BaseModel:   model.BaseModel{ID: 1},
		ValuatorID:  7,
		Data:        datatypes.JSON(`{"student_name":"X","roll_no":"1"}`),
		AnswerSheet: "sheet.png",
	})

	_, err := svc.TotalMarks(1)
	var integrityErr *model.DataIntegrityError
	if !errors.As(err, &integrityErr) {
		t.Fatalf("error = %v, want *DataIntegrityError", err)
	}
}

func TestMarksheetStableDescendingOrder(t *testing.T) {
	sheet := func(name, roll string, q1 float64) string {
		b, _ := json.Marshal(model.GradedData{
			StudentName: name,
			RollNo:      roll,
			Answers:     []model.GradedAnswer{{QuestionNo: 1, Score: []float64{q1, 10}}},
		})
		return string(b)
	}
	completer := &fakeCompleter{responses: []string{
		sheet("Asha", "1", 7),
		sheet("Ben", "2", 9),
		sheet("Cara", "3", 7),
	}}
	svc, _ := newTestService(completer)

	for i := 0; i < 3; i++ {
		if _, err := svc.Valuate(context.Background(), 7, "sheet.png"); err != nil {
			t.Fatalf("Valuate %d: %v", i, err)
		}
	}

	entries, err := svc.Marksheet(7)
	if err != nil {
		t.Fatalf("Marksheet: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("marksheet has %d entries, want 3", len(entries))
	}
	if entries[0].StudentName != "Ben" {
		t.Errorf("first entry = %q, want highest marks first", entries[0].StudentName)
	}
	// Asha and Cara are tied on 7; Asha was graded first and must stay ahead.
	if entries[1].StudentName != "Asha" || entries[2].StudentName != "Cara" {
		t.Errorf("tied entries out of grading order: %q then %q", entries[1].StudentName, entries[2].StudentName)
	}
	for i, e := range entries {
		if !e.IsChecked {
			t.Errorf("entry %d: graded rows must be marked checked", i)
		}
	}

	body, err := json.Marshal(entries[0])
	if err != nil {
		t.Fatalf("marshal entry: %v", err)
	}
	if !strings.Contains(string(body), `"isChecked":true`) {
		t.Errorf("serialized entry %s is missing isChecked", body)
	}
}

func TestListValuationsNewestFirst(t *testing.T) {
	completer := &fakeCompleter{responses: []string{gradedJSON, gradedJSON}}
	svc, _ := newTestService(completer)

	first, err := svc.Valuate(context.Background(), 7, "a.png")
	if err != nil {
		t.Fatalf("Valuate: %v", err)
	}
	second, err := svc.Valuate(context.Background(), 7, "b.png")
	if err != nil {
		t.Fatalf("Valuate: %v", err)
	}

	list, err := svc.ListValuations(7)
	if err != nil {
		t.Fatalf("ListValuations: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("list order wrong: %+v", list)
	}
}
