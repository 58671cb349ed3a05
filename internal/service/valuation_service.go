package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"valuate_backend/internal/config"
	"valuate_backend/internal/model"
	"valuate_backend/internal/util"
	"valuate_backend/pkg/logger"
	"valuate_backend/pkg/monitoring"
	"valuate_backend/pkg/openai"
	"valuate_backend/pkg/tracing"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// maxCompletionTokens bounds the model's output per grading call. 2000
// tokens is enough for a full answer sheet's worth of entries.
const maxCompletionTokens = 2000

// Completer is the one capability the grading pipeline needs from the
// completion client.
type Completer interface {
	Complete(ctx context.Context, messages []openai.ChatMessage, maxTokens int) (string, error)
}

// ValuatorStore is the subset of the valuator repository the pipeline uses.
type ValuatorStore interface {
	FindByID(id uint) (*model.Valuator, error)
}

// ValuationStore is the subset of the valuation repository the pipeline uses.
type ValuationStore interface {
	Create(v *model.Valuation) error
	FindByID(id uint) (*model.Valuation, error)
	ListByValuator(valuatorID uint) ([]model.Valuation, error)
	UpdateData(id uint, data datatypes.JSON) error
}

// ValuationService runs the grading pipeline: build the three-image prompt,
// call the completion service under the retry policy, parse and validate the
// response, persist the result. It also aggregates persisted valuations into
// totals and marksheets.
type ValuationService struct {
	valuators  ValuatorStore
	valuations ValuationStore

	mu        sync.RWMutex
	completer Completer
	ai        config.AIConfig
}

func NewValuationService(completer Completer, valuators ValuatorStore, valuations ValuationStore, ai config.AIConfig) *ValuationService {
	return &ValuationService{
		valuators:  valuators,
		valuations: valuations,
		completer:  completer,
		ai:         ai,
	}
}

// UpdateAI swaps the completion client and retry settings after a config
// reload. In-flight gradings keep the client they started with.
func (s *ValuationService) UpdateAI(completer Completer, ai config.AIConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completer = completer
	s.ai = ai
}

func (s *ValuationService) snapshot() (Completer, config.AIConfig) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.completer, s.ai
}

// MarksheetEntry is one student's row in a valuator's marksheet. IsChecked
// is always true: a row only exists once its sheet has been graded.
type MarksheetEntry struct {
	ValuationID uint    `json:"valuationId"`
	StudentName string  `json:"studentName"`
	RollNo      string  `json:"rollNo"`
	Marks       float64 `json:"marks"`
	IsChecked   bool    `json:"isChecked"`
}

// TotalMarks is the aggregate of one valuation's per-question score pairs,
// labeled with the exam title it was graded against.
type TotalMarks struct {
	Title      string  `json:"title"`
	TotalScore float64 `json:"totalScore"`
	MaxScore   float64 `json:"maxScore"`
}

// Valuate grades one answer sheet against a valuator and persists the result
// as a new valuation.
func (s *ValuationService) Valuate(ctx context.Context, valuatorID uint, answerSheet string) (*model.Valuation, error) {
	ctx, span := tracing.Tracer.Start(ctx, "grading.valuate")
	defer span.End()

	start := time.Now()
	valuation, err := s.valuate(ctx, valuatorID, answerSheet)
	monitoring.ObserveGrading("valuate", start, err)
	if err != nil {
		logger.Log.Error("grading failed",
			zap.Uint("valuatorId", valuatorID),
			zap.Error(err))
		return nil, err
	}

	logger.Log.Info("answer sheet graded",
		zap.Uint("valuatorId", valuatorID),
		zap.Uint("valuationId", valuation.ID),
		zap.Duration("elapsed", time.Since(start)))
	return valuation, nil
}

func (s *ValuationService) valuate(ctx context.Context, valuatorID uint, answerSheet string) (*model.Valuation, error) {
	valuator, err := s.valuators.FindByID(valuatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrValuatorNotFound
		}
		return nil, err
	}

	payload, err := s.grade(ctx, valuator, answerSheet, openai.GradingPrompt)
	if err != nil {
		return nil, err
	}

	valuation := &model.Valuation{
		ValuatorID:  valuator.ID,
		Data:        payload,
		AnswerSheet: answerSheet,
	}
	if err := s.valuations.Create(valuation); err != nil {
		return nil, err
	}
	return valuation, nil
}

// Revaluate re-grades an existing valuation's answer sheet with the
// teacher's extra remarks folded into the prompt, then overwrites the stored
// payload in place. The valuation's identity and answer sheet are untouched,
// and the previous payload is not kept.
func (s *ValuationService) Revaluate(ctx context.Context, valuationID uint, remarks string) (*model.Valuation, error) {
	ctx, span := tracing.Tracer.Start(ctx, "grading.revaluate")
	defer span.End()

	start := time.Now()
	valuation, err := s.revaluate(ctx, valuationID, remarks)
	monitoring.ObserveGrading("revaluate", start, err)
	if err != nil {
		logger.Log.Error("revaluation failed",
			zap.Uint("valuationId", valuationID),
			zap.Error(err))
		return nil, err
	}

	logger.Log.Info("valuation revaluated",
		zap.Uint("valuationId", valuationID),
		zap.Duration("elapsed", time.Since(start)))
	return valuation, nil
}

func (s *ValuationService) revaluate(ctx context.Context, valuationID uint, remarks string) (*model.Valuation, error) {
	valuation, err := s.valuations.FindByID(valuationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrValuationNotFound
		}
		return nil, err
	}

	valuator, err := s.valuators.FindByID(valuation.ValuatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrValuatorNotFound
		}
		return nil, err
	}

	payload, err := s.grade(ctx, valuator, valuation.AnswerSheet, openai.RevaluationPrompt(remarks))
	if err != nil {
		return nil, err
	}

	if err := s.valuations.UpdateData(valuation.ID, payload); err != nil {
		return nil, err
	}
	valuation.Data = payload
	return valuation, nil
}

// grade performs one full pipeline pass: prompt assembly, retried completion
// call, parse, validate. Nothing is persisted here.
func (s *ValuationService) grade(ctx context.Context, valuator *model.Valuator, answerSheet, prompt string) (datatypes.JSON, error) {
	completer, ai := s.snapshot()

	messages := []openai.ChatMessage{
		openai.SystemMessage(prompt),
		openai.ImageMessage("Question Paper:", valuator.QuestionPaper),
		openai.ImageMessage("Answer Key:", valuator.AnswerKey),
		openai.ImageMessage("Answer Sheet:", answerSheet),
	}

	raw, err := openai.WithRetry(ctx, func() (string, error) {
		return completer.Complete(ctx, messages, maxCompletionTokens)
	}, ai.MaxRetries, time.Duration(ai.RetryBaseDelayMs)*time.Millisecond)
	if err != nil {
		return nil, err
	}

	var data model.GradedData
	if err := openai.ExtractJSON(raw, &data); err != nil {
		return nil, err
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(&data)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(payload), nil
}

// GetValuation loads one valuation.
func (s *ValuationService) GetValuation(id uint) (*model.Valuation, error) {
	valuation, err := s.valuations.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrValuationNotFound
		}
		return nil, err
	}
	return valuation, nil
}

// ListValuations returns a valuator's valuations newest first for display.
func (s *ValuationService) ListValuations(valuatorID uint) ([]model.Valuation, error) {
	valuations, err := s.valuations.ListByValuator(valuatorID)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(valuations)-1; i < j; i, j = i+1, j-1 {
		valuations[i], valuations[j] = valuations[j], valuations[i]
	}
	return valuations, nil
}

// TotalMarks sums one valuation's awarded and maximum marks across all
// answers, labeled with the parent valuator's title. Corrupt stored
// payloads surface as a *model.DataIntegrityError rather than a zero total.
func (s *ValuationService) TotalMarks(valuationID uint) (*TotalMarks, error) {
	valuation, err := s.valuations.FindByID(valuationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrValuationNotFound
		}
		return nil, err
	}

	valuator, err := s.valuators.FindByID(valuation.ValuatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrValuatorNotFound
		}
		return nil, err
	}

	data, err := valuation.GradedData()
	if err != nil {
		return nil, err
	}

	total := TotalMarks{Title: valuator.Title}
	for _, a := range data.Answers {
		total.TotalScore += a.Score[0]
		total.MaxScore += a.Score[1]
	}
	return &total, nil
}

// Marksheet builds one row per valuation of the valuator, sorted by marks
// descending. Students with equal marks keep their grading order; the sort is
// stable over the storage order.
func (s *ValuationService) Marksheet(valuatorID uint) ([]MarksheetEntry, error) {
	valuations, err := s.valuations.ListByValuator(valuatorID)
	if err != nil {
		return nil, err
	}

	entries := make([]MarksheetEntry, 0, len(valuations))
	for i := range valuations {
		data, err := valuations[i].GradedData()
		if err != nil {
			return nil, err
		}

		var marks float64
		for _, a := range data.Answers {
			marks += a.Score[0]
		}
		entries = append(entries, MarksheetEntry{
			ValuationID: valuations[i].ID,
			StudentName: data.StudentName,
			RollNo:      data.RollNo,
			Marks:       marks,
			IsChecked:   true,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Marks > entries[j].Marks
	})
	return entries, nil
}
