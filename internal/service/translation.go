package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jjenkins/irisplus/internal/model"
	"github.com/jjenkins/irisplus/internal/store"
)

// TranslationInput is the Korean content produced for one metric by the
// external translation step
type TranslationInput struct {
	DataID           string             `json:"data_id"`
	TitleKO          *string            `json:"title_ko"`
	Definition       *model.ContentData `json:"definition"`
	UsageGuidance    *model.ContentData `json:"usage_guidance"`
	ImpactCategories *model.ContentData `json:"impact_categories"`
	SdgGoals         *model.ContentData `json:"sdg_goals"`
	TranslatedAt     *time.Time         `json:"translated_at"`
}

// TranslationStats tracks translation apply statistics
type TranslationStats struct {
	Total     int
	Applied   int
	NotFound  int
	Conflicts int
	Failed    int
}

// TranslationService writes translation results onto stored metrics
type TranslationService struct {
	metrics *store.MetricStore
	runs    *store.RunStore
	now     func() time.Time
}

// NewTranslationService creates a new TranslationService. runs may be nil.
func NewTranslationService(metrics *store.MetricStore, runs *store.RunStore) *TranslationService {
	return &TranslationService{
		metrics: metrics,
		runs:    runs,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ApplyFile reads a JSON array of TranslationInput and applies it
func (s *TranslationService) ApplyFile(ctx context.Context, path string) (*TranslationStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read translations: %w", err)
	}

	var inputs []TranslationInput
	if err := json.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("failed to decode translations %s: %w", path, err)
	}

	return s.Apply(ctx, inputs)
}

// Apply stores each translation through the merge path. Per-record failures
// are counted and logged; only store-level errors abort the pass.
func (s *TranslationService) Apply(ctx context.Context, inputs []TranslationInput) (stats *TranslationStats, err error) {
	stats = &TranslationStats{Total: len(inputs)}

	if s.runs != nil {
		run, startErr := s.runs.StartRun(ctx, store.RunKindTranslate, "")
		if startErr != nil {
			return nil, startErr
		}
		defer func() {
			run.Total = stats.Total
			run.Updated = stats.Applied
			run.Failed = stats.Failed + stats.NotFound
			run.Conflicts = stats.Conflicts
			if finishErr := s.runs.FinishRun(context.WithoutCancel(ctx), run, err); finishErr != nil {
				log.Error("failed to record translation run", "run", run.ID.String(), "error", finishErr)
			}
		}()
	}

	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		_, applyErr := s.ApplyOne(ctx, in)
		var validationErr *model.ValidationError
		switch {
		case applyErr == nil:
			stats.Applied++
		case errors.Is(applyErr, model.ErrNotFound):
			log.Warn("translation for unknown metric", "data_id", in.DataID)
			stats.NotFound++
		case errors.Is(applyErr, model.ErrConflict):
			log.Error("translation rejected", "data_id", in.DataID, "error", applyErr)
			stats.Conflicts++
		case errors.As(applyErr, &validationErr):
			log.Error("invalid translation", "data_id", in.DataID, "fields", strings.Join(validationErr.Fields(), ","))
			stats.Failed++
		default:
			return stats, applyErr
		}
	}

	return stats, nil
}

// ApplyOne stores a single translation and returns the merged record
func (s *TranslationService) ApplyOne(ctx context.Context, in TranslationInput) (*model.IrisMetric, error) {
	dataID := strings.TrimSpace(in.DataID)
	if dataID == "" {
		return nil, &model.ValidationError{Errors: map[string]error{"data_id": errors.New("cannot be blank")}}
	}

	// translations never create records
	if _, err := s.metrics.GetByDataID(ctx, dataID); err != nil {
		return nil, err
	}

	translatedAt := in.TranslatedAt
	if translatedAt == nil {
		translatedAt = model.TimePtr(s.now())
	}

	incoming := model.IrisMetric{
		DataID:           dataID,
		TitleKO:          in.TitleKO,
		Definition:       korean(in.Definition),
		UsageGuidance:    korean(in.UsageGuidance),
		ImpactCategories: korean(in.ImpactCategories),
		SdgGoals:         korean(in.SdgGoals),
		TranslatedAt:     translatedAt,
	}

	result, err := s.metrics.Save(ctx, incoming)
	if err != nil {
		return nil, err
	}
	return &result.Metric, nil
}

func korean(block *model.ContentData) *model.MultiLanguageContent {
	if block == nil {
		return nil
	}
	normalized := model.Normalize(*block)
	return &model.MultiLanguageContent{KO: &normalized}
}

// PrintSummary prints the translation statistics
func (s *TranslationService) PrintSummary(stats *TranslationStats) {
	log.Info("")
	log.Info("=== Translation Summary ===")
	log.Info(fmt.Sprintf("Total inputs:    %d", stats.Total))
	log.Info(fmt.Sprintf("Applied:         %d", stats.Applied))
	log.Info(fmt.Sprintf("Not found:       %d", stats.NotFound))
	log.Info(fmt.Sprintf("Conflicts:       %d", stats.Conflicts))
	log.Info(fmt.Sprintf("Failed:          %d", stats.Failed))
}
