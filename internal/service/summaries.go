package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jjenkins/irisplus/internal/model"
	"github.com/jjenkins/irisplus/internal/store"
)

// SummaryFile is the output of the aggregation step
type SummaryFile struct {
	ImpactCategories []model.ImpactCategorySummary `json:"impact_categories"`
	SdgGoals         []model.SdgGoalSummary        `json:"sdg_goals"`
}

// SummaryService loads aggregated summaries into the store
type SummaryService struct {
	summaries *store.SummaryStore
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(summaries *store.SummaryStore) *SummaryService {
	return &SummaryService{summaries: summaries}
}

// LoadFile reads a summary file and replaces the stored summaries with it
func (s *SummaryService) LoadFile(ctx context.Context, path string) (*SummaryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read summaries: %w", err)
	}

	var file SummaryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode summaries %s: %w", path, err)
	}

	if err := s.Load(ctx, file); err != nil {
		return nil, err
	}
	return &file, nil
}

// Load validates every summary and then replaces both tables. Nothing is
// written when any entry is invalid.
func (s *SummaryService) Load(ctx context.Context, file SummaryFile) error {
	seen := make(map[string]struct{}, len(file.ImpactCategories))
	for idx, sum := range file.ImpactCategories {
		if err := sum.Validate(); err != nil {
			return fmt.Errorf("impact category %d: %w", idx, err)
		}
		if _, ok := seen[sum.CategoryEN]; ok {
			return fmt.Errorf("impact category %q listed twice", sum.CategoryEN)
		}
		seen[sum.CategoryEN] = struct{}{}
	}

	seen = make(map[string]struct{}, len(file.SdgGoals))
	for idx, sum := range file.SdgGoals {
		if err := sum.Validate(); err != nil {
			return fmt.Errorf("sdg goal %d: %w", idx, err)
		}
		if _, ok := seen[sum.SdgEN]; ok {
			return fmt.Errorf("sdg goal %q listed twice", sum.SdgEN)
		}
		seen[sum.SdgEN] = struct{}{}
	}

	if err := s.summaries.ReplaceImpactCategories(ctx, file.ImpactCategories); err != nil {
		return err
	}
	if err := s.summaries.ReplaceSdgGoals(ctx, file.SdgGoals); err != nil {
		return err
	}

	log.Info("summaries loaded",
		"impact_categories", len(file.ImpactCategories),
		"sdg_goals", len(file.SdgGoals),
	)
	return nil
}
