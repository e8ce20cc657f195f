package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jjenkins/irisplus/internal/model"
)

// SummaryStore handles the impact category and SDG goal summary tables.
// Rows are replaced wholesale by each load of the aggregation output.
type SummaryStore struct {
	db *DB
}

// NewSummaryStore creates a new SummaryStore
func NewSummaryStore(db *DB) *SummaryStore {
	return &SummaryStore{db: db}
}

// ReplaceImpactCategories swaps the stored impact category summaries for the given set
func (s *SummaryStore) ReplaceImpactCategories(ctx context.Context, summaries []model.ImpactCategorySummary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM impact_category_summaries`); err != nil {
		return fmt.Errorf("failed to clear impact category summaries: %w", err)
	}

	query := s.db.rebind(`
		INSERT INTO impact_category_summaries (category_en, category_ko, rank, metric_count,
		                                       metric_types, sample_metrics, loaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	loadedAt := time.Now().UTC()
	for _, sum := range summaries {
		types, err := encodeLabels(sum.MetricTypes)
		if err != nil {
			return err
		}
		samples, err := encodeLabels(sum.SampleMetrics)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, query,
			sum.CategoryEN,
			sum.CategoryKO,
			sum.Rank,
			sum.MetricCount,
			types,
			samples,
			loadedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert impact category summary %s: %w", sum.CategoryEN, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ReplaceSdgGoals swaps the stored SDG goal summaries for the given set
func (s *SummaryStore) ReplaceSdgGoals(ctx context.Context, summaries []model.SdgGoalSummary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sdg_goal_summaries`); err != nil {
		return fmt.Errorf("failed to clear sdg goal summaries: %w", err)
	}

	query := s.db.rebind(`
		INSERT INTO sdg_goal_summaries (sdg_en, sdg_ko, metric_count, sample_metrics, loaded_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	loadedAt := time.Now().UTC()
	for _, sum := range summaries {
		samples, err := encodeLabels(sum.SampleMetrics)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, query, sum.SdgEN, sum.SdgKO, sum.MetricCount, samples, loadedAt)
		if err != nil {
			return fmt.Errorf("failed to insert sdg goal summary %s: %w", sum.SdgEN, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListImpactCategories returns the impact category summaries ordered by rank
func (s *SummaryStore) ListImpactCategories(ctx context.Context) ([]model.ImpactCategorySummary, error) {
	query := `
		SELECT rank, category_en, category_ko, metric_count, metric_types, sample_metrics
		FROM impact_category_summaries
		ORDER BY rank, category_en
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get impact category summaries: %w", err)
	}
	defer rows.Close()

	summaries := []model.ImpactCategorySummary{}
	for rows.Next() {
		var sum model.ImpactCategorySummary
		var types, samples sql.NullString
		err := rows.Scan(
			&sum.Rank,
			&sum.CategoryEN,
			&sum.CategoryKO,
			&sum.MetricCount,
			&types,
			&samples,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan impact category summary: %w", err)
		}
		if sum.MetricTypes, err = decodeLabels(types); err != nil {
			return nil, err
		}
		if sum.SampleMetrics, err = decodeLabels(samples); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}

	return summaries, rows.Err()
}

// ListSdgGoals returns the SDG goal summaries, largest first
func (s *SummaryStore) ListSdgGoals(ctx context.Context) ([]model.SdgGoalSummary, error) {
	query := `
		SELECT sdg_en, sdg_ko, metric_count, sample_metrics
		FROM sdg_goal_summaries
		ORDER BY metric_count DESC, sdg_en
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get sdg goal summaries: %w", err)
	}
	defer rows.Close()

	summaries := []model.SdgGoalSummary{}
	for rows.Next() {
		var sum model.SdgGoalSummary
		var samples sql.NullString
		if err := rows.Scan(&sum.SdgEN, &sum.SdgKO, &sum.MetricCount, &samples); err != nil {
			return nil, fmt.Errorf("failed to scan sdg goal summary: %w", err)
		}
		if sum.SampleMetrics, err = decodeLabels(samples); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}

	return summaries, rows.Err()
}

func encodeLabels(labels []string) (string, error) {
	if labels == nil {
		labels = []string{}
	}
	b, err := json.Marshal(labels)
	if err != nil {
		return "", fmt.Errorf("failed to encode labels: %w", err)
	}
	return string(b), nil
}

func decodeLabels(ns sql.NullString) ([]string, error) {
	labels := []string{}
	if !ns.Valid || ns.String == "" {
		return labels, nil
	}
	if err := json.Unmarshal([]byte(ns.String), &labels); err != nil {
		return nil, fmt.Errorf("failed to decode labels: %w", err)
	}
	return labels, nil
}
