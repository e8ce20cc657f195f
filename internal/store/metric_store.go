package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jjenkins/irisplus/internal/model"
)

const metricColumns = `id, title_en, title_ko, data_id, relative_path, detail_url,
	reporting_format, metric_type, metric_level, iris_citation,
	definition, usage_guidance, impact_categories, sdg_goals,
	metric_history, related_metrics,
	scraped_at, translated_at, success, version, created_at, updated_at`

// querier is satisfied by *sql.DB and *sql.Tx
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// MetricStore handles database operations for iris_metrics
type MetricStore struct {
	db  *DB
	now func() time.Time
}

// NewMetricStore creates a new MetricStore
func NewMetricStore(db *DB) *MetricStore {
	return &MetricStore{
		db: db,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
}

// SaveResult reports what Save did with an incoming record
type SaveResult struct {
	Metric  model.IrisMetric
	Created bool
}

func scanMetric(row rowScanner) (model.IrisMetric, error) {
	var m model.IrisMetric
	var history, related sql.NullString
	err := row.Scan(
		&m.ID,
		&m.TitleEN,
		&m.TitleKO,
		&m.DataID,
		&m.RelativePath,
		&m.DetailURL,
		&m.ReportingFormat,
		&m.MetricType,
		&m.MetricLevel,
		&m.IrisCitation,
		&m.Definition,
		&m.UsageGuidance,
		&m.ImpactCategories,
		&m.SdgGoals,
		&history,
		&related,
		&m.ScrapedAt,
		&m.TranslatedAt,
		&m.Success,
		&m.Version,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return model.IrisMetric{}, err
	}
	m.MetricHistory = rawJSON(history)
	m.RelatedMetrics = rawJSON(related)
	return m, nil
}

// GetByID retrieves a metric by its surrogate id
func (s *MetricStore) GetByID(ctx context.Context, id int64) (*model.IrisMetric, error) {
	query := s.db.rebind(`SELECT ` + metricColumns + ` FROM iris_metrics WHERE id = ?`)

	m, err := scanMetric(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &model.NotFoundError{Key: strconv.FormatInt(id, 10)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metric %d: %w", id, err)
	}
	return &m, nil
}

// GetByDataID retrieves a metric by its catalog id
func (s *MetricStore) GetByDataID(ctx context.Context, dataID string) (*model.IrisMetric, error) {
	m, err := s.getByDataID(ctx, s.db, dataID, false)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MetricStore) getByDataID(ctx context.Context, q querier, dataID string, forUpdate bool) (model.IrisMetric, error) {
	query := `SELECT ` + metricColumns + ` FROM iris_metrics WHERE data_id = ?`
	if forUpdate && s.db.dialect == Postgres {
		query += ` FOR UPDATE`
	}

	m, err := scanMetric(q.QueryRowContext(ctx, s.db.rebind(query), dataID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.IrisMetric{}, &model.NotFoundError{Key: dataID}
	}
	if err != nil {
		return model.IrisMetric{}, fmt.Errorf("failed to get metric %s: %w", dataID, err)
	}
	return m, nil
}

// Save stores an incoming record. When a record with the same data_id
// exists the two are combined with model.Merge; otherwise the record is
// created. Lookup, merge, validation and write run in one transaction, so a
// rejected write leaves the stored record untouched.
func (s *MetricStore) Save(ctx context.Context, incoming model.IrisMetric) (SaveResult, error) {
	if strings.TrimSpace(incoming.DataID) == "" {
		return SaveResult{}, incoming.Validate()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SaveResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now()
	var result SaveResult

	existing, err := s.getByDataID(ctx, tx, incoming.DataID, true)
	switch {
	case errors.Is(err, model.ErrNotFound):
		result, err = s.insert(ctx, tx, incoming, now)
		if err != nil {
			return SaveResult{}, err
		}
	case err != nil:
		return SaveResult{}, err
	default:
		merged, err := model.MergeAt(existing, incoming, now)
		if err != nil {
			return SaveResult{}, err
		}
		if err := merged.ValidatePersisted(); err != nil {
			return SaveResult{}, err
		}
		if err := s.update(ctx, tx, merged); err != nil {
			return SaveResult{}, err
		}
		result = SaveResult{Metric: merged}
	}

	if err := tx.Commit(); err != nil {
		return SaveResult{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

func (s *MetricStore) insert(ctx context.Context, tx *sql.Tx, m model.IrisMetric, now time.Time) (SaveResult, error) {
	if err := m.Validate(); err != nil {
		return SaveResult{}, err
	}
	if m.Version == "" {
		m.Version = model.DefaultVersion
	}
	m.CreatedAt = now
	m.UpdatedAt = now

	query := s.db.rebind(`
		INSERT INTO iris_metrics (title_en, title_ko, data_id, relative_path, detail_url,
		                          reporting_format, metric_type, metric_level, iris_citation,
		                          definition, usage_guidance, impact_categories, sdg_goals,
		                          metric_history, related_metrics,
		                          scraped_at, translated_at, success, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	err := tx.QueryRowContext(ctx, query,
		m.TitleEN,
		m.TitleKO,
		m.DataID,
		m.RelativePath,
		m.DetailURL,
		m.ReportingFormat,
		m.MetricType,
		m.MetricLevel,
		m.IrisCitation,
		m.Definition,
		m.UsageGuidance,
		m.ImpactCategories,
		m.SdgGoals,
		jsonArg(m.MetricHistory),
		jsonArg(m.RelatedMetrics),
		m.ScrapedAt,
		m.TranslatedAt,
		m.Success,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	).Scan(&m.ID)
	if err != nil {
		return SaveResult{}, fmt.Errorf("failed to insert metric %s: %w", m.DataID, err)
	}

	return SaveResult{Metric: m, Created: true}, nil
}

func (s *MetricStore) update(ctx context.Context, tx *sql.Tx, m model.IrisMetric) error {
	query := s.db.rebind(`
		UPDATE iris_metrics SET
			title_en = ?,
			title_ko = ?,
			relative_path = ?,
			detail_url = ?,
			reporting_format = ?,
			metric_type = ?,
			metric_level = ?,
			iris_citation = ?,
			definition = ?,
			usage_guidance = ?,
			impact_categories = ?,
			sdg_goals = ?,
			metric_history = ?,
			related_metrics = ?,
			scraped_at = ?,
			translated_at = ?,
			success = ?,
			version = ?,
			updated_at = ?
		WHERE id = ?
	`)

	_, err := tx.ExecContext(ctx, query,
		m.TitleEN,
		m.TitleKO,
		m.RelativePath,
		m.DetailURL,
		m.ReportingFormat,
		m.MetricType,
		m.MetricLevel,
		m.IrisCitation,
		m.Definition,
		m.UsageGuidance,
		m.ImpactCategories,
		m.SdgGoals,
		jsonArg(m.MetricHistory),
		jsonArg(m.RelatedMetrics),
		m.ScrapedAt,
		m.TranslatedAt,
		m.Success,
		m.Version,
		m.UpdatedAt,
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update metric %s: %w", m.DataID, err)
	}
	return nil
}

// Search returns one page of metrics matching params ordered by id, along
// with the total number of matches.
func (s *MetricStore) Search(ctx context.Context, params model.MetricSearchParams) ([]model.IrisMetric, int, error) {
	if err := params.Validate(); err != nil {
		return nil, 0, err
	}
	params = params.Normalized()

	where, args := s.searchFilter(params)

	var total int
	countQuery := s.db.rebind(`SELECT COUNT(*) FROM iris_metrics` + where)
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count metrics: %w", err)
	}

	query := s.db.rebind(`SELECT ` + metricColumns + ` FROM iris_metrics` + where + ` ORDER BY id LIMIT ? OFFSET ?`)
	rows, err := s.db.QueryContext(ctx, query, append(args, *params.Limit, *params.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search metrics: %w", err)
	}
	defer rows.Close()

	var metrics []model.IrisMetric
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan metric: %w", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return metrics, total, nil
}

func (s *MetricStore) searchFilter(p model.MetricSearchParams) (string, []any) {
	var clauses []string
	var args []any

	if p.Title != nil {
		pattern := "%" + escapeLike(strings.ToLower(*p.Title)) + "%"
		clauses = append(clauses, `(lower(title_en) LIKE ? ESCAPE '\' OR lower(COALESCE(title_ko, '')) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if p.DataID != nil {
		clauses = append(clauses, `data_id = ?`)
		args = append(args, *p.DataID)
	}
	if p.MetricType != nil {
		clauses = append(clauses, `metric_type = ?`)
		args = append(args, *p.MetricType)
	}
	if p.MetricLevel != nil {
		clauses = append(clauses, `metric_level = ?`)
		args = append(args, *p.MetricLevel)
	}
	if p.ImpactCategory != nil {
		clauses = append(clauses, s.headingMatch("impact_categories"))
		args = append(args, *p.ImpactCategory)
	}
	if p.SdgGoal != nil {
		clauses = append(clauses, s.headingMatch("sdg_goals"))
		args = append(args, *p.SdgGoal)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// headingMatch matches a heading text of the English block of a JSON column
func (s *MetricStore) headingMatch(column string) string {
	if s.db.dialect == Postgres {
		return column + ` -> 'en' -> 'content' -> 'headings' @> jsonb_build_array(jsonb_build_object('text', ?::text))`
	}
	return `EXISTS (SELECT 1 FROM json_each(` + column + `, '$.en.content.headings') h WHERE json_extract(h.value, '$.text') = ?)`
}

// CatalogCounts summarises the lifecycle state of the stored catalog
type CatalogCounts struct {
	Total       int
	Succeeded   int
	Failed      int
	Translated  int
	Stale       int
	ByType      map[string]int
	LastScraped *time.Time
}

// Counts returns lifecycle counts over the whole catalog
func (s *MetricStore) Counts(ctx context.Context) (*CatalogCounts, error) {
	counts := &CatalogCounts{ByType: make(map[string]int)}

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN translated_at IS NOT NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN translated_at IS NOT NULL AND scraped_at > translated_at THEN 1 ELSE 0 END), 0)
		FROM iris_metrics
	`
	err := s.db.QueryRowContext(ctx, query).Scan(
		&counts.Total,
		&counts.Succeeded,
		&counts.Translated,
		&counts.Stale,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count metrics: %w", err)
	}
	counts.Failed = counts.Total - counts.Succeeded

	// ORDER BY + LIMIT rather than MAX() keeps the column type for the driver
	err = s.db.QueryRowContext(ctx, `
		SELECT scraped_at FROM iris_metrics
		WHERE scraped_at IS NOT NULL
		ORDER BY scraped_at DESC
		LIMIT 1
	`).Scan(&counts.LastScraped)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to find last scrape: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(metric_type, ''), COUNT(*)
		FROM iris_metrics
		GROUP BY COALESCE(metric_type, '')
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count metric types: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var metricType string
		var n int
		if err := rows.Scan(&metricType, &n); err != nil {
			return nil, fmt.Errorf("failed to scan metric type count: %w", err)
		}
		counts.ByType[metricType] = n
	}

	return counts, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func jsonArg(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func rawJSON(ns sql.NullString) json.RawMessage {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.RawMessage(ns.String)
}
