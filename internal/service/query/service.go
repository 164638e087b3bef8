// Package query orchestrates compile, execute, and shape for metric queries.
package query

import (
	"context"
	"log/slog"
	"time"

	"prism/internal/catalog"
	"prism/internal/domain"
	"prism/internal/engine"
	"prism/internal/history"
	"prism/internal/service/chart"
	"prism/internal/service/compile"
	"prism/internal/service/format"
)

// RunResult is the shaped output of one executed metric query.
type RunResult struct {
	Query      *domain.MetricQuery       `json:"query"`
	Rows       []domain.ResultRow        `json:"rows"`
	FieldTypes map[domain.FieldID]string `json:"fieldTypes"`
	RowCount   int                       `json:"rowCount"`
}

// Service wires the field catalog, compiler, runner, formatter, and history
// store behind one boundary for the API and CLI.
type Service struct {
	registry  *catalog.Registry
	runner    domain.QueryRunner
	formatter *format.Formatter
	history   *history.Store
	opts      compile.Options
	logger    *slog.Logger
}

// NewService creates a query Service. The history store may be nil, in which
// case executions are not recorded.
func NewService(registry *catalog.Registry, runner domain.QueryRunner, hist *history.Store, opts compile.Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		registry:  registry,
		runner:    runner,
		formatter: format.New(logger),
		history:   hist,
		opts:      opts,
		logger:    logger,
	}
}

// Registry exposes the loaded explores.
func (s *Service) Registry() *catalog.Registry { return s.registry }

// Formatter exposes the shared value formatter.
func (s *Service) Formatter() *format.Formatter { return s.formatter }

// Compile validates the selection and returns the immutable metric query
// without executing it.
func (s *Service) Compile(sel domain.QuerySelection) (*domain.MetricQuery, *catalog.Catalog, error) {
	explore, err := s.registry.Get(sel.Explore)
	if err != nil {
		return nil, nil, err
	}
	cat := catalog.New(explore)
	q, err := compile.Compile(sel, cat, s.opts)
	if err != nil {
		return nil, nil, err
	}
	return q, cat.ForQuery(q.AdditionalMetrics, q.TableCalculations), nil
}

// Run compiles, executes, and shapes the selection, recording the execution
// in the history store.
func (s *Service) Run(ctx context.Context, sel domain.QuerySelection) (*RunResult, error) {
	q, queryCat, err := s.Compile(sel)
	if err != nil {
		return nil, err
	}
	explore := queryCat.Explore()

	sqlText, err := engine.BuildSQL(q, explore)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.runner.Run(ctx, q, explore)
	s.record(ctx, q, sqlText, result, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	return &RunResult{
		Query:      q,
		Rows:       s.formatter.ShapeRows(result, queryCat),
		FieldTypes: result.FieldTypes,
		RowCount:   result.RowCount,
	}, nil
}

// PieChart runs the selection and aggregates the shaped rows into pie
// series data. A nil series with a nil error is the "no chart" sentinel.
func (s *Service) PieChart(ctx context.Context, sel domain.QuerySelection, cfg domain.PieChartConfig) ([]domain.PieSeriesDataPoint, error) {
	q, queryCat, err := s.Compile(sel)
	if err != nil {
		return nil, err
	}

	result, err := s.runner.Run(ctx, q, queryCat.Explore())
	if err != nil {
		return nil, err
	}

	rows := s.formatter.ShapeRows(result, queryCat)
	return chart.BuildPieSeries(rows, queryCat, cfg, s.formatter)
}

// ConditionalStyles runs the selection and computes the per-cell style
// overlay for the shaped rows.
func (s *Service) ConditionalStyles(ctx context.Context, sel domain.QuerySelection, configs []domain.ConditionalFormattingConfig) (*RunResult, []map[domain.FieldID]chart.CellStyle, error) {
	q, queryCat, err := s.Compile(sel)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.runner.Run(ctx, q, queryCat.Explore())
	if err != nil {
		return nil, nil, err
	}

	rows := s.formatter.ShapeRows(result, queryCat)
	styles := chart.StyleRows(configs, rows, queryCat)
	run := &RunResult{Query: q, Rows: rows, FieldTypes: result.FieldTypes, RowCount: result.RowCount}
	return run, styles, nil
}

// History lists recent executions, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]history.Entry, error) {
	if s.history == nil {
		return []history.Entry{}, nil
	}
	return s.history.List(ctx, limit)
}

// PruneHistory removes executions recorded before the cutoff and returns how
// many were deleted. A nil history store prunes nothing.
func (s *Service) PruneHistory(ctx context.Context, cutoff time.Time) (int64, error) {
	if s.history == nil {
		return 0, nil
	}
	return s.history.PruneBefore(ctx, cutoff)
}

func (s *Service) record(ctx context.Context, q *domain.MetricQuery, sqlText string, result *domain.QueryResult, elapsed time.Duration, runErr error) {
	if s.history == nil {
		return
	}
	entry := &history.Entry{
		ExploreName:  q.Explore,
		Dimensions:   history.FieldIDsToStrings(q.Dimensions),
		Metrics:      history.FieldIDsToStrings(q.Metrics),
		GeneratedSQL: sqlText,
		Status:       history.StatusCompleted,
		DurationMs:   elapsed.Milliseconds(),
	}
	if runErr != nil {
		entry.Status = history.StatusFailed
		entry.ErrorMessage = runErr.Error()
	} else if result != nil {
		entry.RowCount = result.RowCount
	}
	if err := s.history.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to record query history", "error", err)
	}
}
