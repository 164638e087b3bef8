package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"prism/internal/domain"
)

// DuckDBRunner executes compiled metric queries against a DuckDB connection.
// It implements domain.QueryRunner.
type DuckDBRunner struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewDuckDBRunner creates a runner over the given DuckDB connection.
func NewDuckDBRunner(db *sql.DB, logger *slog.Logger) *DuckDBRunner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DuckDBRunner{db: db, logger: logger}
}

// Run builds and executes the SQL for the metric query, returning raw rows
// keyed by field identifier plus engine-reported value types.
func (r *DuckDBRunner) Run(ctx context.Context, q *domain.MetricQuery, explore *domain.Explore) (*domain.QueryResult, error) {
	sqlText, err := BuildSQL(q, explore)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("execute metric query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("read column types: %w", err)
	}

	fieldTypes := make(map[domain.FieldID]string, len(columns))
	for i, col := range columns {
		fieldTypes[domain.FieldID(col)] = valueTypeFromDB(columnTypes[i].DatabaseTypeName())
	}

	out := []map[domain.FieldID]interface{}{}
	for rows.Next() {
		scanTargets := make([]interface{}, len(columns))
		for i := range scanTargets {
			scanTargets[i] = new(interface{})
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make(map[domain.FieldID]interface{}, len(columns))
		for i, col := range columns {
			row[domain.FieldID(col)] = *(scanTargets[i].(*interface{}))
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	r.logger.Debug("metric query executed",
		"explore", explore.Name, "rows", len(out), "duration", time.Since(start))

	return &domain.QueryResult{
		Rows:       out,
		FieldTypes: fieldTypes,
		RowCount:   len(out),
	}, nil
}

// valueTypeFromDB maps DuckDB column type names onto the field value types
// the formatter understands.
func valueTypeFromDB(dbType string) string {
	t := strings.ToUpper(dbType)
	switch {
	case strings.HasPrefix(t, "DECIMAL"), t == "TINYINT", t == "SMALLINT", t == "INTEGER",
		t == "BIGINT", t == "HUGEINT", t == "UTINYINT", t == "USMALLINT", t == "UINTEGER",
		t == "UBIGINT", t == "FLOAT", t == "DOUBLE", t == "REAL":
		return domain.TypeNumber
	case t == "BOOLEAN":
		return domain.TypeBoolean
	case t == "DATE":
		return domain.TypeDate
	case strings.HasPrefix(t, "TIMESTAMP"):
		return domain.TypeTimestamp
	default:
		return domain.TypeString
	}
}
