package domain

import "context"

// QueryRunner executes a compiled metric query against the warehouse and
// returns raw rows plus engine-reported field types. Cancellation and
// retries live behind this boundary; the shaping layer starts only after
// rows are available.
type QueryRunner interface {
	Run(ctx context.Context, query *MetricQuery, explore *Explore) (*QueryResult, error)
}
