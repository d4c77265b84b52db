package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const callEventsTable = "call_events"

var callEventColumns = []string{
	"id", "created_at", "transport", "endpoint",
	"status_code", "latency_ms", "success", "error_message",
}

// CallEventLog implements EventRepo on the call_events table.
type CallEventLog struct {
	drv *entsql.Driver
}

var _ EventRepo = (*CallEventLog)(nil)

func (l *CallEventLog) AppendCall(ctx context.Context, data CallEventData) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(callEventsTable).
		Columns(callEventColumns[1:]...).
		Values(
			time.Now().UnixMilli(),
			data.Transport,
			data.Endpoint,
			data.StatusCode,
			data.LatencyMs,
			data.Success,
			data.ErrorMessage,
		).
		Query()

	if err := l.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save call event: %w", err)
	}
	return nil
}

// Query returns call events newest first.
func (l *CallEventLog) Query(ctx context.Context, opts QueryOpts) ([]CallEvent, error) {
	t := entsql.Table(callEventsTable)
	sel := entsql.Dialect(dialect.SQLite).
		Select(callEventColumns...).
		From(t).
		OrderBy(entsql.Desc("id"))

	var preds []*entsql.Predicate
	if opts.Endpoint != "" {
		preds = append(preds, entsql.EQ("endpoint", opts.Endpoint))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("created_at", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("created_at", opts.To.UnixMilli()))
	}
	if len(preds) > 0 {
		sel = sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	var rows entsql.Rows
	if err := l.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query call events: %w", err)
	}
	defer rows.Close()

	var events []CallEvent
	for rows.Next() {
		var (
			ev        CallEvent
			createdAt int64
		)
		if err := rows.Scan(
			&ev.ID, &createdAt, &ev.Transport, &ev.Endpoint,
			&ev.StatusCode, &ev.LatencyMs, &ev.Success, &ev.ErrorMessage,
		); err != nil {
			return nil, fmt.Errorf("scan call event: %w", err)
		}
		ev.CreatedAt = time.UnixMilli(createdAt)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// EndpointStats aggregates call events for one endpoint.
type EndpointStats struct {
	Endpoint     string
	Calls        int
	Failures     int
	AvgLatencyMs float64
}

// Stats aggregates all call events per endpoint, ordered by endpoint.
func (l *CallEventLog) Stats(ctx context.Context) ([]EndpointStats, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(
			"endpoint",
			entsql.Count("*"),
			"SUM(CASE WHEN success THEN 0 ELSE 1 END)",
			"AVG(latency_ms)",
		).
		From(entsql.Table(callEventsTable)).
		GroupBy("endpoint").
		OrderBy("endpoint").
		Query()

	var rows entsql.Rows
	if err := l.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query call stats: %w", err)
	}
	defer rows.Close()

	var stats []EndpointStats
	for rows.Next() {
		var st EndpointStats
		if err := rows.Scan(&st.Endpoint, &st.Calls, &st.Failures, &st.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan call stats: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
