// Package tracing annotates every SQL statement issued through gorm with a
// span named after the statement's verb and target table.
package tracing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type requestIDKey struct{}

const startKey = "tracing:start"

// WithRequestID tags ctx so spans can be grouped per inbound request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// OperationName derives the span name of a statement: the table after FROM
// for selects, the lowercased verb for anything else.
func OperationName(statement string) string {
	fields := strings.Fields(strings.ToLower(statement))
	if len(fields) == 0 {
		return "unknown"
	}
	if fields[0] != "select" {
		return fields[0]
	}
	for i, f := range fields {
		if f == "from" && i+1 < len(fields) {
			table := strings.Trim(fields[i+1], `"(),;`)
			if dot := strings.LastIndex(table, `"."`); dot >= 0 {
				table = table[dot+3:]
			}
			if table != "" {
				return table
			}
		}
	}
	return "select"
}

// Plugin is a gorm plugin that logs one span per statement. A database
// without it behaves the same, just silently.
type Plugin struct {
	logger        *logrus.Logger
	slowThreshold time.Duration
}

func NewPlugin(logger *logrus.Logger, slowThreshold time.Duration) *Plugin {
	return &Plugin{logger: logger, slowThreshold: slowThreshold}
}

func (p *Plugin) Name() string {
	return "imdb:tracing"
}

func (p *Plugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Query().Before("gorm:query").Register("tracing:before_query", p.before); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:after_query").Register("tracing:after_query", p.after); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("tracing:before_row", p.before); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("tracing:after_row", p.after); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("tracing:before_raw", p.before); err != nil {
		return err
	}
	return cb.Raw().After("gorm:raw").Register("tracing:after_raw", p.after)
}

func (p *Plugin) before(db *gorm.DB) {
	db.InstanceSet(startKey, time.Now())
}

func (p *Plugin) after(db *gorm.DB) {
	var elapsed time.Duration
	if v, ok := db.InstanceGet(startKey); ok {
		if start, ok := v.(time.Time); ok {
			elapsed = time.Since(start)
		}
	}

	entry := p.logger.WithFields(logrus.Fields{
		"span":        OperationName(db.Statement.SQL.String()),
		"duration_ms": elapsed.Milliseconds(),
		"rows":        db.Statement.RowsAffected,
		"parameters":  db.Statement.Vars,
		"request_id":  RequestID(db.Statement.Context),
	})

	switch {
	case db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound):
		entry.WithError(db.Error).Warn("Query failed")
	case p.slowThreshold > 0 && elapsed >= p.slowThreshold:
		entry.Warn("Slow query")
	default:
		entry.Debug("Query executed")
	}
}
