package query

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"imdb-catalog/internal/services"
	"imdb-catalog/internal/tracing"

	graphql "github.com/graph-gophers/graphql-go"
	gqlerrors "github.com/graph-gophers/graphql-go/errors"
	"github.com/sirupsen/logrus"
)

// CatalogOpener hands out a catalog bound to one storage session for the
// duration of fn.
type CatalogOpener interface {
	WithCatalog(ctx context.Context, fn func(services.CatalogService) error) error
}

type Dispatcher struct {
	schema *graphql.Schema
	opener CatalogOpener
	logger *logrus.Logger
}

// NewDispatcher parses the schema and binds it to the resolvers. Resolvers
// run one at a time since every request shares a single connection.
func NewDispatcher(opener CatalogOpener, logger *logrus.Logger, maxResults int) *Dispatcher {
	if maxResults < 1 {
		maxResults = DefaultMaxResults
	}
	schema := graphql.MustParseSchema(schemaSDL, &rootResolver{maxResults: maxResults},
		graphql.MaxParallelism(1),
		graphql.MaxDepth(maxQueryDepth),
		graphql.Logger(panicLogger{logger: logger}),
	)
	return &Dispatcher{
		schema: schema,
		opener: opener,
		logger: logger,
	}
}

// Execute resolves req on one storage session. A document that fails
// validation is split into its root fields so the valid ones still run;
// every failure is reported with the path of the field it belongs to.
func (d *Dispatcher) Execute(ctx context.Context, req *Request) *Response {
	start := time.Now()
	x := &execution{ctx: ctx, logger: d.logger}

	var data json.RawMessage
	if strings.TrimSpace(req.Query) == "" {
		x.fail(nil, &ValidationError{Message: "query document is empty"})
	} else if errs := d.schema.Validate(req.Query); len(errs) == 0 {
		data = d.executeDocument(x, req)
	} else {
		data = d.executeRoots(x, req, errs)
	}

	d.logger.WithFields(logrus.Fields{
		"request_id":  tracing.RequestID(ctx),
		"operation":   req.OperationName,
		"errors":      len(x.errors),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Query executed")

	return &Response{Data: data, Errors: x.errors}
}

func (d *Dispatcher) executeDocument(x *execution, req *Request) json.RawMessage {
	var result *graphql.Response
	err := d.opener.WithCatalog(x.ctx, func(catalog services.CatalogService) error {
		result = d.schema.Exec(withCatalog(x.ctx, catalog), req.Query, req.OperationName, req.Variables)
		return nil
	})
	if err != nil {
		units, splitErr := splitRoots(req.Query, req.OperationName)
		if splitErr != nil {
			x.fail(nil, err)
			return nil
		}
		data := NewObject()
		for _, unit := range units {
			x.failUnit(data, unit, err)
		}
		return x.marshal(data)
	}

	x.collect(result.Errors, nil)
	return result.Data
}

func (d *Dispatcher) executeRoots(x *execution, req *Request, docErrs []*gqlerrors.QueryError) json.RawMessage {
	units, err := splitRoots(req.Query, req.OperationName)
	if err != nil || len(units) == 0 {
		x.collect(docErrs, nil)
		return nil
	}

	invalid := make([][]*gqlerrors.QueryError, len(units))
	runnable := 0
	for i, unit := range units {
		if errs := d.schema.Validate(unit.document); len(errs) > 0 {
			invalid[i] = errs
			continue
		}
		runnable++
	}

	results := make([]*graphql.Response, len(units))
	var sessionErr error
	if runnable > 0 {
		sessionErr = d.opener.WithCatalog(x.ctx, func(catalog services.CatalogService) error {
			ctx := withCatalog(x.ctx, catalog)
			for i, unit := range units {
				if invalid[i] == nil {
					results[i] = d.schema.Exec(ctx, unit.document, "", req.Variables)
				}
			}
			return nil
		})
	}

	data := NewObject()
	for i, unit := range units {
		switch {
		case invalid[i] != nil:
			if unit.key != "" {
				data.Set(unit.key, nil)
			}
			x.collect(invalid[i], unitPath(unit))
		case sessionErr != nil:
			x.failUnit(data, unit, sessionErr)
		default:
			x.merge(data, unit, results[i])
		}
	}
	return x.marshal(data)
}

func unitPath(unit rootUnit) []any {
	if unit.key == "" {
		return nil
	}
	return []any{unit.key}
}

type execution struct {
	ctx    context.Context
	logger *logrus.Logger
	errors []FieldError
}

// fail records err against path and logs it. Internal failures keep their
// detail in the log only.
func (x *execution) fail(path []any, err error) {
	code := errorCode(err)
	x.record(path, nil, code, publicMessage(err, code), err)
}

func (x *execution) record(path []any, locations []Location, code, message string, cause error) {
	x.errors = append(x.errors, FieldError{
		Message:    message,
		Locations:  locations,
		Path:       path,
		Extensions: ErrorExtensions{Code: code},
	})

	entry := x.logger.WithError(cause).WithFields(logrus.Fields{
		"request_id": tracing.RequestID(x.ctx),
		"path":       fmt.Sprintf("%v", path),
		"code":       code,
	})
	if code == CodeInternalError {
		entry.Error("Query field failed")
		return
	}
	entry.Debug("Query field rejected")
}

// collect converts executor errors. Errors raised by a resolver carry its
// error; a path without one is a recovered panic; everything else concerns
// the document itself. pathOverride replaces the path of document errors.
func (x *execution) collect(errs []*gqlerrors.QueryError, pathOverride []any) {
	for _, qe := range errs {
		switch {
		case qe.ResolverError != nil:
			code := errorCode(qe.ResolverError)
			x.record(qe.Path, locations(qe), code, publicMessage(qe.ResolverError, code), qe.ResolverError)
		case len(qe.Path) > 0:
			x.record(qe.Path, locations(qe), CodeInternalError, internalMessage, qe)
		case pathOverride != nil:
			x.record(pathOverride, nil, CodeValidationFailed, qe.Message, qe)
		default:
			x.record(nil, locations(qe), CodeValidationFailed, qe.Message, qe)
		}
	}
}

func (x *execution) failUnit(data *Object, unit rootUnit, err error) {
	if unit.key != "" {
		data.Set(unit.key, nil)
	}
	x.fail(unitPath(unit), err)
}

// merge copies the result of one root unit into data in response order.
func (x *execution) merge(data *Object, unit rootUnit, result *graphql.Response) {
	x.collect(result.Errors, unitPath(unit))

	fields, err := decodeObject(result.Data)
	if err != nil {
		x.failUnit(data, unit, err)
		return
	}
	if fields.Len() == 0 && unit.key != "" {
		data.Set(unit.key, nil)
		return
	}
	for _, key := range fields.Keys() {
		v, _ := fields.Get(key)
		data.Set(key, v)
	}
}

func (x *execution) marshal(data *Object) json.RawMessage {
	out, err := json.Marshal(data)
	if err != nil {
		x.fail(nil, err)
		return nil
	}
	return out
}

func locations(qe *gqlerrors.QueryError) []Location {
	if len(qe.Locations) == 0 {
		return nil
	}
	out := make([]Location, len(qe.Locations))
	for i, l := range qe.Locations {
		out[i] = Location{Line: l.Line, Column: l.Column}
	}
	return out
}

// decodeObject reads the top level of a JSON object, keeping key order.
func decodeObject(raw json.RawMessage) (*Object, error) {
	obj := NewObject()
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return obj, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, fmt.Errorf("query result is not an object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("query result has a non-string key")
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		obj.Set(key, value)
	}
	return obj, nil
}

// panicLogger reports resolver panics recovered by the executor.
type panicLogger struct {
	logger *logrus.Logger
}

func (l panicLogger) LogPanic(ctx context.Context, value interface{}) {
	l.logger.WithFields(logrus.Fields{
		"request_id": tracing.RequestID(ctx),
		"panic":      value,
		"stack":      string(debug.Stack()),
	}).Error("Query resolver panicked")
}
