// Package anonymizer replaces every user chosen name and literal of a GraphQL schema
// and its queries with generated placeholders while keeping their structure intact.
package anonymizer

import (
	"context"
	"encoding/json"
	"runtime"
	"strings"

	"github.com/buger/jsonparser"
	lru "github.com/hashicorp/golang-lru"
	"github.com/jensneuse/abstractlogger"
	"github.com/pkg/errors"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/astparser"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

// Result holds the renamed schema and the renamed queries in input order.
type Result struct {
	Schema  *Schema
	Queries []string
}

type Option func(a *Anonymizer)

func WithLogger(logger abstractlogger.Logger) Option {
	return func(a *Anonymizer) {
		a.logger = logger
	}
}

// WithConcurrency limits the number of queries anonymized in parallel.
func WithConcurrency(concurrency int) Option {
	return func(a *Anonymizer) {
		if concurrency > 0 {
			a.concurrency = concurrency
		}
	}
}

// WithQueryDirectiveRenaming renames directives applied inside queries.
// By default only their arguments are renamed and directive names are kept.
func WithQueryDirectiveRenaming(enabled bool) Option {
	return func(a *Anonymizer) {
		a.renameDirectives = enabled
	}
}

// WithSchemaCache keeps the renaming of the last size schemas.
func WithSchemaCache(size int) Option {
	return func(a *Anonymizer) {
		if size <= 0 {
			return
		}
		cache, err := lru.New(size)
		if err != nil {
			a.logger.Error("anonymizer: creating schema cache", abstractlogger.Error(err))
			return
		}
		a.cache = cache
	}
}

type Anonymizer struct {
	logger           abstractlogger.Logger
	concurrency      int
	renameDirectives bool
	cache            *lru.Cache
}

func New(options ...Option) *Anonymizer {
	a := &Anonymizer{
		logger:      abstractlogger.NoopLogger,
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, option := range options {
		option(a)
	}
	return a
}

// Anonymize is a shortcut for New().Anonymize without variables.
func Anonymize(schema string, queries ...string) (*Result, error) {
	s, err := NewSchemaFromString(schema)
	if err != nil {
		return nil, err
	}
	return New().Anonymize(context.Background(), s, queries, nil)
}

// Anonymize renames the schema, then every query against it. variables may be empty,
// null or a JSON object. Any failure fails the whole run and no result is returned.
func (a *Anonymizer) Anonymize(ctx context.Context, schema *Schema, queries []string, variables json.RawMessage) (*Result, error) {
	if err := ValidateVariables(variables); err != nil {
		return nil, err
	}

	renaming, err := a.renameSchema(schema)
	if err != nil {
		a.logger.Error("anonymizer: renaming schema", abstractlogger.Error(err))
		return nil, err
	}

	anonymized := make([]string, len(queries))
	processed := atomic.NewInt64(0)

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(a.concurrency)

	for i := range queries {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			query, err := anonymizeQuery(queries[i], schema, renaming.Names, a.renameDirectives)
			if err != nil {
				return errors.Wrapf(err, "query %d (%s)", i, firstLine(queries[i]))
			}
			anonymized[i] = query

			a.logger.Debug("anonymizer: query anonymized",
				abstractlogger.Int("index", i),
				abstractlogger.Int("processed", int(processed.Inc())),
			)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		a.logger.Error("anonymizer: anonymizing queries", abstractlogger.Error(err))
		return nil, err
	}

	a.logger.Info("anonymizer: done",
		abstractlogger.Int("elements", len(renaming.Names)),
		abstractlogger.Int("queries", int(processed.Load())),
	)

	return &Result{
		Schema:  renaming.Schema,
		Queries: anonymized,
	}, nil
}

func (a *Anonymizer) renameSchema(schema *Schema) (*SchemaRenaming, error) {
	if a.cache != nil {
		if cached, ok := a.cache.Get(schema.Hash()); ok {
			a.logger.Debug("anonymizer: schema cache hit")
			return cached.(*SchemaRenaming), nil
		}
	}

	renaming, err := RenameSchema(schema)
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		a.cache.Add(schema.Hash(), renaming)
	}
	return renaming, nil
}

// AnonymizeQuery rewrites a single query against a schema renamed by RenameSchema.
func AnonymizeQuery(query string, schema *Schema, names ElementNames) (string, error) {
	return anonymizeQuery(query, schema, names, false)
}

func anonymizeQuery(query string, schema *Schema, names ElementNames, renameDirectives bool) (string, error) {
	operation, report := astparser.ParseGraphqlDocumentString(query)
	if report.HasErrors() {
		return "", report
	}

	allocator := newNameAllocator()

	resolved, err := newQueryResolver(schema, names, renameDirectives).resolve(&operation, allocator)
	if err != nil {
		return "", err
	}

	rewriter := &queryRewriter{
		operation: &operation,
		schema:    schema,
		names:     names,
		query:     resolved,
		allocator: allocator,
	}
	return rewriter.rewrite()
}

func firstLine(query string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(query), "\n")
	return strings.TrimSpace(line)
}

// ValidateVariables checks that variables is empty, null or a JSON object with named
// entries. Violations are reported as ErrInvalidVariables.
func ValidateVariables(variables json.RawMessage) error {
	if len(variables) == 0 {
		return nil
	}

	value, dataType, _, err := jsonparser.Get(variables)
	if err != nil {
		return errors.Wrap(ErrInvalidVariables, err.Error())
	}

	switch dataType {
	case jsonparser.Null:
		return nil
	case jsonparser.Object:
		return jsonparser.ObjectEach(value, func(key []byte, _ []byte, _ jsonparser.ValueType, _ int) error {
			if len(key) == 0 {
				return errors.Wrap(ErrInvalidVariables, "empty variable name")
			}
			return nil
		})
	default:
		return errors.Wrapf(ErrInvalidVariables, "got %s", dataType)
	}
}
