package anonymizer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jensneuse/abstractlogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wundergraph/graphql-anonymizer/internal/pkg/unsafeprinter"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var starwarsQueries = []string{
	`query HeroForEpisode($ep: Episode!) { hero(episode: $ep) { name ... on Droid { primaryFunction } } }`,
	`{ hero { ...CharacterFields friends { ...CharacterFields } } } fragment CharacterFields on Character { id name }`,
	`mutation AddReview($ep: Episode!) { createReview(episode: $ep, review: {stars: 5, commentary: "great"}) { stars } }`,
	`{ search(text: "han", filter: {limit: 3}) { ... on Human { height(unit: FOOT) } ... on Droid { id } } }`,
	`{ luke: hero(episode: JEDI) { __typename id } }`,
}

func TestAnonymizer_Anonymize(t *testing.T) {
	schema := loadSchema(t, "testdata/starwars.graphql")

	t.Run("keeps query order", func(t *testing.T) {
		queries := make([]string, 0, 40)
		for i := 0; i < 8; i++ {
			queries = append(queries, starwarsQueries...)
		}

		result, err := New(WithConcurrency(4)).Anonymize(context.Background(), schema, queries, nil)
		require.NoError(t, err)
		require.Len(t, result.Queries, len(queries))

		renaming, err := RenameSchema(schema)
		require.NoError(t, err)

		for i, query := range queries {
			expected, err := AnonymizeQuery(query, schema, renaming.Names)
			require.NoError(t, err)
			assert.Equal(t, expected, result.Queries[i], "query %d", i)
		}
	})

	t.Run("concurrency does not change the result", func(t *testing.T) {
		sequential, err := New(WithConcurrency(1)).Anonymize(context.Background(), schema, starwarsQueries, nil)
		require.NoError(t, err)
		parallel, err := New(WithConcurrency(8)).Anonymize(context.Background(), schema, starwarsQueries, nil)
		require.NoError(t, err)

		if diff := cmp.Diff(sequential.Queries, parallel.Queries); diff != "" {
			t.Errorf("mismatch (-sequential +parallel):\n%s", diff)
		}
		assert.Equal(t, sequential.Schema.String(), parallel.Schema.String())
	})

	t.Run("no queries", func(t *testing.T) {
		result, err := New().Anonymize(context.Background(), schema, nil, nil)
		require.NoError(t, err)
		assert.Empty(t, result.Queries)

		expected, err := os.ReadFile("testdata/starwars.anonymized.graphql")
		require.NoError(t, err)
		assert.Equal(t, unsafeprinter.Prettify(string(expected)), unsafeprinter.Prettify(result.Schema.String()))
	})

	t.Run("one failing query fails the run", func(t *testing.T) {
		queries := []string{starwarsQueries[0], `{ villain }`, starwarsQueries[1]}

		result, err := New().Anonymize(context.Background(), schema, queries, nil)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrUnresolved)
		assert.Contains(t, err.Error(), "query 1 ({ villain })")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := New().Anonymize(ctx, schema, starwarsQueries, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("variables", func(t *testing.T) {
		for _, variables := range []string{``, `null`, `{}`, `{"ep":"JEDI","review":{"stars":5}}`} {
			_, err := New().Anonymize(context.Background(), schema, starwarsQueries, json.RawMessage(variables))
			assert.NoError(t, err, variables)
		}

		for _, variables := range []string{`[]`, `"ep"`, `42`, `{"":1}`, `{`} {
			_, err := New().Anonymize(context.Background(), schema, starwarsQueries, json.RawMessage(variables))
			assert.ErrorIs(t, err, ErrInvalidVariables, variables)
		}
	})

	t.Run("query directive renaming", func(t *testing.T) {
		withDirective, err := NewSchemaFromString(`
			type Query { hero: Hero }
			type Hero { id: ID! }
			directive @cached(ttl: Int) on FIELD`)
		require.NoError(t, err)

		query := []string{`{ hero @cached(ttl: 30) { id } }`}

		kept, err := New().Anonymize(context.Background(), withDirective, query, nil)
		require.NoError(t, err)
		assert.Equal(t, unsafeprinter.Minify(`{ field1 @cached(argument1: 1) { field2 } }`), kept.Queries[0])

		renamed, err := New(WithQueryDirectiveRenaming(true)).Anonymize(context.Background(), withDirective, query, nil)
		require.NoError(t, err)
		assert.Equal(t, unsafeprinter.Minify(`{ field1 @Directive1(argument1: 1) { field2 } }`), renamed.Queries[0])
	})
}

func TestAnonymizer_SchemaCache(t *testing.T) {
	schema := loadSchema(t, "testdata/starwars.graphql")
	anonymizer := New(WithSchemaCache(2))
	require.NotNil(t, anonymizer.cache)

	first, err := anonymizer.renameSchema(schema)
	require.NoError(t, err)
	second, err := anonymizer.renameSchema(schema)
	require.NoError(t, err)
	assert.Same(t, first, second)

	uncached := New()
	third, err := uncached.renameSchema(schema)
	require.NoError(t, err)
	fourth, err := uncached.renameSchema(schema)
	require.NoError(t, err)
	assert.NotSame(t, third, fourth)
}

func TestAnonymizer_Options(t *testing.T) {
	anonymizer := New(
		WithLogger(abstractlogger.Noop{}),
		WithConcurrency(0),
		WithSchemaCache(-1),
	)

	assert.Greater(t, anonymizer.concurrency, 0)
	assert.Nil(t, anonymizer.cache)
	assert.False(t, anonymizer.renameDirectives)
}

// Anonymizing the output again yields the same output, so renamed schema and queries
// are consistent with each other.
func TestAnonymize_IsIdempotent(t *testing.T) {
	schema := loadSchema(t, "testdata/starwars.graphql")

	first, err := New().Anonymize(context.Background(), schema, starwarsQueries, nil)
	require.NoError(t, err)

	second, err := New().Anonymize(context.Background(), first.Schema, first.Queries, nil)
	require.NoError(t, err)

	assert.Equal(t, unsafeprinter.Prettify(first.Schema.String()), unsafeprinter.Prettify(second.Schema.String()))
	for i := range first.Queries {
		assert.Equal(t, first.Queries[i], second.Queries[i], fmt.Sprintf("query %d", i))
	}
}
