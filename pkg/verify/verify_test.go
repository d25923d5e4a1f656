package verify

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wundergraph/graphql-anonymizer/pkg/anonymizer"
)

func TestVerify(t *testing.T) {
	schema := `
		type Query { hero(id: ID!): Hero }
		type Hero { name: String friends: [Hero] }`

	t.Run("valid queries", func(t *testing.T) {
		problems, err := Verify(schema, []string{
			`{ hero(id: "1") { name } }`,
			`query Q($id: ID!) { hero(id: $id) { friends { name } } }`,
		})
		require.NoError(t, err)
		assert.Empty(t, problems)
	})

	t.Run("invalid queries", func(t *testing.T) {
		problems, err := Verify(schema, []string{
			`{ hero(id: "1") { name } }`,
			`{ hero(id: "1") { age } }`,
		})
		require.NoError(t, err)
		require.Len(t, problems, 1)
		assert.Equal(t, 1, problems[0].Index)
		assert.Contains(t, problems[0].Message, "age")
		assert.Contains(t, problems[0].String(), "query 1: ")
	})

	t.Run("invalid schema", func(t *testing.T) {
		_, err := Verify(`type Query { hero: Villain }`, nil)
		assert.Error(t, err)
	})
}

func TestLoadSchema(t *testing.T) {
	t.Run("implementing types use their own field names", func(t *testing.T) {
		loaded, err := LoadSchema(`
			type Query { field1: Interface2 }
			interface Interface1 { field2: ID! }
			interface Interface2 implements Interface1 { field3: ID! field4: String }
			type Object2 implements Interface2 & Interface1 { field5: ID! field6: ID! field7: String }`)
		require.NoError(t, err)

		possibleTypes := loaded.GetPossibleTypes(loaded.Types["Interface1"])
		require.Len(t, possibleTypes, 2)
		assert.Equal(t, "Interface2", possibleTypes[0].Name)
		assert.Equal(t, "Object2", possibleTypes[1].Name)
		assert.Equal(t, []string{"Interface2", "Interface1"}, loaded.Types["Object2"].Interfaces)
		assert.Len(t, loaded.GetImplements(loaded.Types["Object2"]), 2)

		problems, err := Verify(`
			type Query { field1: Interface2 }
			interface Interface1 { field2: ID! }
			interface Interface2 implements Interface1 { field3: ID! field4: String }
			type Object2 implements Interface2 & Interface1 { field5: ID! field6: ID! field7: String }`,
			[]string{
				`{ field1 { field3 ... on Object2 { field7 } ... on Interface1 { field2 } } }`,
				`{ field1 { ... on Query { field1 { field3 } } } }`,
			})
		require.NoError(t, err)
		require.Len(t, problems, 1)
		assert.Equal(t, 1, problems[0].Index)
	})

	t.Run("implementing something that is not an interface", func(t *testing.T) {
		_, err := LoadSchema(`
			type Query { field1: Object2 }
			type Object1 { field2: ID }
			type Object2 implements Object1 { field3: ID }`)
		assert.Error(t, err)
	})

	t.Run("implementing an unknown interface", func(t *testing.T) {
		_, err := LoadSchema(`type Query implements Interface1 { field1: ID }`)
		assert.Error(t, err)
	})
}

func TestVerify_AnonymizedStarwars(t *testing.T) {
	input, err := os.ReadFile("../anonymizer/testdata/starwars.graphql")
	require.NoError(t, err)

	queries := []string{
		`query HeroForEpisode($ep: Episode!, $withFriends: Boolean!) {
			hero(episode: $ep) {
				name
				... on Droid { primaryFunction }
				friends @include(if: $withFriends) { name }
			}
		}`,
		`{
			hero { ...CharacterFields friends { ...CharacterFields } }
			droid(id: "2001") { ...CharacterFields }
		}
		fragment CharacterFields on Character { id name }`,
		`mutation AddReview($ep: Episode!) {
			createReview(episode: $ep, review: {stars: 5, commentary: "great", episode: EMPIRE}) { stars commentary createdAt }
		}`,
		`{ search(text: "han", filter: {limit: 3}) { ... on Human { height(unit: FOOT) } ... on Droid { id } } }`,
		`{ luke: hero(episode: JEDI) { __typename id } }`,
	}

	original, err := Verify(string(input), queries)
	require.NoError(t, err)
	require.Empty(t, original)

	result, err := anonymizer.Anonymize(string(input), queries...)
	require.NoError(t, err)

	problems, err := Verify(result.Schema.String(), result.Queries)
	require.NoError(t, err)
	assert.Empty(t, problems)
}
