package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v2"

	"github.com/wundergraph/graphql-anonymizer/pkg/anonymizer"
	"github.com/wundergraph/graphql-anonymizer/pkg/manifest"
)

func setFlags(t *testing.T, values map[string]interface{}) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("log-level", "error")
	viper.Set("format", "text")
	viper.Set("schema", "testdata/schema.graphql")
	for key, value := range values {
		viper.Set(key, value)
	}
}

func TestAnonymize(t *testing.T) {
	files := []string{"testdata/hero.graphql", "testdata/requests.json", "testdata/node.graphql"}

	t.Run("text to std out", func(t *testing.T) {
		setFlags(t, nil)

		out := &bytes.Buffer{}
		require.NoError(t, runAnonymize(context.Background(), out, files))

		assert.Contains(t, out.String(), "type Object1")
		assert.Contains(t, out.String(), "type Object2 implements Interface1")
		assert.Contains(t, out.String(), "\n# 0 ")
		assert.Contains(t, out.String(), "query operation($var1: ID!){field1(argument1: $var1){field2}}")
		assert.Contains(t, out.String(), "\n# 3 ")
		assert.NotContains(t, out.String(), "friends")
		assert.NotContains(t, out.String(), "testdata")
	})

	t.Run("json to std out with verification", func(t *testing.T) {
		setFlags(t, map[string]interface{}{
			"format": "json",
			"verify": true,
		})

		out := &bytes.Buffer{}
		require.NoError(t, runAnonymize(context.Background(), out, files))

		var m manifest.Manifest
		require.NoError(t, json.Unmarshal(out.Bytes(), &m))
		assert.Len(t, m.Queries, 4)
		assert.Empty(t, m.Problems)
		assert.Equal(t, `{field1(argument1: "stringValue1"){field3(argument2: 1){field2}}}`, m.Queries[1].Anonymized)
		assert.Contains(t, m.Queries[3].Anonymized, "... on Interface1 {field5}")
		for _, entry := range m.Queries {
			assert.Empty(t, entry.Source)
		}
	})

	t.Run("directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "shared")
		setFlags(t, map[string]interface{}{
			"out":         dir,
			"format":      "yaml",
			"concurrency": 2,
		})

		require.NoError(t, runAnonymize(context.Background(), &bytes.Buffer{}, files))

		for _, name := range []string{"schema.graphql", "query_000.graphql", "query_001.json", "query_002.json", "query_003.graphql", "manifest.yaml"} {
			_, err := os.Stat(filepath.Join(dir, name))
			assert.NoError(t, err, name)
		}

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 6)
		for _, entry := range entries {
			content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
			require.NoError(t, err)
			for _, original := range []string{"testdata", "hero", "Hero", "friends", "Node"} {
				assert.NotContains(t, string(content), original, entry.Name())
			}
		}

		request, err := os.ReadFile(filepath.Join(dir, "query_002.json"))
		require.NoError(t, err)
		assert.Equal(t, "operation", gjson.GetBytes(request, "operationName").String())
		assert.False(t, gjson.GetBytes(request, "variables").Exists())
	})

	t.Run("manifest with sources is kept apart", func(t *testing.T) {
		dir := t.TempDir()
		setFlags(t, map[string]interface{}{
			"out":      filepath.Join(dir, "shared"),
			"manifest": filepath.Join(dir, "private", "manifest.yml"),
		})

		require.NoError(t, runAnonymize(context.Background(), &bytes.Buffer{}, files))

		private, err := os.ReadFile(filepath.Join(dir, "private", "manifest.yml"))
		require.NoError(t, err)
		assert.Contains(t, string(private), "source: testdata/hero.graphql")
		assert.Contains(t, string(private), "source: testdata/requests.json[1]")

		shared, err := os.ReadFile(filepath.Join(dir, "shared", "manifest.json"))
		require.NoError(t, err)
		assert.NotContains(t, string(shared), "testdata")
		var privateManifest manifest.Manifest
		require.NoError(t, yaml.Unmarshal(private, &privateManifest))
		assert.Equal(t, privateManifest.RunID, gjson.GetBytes(shared, "runId").String())
		assert.Equal(t, privateManifest.Queries[0].SourceHash, gjson.GetBytes(shared, "queries.0.sourceHash").String())
	})

	t.Run("variables of requests are validated", func(t *testing.T) {
		setFlags(t, nil)

		err := runAnonymize(context.Background(), &bytes.Buffer{}, []string{"testdata/empty_variable_name.json"})
		assert.ErrorIs(t, err, anonymizer.ErrInvalidVariables)
		assert.Contains(t, err.Error(), "testdata/empty_variable_name.json")
	})

	t.Run("unknown format", func(t *testing.T) {
		setFlags(t, map[string]interface{}{"format": "xml"})
		assert.ErrorIs(t, runAnonymize(context.Background(), &bytes.Buffer{}, files), manifest.ErrUnknownFormat)
	})

	t.Run("missing schema", func(t *testing.T) {
		setFlags(t, map[string]interface{}{"schema": "testdata/missing.graphql"})
		assert.Error(t, runAnonymize(context.Background(), &bytes.Buffer{}, files))
	})
}

func TestVersion(t *testing.T) {
	out := &bytes.Buffer{}
	versionCmd.SetOut(out)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "graphql-anonymizer dev\n", out.String())
}

func TestSchema(t *testing.T) {
	run := func(t *testing.T, formatOnly bool) string {
		t.Helper()

		schemaFormatOnly = formatOnly
		t.Cleanup(func() { schemaFormatOnly = false })

		out := &bytes.Buffer{}
		schemaCmd.SetOut(out)
		require.NoError(t, schemaCmd.RunE(schemaCmd, []string{"testdata/schema.graphql"}))
		return out.String()
	}

	t.Run("anonymized", func(t *testing.T) {
		out := run(t, false)
		assert.Contains(t, out, "type Object2")
		assert.NotContains(t, out, "friends")
	})

	t.Run("format only", func(t *testing.T) {
		out := run(t, true)
		assert.Contains(t, out, "friends")
		assert.NotContains(t, out, "Object1")
	})

	t.Run("missing argument", func(t *testing.T) {
		assert.Error(t, schemaCmd.RunE(schemaCmd, nil))
	})
}
