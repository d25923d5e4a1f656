package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jensneuse/abstractlogger"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wundergraph/graphql-anonymizer/pkg/anonymizer"
	"github.com/wundergraph/graphql-anonymizer/pkg/manifest"
	"github.com/wundergraph/graphql-anonymizer/pkg/requests"
	"github.com/wundergraph/graphql-anonymizer/pkg/verify"
)

var (
	schemaFile       string
	outDir           string
	outputFormat     string
	concurrency      int
	renameDirectives bool
	verifyOutput     bool
	schemaCacheSize  int
	manifestFile     string
)

// anonymizeCmd represents the anonymize command
var anonymizeCmd = &cobra.Command{
	Use:   "anonymize [query files...]",
	Short: "anonymize renames a graphql schema and all queries written against it",
	Long: `anonymize reads the schema and every query file, renames them and writes the result.

Query files ending in .graphql or .gql contain one query each. Files ending in .json contain
a graphql request object or an array of request objects.

Without --out everything is written to std out in the chosen format. With --out the directory
receives the anonymized schema, one file per query and a manifest that maps every anonymized
query to a fingerprint of its original.

Both outputs are meant to be shared and never contain the names of the query files. Use
--manifest to keep a manifest with the source of every query outside the shared output.`,
	Example: "graphql-anonymizer anonymize --schema schema.graphql --out shared queries/*.graphql requests.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnonymize(cmd.Context(), cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(anonymizeCmd)

	flags := anonymizeCmd.Flags()
	flags.StringVar(&schemaFile, "schema", "./schema.graphql", "schema is the graphql schema file the queries are written against")
	flags.StringVar(&outDir, "out", "", "out is the directory the results are written to, std out if empty")
	flags.StringVar(&outputFormat, "format", string(manifest.FormatText), "format of the output: text, json or yaml")
	flags.IntVar(&concurrency, "concurrency", 0, "number of queries anonymized in parallel, defaults to the number of CPUs")
	flags.BoolVar(&renameDirectives, "rename-directives", false, "also rename directives applied inside queries")
	flags.BoolVar(&verifyOutput, "verify", false, "validate the anonymized queries against the anonymized schema")
	flags.IntVar(&schemaCacheSize, "schema-cache", 0, "number of renamed schemas kept in memory")
	flags.StringVar(&manifestFile, "manifest", "", "manifest is a json or yaml file receiving the manifest including query sources")

	for _, name := range []string{"schema", "out", "format", "concurrency", "rename-directives", "verify", "schema-cache", "manifest"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

func runAnonymize(ctx context.Context, stdout io.Writer, files []string) error {
	logger, syncLogger, err := newLogger(viper.GetString("log-level"))
	if err != nil {
		return err
	}
	defer syncLogger()

	format, err := manifest.ParseFormat(viper.GetString("format"))
	if err != nil {
		return err
	}

	schema, err := anonymizer.NewSchemaFromFile(viper.GetString("schema"))
	if err != nil {
		return err
	}

	loaded, err := requests.LoadFiles(files...)
	if err != nil {
		return err
	}
	logger.Info("anonymize: loaded queries",
		abstractlogger.String("schema", viper.GetString("schema")),
		abstractlogger.Int("files", len(files)),
		abstractlogger.Int("queries", len(loaded)),
	)

	for _, request := range loaded {
		if err := anonymizer.ValidateVariables(request.Variables()); err != nil {
			return errors.Wrap(err, request.Source)
		}
	}

	a := anonymizer.New(
		anonymizer.WithLogger(logger),
		anonymizer.WithConcurrency(viper.GetInt("concurrency")),
		anonymizer.WithQueryDirectiveRenaming(viper.GetBool("rename-directives")),
		anonymizer.WithSchemaCache(viper.GetInt("schema-cache")),
	)

	result, err := a.Anonymize(ctx, schema, requests.Queries(loaded), nil)
	if err != nil {
		return err
	}

	queries := lo.Map(loaded, func(request requests.Request, _ int) manifest.Query {
		return manifest.Query{
			Source:   request.Source,
			Original: request.Query,
		}
	})

	m, err := manifest.New(uuid.New(), schema, queries, result)
	if err != nil {
		return err
	}

	if viper.GetBool("verify") {
		m.Problems, err = verify.Verify(result.Schema.String(), result.Queries)
		if err != nil {
			return err
		}
		for _, problem := range m.Problems {
			logger.Warn("anonymize: anonymized query does not validate",
				abstractlogger.Int("index", problem.Index),
				abstractlogger.String("source", loaded[problem.Index].Source),
				abstractlogger.String("message", problem.Message),
			)
		}
	}

	if path := viper.GetString("manifest"); path != "" {
		if err := writeManifest(path, m); err != nil {
			return err
		}
	}

	shared := m.Shared()

	dir := viper.GetString("out")
	if dir == "" {
		return shared.Write(stdout, format)
	}

	return writeDir(dir, format, shared, loaded, result)
}

// writeManifest writes the complete manifest to path, as yaml for .yaml and .yml files
// and as json otherwise.
func writeManifest(path string, m *manifest.Manifest) error {
	extension := strings.TrimPrefix(filepath.Ext(path), ".")
	format, err := manifest.ParseFormat(extension)
	if err != nil || format == manifest.FormatText {
		format = manifest.FormatJSON
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory of %s", path)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating manifest")
	}
	defer file.Close()

	return m.Write(file, format)
}

// writeDir writes the anonymized schema, one file per query and the shared manifest into dir.
func writeDir(dir string, format manifest.Format, m *manifest.Manifest, loaded []requests.Request, result *anonymizer.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}

	if err := os.WriteFile(filepath.Join(dir, "schema.graphql"), []byte(result.Schema.String()), 0o644); err != nil {
		return errors.Wrap(err, "writing schema")
	}

	for i, request := range loaded {
		out, err := request.Rewrite(result.Queries[i])
		if err != nil {
			return err
		}

		if err := os.WriteFile(filepath.Join(dir, queryFileName(i, request)), out, 0o644); err != nil {
			return errors.Wrapf(err, "writing query %d", i)
		}
	}

	// the manifest is always structured, text output only applies to std out
	manifestFormat := lo.Ternary(format == manifest.FormatYAML, manifest.FormatYAML, manifest.FormatJSON)
	file, err := os.Create(filepath.Join(dir, "manifest."+string(manifestFormat)))
	if err != nil {
		return errors.Wrap(err, "creating manifest")
	}
	defer file.Close()

	return m.Write(file, manifestFormat)
}

func queryFileName(index int, request requests.Request) string {
	return fmt.Sprintf("query_%03d%s", index, lo.Ternary(request.IsJSON(), ".json", ".graphql"))
}
