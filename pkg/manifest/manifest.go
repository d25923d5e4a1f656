// Package manifest describes one anonymization run so the owner of the original schema
// can correlate shared anonymized queries with their sources.
package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/wundergraph/graphql-anonymizer/pkg/anonymizer"
	"github.com/wundergraph/graphql-anonymizer/pkg/verify"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var ErrUnknownFormat = errors.New("unknown output format")

func ParseFormat(format string) (Format, error) {
	switch Format(strings.ToLower(format)) {
	case FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", errors.Wrap(ErrUnknownFormat, format)
	}
}

// Query is an original query and where it was read from.
type Query struct {
	Source   string
	Original string
}

type Entry struct {
	Index      int    `json:"index" yaml:"index"`
	Source     string `json:"source,omitempty" yaml:"source,omitempty"`
	SourceHash string `json:"sourceHash" yaml:"sourceHash"`
	Anonymized string `json:"anonymized" yaml:"anonymized"`
}

type Manifest struct {
	RunID      string           `json:"runId" yaml:"runId"`
	SchemaHash string           `json:"schemaHash" yaml:"schemaHash"`
	Schema     string           `json:"schema" yaml:"schema"`
	Queries    []Entry          `json:"queries" yaml:"queries"`
	Problems   []verify.Problem `json:"problems,omitempty" yaml:"problems,omitempty"`
}

// New builds the manifest of a run. queries[i] must be the source of result.Queries[i].
// Hashes are taken from the original documents and never reveal their content.
func New(runID uuid.UUID, original *anonymizer.Schema, queries []Query, result *anonymizer.Result) (*Manifest, error) {
	if len(queries) != len(result.Queries) {
		return nil, errors.Errorf("got %d queries and %d anonymized queries", len(queries), len(result.Queries))
	}

	m := &Manifest{
		RunID:      runID.String(),
		SchemaHash: fingerprint(original.Hash()),
		Schema:     result.Schema.String(),
		Queries:    make([]Entry, len(queries)),
	}

	for i, query := range queries {
		m.Queries[i] = Entry{
			Index:      i,
			Source:     query.Source,
			SourceHash: fingerprint(xxhash.Sum64String(query.Original)),
			Anonymized: result.Queries[i],
		}
	}

	return m, nil
}

// Shared returns a copy of m without the sources of the queries. Source paths name the
// original queries and must stay with the owner; the fingerprints are enough to correlate.
func (m *Manifest) Shared() *Manifest {
	shared := *m
	shared.Queries = make([]Entry, len(m.Queries))
	for i, entry := range m.Queries {
		entry.Source = ""
		shared.Queries[i] = entry
	}
	return &shared
}

func fingerprint(hash uint64) string {
	return fmt.Sprintf("%016x", hash)
}

func (m *Manifest) Write(w io.Writer, format Format) error {
	switch format {
	case FormatText:
		return m.WriteText(w)
	case FormatJSON:
		return m.WriteJSON(w)
	case FormatYAML:
		return m.WriteYAML(w)
	default:
		return errors.Wrap(ErrUnknownFormat, string(format))
	}
}

func (m *Manifest) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(m)
}

func (m *Manifest) WriteYAML(w io.Writer) error {
	out, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// WriteText writes the schema followed by every query, each preceded by a comment
// with its index, its source if known and its fingerprint.
func (m *Manifest) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s\n", strings.TrimSpace(m.Schema)); err != nil {
		return err
	}

	for _, entry := range m.Queries {
		header := fmt.Sprintf("# %d %s", entry.Index, entry.SourceHash)
		if entry.Source != "" {
			header = fmt.Sprintf("# %d %s %s", entry.Index, entry.Source, entry.SourceHash)
		}
		if _, err := fmt.Fprintf(w, "\n%s\n%s\n", header, entry.Anonymized); err != nil {
			return err
		}
	}

	for _, problem := range m.Problems {
		if _, err := fmt.Fprintf(w, "\n# problem: %s\n", problem); err != nil {
			return err
		}
	}

	return nil
}
