// Package requests loads the queries to anonymize from GraphQL and JSON files
// and writes anonymized JSON requests.
package requests

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	//go:embed request.schema.json
	requestSchema string

	requestValidator = jsonschema.MustCompileString("request.schema.json", requestSchema)
)

var ErrUnsupportedFile = errors.New("unsupported file extension")

const anonymizedOperationName = "operation"

// Request is one query read from a file.
type Request struct {
	// Source names the file, with the array index for JSON arrays, e.g. requests.json[2].
	Source string
	Query  string

	raw json.RawMessage
}

// IsJSON reports whether the request was read from a JSON request object.
func (r Request) IsJSON() bool {
	return r.raw != nil
}

// Variables returns the variables of a JSON request, or nil.
func (r Request) Variables() json.RawMessage {
	if r.raw == nil {
		return nil
	}
	variables := gjson.GetBytes(r.raw, "variables")
	if !variables.Exists() {
		return nil
	}
	return json.RawMessage(variables.Raw)
}

// Rewrite returns the anonymized form of the request: the query itself for GraphQL files,
// the request object with the new query for JSON requests. Variables and extensions are
// dropped because they contain values of the original schema.
func (r Request) Rewrite(anonymizedQuery string) ([]byte, error) {
	if r.raw == nil {
		return []byte(anonymizedQuery), nil
	}

	out, err := sjson.SetBytes(r.raw, "query", anonymizedQuery)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: setting query", r.Source)
	}

	if operationName := gjson.GetBytes(out, "operationName"); operationName.Exists() && operationName.Type != gjson.Null {
		out, err = sjson.SetBytes(out, "operationName", anonymizedOperationName)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: setting operationName", r.Source)
		}
	}

	for _, path := range []string{"variables", "extensions"} {
		out, err = sjson.DeleteBytes(out, path)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: deleting %s", r.Source, path)
		}
	}

	return out, nil
}

// LoadFiles loads all requests of the given files in order.
func LoadFiles(paths ...string) ([]Request, error) {
	var all []Request
	for _, path := range lo.Uniq(paths) {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, loaded...)
	}
	return all, nil
}

// LoadFile loads a .graphql or .gql file as a single query, or a .json file holding
// a request object or an array of request objects.
func LoadFile(path string) ([]Request, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".graphql", ".gql":
		return []Request{{Source: path, Query: string(content)}}, nil
	case ".json":
		return ParseJSON(path, content)
	default:
		return nil, errors.Wrap(ErrUnsupportedFile, path)
	}
}

// ParseJSON parses a request object or an array of request objects.
func ParseJSON(source string, content []byte) ([]Request, error) {
	if !gjson.ValidBytes(content) {
		return nil, errors.Errorf("%s: invalid json", source)
	}

	var document interface{}
	if err := json.Unmarshal(content, &document); err != nil {
		return nil, errors.Wrapf(err, "%s: decoding json", source)
	}
	if err := requestValidator.Validate(document); err != nil {
		return nil, errors.Wrapf(err, "%s: invalid request", source)
	}

	parsed := gjson.ParseBytes(content)
	if !parsed.IsArray() {
		return []Request{newJSONRequest(source, parsed)}, nil
	}

	var requests []Request
	parsed.ForEach(func(key, value gjson.Result) bool {
		requests = append(requests, newJSONRequest(fmt.Sprintf("%s[%d]", source, key.Int()), value))
		return true
	})
	return requests, nil
}

func newJSONRequest(source string, value gjson.Result) Request {
	return Request{
		Source: source,
		Query:  value.Get("query").String(),
		raw:    json.RawMessage(value.Raw),
	}
}

// Queries returns the query of every request.
func Queries(requests []Request) []string {
	return lo.Map(requests, func(request Request, _ int) string {
		return request.Query
	})
}
