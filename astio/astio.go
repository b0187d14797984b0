// Package astio loads §6.1's AST JSON format into tree.Store values.
//
// Grounded on schemaexec's decode-then-validate pipeline: each decoded
// element is checked against a compiled JSON Schema describing the element
// shape before it is turned into a tree.ParsedNode, and no tree is built
// until every element has passed, so malformed input is rejected with a
// single modelerr.ParseError naming the offending JSON pointer rather than
// failing deep inside tree.Parse.
package astio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/unicode/norm"

	"github.com/tgenlab/tgen/intern"
	"github.com/tgenlab/tgen/modelerr"
	"github.com/tgenlab/tgen/tree"
)

// DefaultMaxTreeSize is §6.1's "dropped silently" threshold.
const DefaultMaxTreeSize = 30000

const elementSchemaJSON = `{
	"type": "object",
	"properties": {
		"type": {"type": "string"},
		"value": {"type": ["string", "number"]},
		"children": {
			"type": "array",
			"items": {"type": "integer", "minimum": 0}
		},
		"id": {"type": "integer", "minimum": 0}
	},
	"required": ["type"],
	"additionalProperties": false
}`

var elementSchema = mustCompile()

func mustCompile() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("ast-element.json", mustUnmarshal(elementSchemaJSON)); err != nil {
		panic(err)
	}
	sch, err := c.Compile("ast-element.json")
	if err != nil {
		panic(err)
	}
	return sch
}

func mustUnmarshal(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		panic(err)
	}
	return v
}

// LoadResult is one decoded tree plus whether it was dropped for exceeding
// maxTreeSize.
type LoadResult struct {
	Store   *tree.Store
	Dropped bool
}

// Load decodes a single §6.1 AST JSON array from r and validates, parses,
// and builds a tree.Store from it. maxTreeSize <= 0 means
// DefaultMaxTreeSize. String type/value fields are NFC-normalized before
// interning.
func Load(r io.Reader, ss *intern.Interner, maxTreeSize int) (LoadResult, error) {
	if maxTreeSize <= 0 {
		maxTreeSize = DefaultMaxTreeSize
	}
	var raw []json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return LoadResult{}, &modelerr.ParseError{Msg: "decoding AST array: " + err.Error()}
	}
	return build(raw, ss, maxTreeSize)
}

// LoadAll reads newline-delimited §6.1 AST JSON arrays from r (one tree per
// line, the corpus.Loader's record shape), calling each with emit. emit
// returning a non-nil error stops iteration and is propagated.
// maxTreeSize <= 0 means DefaultMaxTreeSize, as for Load.
func LoadAll(r io.Reader, ss *intern.Interner, maxTreeSize int, emit func(LoadResult) error) error {
	if maxTreeSize <= 0 {
		maxTreeSize = DefaultMaxTreeSize
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var raw []json.RawMessage
		if err := json.Unmarshal(line, &raw); err != nil {
			return &modelerr.ParseError{Msg: "decoding AST line: " + err.Error()}
		}
		result, err := build(raw, ss, maxTreeSize)
		if err != nil {
			return err
		}
		if err := emit(result); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return &modelerr.IoError{Err: err}
	}
	return nil
}

func build(raw []json.RawMessage, ss *intern.Interner, maxTreeSize int) (LoadResult, error) {
	nodes := make([]tree.ParsedNode, 0, len(raw))
	for i, elem := range raw {
		var sentinel int
		if err := json.Unmarshal(elem, &sentinel); err == nil {
			// Tolerated trailing-0 sentinel (§6.1); stop decoding here.
			break
		}

		var inst any
		if err := json.Unmarshal(elem, &inst); err != nil {
			return LoadResult{}, &modelerr.ParseError{Offset: i, Msg: "decoding element: " + err.Error()}
		}
		if err := elementSchema.Validate(inst); err != nil {
			return LoadResult{}, &modelerr.ParseError{Offset: i, Msg: "AST element " + err.Error()}
		}

		var elemView struct {
			Type     string          `json:"type"`
			Value    json.RawMessage `json:"value"`
			Children []int           `json:"children"`
			ID       *int            `json:"id"`
		}
		if err := json.Unmarshal(elem, &elemView); err != nil {
			return LoadResult{}, &modelerr.ParseError{Offset: i, Msg: "decoding element: " + err.Error()}
		}
		if elemView.ID != nil && *elemView.ID != i {
			return LoadResult{}, &modelerr.ParseError{Offset: i, Token: strconv.Itoa(*elemView.ID),
				Msg: "id does not match element index"}
		}

		pn := tree.ParsedNode{Type: normalize(elemView.Type), Children: elemView.Children}
		if len(elemView.Value) > 0 {
			v, err := valueToString(elemView.Value)
			if err != nil {
				return LoadResult{}, &modelerr.ParseError{Offset: i, Msg: "decoding value: " + err.Error()}
			}
			pn.Value = &v
		}
		nodes = append(nodes, pn)
	}

	if len(nodes) > maxTreeSize {
		return LoadResult{Dropped: true}, nil
	}

	store, err := tree.Parse(nodes, ss)
	if err != nil {
		return LoadResult{}, err
	}
	return LoadResult{Store: store}, nil
}

func valueToString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return normalize(s), nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return "", fmt.Errorf("value is neither string nor number: %s", raw)
	}
	return strconv.FormatFloat(f, 'g', -1, 64), nil
}

func normalize(s string) string {
	return norm.NFC.String(s)
}
