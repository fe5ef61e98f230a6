package core

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed specification.schema.json
var specificationSchemaJSON []byte

var compiledSpecSchema *jsonschema.Schema

func init() {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("specification.schema.json", bytes.NewReader(specificationSchemaJSON)); err != nil {
		panic(fmt.Sprintf("core: embedded specification schema is invalid: %v", err))
	}
	schema, err := c.Compile("specification.schema.json")
	if err != nil {
		panic(fmt.Sprintf("core: embedded specification schema failed to compile: %v", err))
	}
	compiledSpecSchema = schema
}

// LoadFile opens path and parses it as a dataset Specification.
func LoadFile(path string) (*Specification, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("core: open specification %q: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a JSON specification document from r, validates its shape
// against the embedded JSON Schema (spec §3 structural pass), then strict-
// decodes it into a Specification, rejecting unknown fields anywhere in the
// document (spec §6.1).
//
// Load performs structural validation only. Call Specification.Validate
// afterward for the semantic preflight pass (cross-references,
// generator/modifier applicability); DAG acyclicity is checked by plan.Build.
func Load(r io.Reader) (*Specification, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("core: read specification: %w", err)
	}

	var generic any
	if err := json.Unmarshal(body, &generic); err != nil {
		return nil, invalidf("specification", "", "", "malformed JSON: %v", err)
	}
	if err := compiledSpecSchema.Validate(generic); err != nil {
		return nil, invalidf("specification", "", "", "failed structural validation: %v", err)
	}

	var spec Specification
	if err := strictUnmarshal(body, &spec); err != nil {
		return nil, invalidf("specification", "", "", "failed strict decode: %v", err)
	}
	return &spec, nil
}
