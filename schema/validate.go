package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Document is an embedded schema, compiled on first use.
type Document struct {
	name string
	root string
	raw  *[]byte

	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

var (
	// Config validates sockscope.yaml documents.
	Config = &Document{name: "config.v1.json", root: "config", raw: &ConfigV1Schema}
	// Report validates scanner output.
	Report = &Document{name: "report.v1.json", root: "report", raw: &ReportV1Schema}
)

// Problem is one schema violation at a dotted instance path such as
// "listeners[2].port".
type Problem struct {
	Path    string
	Message string
}

// ValidationError lists every violation found in a document.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("schema validation failed:")
	for _, p := range e.Problems {
		fmt.Fprintf(&b, "\n- %s: %s", p.Path, p.Message)
	}
	return b.String()
}

func (d *Document) schema() (*jsonschema.Schema, error) {
	d.once.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(d.name, bytes.NewReader(*d.raw)); err != nil {
			d.err = fmt.Errorf("add schema %s: %w", d.name, err)
			return
		}
		if d.compiled, d.err = compiler.Compile(d.name); d.err != nil {
			d.err = fmt.Errorf("compile schema %s: %w", d.name, d.err)
		}
	})
	return d.compiled, d.err
}

// Validate checks instance against the schema. instance may come from a YAML
// or JSON decoder; it is re-encoded as JSON numbers before validation.
func (d *Document) Validate(instance any) error {
	compiled, err := d.schema()
	if err != nil {
		return err
	}
	doc, err := asJSON(instance)
	if err != nil {
		return fmt.Errorf("prepare %s for validation: %w", d.root, err)
	}
	err = compiled.Validate(doc)
	if err == nil {
		return nil
	}
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	out := &ValidationError{}
	d.collect(verr, out)
	return out
}

// collect keeps the leaves of the cause tree; inner nodes only say that a
// subschema failed.
func (d *Document) collect(err *jsonschema.ValidationError, out *ValidationError) {
	if len(err.Causes) == 0 {
		out.Problems = append(out.Problems, Problem{
			Path:    d.path(err.InstanceLocation),
			Message: err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		d.collect(cause, out)
	}
}

func (d *Document) path(pointer string) string {
	var b strings.Builder
	for _, token := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		if token == "" {
			continue
		}
		token = strings.NewReplacer("~1", "/", "~0", "~").Replace(token)
		if _, err := strconv.Atoi(token); err == nil {
			b.WriteString("[" + token + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(token)
	}
	if b.Len() == 0 {
		return d.root
	}
	return b.String()
}

func asJSON(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
