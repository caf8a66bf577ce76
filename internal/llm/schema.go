package llm

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiled caches compiled schemas by Schema.Name.
var compiled = struct {
	sync.Mutex
	byName map[string]*jsonschema.Schema
}{byName: make(map[string]*jsonschema.Schema)}

// validate checks raw against s. A nil schema accepts anything.
func (s *Schema) validate(raw json.RawMessage) error {
	if s == nil {
		return nil
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return invalid(raw, fmt.Errorf("output is not JSON: %w", err))
	}
	sch, err := s.compile()
	if err != nil {
		return invalid(raw, err)
	}
	if err := sch.Validate(doc); err != nil {
		return invalid(raw, fmt.Errorf("output violates schema %q: %w", s.Name, err))
	}
	return nil
}

func (s *Schema) compile() (*jsonschema.Schema, error) {
	compiled.Lock()
	defer compiled.Unlock()
	if sch, ok := compiled.byName[s.Name]; ok {
		return sch, nil
	}

	// The compiler wants plain decoded JSON, not Go maps with typed slices.
	b, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("schema %q: %w", s.Name, err)
	}
	var def any
	if err := json.Unmarshal(b, &def); err != nil {
		return nil, fmt.Errorf("schema %q: %w", s.Name, err)
	}

	url := "mem://schemas/" + s.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("schema %q: %w", s.Name, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema %q: %w", s.Name, err)
	}
	compiled.byName[s.Name] = sch
	return sch, nil
}
