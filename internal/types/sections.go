package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Section is one named group of résumé lines
type Section struct {
	Name  string   `json:"name"`
	Lines []string `json:"lines"`
}

// Sections is an ordered mapping from section name to its lines.
// Key order is first-appearance order; keys are unique.
type Sections struct {
	entries []Section
	index   map[string]int
}

// NewSections creates an empty ordered mapping
func NewSections() *Sections {
	return &Sections{index: make(map[string]int)}
}

// Open registers name with an empty line list if it is not present yet
func (s *Sections) Open(name string) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if _, ok := s.index[name]; ok {
		return
	}
	s.index[name] = len(s.entries)
	s.entries = append(s.entries, Section{Name: name, Lines: []string{}})
}

// Append adds lines to the named section, registering it if needed
func (s *Sections) Append(name string, lines ...string) {
	s.Open(name)
	i := s.index[name]
	s.entries[i].Lines = append(s.entries[i].Lines, lines...)
}

// Has reports whether the section exists
func (s *Sections) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[name]
	return ok
}

// Lines returns a copy of the named section's lines
func (s *Sections) Lines(name string) ([]string, bool) {
	if s == nil {
		return nil, false
	}
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(s.entries[i].Lines), true
}

// Names returns section names in insertion order
func (s *Sections) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.Name
	}
	return names
}

// Entries returns a deep copy of the sections in order
func (s *Sections) Entries() []Section {
	if s == nil {
		return nil
	}
	out := make([]Section, len(s.entries))
	for i, e := range s.entries {
		out[i] = Section{Name: e.Name, Lines: slices.Clone(e.Lines)}
	}
	return out
}

// Len returns the number of sections
func (s *Sections) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Equal reports whether both mappings have the same keys in the same order with identical lines
func (s *Sections) Equal(other *Sections) bool {
	if s.Len() != other.Len() {
		return false
	}
	for i := range s.Len() {
		a, b := s.entries[i], other.entries[i]
		if a.Name != b.Name || !slices.Equal(a.Lines, b.Lines) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the mapping as a JSON object whose key order matches insertion order
func (s *Sections) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		lines := e.Lines
		if lines == nil {
			lines = []string{}
		}
		val, err := json.Marshal(lines)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the key order of the input
func (s *Sections) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("sections: expected JSON object, got %v", tok)
	}

	out := NewSections()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("sections: expected string key, got %v", tok)
		}
		var lines []string
		if err := dec.Decode(&lines); err != nil {
			return fmt.Errorf("sections: decode %q: %w", name, err)
		}
		out.Open(name)
		out.Append(name, lines...)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = *out
	return nil
}
