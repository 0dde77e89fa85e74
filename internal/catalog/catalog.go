// Package catalog models the externally supplied set of known entities
// (tables or collections) and their field names. Names keep their original
// casing - downstream stores may be case-sensitive on identifiers - while
// lookups are case-insensitive.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entity is one table or collection with its ordered field names.
type Entity struct {
	Name   string   `yaml:"name" json:"name"`
	Fields []string `yaml:"fields" json:"fields"`
}

// HasField reports whether the entity has a field matching name,
// case-insensitively.
func (e Entity) HasField(name string) bool {
	for _, f := range e.Fields {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

// Snapshot is a point-in-time catalog. It is immutable once built; a
// refreshed catalog is a new Snapshot.
type Snapshot struct {
	Entities []Entity `yaml:"entities" json:"entities"`
}

// New builds a snapshot from entities, preserving their order.
func New(entities ...Entity) *Snapshot {
	return &Snapshot{Entities: entities}
}

// Resolve finds the entity matching name case-insensitively. The returned
// entity carries the catalog's original casing.
func (s *Snapshot) Resolve(name string) (Entity, bool) {
	if s == nil {
		return Entity{}, false
	}
	for _, e := range s.Entities {
		if strings.EqualFold(e.Name, name) {
			return e, true
		}
	}
	return Entity{}, false
}

// Names returns the entity names in catalog order, for prompting the user
// when a target cannot be resolved.
func (s *Snapshot) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.Entities))
	for i, e := range s.Entities {
		names[i] = e.Name
	}
	return names
}

// Empty reports whether the snapshot has no entities.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Entities) == 0
}

// LoadFile reads a snapshot from a YAML file of the form:
//
//	entities:
//	  - name: Orders
//	    fields: [OrderID, Status, TotalAmount]
func LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &s, nil
}
