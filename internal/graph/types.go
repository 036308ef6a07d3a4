package graph

import (
	"fmt"
	"strings"
	"time"
)

// DependencyType is the kind of relationship between two tasks.
type DependencyType string

const (
	Blocks     DependencyType = "blocks"
	BlockedBy  DependencyType = "blocked-by"
	RelatesTo  DependencyType = "relates-to"
	Duplicates DependencyType = "duplicates"
)

// Valid reports whether t is one of the known dependency types.
func (t DependencyType) Valid() bool {
	switch t {
	case Blocks, BlockedBy, RelatesTo, Duplicates:
		return true
	}
	return false
}

// Inverse returns the type seen from the other endpoint. Duplicates has no
// inverse.
func (t DependencyType) Inverse() (DependencyType, bool) {
	switch t {
	case Blocks:
		return BlockedBy, true
	case BlockedBy:
		return Blocks, true
	case RelatesTo:
		return RelatesTo, true
	}
	return "", false
}

// AffectsScheduling reports whether edges of this type constrain ordering.
// Only these edges take part in cycle prevention, topological sort and CPM.
func (t DependencyType) AffectsScheduling() bool {
	return t == Blocks || t == BlockedBy
}

func (t DependencyType) String() string {
	return string(t)
}

// ParseDependencyType converts a user-supplied name into a DependencyType.
func ParseDependencyType(s string) (DependencyType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "blocks":
		return Blocks, nil
	case "blocked-by", "blocked_by", "blockedby":
		return BlockedBy, nil
	case "relates-to", "relates_to", "related":
		return RelatesTo, nil
	case "duplicates":
		return Duplicates, nil
	}
	return "", fmt.Errorf("%w: %q (use blocks, blocked-by, relates-to or duplicates)", ErrInvalidType, s)
}

// Dependency is an immutable edge between two tasks.
//
// For Blocks, From must finish before To may start. For BlockedBy, From
// cannot start until To finishes.
type Dependency struct {
	ID        int64          `json:"id"`
	From      string         `json:"from_task"`
	To        string         `json:"to_task"`
	Type      DependencyType `json:"type"`
	CreatedAt time.Time      `json:"created_at"`
	CreatedBy string         `json:"created_by,omitempty"`
}

// Predecessor returns the task that must finish first. Only meaningful for
// scheduling types.
func (d Dependency) Predecessor() string {
	if d.Type == BlockedBy {
		return d.To
	}
	return d.From
}

// Successor returns the task that waits on Predecessor.
func (d Dependency) Successor() string {
	if d.Type == BlockedBy {
		return d.From
	}
	return d.To
}

func (d Dependency) String() string {
	return fmt.Sprintf("#%d %s %s %s", d.ID, d.From, d.Type, d.To)
}
