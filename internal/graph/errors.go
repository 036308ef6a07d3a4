package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCycle is matched by every *CycleError.
	ErrCycle = errors.New("dependency cycle")
	// ErrNotFound is matched by every *NotFoundError.
	ErrNotFound = errors.New("dependency not found")
	// ErrInvalidType is returned for unknown dependency kinds.
	ErrInvalidType = errors.New("invalid dependency type")
)

// CycleError rejects an edge that would close a scheduling loop. Path is the
// existing chain of tasks that, together with the proposed edge, forms the
// loop; it starts and ends at the proposed edge's endpoints.
type CycleError struct {
	From string
	To   string
	Type DependencyType
	Path []string
}

func (e *CycleError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("%s %s %s would create a dependency cycle", e.From, e.Type, e.To)
	}
	return fmt.Sprintf("%s %s %s would create a dependency cycle (existing path %s)",
		e.From, e.Type, e.To, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

// NotFoundError reports an unknown dependency id.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("dependency %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
