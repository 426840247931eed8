package xdftag

import (
	"fmt"
	"strings"
)

type OperationKind int

const (
	SetTag OperationKind = iota
	ClearTag
	ShowTag
)

func (k OperationKind) String() string {
	switch k {
	case SetTag:
		return "set"
	case ClearTag:
		return "clear"
	case ShowTag:
		return "show"
	}
	return fmt.Sprintf("operation(%d)", int(k))
}

// Operation is a single tag edit or query. Operations are applied in the order given.
type Operation struct {
	Kind  OperationKind
	Key   string //dotted field path, e.g. subject.name
	Value string //only used by SetTag
}

func Set(key string, value string) Operation {
	return Operation{Kind: SetTag, Key: key, Value: value}
}

func Clear(key string) Operation {
	return Operation{Kind: ClearTag, Key: key}
}

func Show(key string) Operation {
	return Operation{Kind: ShowTag, Key: key}
}

// ParseAssignment splits key=value at the first equals sign, i.e. the value may contain further ones.
func ParseAssignment(assignment string) (Operation, error) {
	key, value, found := strings.Cut(assignment, "=")
	if !found {
		return Operation{}, fmt.Errorf("expected key=value, got %q", assignment)
	}
	if key == "" {
		return Operation{}, fmt.Errorf("missing key in %q", assignment)
	}
	return Set(key, value), nil
}

func (o Operation) Modifying() bool {
	return o.Kind == SetTag || o.Kind == ClearTag
}

func (o Operation) String() string {
	if o.Kind == SetTag {
		return fmt.Sprintf("set %s=%s", o.Key, o.Value)
	}
	return fmt.Sprintf("%s %s", o.Kind, o.Key)
}

// AnyModifying reports whether the file needs to be written at all.
func AnyModifying(ops []Operation) bool {
	for _, op := range ops {
		if op.Modifying() {
			return true
		}
	}
	return false
}
