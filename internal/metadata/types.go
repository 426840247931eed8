package metadata

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// DefaultRootName is the element holding all custom fields, as in the desc part of XDF stream headers.
const DefaultRootName = "desc"

const rootNode = 0
const noParent = -1

type node struct {
	name     string
	attrs    []xml.Attr
	value    string //only meaningful without children
	children []int  //indices into Document.nodes, in document order
	parent   int
}

// Document is a tree of named fields. Nodes are addressed by their index, nodes[0] is the root element.
// Detached nodes stay in the slice but are unreachable.
type Document struct {
	nodes []node
}

func NewDocument() *Document {
	return &Document{nodes: []node{{name: DefaultRootName, parent: noParent}}}
}

// Path is a dotted field name split into its segments, e.g. subject.name
type Path []string

func (p Path) String() string {
	return strings.Join(p, ".")
}

type MalformedError struct {
	Line   int
	Reason string
}

func (e *MalformedError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed metadata (line %d): %s", e.Line, e.Reason)
	}
	return "malformed metadata: " + e.Reason
}

// PathConflictError reports an attempt to turn a field holding a value into a parent or vice versa.
type PathConflictError struct {
	Path     Path
	Conflict Path //the existing field that blocks the change
	Value    string
}

func (e *PathConflictError) Error() string {
	if len(e.Conflict) == len(e.Path) {
		return fmt.Sprintf("cannot set %s: field has nested fields", e.Path)
	}
	return fmt.Sprintf("cannot set %s: %s holds the value %q", e.Path, e.Conflict, e.Value)
}

type InvalidPathError struct {
	Input  string
	Reason string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid field name %q: %s", e.Input, e.Reason)
}
