package metadata

import (
	"strings"
	"unicode"
)

const separator = "."

// ParsePath splits a dotted field name. Each segment must be usable as an XML element name.
func ParsePath(text string) (Path, error) {
	if text == "" {
		return nil, &InvalidPathError{Input: text, Reason: "empty"}
	}
	segments := strings.Split(text, separator)
	for _, segment := range segments {
		if segment == "" {
			return nil, &InvalidPathError{Input: text, Reason: "empty segment"}
		}
		for i, r := range segment {
			if unicode.IsLetter(r) || r == '_' {
				continue
			}
			if i > 0 && (unicode.IsDigit(r) || r == '-') {
				continue
			}
			return nil, &InvalidPathError{Input: text, Reason: "segment " + segment + " is not a valid element name"}
		}
	}
	return segments, nil
}

// Get yields the value of the field at the given path. Absent paths and fields with nested fields yield nothing.
func (d *Document) Get(path Path) (value string, present bool) {
	id, exists := d.lookup(path)
	if !exists || len(d.nodes[id].children) > 0 {
		return "", false
	}
	return d.nodes[id].value, true
}

// Show is Get for display purposes.
func (d *Document) Show(path Path) (value string, present bool) {
	return d.Get(path)
}

// Set assigns the value, creating missing parents. A field holding a non-empty value is never turned into a parent,
// and a field with nested fields is never overwritten. Nothing is changed if an error is returned.
func (d *Document) Set(path Path, value string) (changed bool, err error) {
	cur := rootNode
	depth := 0
	for ; depth < len(path); depth++ {
		next, exists := d.child(cur, path[depth])
		if !exists {
			break
		}
		n := &d.nodes[next]
		isTarget := depth == len(path)-1
		if isTarget && len(n.children) > 0 {
			return false, &PathConflictError{Path: path, Conflict: path}
		}
		if !isTarget && len(n.children) == 0 && n.value != "" {
			return false, &PathConflictError{Path: path, Conflict: path[:depth+1], Value: n.value}
		}
		cur = next
	}
	for ; depth < len(path); depth++ {
		cur = d.addChild(cur, path[depth])
		changed = true
	}
	if d.nodes[cur].value != value {
		d.nodes[cur].value = value
		changed = true
	}
	return changed, nil
}

// Clear removes all fields named like the last path segment below the parent found by the leading segments.
// Parents left without any nested field are removed as well, except for the root.
func (d *Document) Clear(path Path) (removed bool) {
	parent, exists := d.lookup(path[:len(path)-1])
	if !exists {
		return false
	}
	name := path[len(path)-1]
	children := d.nodes[parent].children
	kept := children[:0]
	for _, child := range children {
		if d.nodes[child].name == name {
			d.nodes[child].parent = noParent
			removed = true
			continue
		}
		kept = append(kept, child)
	}
	d.nodes[parent].children = kept
	if !removed {
		return false
	}
	for cur := parent; cur != rootNode && len(d.nodes[cur].children) == 0; {
		up := d.nodes[cur].parent
		d.detach(cur)
		cur = up
	}
	return true
}

func (d *Document) lookup(path Path) (id int, exists bool) {
	id = rootNode
	for _, segment := range path {
		if id, exists = d.child(id, segment); !exists {
			return
		}
	}
	return id, true
}

func (d *Document) child(parent int, name string) (id int, exists bool) {
	for _, candidate := range d.nodes[parent].children {
		if d.nodes[candidate].name == name {
			return candidate, true
		}
	}
	return 0, false
}

func (d *Document) addChild(parent int, name string) int {
	id := len(d.nodes)
	d.nodes = append(d.nodes, node{name: name, parent: parent})
	d.nodes[parent].children = append(d.nodes[parent].children, id)
	return id
}

func (d *Document) detach(id int) {
	parent := d.nodes[id].parent
	siblings := d.nodes[parent].children
	for i, sibling := range siblings {
		if sibling == id {
			d.nodes[parent].children = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
	d.nodes[id].parent = noParent
}
