package metadata

// Entry is a field holding a value, addressed by its full path.
type Entry struct {
	Path  string `json:"path" yaml:"path"`
	Value string `json:"value" yaml:"value"`
}

// RootName is the name of the element enclosing all fields.
func (d *Document) RootName() string {
	return d.nodes[rootNode].name
}

func (d *Document) IsEmpty() bool {
	return len(d.nodes[rootNode].children) == 0
}

// Entries lists all value-holding fields below the root in document order.
func (d *Document) Entries() []Entry {
	var entries []Entry
	type visit struct {
		id     int
		prefix string
	}
	stack := []visit{{id: rootNode}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		children := d.nodes[cur.id].children
		if cur.id != rootNode && len(children) == 0 {
			entries = append(entries, Entry{Path: cur.prefix, Value: d.nodes[cur.id].value})
			continue
		}
		for i := len(children) - 1; i >= 0; i-- { //reversed to pop in document order
			child := children[i]
			path := d.nodes[child].name
			if cur.id != rootNode {
				path = cur.prefix + separator + path
			}
			stack = append(stack, visit{id: child, prefix: path})
		}
	}
	return entries
}

// Extract copies the first field with the given name directly below the root into a new document whose root it becomes.
func (d *Document) Extract(name string) (sub *Document, exists bool) {
	top, exists := d.child(rootNode, name)
	if !exists {
		return nil, false
	}
	sub = &Document{}
	type pair struct{ from, parent int }
	queue := []pair{{from: top, parent: noParent}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		source := d.nodes[cur.from]
		var id int
		if cur.parent == noParent {
			sub.nodes = append(sub.nodes, node{name: source.name, parent: noParent})
			id = rootNode
		} else {
			id = sub.addChild(cur.parent, source.name)
		}
		sub.nodes[id].attrs = copyAttrs(source.attrs)
		sub.nodes[id].value = source.value
		for _, child := range source.children {
			queue = append(queue, pair{from: child, parent: id})
		}
	}
	return sub, true
}
