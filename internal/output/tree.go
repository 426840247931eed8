package output

import (
	"strings"

	"github.com/disiqueira/gotree/v3"
)

// VisualTree renders dotted field paths as an indented tree.
type VisualTree struct {
	tree   gotree.Tree
	groups map[string]gotree.Tree
}

func NewVisualTree(rootLabel string) VisualTree {
	return VisualTree{tree: gotree.New(rootLabel), groups: make(map[string]gotree.Tree)}
}

func (t VisualTree) getGroup(segments []string) (group gotree.Tree) {
	if len(segments) == 0 {
		return t.tree
	}
	key := strings.Join(segments, ".")
	group = t.groups[key]
	if group == nil {
		parent := t.getGroup(segments[:len(segments)-1])
		group = parent.Add(segments[len(segments)-1])
		t.groups[key] = group
	}
	return
}

// InsertField adds a leaf labelled with the last segment and the value below the groups named by the leading segments.
func (t VisualTree) InsertField(dottedPath string, value string) {
	segments := strings.Split(dottedPath, ".")
	group := t.getGroup(segments[:len(segments)-1])
	group.Add(segments[len(segments)-1] + " = " + value)
}

func (t VisualTree) Render() string {
	return t.tree.Print()
}
