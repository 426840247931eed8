package metadata

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

const indentUnit = "  "

// Decode parses the XML text of a metadata document. Empty or whitespace-only text yields an empty document.
// Whitespace between child elements is treated as formatting, the text of childless elements is kept verbatim.
// Namespace prefixes of elements and attributes are kept as written.
func Decode(text []byte) (*Document, error) {
	if len(bytes.TrimSpace(text)) == 0 {
		return NewDocument(), nil
	}
	doc := &Document{}
	decoder := xml.NewDecoder(bytes.NewReader(text))

	var open []int       //element stack
	var pending [][]byte //character data per open element
	for {
		token, err := decoder.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var syntaxErr *xml.SyntaxError
			if errors.As(err, &syntaxErr) {
				return nil, &MalformedError{Line: syntaxErr.Line, Reason: syntaxErr.Msg}
			}
			return nil, &MalformedError{Reason: err.Error()}
		}
		switch t := token.(type) {
		case xml.StartElement:
			var id int
			if len(open) == 0 {
				if len(doc.nodes) > 0 {
					return nil, &MalformedError{Line: line(decoder), Reason: "more than one root element"}
				}
				doc.nodes = append(doc.nodes, node{name: qualified(t.Name), parent: noParent})
				id = rootNode
			} else {
				id = doc.addChild(open[len(open)-1], qualified(t.Name))
			}
			doc.nodes[id].attrs = copyAttrs(t.Attr)
			open = append(open, id)
			pending = append(pending, nil)
		case xml.EndElement:
			if len(open) == 0 {
				return nil, &MalformedError{Line: line(decoder), Reason: "unexpected end element " + qualified(t.Name)}
			}
			id := open[len(open)-1]
			if name := qualified(t.Name); name != doc.nodes[id].name {
				return nil, &MalformedError{Line: line(decoder), Reason: "element " + doc.nodes[id].name + " closed by " + name}
			}
			content := string(pending[len(pending)-1])
			open, pending = open[:len(open)-1], pending[:len(pending)-1]
			blank := strings.TrimSpace(content) == ""
			switch {
			case len(doc.nodes[id].children) > 0 && !blank:
				return nil, &MalformedError{Line: line(decoder), Reason: "element " + doc.nodes[id].name + " mixes text and nested fields"}
			case id == rootNode && !blank:
				return nil, &MalformedError{Line: line(decoder), Reason: "root element " + doc.nodes[id].name + " holds text instead of fields"}
			case id != rootNode && len(doc.nodes[id].children) == 0:
				doc.nodes[id].value = content
			}
		case xml.CharData:
			if len(open) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, &MalformedError{Line: line(decoder), Reason: "text outside of root element"}
				}
				continue
			}
			pending[len(pending)-1] = append(pending[len(pending)-1], t...)
		}
		//comments, processing instructions and directives are not retained
	}
	if len(open) > 0 {
		return nil, &MalformedError{Reason: "unclosed element " + doc.nodes[open[len(open)-1]].name}
	}
	if len(doc.nodes) == 0 {
		return NewDocument(), nil
	}
	return doc, nil
}

// qualified joins prefix and local name as written, i.e. without resolving the namespace.
func qualified(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

func line(decoder *xml.Decoder) int {
	l, _ := decoder.InputPos()
	return l
}

func copyAttrs(attrs []xml.Attr) []xml.Attr {
	if len(attrs) == 0 {
		return nil
	}
	return append([]xml.Attr(nil), attrs...)
}

// Encode yields the canonical text of the document. Encoding a decoded canonical text reproduces it exactly.
func (d *Document) Encode() []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0"?>` + "\n")
	d.writeNode(&buf, rootNode, 0)
	return buf.Bytes()
}

func (d *Document) writeNode(buf *bytes.Buffer, id int, depth int) {
	n := &d.nodes[id]
	indent := strings.Repeat(indentUnit, depth)
	buf.WriteString(indent)
	buf.WriteByte('<')
	buf.WriteString(n.name)
	for _, attr := range n.attrs {
		buf.WriteByte(' ')
		buf.WriteString(qualified(attr.Name))
		buf.WriteString(`="`)
		xml.EscapeText(buf, []byte(attr.Value)) //writes to a buffer cannot fail
		buf.WriteByte('"')
	}
	buf.WriteByte('>')
	if len(n.children) > 0 {
		buf.WriteByte('\n')
		for _, child := range n.children {
			d.writeNode(buf, child, depth+1)
		}
		buf.WriteString(indent)
	} else {
		xml.EscapeText(buf, []byte(n.value))
	}
	buf.WriteString("</")
	buf.WriteString(n.name)
	buf.WriteString(">\n")
}
