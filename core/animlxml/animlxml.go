// Package animlxml adapts AnIML XML files to the structured element tree
// the document builder consumes. It is the I/O boundary the core model
// stays free of: XML parsing goes through xmlquery (which uses Go's
// encoding/xml internally and inherits its security properties), and the
// base64 payload of encoded value sets is recovered here so the core only
// ever sees raw byte buffers.
package animlxml

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/instrumatics/animl-go/core/animl"
	"github.com/instrumatics/animl-go/core/element"
	errs "github.com/instrumatics/animl-go/core/errors"
)

// Source is a parsed AnIML XML file, retaining the raw node tree for
// XPath queries alongside conversion to the boundary element form.
type Source struct {
	root *xmlquery.Node
}

// Open parses XML from r and returns a Source.
func Open(r io.Reader) (*Source, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, errs.NewParse("XML", "", err.Error())
	}
	return &Source{root: root}, nil
}

// OpenBytes parses XML from a byte slice.
func OpenBytes(data []byte) (*Source, error) {
	return Open(bytes.NewReader(data))
}

// Tree converts the source to the boundary element tree rooted at the
// document element.
func (s *Source) Tree() (*element.Element, error) {
	var docEl *xmlquery.Node
	for child := s.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			docEl = child
			break
		}
	}
	if docEl == nil {
		return nil, errs.NewParse("XML", "", "no document element")
	}
	return convert(docEl)
}

// XPath executes an XPath query against the raw node tree and returns the
// serialized form of each match.
func (s *Source) XPath(expr string) ([]string, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}
	nodes, err := xmlquery.QueryAll(s.root, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath query failed: %w", err)
	}
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.OutputXML(true)
	}
	return out, nil
}

// convert maps one element node, depth first.
func convert(n *xmlquery.Node) (*element.Element, error) {
	el := element.New(n.Data)
	for _, attr := range n.Attr {
		// Namespace declarations are parser concerns, not document fields.
		if attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns" {
			continue
		}
		el.WithAttr(attr.Name.Local, attr.Value)
	}

	var text strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case xmlquery.ElementNode:
			sub, err := convert(child)
			if err != nil {
				return nil, err
			}
			el.Append(sub)
		case xmlquery.TextNode, xmlquery.CharDataNode:
			text.WriteString(child.Data)
		}
	}
	el.Text = strings.TrimSpace(text.String())

	// Encoded value blocks carry base64 text; the core expects the raw
	// little-endian buffer instead.
	if el.Name == "EncodedValueSet" && el.Text != "" {
		payload, err := decodeBase64(el.Text)
		if err != nil {
			return nil, errs.NewParse("base64", "", fmt.Sprintf("EncodedValueSet payload: %v", err))
		}
		el.Payload = payload
		el.Text = ""
	}
	return el, nil
}

// decodeBase64 decodes standard base64, tolerating embedded whitespace the
// way XML pretty-printers emit it.
func decodeBase64(s string) ([]byte, error) {
	compact := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
	return base64.StdEncoding.DecodeString(compact)
}

// Load parses AnIML XML from r, builds the document graph, and resolves
// its soft references. Validation diagnostics are returned as data; the
// error return covers XML-level failures only.
func Load(r io.Reader) (*animl.Document, []error, error) {
	src, err := Open(r)
	if err != nil {
		return nil, nil, err
	}
	tree, err := src.Tree()
	if err != nil {
		return nil, nil, err
	}
	doc, diags := animl.Build(tree)
	if doc != nil {
		diags = append(diags, animl.Resolve(doc)...)
	}
	return doc, diags, nil
}

// LoadBytes is Load over an in-memory document.
func LoadBytes(data []byte) (*animl.Document, []error, error) {
	return Load(bytes.NewReader(data))
}
