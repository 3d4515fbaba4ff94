// Package element defines the structured boundary form consumed by the
// AnIML document builder: one element per node, with its name, attributes
// in document order, ordered child elements, and inline text content.
// It is the output shape of an XML parser the core itself does not run;
// see core/animlxml for the adapter that produces it.
package element

// Attr is a single attribute of an element, in document order.
type Attr struct {
	Name  string
	Value string
}

// Element is one node of the boundary tree.
//
// Payload carries the raw bytes of a binary value block (the byte buffer
// recovered from base64 by the I/O layer). It is nil for all other
// elements.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []*Element
	Text     string
	Payload  []byte
}

// New creates an element with the given name.
func New(name string) *Element {
	return &Element{Name: name}
}

// WithAttr appends an attribute and returns the element for chaining.
func (e *Element) WithAttr(name, value string) *Element {
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
	return e
}

// WithText sets the inline text content and returns the element.
func (e *Element) WithText(text string) *Element {
	e.Text = text
	return e
}

// WithPayload sets the binary payload and returns the element.
func (e *Element) WithPayload(data []byte) *Element {
	e.Payload = data
	return e
}

// Append adds child elements and returns the element for chaining.
func (e *Element) Append(children ...*Element) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// Attr returns the value of the named attribute and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Child returns the first child element with the given name, or nil.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns all child elements with the given name, in order.
func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// CountNamed returns how many child elements carry the given name.
func (e *Element) CountNamed(name string) int {
	n := 0
	for _, c := range e.Children {
		if c.Name == name {
			n++
		}
	}
	return n
}
