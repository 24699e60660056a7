package rdf

import (
	"encoding/xml"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

//Attr is a named attribute of a document element.
type Attr struct {
	Name  string
	Value string
}

//Element is a node of the tree-structured document a model is persisted to.
//Attributes are kept apart from child elements, so the children of a tree node are exactly
//the feature, statistics and child node elements.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []*Element
}

//ElementMarshaler is implemented by features and statistics that can be stored in a model document.
type ElementMarshaler interface {
	MarshalElement() (*Element, error)
}

//NewElement creates an element without attributes or children.
func NewElement(name string) *Element {
	return &Element{Name: name}
}

//SetAttr replaces the value of an attribute or appends a new one.
func (e *Element) SetAttr(name, value string) *Element {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
	return e
}

//SetIntAttr stores an integer attribute.
func (e *Element) SetIntAttr(name string, value int) *Element {
	return e.SetAttr(name, strconv.Itoa(value))
}

//SetFloatAttr stores a float attribute with the shortest exact representation.
func (e *Element) SetFloatAttr(name string, value float64) *Element {
	return e.SetAttr(name, strconv.FormatFloat(value, 'g', -1, 64))
}

//Attr returns the value of an attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

//IntAttr parses an integer attribute; a missing or unparsable value is a format error.
func (e *Element) IntAttr(name string) (int, error) {
	s, ok := e.Attr(name)
	if !ok {
		return 0, formatError("element <%s> has no attribute %q", e.Name, name)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, formatError("element <%s> attribute %q: %v", e.Name, name, err)
	}
	return v, nil
}

//FloatAttr parses a float attribute; a missing or unparsable value is a format error.
func (e *Element) FloatAttr(name string) (float64, error) {
	s, ok := e.Attr(name)
	if !ok {
		return 0, formatError("element <%s> has no attribute %q", e.Name, name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, formatError("element <%s> attribute %q: %v", e.Name, name, err)
	}
	return v, nil
}

//AddChild appends a child element and returns the receiver.
func (e *Element) AddChild(child *Element) *Element {
	e.Children = append(e.Children, child)
	return e
}

//ChildByName returns the first child with the given name or nil.
func (e *Element) ChildByName(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

//MarshalXML writes the element, its attributes and its children.
func (e *Element) MarshalXML(enc *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: e.Name}}
	for _, a := range e.Attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, c := range e.Children {
		if err := c.MarshalXML(enc, xml.StartElement{}); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

//UnmarshalXML reads an element subtree. Character data is ignored.
func (e *Element) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	e.Name = start.Name.Local
	e.Attrs = e.Attrs[:0]
	for _, a := range start.Attr {
		e.Attrs = append(e.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
	}
	for {
		token, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := token.(type) {
		case xml.StartElement:
			child := &Element{}
			if err := child.UnmarshalXML(dec, t); err != nil {
				return err
			}
			e.Children = append(e.Children, child)
		case xml.EndElement:
			return nil
		}
	}
}

//WriteDocument encodes the element tree as indented XML.
func WriteDocument(w io.Writer, root *Element) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(root); err != nil {
		return errors.Wrap(err, "encode document")
	}
	_, err := io.WriteString(w, "\n")
	return err
}

//ReadDocument decodes an XML document into an element tree.
func ReadDocument(r io.Reader) (*Element, error) {
	root := &Element{}
	if err := xml.NewDecoder(r).Decode(root); err != nil {
		return nil, formatError("decode document: %v", err)
	}
	return root, nil
}
