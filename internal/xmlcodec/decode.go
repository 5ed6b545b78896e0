package xmlcodec

import (
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	ierr "github.com/flexprice/recurly-client/internal/errors"
)

// Action is a hypermedia action link (<a name="refund" href="..." method="post"/>)
type Action struct {
	Name   string `json:"name"`
	Href   string `json:"href"`
	Method string `json:"method,omitempty"`
}

// Payload is one decoded resource document.
// Fields holds every element that carries a value, keyed by tag.
// Links holds every element carrying an href attribute, so an element
// can be present in both maps.
type Payload struct {
	Name    string
	Href    string
	Fields  map[string]*etree.Element
	Links   map[string]string
	Actions map[string]Action
}

// Has reports whether the payload carried the named field
func (p *Payload) Has(name string) bool {
	_, ok := p.Fields[name]
	return ok
}

// Decode parses a single resource document
func Decode(body []byte) (*Payload, error) {
	root, err := readRoot(body)
	if err != nil {
		return nil, err
	}
	return FromElement(root), nil
}

// DecodeList parses an array document such as <subscriptions type="array">
// into one payload per child element.
func DecodeList(body []byte) ([]*Payload, error) {
	root, err := readRoot(body)
	if err != nil {
		return nil, err
	}

	children := root.ChildElements()
	payloads := make([]*Payload, 0, len(children))
	for _, child := range children {
		payloads = append(payloads, FromElement(child))
	}
	return payloads, nil
}

// FromElement builds a payload from an already parsed element
func FromElement(el *etree.Element) *Payload {
	p := &Payload{
		Name:    el.Tag,
		Href:    el.SelectAttrValue("href", ""),
		Fields:  make(map[string]*etree.Element),
		Links:   make(map[string]string),
		Actions: make(map[string]Action),
	}

	for _, child := range el.ChildElements() {
		if child.Tag == "a" {
			name := child.SelectAttrValue("name", "")
			if name == "" {
				continue
			}
			p.Actions[name] = Action{
				Name:   name,
				Href:   child.SelectAttrValue("href", ""),
				Method: strings.ToUpper(child.SelectAttrValue("method", "")),
			}
			continue
		}

		if href := child.SelectAttrValue("href", ""); href != "" {
			p.Links[child.Tag] = href
			if len(child.ChildElements()) == 0 && strings.TrimSpace(child.Text()) == "" {
				continue
			}
		}
		p.Fields[child.Tag] = child
	}

	return p
}

func readRoot(body []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, ierr.WithError(err).
			WithHint("The billing api returned a malformed XML document").
			Mark(ierr.ErrSystem)
	}
	root := doc.Root()
	if root == nil {
		return nil, ierr.NewError("empty XML document").
			WithHint("The billing api returned an empty document").
			Mark(ierr.ErrSystem)
	}
	return root, nil
}

// IsNil reports whether el is marked nil="nil" (or nil="true")
func IsNil(el *etree.Element) bool {
	if el == nil {
		return true
	}
	v := el.SelectAttrValue("nil", "")
	return v == "nil" || v == "true"
}

// Text returns the trimmed text of el, or "" when nil
func Text(el *etree.Element) string {
	if IsNil(el) {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

// Int64 parses the element text as an integer. Nil and empty elements are 0.
func Int64(el *etree.Element) (int64, error) {
	s := Text(el)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fieldError(el, err)
	}
	return v, nil
}

// Int parses the element text as an int
func Int(el *etree.Element) (int, error) {
	v, err := Int64(el)
	return int(v), err
}

// Bool parses the element text as a boolean. Nil and empty elements are false.
func Bool(el *etree.Element) (bool, error) {
	s := Text(el)
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fieldError(el, err)
	}
	return v, nil
}

// Time parses an RFC 3339 datetime. Nil and empty elements give a nil time.
func Time(el *etree.Element) (*time.Time, error) {
	s := Text(el)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fieldError(el, err)
	}
	return &t, nil
}

func fieldError(el *etree.Element, err error) error {
	return ierr.WithError(err).
		WithHintf("Could not decode field %s", el.Tag).
		WithReportableDetails(map[string]any{"field": el.Tag, "value": el.Text()}).
		Mark(ierr.ErrSystem)
}
