package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is a handle on one node of a Document. Writes to an element that has
// since been removed from the document are silently dropped.
type Element struct {
	doc *Document
	n   *html.Node
}

// ID returns the element id attribute.
func (e *Element) ID() string {
	v, _ := e.Attr("id")
	return v
}

// Tag returns the lower-case tag name.
func (e *Element) Tag() string {
	return e.n.Data
}

// Attached reports whether the element is still part of the document.
func (e *Element) Attached() bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.doc.attached(e.n)
}

// Attr returns an attribute value.
func (e *Element) Attr(key string) (string, bool) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return attr(e.n, key)
}

// SetAttr sets or replaces an attribute.
func (e *Element) SetAttr(key, val string) {
	e.doc.mutate(e.n, func() { setAttr(e.n, key, val) })
}

// RemoveAttr deletes an attribute if present.
func (e *Element) RemoveAttr(key string) {
	e.doc.mutate(e.n, func() { removeAttr(e.n, key) })
}

// HasClass reports whether the class list contains c.
func (e *Element) HasClass(c string) bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for _, have := range strings.Fields(classAttr(e.n)) {
		if have == c {
			return true
		}
	}
	return false
}

// AddClass adds c to the class list.
func (e *Element) AddClass(c string) {
	e.ToggleClass(c, true)
}

// RemoveClass removes c from the class list.
func (e *Element) RemoveClass(c string) {
	e.ToggleClass(c, false)
}

// ToggleClass adds c when on is true and removes it otherwise.
func (e *Element) ToggleClass(c string, on bool) {
	e.doc.mutate(e.n, func() {
		classes := strings.Fields(classAttr(e.n))
		out := classes[:0]
		for _, have := range classes {
			if have != c {
				out = append(out, have)
			}
		}
		if on {
			out = append(out, c)
		}
		if len(out) == 0 {
			removeAttr(e.n, "class")
			return
		}
		setAttr(e.n, "class", strings.Join(out, " "))
	})
}

// SetHidden toggles the "hidden" class.
func (e *Element) SetHidden(hidden bool) {
	e.ToggleClass("hidden", hidden)
}

// SetDisabled toggles the disabled attribute.
func (e *Element) SetDisabled(disabled bool) {
	e.doc.mutate(e.n, func() {
		if disabled {
			setAttr(e.n, "disabled", "")
		} else {
			removeAttr(e.n, "disabled")
		}
	})
}

// Disabled reports whether the disabled attribute is present.
func (e *Element) Disabled() bool {
	_, ok := e.Attr("disabled")
	return ok
}

// SetStyle sets one inline style property, keeping the others.
func (e *Element) SetStyle(prop, value string) {
	e.doc.mutate(e.n, func() {
		var kept []string
		style, _ := attr(e.n, "style")
		for _, decl := range strings.Split(style, ";") {
			decl = strings.TrimSpace(decl)
			if decl == "" {
				continue
			}
			name, _, _ := strings.Cut(decl, ":")
			if strings.TrimSpace(name) != prop {
				kept = append(kept, decl)
			}
		}
		kept = append(kept, prop+": "+value)
		setAttr(e.n, "style", strings.Join(kept, "; "))
	})
}

// Style returns the value of one inline style property.
func (e *Element) Style(prop string) string {
	style, _ := e.Attr("style")
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if ok && strings.TrimSpace(name) == prop {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// Text returns the concatenated text content.
func (e *Element) Text() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	var b strings.Builder
	walk(e.n, func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
	})
	return b.String()
}

// SetText replaces all children with a single text node.
func (e *Element) SetText(text string) {
	e.doc.mutate(e.n, func() {
		clearChildren(e.n)
		e.n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	})
}

// InnerHTML serialises the children.
func (e *Element) InnerHTML() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return innerHTML(e.n)
}

// SetInnerHTML replaces all children with parsed markup.
func (e *Element) SetInnerHTML(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.n)
	if err != nil {
		return err
	}
	e.doc.mutate(e.n, func() {
		clearChildren(e.n)
		for _, c := range nodes {
			e.n.AppendChild(c)
		}
	})
	return nil
}

// AppendHTML parses markup and appends it after the existing children.
func (e *Element) AppendHTML(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.n)
	if err != nil {
		return err
	}
	e.doc.mutate(e.n, func() {
		for _, c := range nodes {
			e.n.AppendChild(c)
		}
	})
	return nil
}

// Remove detaches the element from the document.
func (e *Element) Remove() {
	parent := e.n.Parent
	if parent == nil {
		return
	}
	e.doc.mutate(parent, func() { parent.RemoveChild(e.n) })
}

// ScrollIntoView records the element as the scroll target.
func (e *Element) ScrollIntoView() {
	id := e.ID()
	e.doc.mu.Lock()
	if !e.doc.attached(e.n) || id == "" {
		e.doc.mu.Unlock()
		return
	}
	e.doc.scrolled = id
	e.doc.mu.Unlock()
	e.doc.record(Patch{Kind: PatchScroll, Target: id})
}

// ElementsWithAttr returns descendants carrying the attribute.
func (e *Element) ElementsWithAttr(name string) []*Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	var out []*Element
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, func(n *html.Node) {
			if n.Type == html.ElementNode {
				if _, ok := attr(n, name); ok {
					out = append(out, &Element{doc: e.doc, n: n})
				}
			}
		})
	}
	return out
}

// Field is one successful form control: what a browser would submit.
type Field struct {
	Name  string
	Value string
}

// Fields returns the named controls below the element in document order,
// following browser form submission rules: disabled controls, buttons and
// unchecked checkboxes/radios are skipped.
func (e *Element) Fields() []Field {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	var fields []Field
	walk(e.n, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		name, ok := attr(n, "name")
		if !ok || name == "" {
			return
		}
		if _, disabled := attr(n, "disabled"); disabled {
			return
		}
		switch n.DataAtom {
		case atom.Input:
			typ, _ := attr(n, "type")
			switch strings.ToLower(typ) {
			case "submit", "button", "reset", "image", "file":
				return
			case "checkbox", "radio":
				if _, checked := attr(n, "checked"); !checked {
					return
				}
				v, ok := attr(n, "value")
				if !ok {
					v = "on"
				}
				fields = append(fields, Field{Name: name, Value: v})
				return
			}
			v, _ := attr(n, "value")
			fields = append(fields, Field{Name: name, Value: v})
		case atom.Select:
			fields = append(fields, Field{Name: name, Value: selectValue(n)})
		case atom.Textarea:
			fields = append(fields, Field{Name: name, Value: textContent(n)})
		}
	})
	return fields
}

// FieldValues returns Fields as a map; later duplicates win.
func (e *Element) FieldValues() map[string]string {
	out := make(map[string]string)
	for _, f := range e.Fields() {
		out[f.Name] = f.Value
	}
	return out
}

// SetFieldValue writes the value of the named control below the element.
// It reports whether a control with that name exists.
func (e *Element) SetFieldValue(name, value string) bool {
	e.doc.mu.Lock()
	var target *html.Node
	walk(e.n, func(n *html.Node) {
		if target == nil && n.Type == html.ElementNode {
			if v, ok := attr(n, "name"); ok && v == name {
				switch n.DataAtom {
				case atom.Input, atom.Select, atom.Textarea:
					target = n
				}
			}
		}
	})
	e.doc.mu.Unlock()
	if target == nil {
		return false
	}

	return e.doc.mutate(target, func() {
		switch target.DataAtom {
		case atom.Input:
			setAttr(target, "value", value)
		case atom.Textarea:
			clearChildren(target)
			target.AppendChild(&html.Node{Type: html.TextNode, Data: value})
		case atom.Select:
			matched := false
			walk(target, func(n *html.Node) {
				if n.DataAtom != atom.Option {
					return
				}
				if !matched && optionValue(n) == value {
					setAttr(n, "selected", "")
					matched = true
				} else {
					removeAttr(n, "selected")
				}
			})
			if !matched {
				// unknown values are kept selectable, as a browser keeps a set value
				opt := &html.Node{Type: html.ElementNode, Data: "option", DataAtom: atom.Option,
					Attr: []html.Attribute{{Key: "value", Val: value}, {Key: "selected"}}}
				opt.AppendChild(&html.Node{Type: html.TextNode, Data: value})
				target.AppendChild(opt)
			}
		}
	})
}

func selectValue(sel *html.Node) string {
	var first, selected *html.Node
	walk(sel, func(n *html.Node) {
		if n.DataAtom != atom.Option {
			return
		}
		if first == nil {
			first = n
		}
		if _, ok := attr(n, "selected"); ok {
			selected = n
		}
	})
	switch {
	case selected != nil:
		return optionValue(selected)
	case first != nil:
		return optionValue(first)
	default:
		return ""
	}
}

func optionValue(opt *html.Node) string {
	if v, ok := attr(opt, "value"); ok {
		return v
	}
	return strings.TrimSpace(textContent(opt))
}

func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return b.String()
}

func clearChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if !(a.Namespace == "" && a.Key == key) {
			out = append(out, a)
		}
	}
	n.Attr = out
}
