package htmldom

import (
	"fmt"
	"regexp"
	"strings"
)

var styleNameRe = regexp.MustCompile(`^(--[A-Za-z0-9_-]+|-?[A-Za-z][A-Za-z0-9-]*)$`)

type declaration struct {
	name, value string
}

// declarations parses the inline style attribute.
func (e *Element) declarations() []declaration {
	raw, _ := e.GetAttribute("style")
	var out []declaration
	for _, part := range strings.Split(raw, ";") {
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, declaration{name: name, value: strings.TrimSpace(value)})
	}
	return out
}

func (e *Element) writeDeclarations(decls []declaration) {
	if len(decls) == 0 {
		e.RemoveAttribute("style")
		return
	}
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.name + ": " + d.value
	}
	// Names are validated on write, so the attribute is always accepted.
	_ = e.SetAttribute("style", strings.Join(parts, "; "))
}

// StyleProperty returns the value of one inline declaration.
func (e *Element) StyleProperty(name string) (string, bool) {
	for _, d := range e.declarations() {
		if d.name == name {
			return d.value, true
		}
	}
	return "", false
}

// SetStyleProperty sets one inline declaration, keeping the order of the
// others.
func (e *Element) SetStyleProperty(name, value string) error {
	if !styleNameRe.MatchString(name) {
		return fmt.Errorf("htmldom: invalid style property %q", name)
	}
	if strings.ContainsAny(value, ";{}<>") {
		return fmt.Errorf("htmldom: invalid value %q for style property %q", value, name)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		e.RemoveStyleProperty(name)
		return nil
	}
	decls := e.declarations()
	for i := range decls {
		if decls[i].name == name {
			decls[i].value = value
			e.writeDeclarations(decls)
			return nil
		}
	}
	e.writeDeclarations(append(decls, declaration{name: name, value: value}))
	return nil
}

// RemoveStyleProperty drops one inline declaration.
func (e *Element) RemoveStyleProperty(name string) {
	decls := e.declarations()
	for i, d := range decls {
		if d.name == name {
			e.writeDeclarations(append(decls[:i], decls[i+1:]...))
			return
		}
	}
}
