// Package input defines the namespace-tagged tokens that every input source
// is reduced to before it reaches an emulation receiver.
package input

import (
	"fmt"
	"strings"
)

// Namespace is the vocabulary an Input belongs to.
type Namespace int

const (
	SkinStandard Namespace = iota
	SkinDirectional
	SkinTouchAxis
	PhysicalStandard
	PhysicalDirectional
	Keyboard
	Core
)

var namespaceNames = map[Namespace]string{
	SkinStandard:        "skin",
	SkinDirectional:     "skin_directional",
	SkinTouchAxis:       "skin_touch",
	PhysicalStandard:    "physical",
	PhysicalDirectional: "physical_directional",
	Keyboard:            "keyboard",
	Core:                "core",
}

func (n Namespace) String() string {
	if s, ok := namespaceNames[n]; ok {
		return s
	}
	return fmt.Sprintf("namespace(%d)", int(n))
}

// ParseNamespace is the inverse of Namespace.String.
func ParseNamespace(s string) (Namespace, bool) {
	for ns, name := range namespaceNames {
		if name == s {
			return ns, true
		}
	}
	return 0, false
}

// IsSkin reports whether the namespace belongs to a virtual control surface.
func (n Namespace) IsSkin() bool {
	return n == SkinStandard || n == SkinDirectional || n == SkinTouchAxis
}

// IsPhysical reports whether the namespace belongs to a physical controller.
func (n Namespace) IsPhysical() bool {
	return n == PhysicalStandard || n == PhysicalDirectional
}

// Reserved tokens with special routing rules.
const (
	Menu         = "menu"
	Flex         = "flex"
	TouchScreenX = "touchScreenX"
	TouchScreenY = "touchScreenY"
)

// Key identifies an Input for equality and hashing.
type Key struct {
	Name      string
	Namespace Namespace
}

func (k Key) String() string {
	return k.Namespace.String() + ":" + k.Name
}

// Input is an immutable semantic token. Two inputs are equal when their
// names and namespaces are equal; code and continuity are payload.
type Input struct {
	name       string
	code       int
	hasCode    bool
	namespace  Namespace
	continuous bool
}

// New returns an input with no integer code.
func New(name string, ns Namespace) Input {
	return Input{name: name, namespace: ns}
}

// WithCode returns a copy carrying an integer code.
func (i Input) WithCode(code int) Input {
	i.code = code
	i.hasCode = true
	return i
}

// Continuous returns a copy with the continuous flag set.
func (i Input) Continuous() Input {
	i.continuous = true
	return i
}

// InNamespace returns a copy moved to another namespace.
func (i Input) InNamespace(ns Namespace) Input {
	i.namespace = ns
	return i
}

func (i Input) Name() string           { return i.name }
func (i Input) Namespace() Namespace   { return i.namespace }
func (i Input) IsContinuous() bool     { return i.continuous }
func (i Input) Key() Key               { return Key{Name: i.name, Namespace: i.namespace} }
func (i Input) IsZero() bool           { return i.name == "" }
func (i Input) Equal(other Input) bool { return i.Key() == other.Key() }

// Code returns the integer code, if any.
func (i Input) Code() (int, bool) {
	return i.code, i.hasCode
}

// IsMenu reports whether the input is the reserved menu token.
func (i Input) IsMenu() bool {
	return strings.EqualFold(i.name, Menu)
}

// IsTouchAxis reports whether the input is one of the reserved touch-screen
// axis tokens.
func (i Input) IsTouchAxis() bool {
	return strings.Contains(strings.ToLower(i.name), strings.ToLower(TouchScreenX)) ||
		strings.Contains(strings.ToLower(i.name), strings.ToLower(TouchScreenY))
}

func (i Input) String() string {
	if i.hasCode {
		return fmt.Sprintf("%s(%d)", i.Key(), i.code)
	}
	return i.Key().String()
}
