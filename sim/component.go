package sim

import (
	"fmt"
	"strings"
)

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// A Component is an element that is being simulated. Components are
// registered with a platform and can be observed through hooks.
type Component interface {
	Named
	Hookable
}

// ComponentBase provides the name and the hooks that most components need.
type ComponentBase struct {
	*HookableBase

	name string
}

// NewComponentBase creates a new ComponentBase
func NewComponentBase(name string) *ComponentBase {
	NameMustBeValid(name)

	c := new(ComponentBase)
	c.HookableBase = NewHookableBase()
	c.name = name

	return c
}

// Name returns the name of the component.
func (c *ComponentBase) Name() string {
	return c.name
}

// NameMustBeValid panics if the name cannot be used to register a component.
// Names are dot-separated and each element must be non-empty and free of
// whitespace.
func NameMustBeValid(name string) {
	if name == "" {
		panic("name must not be empty")
	}

	for _, token := range strings.Split(name, ".") {
		if token == "" {
			panic(fmt.Sprintf("name %q has an empty element", name))
		}

		if strings.ContainsAny(token, " \t\n") {
			panic(fmt.Sprintf("name %q contains whitespace", name))
		}
	}
}
