package entities

import "sort"

// Capabilities records which optional imports and exports a guest module declared.
// It is populated once at engine construction and read afterwards.
type Capabilities struct {
	present map[string]bool
}

// NewCapabilities creates an empty capability table.
func NewCapabilities() *Capabilities {
	return &Capabilities{present: make(map[string]bool)}
}

// Set marks a capability as present or absent.
func (c *Capabilities) Set(name string, present bool) {
	c.present[name] = present
}

// Has reports whether the named capability is present.
// Unknown names are absent.
func (c *Capabilities) Has(name string) bool {
	return c.present[name]
}

// Known reports whether the named capability was recorded at all.
func (c *Capabilities) Known(name string) bool {
	_, ok := c.present[name]
	return ok
}

// Names returns the sorted names of all present capabilities.
func (c *Capabilities) Names() []string {
	names := make([]string, 0, len(c.present))
	for name, ok := range c.present {
		if ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Missing returns the sorted names of all recorded but absent capabilities.
func (c *Capabilities) Missing() []string {
	names := make([]string, 0)
	for name, ok := range c.present {
		if !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
