// catalog maps decoded command words to symbolic button names. It is
// deliberately decoupled from the decoder: a Command decodes to the same
// value whether or not anyone knows what button it was.
package catalog

import "golang.org/x/exp/slices"

// Button is one known command word on a remote.
type Button struct {
	Value uint64
	Name  string
}

// Catalog is the button table for one remote-control unit.
type Catalog struct {
	Brand    string
	Model    string
	Protocol string // ircore spec name this remote speaks
	byValue  map[uint64]string
}

// New creates an empty catalog for a remote.
func New(brand, model, protocol string) *Catalog {
	return &Catalog{
		Brand:    brand,
		Model:    model,
		Protocol: protocol,
		byValue:  map[uint64]string{},
	}
}

// Add records (or renames) a button.
func (c *Catalog) Add(value uint64, name string) {
	c.byValue[value] = name
}

// Lookup resolves a command word to its button name.
func (c *Catalog) Lookup(value uint64) (string, bool) {
	name, ok := c.byValue[value]
	return name, ok
}

func (c *Catalog) Len() int { return len(c.byValue) }

// Buttons returns the table ordered by command word.
func (c *Catalog) Buttons() []Button {
	out := make([]Button, 0, len(c.byValue))
	for v, n := range c.byValue {
		out = append(out, Button{Value: v, Name: n})
	}
	slices.SortFunc(out, func(a, b Button) int {
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		default:
			return 0
		}
	})
	return out
}

func build(brand, model, protocol string, buttons []Button) *Catalog {
	c := New(brand, model, protocol)
	for _, b := range buttons {
		c.Add(b.Value, b.Name)
	}
	return c
}

// ByProtocol returns the built-in catalog for a protocol spec name.
func ByProtocol(protocol string) (*Catalog, bool) {
	for _, c := range []*Catalog{MemorexMCR5221, SamsungBN5900673A} {
		if c.Protocol == protocol {
			return c, true
		}
	}
	return nil, false
}
