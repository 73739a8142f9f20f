package dataset

import "strconv"

// Categories maps category names to integer codes. Codes are assigned in
// order of first appearance, starting at 0.
type Categories struct {
	names []string
	codes map[string]int
}

// NewCategories creates a table pre-populated with names; names[i] gets
// code i.
func NewCategories(names ...string) *Categories {
	c := &Categories{codes: make(map[string]int)}
	for _, n := range names {
		c.Code(n)
	}
	return c
}

// Code returns the code for name, assigning the next one if name is new.
func (c *Categories) Code(name string) int {
	if c.codes == nil {
		c.codes = make(map[string]int)
	}
	if code, ok := c.codes[name]; ok {
		return code
	}
	code := len(c.names)
	c.names = append(c.names, name)
	c.codes[name] = code
	return code
}

// Name returns the name for code, or its decimal form when unknown.
func (c *Categories) Name(code int) string {
	if c != nil && code >= 0 && code < len(c.names) {
		return c.names[code]
	}
	return strconv.Itoa(code)
}

// Names returns the names in code order.
func (c *Categories) Names() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.names...)
}
