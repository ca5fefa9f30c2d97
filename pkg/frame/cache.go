package frame

// StringCache interns categorical values so that every dictionary built
// during one construction attempt shares index assignments. The zero id is
// the first interned string; ids are dense and stable for the cache's
// lifetime. A cache is not safe for concurrent use; construction attempts
// are single-threaded and each attempt gets its own cache.
type StringCache struct {
	ids  map[string]uint32
	vals []string
}

// NewStringCache returns an empty cache.
func NewStringCache() *StringCache {
	return &StringCache{ids: make(map[string]uint32)}
}

// Intern returns the dense id for s, assigning the next free id on first
// sight.
func (c *StringCache) Intern(s string) uint32 {
	if id, ok := c.ids[s]; ok {
		return id
	}
	id := uint32(len(c.vals))
	c.ids[s] = id
	c.vals = append(c.vals, s)
	return id
}

// Len returns the number of distinct interned strings.
func (c *StringCache) Len() int { return len(c.vals) }

// Values returns the interned strings in id order. The result is a copy.
func (c *StringCache) Values() []string {
	out := make([]string, len(c.vals))
	copy(out, c.vals)
	return out
}
