package datatype

// Hash maps field names to string values
type Hash struct {
	fields map[string]string
}

// NewHash creates an empty hash
func NewHash() *Hash {
	return &Hash{fields: make(map[string]string)}
}

// Len returns the number of fields
func (h *Hash) Len() int {
	return len(h.fields)
}

// Set upserts all fields. Returns the number of fields that were newly created
func (h *Hash) Set(fields map[string]string) int {
	added := 0
	for name, value := range fields {
		if _, ok := h.fields[name]; !ok {
			added++
		}
		h.fields[name] = value
	}
	return added
}

// Get returns the value of a single field
func (h *Hash) Get(name string) (string, bool) {
	v, ok := h.fields[name]
	return v, ok
}

// Exists reports whether the field is present
func (h *Hash) Exists(name string) bool {
	_, ok := h.fields[name]
	return ok
}

// GetAll returns a copy of all fields
func (h *Hash) GetAll() map[string]string {
	out := make(map[string]string, len(h.fields))
	for k, v := range h.fields {
		out[k] = v
	}
	return out
}

// Delete removes the given fields and returns how many existed
func (h *Hash) Delete(names ...string) int {
	removed := 0
	for _, name := range names {
		if _, ok := h.fields[name]; ok {
			delete(h.fields, name)
			removed++
		}
	}
	return removed
}

// Keys returns all field names
func (h *Hash) Keys() []string {
	out := make([]string, 0, len(h.fields))
	for k := range h.fields {
		out = append(out, k)
	}
	return out
}

// Values returns all field values
func (h *Hash) Values() []string {
	out := make([]string, 0, len(h.fields))
	for _, v := range h.fields {
		out = append(out, v)
	}
	return out
}
