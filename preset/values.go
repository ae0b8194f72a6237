package preset

// Entry is one key = value assignment as written in a preset file.
type Entry struct {
	Key   string
	Value string

	// Dir is the directory relative paths in Value resolve against: the
	// directory of the file that wrote the assignment.
	Dir string

	File   string
	Line   int
	Column int // column of the first value character
}

// Values is the flattened key/value state of a preset before resolution.
//
// Keys keep the position of their first assignment; a later assignment to the
// same key replaces the value (and its origin) in place. This is how a
// #reference base layer is overridden by the referencing preset.
type Values struct {
	order   []string
	entries map[string]Entry
}

// NewValues returns an empty mapping.
func NewValues() *Values {
	return &Values{entries: make(map[string]Entry)}
}

// Set assigns an entry, replacing any earlier assignment of the same key.
func (v *Values) Set(e Entry) {
	if _, ok := v.entries[e.Key]; !ok {
		v.order = append(v.order, e.Key)
	}
	v.entries[e.Key] = e
}

// Lookup returns the entry for key.
func (v *Values) Lookup(key string) (Entry, bool) {
	e, ok := v.entries[key]
	return e, ok
}

// Get returns the value for key, or "" if unset.
func (v *Values) Get(key string) string {
	return v.entries[key].Value
}

// Has reports whether key is assigned.
func (v *Values) Has(key string) bool {
	_, ok := v.entries[key]
	return ok
}

// Len returns the number of distinct keys.
func (v *Values) Len() int { return len(v.order) }

// Keys returns the keys in first-assignment order.
func (v *Values) Keys() []string {
	return append([]string(nil), v.order...)
}

// Overlay applies every entry of o on top of v, in o's order.
func (v *Values) Overlay(o *Values) {
	for _, k := range o.order {
		v.Set(o.entries[k])
	}
}
