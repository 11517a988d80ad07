// Package jsontree is a typed, dynamically shaped representation of a JSON document.
//
// A Value is exactly one of String, Number, Bool, Null, Array or Object, consumers
// are expected to type switch over it.
package jsontree

// Value is a node in a JSON document.
type Value interface {
	isValue()
}

type String string

// Number keeps the literal text of the number as it appeared in the source.
type Number string

type Bool bool

type Null struct{}

type Array []Value

// Object keeps its members in source order, lookups by key are linear.
type Object []Member

type Member struct {
	Key   string
	Value Value
}

func (String) isValue() {}
func (Number) isValue() {}
func (Bool) isValue()   {}
func (Null) isValue()   {}
func (Array) isValue()  {}
func (Object) isValue() {}

// Get returns the value of the first member with the given key.
func (o Object) Get(key string) (Value, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Index returns the element at i, it returns false when i is out of bounds.
func (a Array) Index(i int) (Value, bool) {
	if i < 0 || i >= len(a) {
		return nil, false
	}
	return a[i], true
}

// Strings returns every string leaf reachable from v, depth first, in document order.
func Strings(v Value) []string {
	var out []string
	collectStrings(v, &out)
	return out
}

func collectStrings(v Value, out *[]string) {
	switch node := v.(type) {
	case String:
		*out = append(*out, string(node))
	case Array:
		for _, child := range node {
			collectStrings(child, out)
		}
	case Object:
		for _, m := range node {
			collectStrings(m.Value, out)
		}
	case Number, Bool, Null, nil:
	}
}
