package jsontree

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrSyntax is returned when the input is not a single valid JSON value.
var ErrSyntax = errors.New("invalid json")

// Parse parses text into a Value. No partial tree is ever returned.
func Parse(text string) (Value, error) {
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("parse json tree: %w", ErrSyntax)
	}
	return convert(gjson.Parse(text)), nil
}

func convert(res gjson.Result) Value {
	switch res.Type {
	case gjson.String:
		return String(res.Str)
	case gjson.Number:
		return Number(res.Raw)
	case gjson.True:
		return Bool(true)
	case gjson.False:
		return Bool(false)
	case gjson.Null:
		return Null{}
	}

	if res.IsArray() {
		elements := res.Array()
		out := make(Array, len(elements))
		for i, e := range elements {
			out[i] = convert(e)
		}
		return out
	}

	out := Object{}
	res.ForEach(func(key, value gjson.Result) bool {
		out = append(out, Member{Key: key.Str, Value: convert(value)})
		return true
	})
	return out
}
