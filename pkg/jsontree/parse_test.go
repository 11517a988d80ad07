package jsontree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		input    string
		expected Value
	}{
		{input: `"hello"`, expected: String("hello")},
		{input: `-12.5e3`, expected: Number("-12.5e3")},
		{input: `true`, expected: Bool(true)},
		{input: `null`, expected: Null{}},
		{input: `[]`, expected: Array{}},
		{input: `{}`, expected: Object{}},
		{
			input: `[["com.example.app", null, 4.5], {"z": "last", "a": [false]}]`,
			expected: Array{
				Array{String("com.example.app"), Null{}, Number("4.5")},
				Object{
					{Key: "z", Value: String("last")},
					{Key: "a", Value: Array{Bool(false)}},
				},
			},
		},
		{input: `"esc\"aped é"`, expected: String("esc\"aped é")},
	}

	for _, test := range testCases {
		value, err := Parse(test.input)
		require.NoError(t, err, test.input)
		diff := cmp.Diff(test.expected, value)
		if diff != "" {
			t.Fatal(test.input, diff)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, input := range []string{
		``,
		`[1, 2`,
		`{key: "unquoted"}`,
		`[1] trailing`,
		`'single'`,
	} {
		value, err := Parse(input)
		require.ErrorIs(t, err, ErrSyntax, input)
		require.Nil(t, value)
	}
}

func TestStrings(t *testing.T) {
	value, err := Parse(`[1, "a", ["b", {"k": "c", "n": null}], "d", true]`)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c", "d"}, Strings(value))
}

func TestObjectGet(t *testing.T) {
	value, err := Parse(`{"a": 1, "b": "two"}`)
	require.NoError(t, err)

	obj, ok := value.(Object)
	require.True(t, ok)

	b, ok := obj.Get("b")
	require.True(t, ok)
	require.Equal(t, String("two"), b)

	_, ok = obj.Get("missing")
	require.False(t, ok)
}

func TestArrayIndex(t *testing.T) {
	arr := Array{String("a"), Null{}}

	v, ok := arr.Index(1)
	require.True(t, ok)
	require.Equal(t, Null{}, v)

	_, ok = arr.Index(2)
	require.False(t, ok)
	_, ok = arr.Index(-1)
	require.False(t, ok)
}
