package playstore

import (
	"appdeck/pkg/jsontree"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const testDefaultIcon = "https://default/icon.png"

func reconstructJson(t testing.TB, payload string) []AppRecord {
	tree, err := jsontree.Parse(payload)
	if err != nil {
		t.Fatal(err)
	}
	return NewReconstructor(DefaultReconstructOptions(testDefaultIcon)).Reconstruct(tree)
}

func TestReconstruct(t *testing.T) {
	testCases := []struct {
		name     string
		payload  string
		expected []AppRecord
	}{
		{
			name:    "positional name",
			payload: `["com.example.app", "https://icon/x.png", null, "Example App"]`,
			expected: []AppRecord{{
				Identifier:  "com.example.app",
				IconUrl:     "https://icon/x.png",
				DisplayName: "Example App",
			}},
		},
		{
			name:    "identifier fallback",
			payload: `["com.example.app", "com.example.app"]`,
			expected: []AppRecord{{
				Identifier:  "com.example.app",
				IconUrl:     testDefaultIcon,
				DisplayName: "com.example.app",
			}},
		},
		{
			name:    "pool name when positional slot is unusable",
			payload: `["com.example.app", "12345", ["Nested Name"], "null", "https://icon/x.png"]`,
			expected: []AppRecord{{
				Identifier:  "com.example.app",
				IconUrl:     "https://icon/x.png",
				DisplayName: "Nested Name",
			}},
		},
		{
			name:    "positional name too long",
			payload: `["com.example.app", null, "Short", "` + strings.Repeat("a", 50) + `"]`,
			expected: []AppRecord{{
				Identifier:  "com.example.app",
				IconUrl:     testDefaultIcon,
				DisplayName: "Short",
			}},
		},
		{
			name:    "positional name just under the cap",
			payload: `["com.example.app", null, null, "` + strings.Repeat("b", 49) + `"]`,
			expected: []AppRecord{{
				Identifier:  "com.example.app",
				IconUrl:     testDefaultIcon,
				DisplayName: strings.Repeat("b", 49),
			}},
		},
		{
			name: "siblings and nested echoes",
			payload: `{"catalog": [
				[["com.b.app", "https://icon/b.png", null, "Bravo"]],
				[["com.a.app", "https://icon/a.png", null, "alpha"], ["com.a.app", "https://icon/a2.png", null, "Alpha Echo"]],
				"com.stray"
			]}`,
			expected: []AppRecord{
				// the outer array is itself a candidate for the first identifier it contains
				{Identifier: "com.b.app", IconUrl: "https://icon/b.png", DisplayName: "Bravo"},
				{Identifier: "com.a.app", IconUrl: "https://icon/a.png", DisplayName: "alpha"},
			},
		},
		{
			name:     "no candidates",
			payload:  `{"k": "com.outside.array", "list": [[1, 2, [true, null]], {"k": "org.example.app"}]}`,
			expected: nil,
		},
		{
			name:     "primitive root",
			payload:  `"com.example.app"`,
			expected: nil,
		},
	}

	for _, test := range testCases {
		records := reconstructJson(t, test.payload)
		diff := cmp.Diff(test.expected, records)
		if diff != "" {
			t.Fatal(test.name, diff)
		}
	}
}

func TestReconstructNameIndexIsTunable(t *testing.T) {
	tree, err := jsontree.Parse(`["com.example.app", "Positional", "Pool"]`)
	require.NoError(t, err)

	index := 1
	opts := DefaultReconstructOptions(testDefaultIcon)
	opts.NameIndex = &index
	records := NewReconstructor(opts).Reconstruct(tree)
	require.Len(t, records, 1)
	require.Equal(t, "Positional", records[0].DisplayName)

	index = -1
	records = NewReconstructor(opts).Reconstruct(tree)
	require.Len(t, records, 1)
	require.Equal(t, "Positional", records[0].DisplayName)

	index = 2
	records = NewReconstructor(opts).Reconstruct(tree)
	require.Equal(t, "Pool", records[0].DisplayName)
}

func TestReconstructZeroOptions(t *testing.T) {
	tree, err := jsontree.Parse(`{"a": ["com.example.app", 1, "Pool", "Positional"], "b": ["com.example.other", "Other"]}`)
	require.NoError(t, err)

	records := NewReconstructor(ReconstructOptions{}).Reconstruct(tree)
	require.Equal(t, []AppRecord{
		{DisplayName: "Positional", Identifier: "com.example.app", IconUrl: DefaultIconUrl},
		{DisplayName: "Other", Identifier: "com.example.other", IconUrl: DefaultIconUrl},
	}, records)

	index := 2
	records = NewReconstructor(ReconstructOptions{NameIndex: &index}).Reconstruct(tree)
	require.Equal(t, "Pool", records[0].DisplayName)
}

// randomPayload builds a nested catalog-like payload, identifiers repeat on purpose.
func randomPayload(rndm *rand.Rand, depth int) string {
	if depth == 0 || rndm.Intn(4) == 0 {
		switch rndm.Intn(6) {
		case 0:
			return fmt.Sprintf(`"com.app%d"`, rndm.Intn(8))
		case 1:
			return fmt.Sprintf(`"https://icon/%d.png"`, rndm.Intn(100))
		case 2:
			return "null"
		case 3:
			return fmt.Sprint(rndm.Intn(1000))
		case 4:
			return `""`
		default:
			return fmt.Sprintf(`"%s"`, randomString(rndm, rndm.Intn(60)))
		}
	}

	n := rndm.Intn(6)
	parts := make([]string, n)
	for i := range parts {
		parts[i] = randomPayload(rndm, depth-1)
	}
	if rndm.Intn(5) == 0 {
		for i := range parts {
			parts[i] = fmt.Sprintf(`"k%d": %s`, i, parts[i])
		}
		return "{" + strings.Join(parts, ",") + "}"
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func randomString(rndm *rand.Rand, length int) string {
	str := make([]rune, length)
	for i := range str {
		str[i] = 'a' + rune(rndm.Intn(26))
	}
	return string(str)
}

func TestReconstructProperties(t *testing.T) {
	rndm := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		payload := randomPayload(rndm, 5)
		tree, err := jsontree.Parse(payload)
		require.NoError(t, err, payload)

		reconstructor := NewReconstructor(DefaultReconstructOptions(testDefaultIcon))
		first := reconstructor.Reconstruct(tree)
		second := reconstructor.Reconstruct(tree)
		require.Equal(t, first, second, "reconstruction must be idempotent: %s", payload)

		seen := map[string]bool{}
		for _, record := range first {
			require.False(t, seen[record.Identifier], "duplicate identifier %s in %s", record.Identifier, payload)
			seen[record.Identifier] = true

			require.True(t, strings.HasPrefix(record.Identifier, DefaultIdentifierPrefix))
			require.NotEmpty(t, strings.TrimSpace(record.DisplayName))
			require.NotEmpty(t, record.IconUrl)
		}
	}
}
