package playstore

import (
	"appdeck/pkg/htmlutil"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrPayloadNotFound is returned when no callback invocation on the page carries
// the catalog payload.
var ErrPayloadNotFound = errors.New("catalog payload not found")

// Extractor isolates the catalog payload embedded in a page as the argument of a
// javascript callback invocation, ex.
//
//	AF_initDataCallback({key: 'ds:3', hash: '7', data:[...], sideChannel: {}});
//
// The argument is not JSON (unquoted keys, single quotes) so everything here is
// done with text patterns, only the `data` value is expected to be JSON.
type Extractor struct {
	callback   string
	marker     string
	invocation *regexp.Regexp
}

var dataFieldRegex = regexp.MustCompile(`(?s)\bdata\s*:\s*(.*?)\s*,\s*sideChannel\s*:`)

// NewExtractor creates an extractor matching invocations of the function `callback`
// whose arguments contain `marker`.
func NewExtractor(callback, marker string) (Extractor, error) {
	if callback == "" {
		return Extractor{}, fmt.Errorf("new extractor: callback name is empty")
	}
	if marker == "" {
		return Extractor{}, fmt.Errorf("new extractor: marker is empty")
	}
	invocation, err := regexp.Compile(`(?s)^` + regexp.QuoteMeta(callback) + `\((.*)\);`)
	if err != nil {
		return Extractor{}, fmt.Errorf("new extractor: %w", err)
	}
	return Extractor{
		callback:   callback,
		marker:     marker,
		invocation: invocation,
	}, nil
}

// Extract returns the raw text bound to `data` inside the first invocation whose
// arguments contain the marker. The second return value is false if no
// invocation satisfies both.
func (e Extractor) Extract(page string) (string, bool) {
	for _, unit := range e.scanUnits(page) {
		for _, args := range e.invocations(unit) {
			if !strings.Contains(args, e.marker) {
				continue
			}
			groups := dataFieldRegex.FindStringSubmatch(args)
			if len(groups) < 2 {
				continue
			}
			return groups[1], true
		}
	}
	return "", false
}

// scanUnits returns the text of every script on the page, or the page itself when
// it has no scripts.
func (e Extractor) scanUnits(page string) []string {
	scripts, err := htmlutil.ScriptTexts(page)
	if err != nil || len(scripts) == 0 {
		return []string{page}
	}
	return scripts
}

// invocations returns the argument blobs of every invocation of the callback in
// unit. The unit is split at each call site first so that the greedy match never
// runs from one invocation into the next.
func (e Extractor) invocations(unit string) []string {
	start := e.callback + "("

	var blobs []string
	for {
		idx := strings.Index(unit, start)
		if idx < 0 {
			return blobs
		}
		unit = unit[idx:]

		segment := unit
		next := strings.Index(unit[len(start):], start)
		if next >= 0 {
			segment = unit[:len(start)+next]
		}

		groups := e.invocation.FindStringSubmatch(segment)
		if len(groups) >= 2 {
			blobs = append(blobs, groups[1])
		}

		if next < 0 {
			return blobs
		}
		unit = unit[len(start)+next:]
	}
}
