// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package rendering

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitQuoted(t *testing.T) {
	tests := []struct {
		name  string
		input string
		parts []string
	}{
		{"plain", "a,b,c", []string{"a", "b", "c"}},
		{"quoted comma", `name="foo,bar",size=40`, []string{`name="foo,bar"`, "size=40"}},
		{"escaped quote", `name="foo\",bar",x=1`, []string{`name="foo\",bar"`, "x=1"}},
		{"bracketed list", `tags=["a", "b"],x=1`, []string{`tags=["a", "b"]`, "x=1"}},
		{"bracket in quotes", `name="a[b",x=1,y=2`, []string{`name="a[b"`, "x=1", "y=2"}},
		{"trailing", "a,", []string{"a", ""}},
		{"single", "a", []string{"a"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(tt *testing.T) {
			assert.Equal(tt, test.parts, splitQuoted(test.input, ','))
		})
	}
}

func TestEscapeUnquoteRoundTrip(t *testing.T) {
	tests := []string{
		"plain",
		`with "quotes"`,
		`back\slash`,
		`both "q" and \e\`,
		"",
	}
	for _, test := range tests {
		quoted := `"` + escapeQuotes(test) + `"`
		assert.Equal(t, test, unquote(quoted), "input %q", test)
	}
}

func TestParseDirective(t *testing.T) {
	item, params, err := parseDirective(
		`compute; scheme="http://schemas.ogf.org/occi/infrastructure#"; class="kind"; title="Compute, Resource"`)
	require.NoError(t, err)
	assert.Equal(t, "compute", item)
	assert.Equal(t, []parameter{
		{"scheme", "http://schemas.ogf.org/occi/infrastructure#"},
		{"class", "kind"},
		{"title", "Compute, Resource"},
	}, params)
}

func TestParseDirectiveUnquoted(t *testing.T) {
	item, params, err := parseDirective("start; scheme=http://example.com/action#; class=action")
	require.NoError(t, err)
	assert.Equal(t, "start", item)
	assert.Equal(t, []parameter{
		{"scheme", "http://example.com/action#"},
		{"class", "action"},
	}, params)
}

func TestFormatParseDirectiveRoundTrip(t *testing.T) {
	in := `network; scheme="http://x#"; title="a \"big\" net, honest"`
	item, params, err := parseDirective(in)
	require.NoError(t, err)
	out := formatDirective(item, params)
	item2, params2, err := parseDirective(out)
	require.NoError(t, err)
	assert.Equal(t, item, item2)
	assert.Equal(t, params, params2)
}

func TestFoldUnfoldShort(t *testing.T) {
	items := []string{"a=1", `b="x, y"`, "c=3"}
	values := foldField(items, MaxHeaderLength)
	require.Len(t, values, 1)
	assert.Equal(t, `a=1, b="x, y", c=3`, values[0])
	assert.Equal(t, items, unfoldField(values))
}

func TestFoldPacking(t *testing.T) {
	items := []string{"aaaa", "bbbb", "cccc"}
	values := foldField(items, 10)
	// "aaaa, bbbb" is 10 bytes; "cccc" starts a new value.
	assert.Equal(t, []string{"aaaa, bbbb", "cccc"}, values)
	assert.Equal(t, items, unfoldField(values))
}

func TestFoldOversizeItem(t *testing.T) {
	// An item over the bound is never split: header transports trim
	// leading whitespace, so a mid-item continuation would not
	// survive the trip.  It occupies a whole instance instead.
	big := "big=" + strings.Repeat("x", 25)
	items := []string{"a=1", big, "b=2"}
	values := foldField(items, 10)
	assert.Equal(t, []string{"a=1", big, "b=2"}, values)
	assert.Equal(t, items, unfoldField(values))
}

func TestUnfoldMultipleInstances(t *testing.T) {
	// Separate header instances are separate items, the same as a
	// comma join.
	assert.Equal(t, []string{"a=1", "b=2"}, unfoldField([]string{"a=1", "b=2"}))
}

func TestUnfoldListItems(t *testing.T) {
	// A bracketed list value holds its commas; the item split honors
	// the brackets.
	values := []string{`tags=["a", "b"], cores=4`}
	assert.Equal(t, []string{`tags=["a", "b"]`, "cores=4"}, unfoldField(values))
}
