package main

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/linqcheck"
)

func init() {
	// Deterministic output regardless of terminal detection.
	color.NoColor = true
}

func sampleFindings() []linqcheck.Finding {
	return []linqcheck.Finding{
		{
			RuleID:    "LC015",
			Severity:  "info",
			Message:   "'Skip' without a preceding ordering operator yields store-defined, unstable results",
			File:      "src/Shop.cs",
			Span:      linqcheck.Span{Start: 214, End: 222},
			StartLine: 12,
			StartCol:  30,
			EndLine:   12,
			EndCol:    38,
		},
		{
			RuleID:    "LC010",
			Severity:  "warning",
			Message:   "'SaveChanges' inside a loop commits once per iteration; move the commit after the loop",
			File:      "src/Import.cs",
			Span:      linqcheck.Span{Start: 390, End: 406},
			StartLine: 21,
			StartCol:  13,
			EndLine:   21,
			EndCol:    29,
		},
	}
}

func TestWriteFindingsText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFindings(&buf, "text", sampleFindings()))

	g := goldie.New(t)
	g.Assert(t, "findings_text", buf.Bytes())
}

func TestWriteFindingsTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFindings(&buf, "text", nil))
	assert.Equal(t, "no issues found\n", buf.String())
}

func TestWriteFindingsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFindings(&buf, "json", sampleFindings()))

	g := goldie.New(t)
	g.Assert(t, "findings_json", buf.Bytes())
}

func TestWriteFindingsJSONEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFindings(&buf, "json", nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteRulesTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRules(&buf, linqcheck.Catalog(), linqcheck.HasFix))

	g := goldie.New(t)
	g.Assert(t, "rules_table", buf.Bytes())
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, validateFormat("text"))
	assert.NoError(t, validateFormat("json"))
	assert.Error(t, validateFormat("yaml"))
}

func TestFilterRules(t *testing.T) {
	findings := sampleFindings()
	assert.Len(t, filterRules(findings, nil), 2)

	only := filterRules(findings, []string{"LC010"})
	require.Len(t, only, 1)
	assert.Equal(t, "LC010", only[0].RuleID)
}
