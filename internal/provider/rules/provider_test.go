package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yogeshhk/MiningResume/internal/common"
	"github.com/yogeshhk/MiningResume/internal/document"
	"github.com/yogeshhk/MiningResume/internal/provider"
	"github.com/yogeshhk/MiningResume/internal/textextract"
)

const testRules = `<?xml version="1.0" encoding="UTF-8"?>
<ruleset>
  <section name="Skills">
    <header>Skills</header>
    <header>Technical Skills</header>
  </section>
  <section name="Education History">
    <header>Education</header>
  </section>
  <attribute name="Email">
    <pattern>([\w.+-]+@[\w-]+\.[\w.-]+)</pattern>
  </attribute>
  <attribute name="Phone Number">
    <pattern>(\+\d{2}[- ]\d{10})</pattern>
    <pattern>(\d{3}-\d{3}-\d{4})</pattern>
  </attribute>
  <attribute name="Skills" section="Skills" multi="true">
    <pattern>(?m)^[-*]?\s*([A-Za-z][A-Za-z0-9+#./ ]{1,40})\s*$</pattern>
  </attribute>
  <attribute name="Education History" section="Education History" multi="true">
    <pattern>(?m)^\s*((?:B|M)\.?\s?(?:Sc|Tech|S).*)\s*$</pattern>
  </attribute>
</ruleset>`

const testResume = `John Smith
john.smith@example.com
+91 9876543210

Skills
- Go
- Python
- Distributed Systems

Education
B.Tech Computer Science, 2015
M.Tech Computer Science, 2017
`

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	rs, err := ParseRuleSet([]byte(testRules))
	require.NoError(t, err)
	p, err := NewProvider(rs, nil)
	require.NoError(t, err)
	return p
}

func generate(t *testing.T, p *Provider, attribute string) *provider.Response {
	t.Helper()
	resp, err := p.Generate(context.Background(), provider.Request{
		Text:      &textextract.NormalizedText{Text: testResume, Doc: &document.Document{Filename: "resume.txt"}},
		Attribute: provider.AttributeSpec{Name: attribute},
	})
	require.NoError(t, err)
	return resp
}

func TestGenerateSingleValue(t *testing.T) {
	p := newTestProvider(t)
	resp := generate(t, p, "Email")
	require.True(t, resp.Found)
	assert.Equal(t, "john.smith@example.com", resp.Value)
}

func TestGenerateFirstMatchingPatternWins(t *testing.T) {
	p := newTestProvider(t)
	resp := generate(t, p, "Phone Number")
	require.True(t, resp.Found)
	// First pattern matches, so the fallback pattern never runs.
	assert.Equal(t, "+91 9876543210", resp.Value)
}

func TestGenerateFallsBackToLaterPattern(t *testing.T) {
	p := newTestProvider(t)
	resp, err := p.Generate(context.Background(), provider.Request{
		Text:      &textextract.NormalizedText{Text: "Call 555-123-4567 today"},
		Attribute: provider.AttributeSpec{Name: "Phone Number"},
	})
	require.NoError(t, err)
	require.True(t, resp.Found)
	assert.Equal(t, "555-123-4567", resp.Value)
}

func TestGenerateMultiValuePreservesOrder(t *testing.T) {
	p := newTestProvider(t)
	resp := generate(t, p, "Skills")
	require.True(t, resp.Found)
	assert.Equal(t, []string{"Go", "Python", "Distributed Systems"}, resp.Values)
}

func TestGenerateSectionScoping(t *testing.T) {
	p := newTestProvider(t)
	resp := generate(t, p, "Education History")
	require.True(t, resp.Found)
	assert.Equal(t, []string{
		"B.Tech Computer Science, 2015",
		"M.Tech Computer Science, 2017",
	}, resp.Values)
}

func TestGenerateSectionAbsent(t *testing.T) {
	p := newTestProvider(t)
	resp, err := p.Generate(context.Background(), provider.Request{
		Text:      &textextract.NormalizedText{Text: "no sections here\njust text"},
		Attribute: provider.AttributeSpec{Name: "Skills"},
	})
	require.NoError(t, err)
	assert.False(t, resp.Found)
	assert.Empty(t, resp.Values)
}

func TestGenerateUnconfiguredAttribute(t *testing.T) {
	p := newTestProvider(t)
	resp := generate(t, p, "Shoe Size")
	assert.False(t, resp.Found)
	assert.Empty(t, resp.Value)
}

func TestGenerateAttributeLookupIsCaseInsensitive(t *testing.T) {
	p := newTestProvider(t)
	resp := generate(t, p, "EMAIL")
	require.True(t, resp.Found)
	assert.Equal(t, "john.smith@example.com", resp.Value)
}

func TestGenerateDirectiveOverridesName(t *testing.T) {
	p := newTestProvider(t)
	resp, err := p.Generate(context.Background(), provider.Request{
		Text:      &textextract.NormalizedText{Text: testResume},
		Attribute: provider.AttributeSpec{Name: "Contact Email", Directive: "Email"},
	})
	require.NoError(t, err)
	require.True(t, resp.Found)
	assert.Equal(t, "john.smith@example.com", resp.Value)
}

func TestSegmentHeaderLinesExcludedFromBody(t *testing.T) {
	p := newTestProvider(t)
	sections := p.segment(testResume)

	require.Contains(t, sections, "Skills")
	assert.NotContains(t, sections["Skills"], "Skills")
	assert.Contains(t, sections["Skills"], "- Go")

	// Lines before the first header land in the implicit Header section.
	require.Contains(t, sections, "Header")
	assert.Contains(t, sections["Header"], "John Smith")
}

func TestSegmentLongLinesAreNotHeaders(t *testing.T) {
	p := newTestProvider(t)
	text := "Skills are what I have plenty of in this line\nGo\n"
	sections := p.segment(text)
	assert.NotContains(t, sections, "Skills")
}

func TestSegmentHeaderMatchingIgnoresCaseAndColon(t *testing.T) {
	p := newTestProvider(t)
	sections := p.segment("TECHNICAL SKILLS:\nGo\n")
	require.Contains(t, sections, "Skills")
	assert.Equal(t, []string{"Go"}, sections["Skills"])
}

func TestHealthCheck(t *testing.T) {
	p := newTestProvider(t)
	assert.True(t, p.HealthCheck(context.Background()))
}

func TestParseRuleSetRejectsEmpty(t *testing.T) {
	_, err := ParseRuleSet([]byte(`<ruleset></ruleset>`))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConfiguration)
}

func TestParseRuleSetRejectsMalformedXML(t *testing.T) {
	_, err := ParseRuleSet([]byte(`<ruleset><attribute`))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConfiguration)
}

func TestNewProviderRejectsInvalidPattern(t *testing.T) {
	rs, err := ParseRuleSet([]byte(`<ruleset><attribute name="X"><pattern>([unclosed</pattern></attribute></ruleset>`))
	require.NoError(t, err)
	_, err = NewProvider(rs, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConfiguration)
}

func TestFingerprintStableAcrossParses(t *testing.T) {
	a, err := ParseRuleSet([]byte(testRules))
	require.NoError(t, err)
	b, err := ParseRuleSet([]byte(testRules))
	require.NoError(t, err)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEmpty(t, a.Fingerprint())

	c, err := ParseRuleSet([]byte(testRules + "\n"))
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}
