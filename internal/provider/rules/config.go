package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/yogeshhk/MiningResume/internal/common"
)

// RuleSet is the XML rule configuration for the rule-based backend:
// section header keywords plus one pattern list per attribute.
//
//	<ruleset>
//	  <section name="Experience">
//	    <header>Experience</header>
//	    <header>Employment History</header>
//	  </section>
//	  <attribute name="Email">
//	    <pattern>[\w.+-]+@[\w-]+\.[\w.-]+</pattern>
//	  </attribute>
//	  <attribute name="Skills" section="Skills" multi="true">
//	    <pattern>(?m)^[-*•]?\s*([A-Za-z0-9+#./ ]+)$</pattern>
//	  </attribute>
//	</ruleset>
type RuleSet struct {
	XMLName    xml.Name        `xml:"ruleset"`
	Sections   []SectionRule   `xml:"section"`
	Attributes []AttributeRule `xml:"attribute"`

	fingerprint string
}

// SectionRule names a section and the header keywords that open it.
type SectionRule struct {
	Name    string   `xml:"name,attr"`
	Headers []string `xml:"header"`
}

// AttributeRule maps an attribute to ordered patterns and an optional
// section scope. Multi-valued attributes collect all matches in order.
type AttributeRule struct {
	Name     string   `xml:"name,attr"`
	Section  string   `xml:"section,attr"`
	Multi    bool     `xml:"multi,attr"`
	Patterns []string `xml:"pattern"`
}

// LoadRuleSet reads and parses the XML rule configuration.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewAppError("RULES_CONFIG",
			fmt.Sprintf("read rule config %s", path),
			fmt.Errorf("%w: %w", common.ErrConfiguration, err))
	}
	return ParseRuleSet(data)
}

// ParseRuleSet parses rule configuration bytes and computes the
// configuration fingerprint used in cache keys.
func ParseRuleSet(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := xml.Unmarshal(data, &rs); err != nil {
		return nil, common.NewAppError("RULES_CONFIG", "parse rule config",
			fmt.Errorf("%w: %w", common.ErrConfiguration, err))
	}
	if len(rs.Attributes) == 0 {
		return nil, common.NewAppError("RULES_CONFIG",
			"rule config declares no attributes", common.ErrConfiguration)
	}
	sum := sha256.Sum256(data)
	rs.fingerprint = hex.EncodeToString(sum[:])
	return &rs, nil
}

// Fingerprint identifies this configuration for cache keying. Identical rule
// files produce identical fingerprints across process restarts.
func (rs *RuleSet) Fingerprint() string {
	return rs.fingerprint
}

// compiledRule is an AttributeRule with its patterns compiled once.
type compiledRule struct {
	rule     AttributeRule
	patterns []*regexp.Regexp
}

func compileRules(rs *RuleSet) (map[string]compiledRule, error) {
	out := make(map[string]compiledRule, len(rs.Attributes))
	for _, a := range rs.Attributes {
		cr := compiledRule{rule: a}
		for _, p := range a.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, common.NewAppError("RULES_CONFIG",
					fmt.Sprintf("attribute %s: invalid pattern %q", a.Name, p),
					fmt.Errorf("%w: %w", common.ErrConfiguration, err))
			}
			cr.patterns = append(cr.patterns, re)
		}
		out[strings.ToLower(a.Name)] = cr
	}
	return out, nil
}
