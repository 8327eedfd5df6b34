package rules

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/yogeshhk/MiningResume/internal/provider"
)

// Provider is the rule-based extraction backend: the normalized text is
// segmented into named sections by header matching, then each attribute
// resolves against either the whole text or its section using ordered
// patterns. The first pattern that matches wins; multi-valued attributes
// collect all non-overlapping matches in order of appearance.
type Provider struct {
	ruleSet  *RuleSet
	compiled map[string]compiledRule
	logger   *slog.Logger
}

func NewProvider(rs *RuleSet, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	compiled, err := compileRules(rs)
	if err != nil {
		return nil, err
	}
	return &Provider{ruleSet: rs, compiled: compiled, logger: logger}, nil
}

// Generate resolves one attribute. An unmatched attribute returns an empty
// response with Found=false, not an error.
func (p *Provider) Generate(_ context.Context, req provider.Request) (*provider.Response, error) {
	start := time.Now()

	key := req.Attribute.Directive
	if key == "" {
		key = req.Attribute.Name
	}
	cr, ok := p.compiled[strings.ToLower(key)]
	if !ok {
		p.logger.Debug("rules.generate.unconfigured", "attribute", req.Attribute.Name)
		return &provider.Response{Found: false, Latency: time.Since(start)}, nil
	}

	scope := req.Text.Text
	if cr.rule.Section != "" {
		sections := p.segment(req.Text.Text)
		if lines, ok := sections[cr.rule.Section]; ok {
			scope = strings.Join(lines, "\n")
		} else {
			// Section absent from this resume: nothing to match.
			return &provider.Response{Found: false, Latency: time.Since(start)}, nil
		}
	}

	resp := &provider.Response{Latency: time.Since(start)}
	for _, re := range cr.patterns {
		if cr.rule.Multi {
			matches := re.FindAllStringSubmatch(scope, -1)
			if len(matches) == 0 {
				continue
			}
			for _, m := range matches {
				if v := firstGroup(m); v != "" {
					resp.Values = append(resp.Values, v)
				}
			}
			if len(resp.Values) > 0 {
				resp.Found = true
				break
			}
			continue
		}
		if m := re.FindStringSubmatch(scope); m != nil {
			if v := firstGroup(m); v != "" {
				resp.Value = v
				resp.Found = true
				break
			}
		}
	}

	resp.Latency = time.Since(start)
	p.logger.Debug("rules.generate.done",
		"attribute", req.Attribute.Name,
		"found", resp.Found,
		"values", len(resp.Values),
		"elapsed_ms", resp.Latency.Milliseconds(),
	)
	return resp, nil
}

// HealthCheck reports true: the rule set compiled at construction and the
// backend has no external dependency.
func (p *Provider) HealthCheck(_ context.Context) bool {
	return true
}

// segment splits the text into named sections. A line opens a section when it
// is short (four words or fewer) and begins with one of the section's header
// keywords; the header line itself is not part of the section body. Lines
// before the first header land in "Header".
func (p *Provider) segment(text string) map[string][]string {
	sections := map[string][]string{}
	current := "Header"
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if name := p.sectionFor(line); name != "" && name != current {
			current = name
			if _, ok := sections[current]; !ok {
				sections[current] = []string{}
			}
			continue
		}
		sections[current] = append(sections[current], line)
	}
	return sections
}

func (p *Provider) sectionFor(line string) string {
	if len(strings.Fields(line)) > 4 {
		return ""
	}
	trimmed := strings.TrimSuffix(strings.TrimSpace(line), ":")
	for _, s := range p.ruleSet.Sections {
		for _, h := range s.Headers {
			h = strings.TrimSpace(h)
			if h == "" {
				continue
			}
			if strings.HasPrefix(strings.ToLower(trimmed), strings.ToLower(h)) {
				return s.Name
			}
		}
	}
	return ""
}

// firstGroup returns the first non-empty capture group, falling back to the
// whole match.
func firstGroup(m []string) string {
	for _, g := range m[1:] {
		if g = strings.TrimSpace(g); g != "" {
			return g
		}
	}
	return strings.TrimSpace(m[0])
}
