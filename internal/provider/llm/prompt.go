package llm

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/yogeshhk/MiningResume/internal/common"
)

// Templates holds the prompt templates for the model-based backend.
// The extraction template carries {attribute} and {text} slots.
type Templates struct {
	SystemPrompt       string `yaml:"system_prompt"`
	ExtractionTemplate string `yaml:"extraction_template"`
}

// DefaultTemplates returns the built-in prompts used when no template file
// is configured.
func DefaultTemplates() Templates {
	return Templates{
		SystemPrompt: "You are an expert recruiter skilled at extracting relevant information from resumes. " +
			"Return ONLY JSON that matches the provided JSON Schema. " +
			"Never output null; if the requested field is absent, return an empty value.",
		ExtractionTemplate: "Extract {attribute} from the following resume text.\n\n" +
			"Resume:\n{text}\n\n" +
			"Respond with a JSON object of the form {\"value\": \"...\"} containing only the extracted {attribute}.",
	}
}

// LoadTemplates reads prompt templates from a YAML file, filling missing
// fields from the defaults.
func LoadTemplates(path string) (Templates, error) {
	t := DefaultTemplates()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return t, common.NewAppError("PROMPTS_CONFIG",
			fmt.Sprintf("read prompts file %s", path),
			fmt.Errorf("%w: %w", common.ErrConfiguration, err))
	}
	var loaded Templates
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return t, common.NewAppError("PROMPTS_CONFIG", "parse prompts file",
			fmt.Errorf("%w: %w", common.ErrConfiguration, err))
	}
	if loaded.SystemPrompt != "" {
		t.SystemPrompt = loaded.SystemPrompt
	}
	if loaded.ExtractionTemplate != "" {
		t.ExtractionTemplate = loaded.ExtractionTemplate
	}
	return t, nil
}

// BuildUserPrompt renders the extraction template for one attribute.
func (t Templates) BuildUserPrompt(attribute, text, priorContext string) string {
	out := strings.ReplaceAll(t.ExtractionTemplate, "{attribute}", attribute)
	out = strings.ReplaceAll(out, "{text}", text)
	if priorContext != "" {
		out = "Context from earlier extractions:\n" + priorContext + "\n\n" + out
	}
	return out
}
