package formatter

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

const responseInstruction = `Your response must be a JSON object with exactly two string keys, "subject" and "body", and nothing else.
The subject is a single imperative line of at most 72 characters. The body explains what changed and why.`

// PromptTemplate is the YAML shape of a user supplied prompt file. Template is used
// for every variant that has no dedicated entry.
type PromptTemplate struct {
	Name          string `yaml:"name"`
	Description   string `yaml:"description"`
	Template      string `yaml:"template"`
	DiffOnly      string `yaml:"diff_only"`
	UntrackedOnly string `yaml:"untracked_only"`
	Both          string `yaml:"both"`
}

func (p PromptTemplate) For(kind PromptKind) string {
	var t string
	switch kind {
	case PromptDiffOnly:
		t = p.DiffOnly
	case PromptUntrackedOnly:
		t = p.UntrackedOnly
	case PromptBoth:
		t = p.Both
	}
	if t == "" {
		return p.Template
	}
	return t
}

type TemplateData struct {
	Kind     string
	Diff     string
	NewFiles string
}

var builtinTemplates = map[PromptKind]string{
	PromptDiffOnly: `Generate a git commit message for this diff:
{{.Diff}}

` + responseInstruction,

	PromptUntrackedOnly: `Generate a git commit message for these new files:
{{.NewFiles}}

` + responseInstruction,

	PromptBoth: `Generate a git commit message for this diff:
{{.Diff}}

and these new files:
{{.NewFiles}}

` + responseInstruction,
}

func LoadPromptTemplate(path string) (PromptTemplate, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return PromptTemplate{}, fmt.Errorf("unable to read template file %s: %w", path, err)
	}

	var tpl PromptTemplate
	if err := yaml.Unmarshal(content, &tpl); err != nil {
		return PromptTemplate{}, fmt.Errorf("invalid template file %s: %w", path, err)
	}
	if tpl.Template == "" && tpl.DiffOnly == "" && tpl.UntrackedOnly == "" && tpl.Both == "" {
		return PromptTemplate{}, fmt.Errorf("template file %s defines no templates", path)
	}
	return tpl, nil
}

func RenderTemplate(templateContent string, data TemplateData) (string, error) {
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(templateContent)
	if err != nil {
		return "", fmt.Errorf("template parsing error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template rendering error: %w", err)
	}

	return buf.String(), nil
}
