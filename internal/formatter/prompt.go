package formatter

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultMaxDiffBytes bounds the diff text placed in a prompt.
const DefaultMaxDiffBytes = 16000

const truncatedMarker = "\n...(diff is too long, truncated)"

// PromptKind selects the prompt variant from what changed in the working tree.
type PromptKind int

const (
	PromptNone PromptKind = iota
	PromptDiffOnly
	PromptUntrackedOnly
	PromptBoth
)

func (k PromptKind) String() string {
	switch k {
	case PromptDiffOnly:
		return "diff_only"
	case PromptUntrackedOnly:
		return "untracked_only"
	case PromptBoth:
		return "both"
	default:
		return "none"
	}
}

// Snapshot is a transient read of the working tree used to build a prompt.
type Snapshot struct {
	Diff     string
	NotAdded []string
}

func (s Snapshot) Empty() bool {
	return s.Kind() == PromptNone
}

func (s Snapshot) Kind() PromptKind {
	hasDiff := strings.TrimSpace(s.Diff) != ""
	hasNew := len(s.NotAdded) > 0
	switch {
	case hasDiff && hasNew:
		return PromptBoth
	case hasDiff:
		return PromptDiffOnly
	case hasNew:
		return PromptUntrackedOnly
	default:
		return PromptNone
	}
}

type PromptOptions struct {
	// MaxDiffBytes truncates the diff on a UTF-8 boundary. Zero disables truncation.
	MaxDiffBytes int
	// TemplateFile optionally points at a YAML prompt template overriding the built-in variants.
	TemplateFile string
}

// BuildPrompt renders the prompt variant matching the snapshot.
func BuildPrompt(s Snapshot, opts PromptOptions) (string, error) {
	kind := s.Kind()
	if kind == PromptNone {
		return "", fmt.Errorf("nothing to describe: empty diff and no new files")
	}

	tpl := builtinTemplates[kind]
	if opts.TemplateFile != "" {
		custom, err := LoadPromptTemplate(opts.TemplateFile)
		if err != nil {
			return "", err
		}
		if t := custom.For(kind); t != "" {
			tpl = t
		}
	}

	diff := s.Diff
	if opts.MaxDiffBytes > 0 && len(diff) > opts.MaxDiffBytes {
		diff = truncateToValidUTF8(diff, opts.MaxDiffBytes) + truncatedMarker
	}

	return RenderTemplate(tpl, TemplateData{
		Kind:     kind.String(),
		Diff:     diff,
		NewFiles: strings.Join(s.NotAdded, "\n"),
	})
}

func truncateToValidUTF8(input string, maxBytes int) string {
	if len(input) <= maxBytes {
		return input
	}

	// only the cut point matters; invalid bytes earlier in the diff are kept as is
	end := maxBytes
	for end > 0 && !utf8.RuneStart(input[end]) {
		end--
	}

	return input[:end]
}
