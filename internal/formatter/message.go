package formatter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

const fence = "```"

var ErrInvalidMessage = errors.New("generated commit message is not a {subject, body} object")

// Message is a generated commit message.
type Message struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Paragraphs returns the message as separate commit paragraphs, subject first.
func (m Message) Paragraphs() []string {
	return []string{m.Subject, m.Body}
}

func (m Message) String() string {
	if m.Body == "" {
		return m.Subject
	}
	return m.Subject + "\n\n" + m.Body
}

// ExtractPayload returns the structured payload from a model response that may be
// wrapped in markdown code fences:
//   - no fence: the trimmed text
//   - one fence: the text after it, or before it when nothing follows
//   - two or more fences: the body of the first fenced block
//
// A language tag on an opening fence is dropped.
func ExtractPayload(text string) string {
	text = strings.TrimSpace(text)
	if !strings.Contains(text, fence) {
		return text
	}
	if !strings.Contains(text, "\n") {
		return extractInline(text)
	}

	lines := strings.Split(text, "\n")
	var fences []int
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), fence) {
			fences = append(fences, i)
		}
	}

	switch len(fences) {
	case 0:
		return text
	case 1:
		after := strings.TrimSpace(strings.Join(lines[fences[0]+1:], "\n"))
		if after != "" {
			return after
		}
		return strings.TrimSpace(strings.Join(lines[:fences[0]], "\n"))
	default:
		return strings.TrimSpace(strings.Join(lines[fences[0]+1:fences[1]], "\n"))
	}
}

// extractInline handles ```json {...}``` on a single line.
func extractInline(text string) string {
	body, ok := strings.CutPrefix(text, fence)
	if !ok {
		return strings.TrimSpace(strings.TrimSuffix(text, fence))
	}
	body = strings.TrimSuffix(body, fence)
	if i := strings.IndexAny(body, "{["); i > 0 && isLangTag(body[:i]) {
		body = body[i:]
	}
	return strings.TrimSpace(body)
}

func isLangTag(s string) bool {
	s = strings.TrimSpace(s)
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return false
		}
	}
	return true
}

// ParseMessage extracts and validates a {subject, body} object from a model response.
// Both keys must be present and hold strings, and the subject must not be blank.
func ParseMessage(text string) (Message, error) {
	payload := ExtractPayload(text)
	if !gjson.Valid(payload) {
		return Message{}, fmt.Errorf("%w: response is not valid JSON", ErrInvalidMessage)
	}

	root := gjson.Parse(payload)
	if !root.IsObject() {
		return Message{}, fmt.Errorf("%w: response is not a JSON object", ErrInvalidMessage)
	}

	subject, err := stringField(root, "subject")
	if err != nil {
		return Message{}, err
	}
	body, err := stringField(root, "body")
	if err != nil {
		return Message{}, err
	}

	msg := Message{
		Subject: strings.TrimSpace(subject.String()),
		Body:    strings.TrimSpace(body.String()),
	}
	if msg.Subject == "" {
		return Message{}, fmt.Errorf("%w: subject is empty", ErrInvalidMessage)
	}
	return msg, nil
}

func stringField(root gjson.Result, key string) (gjson.Result, error) {
	field := root.Get(key)
	if !field.Exists() {
		return field, fmt.Errorf("%w: missing %q", ErrInvalidMessage, key)
	}
	if field.Type != gjson.String {
		return field, fmt.Errorf("%w: %q is not a string", ErrInvalidMessage, key)
	}
	return field, nil
}
