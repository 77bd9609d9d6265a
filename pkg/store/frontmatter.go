package store

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// ParseFrontmatter splits a markdown file into YAML frontmatter and body.
func ParseFrontmatter(content string) (Record, string, error) {
	content = strings.TrimSpace(content)

	if !strings.HasPrefix(content, frontmatterDelimiter) {
		// No frontmatter, whole file is body
		return Record{}, content, nil
	}

	rest := content[len(frontmatterDelimiter):]
	idx := strings.Index(rest, "\n"+frontmatterDelimiter)
	if idx == -1 {
		return nil, "", fmt.Errorf("unclosed frontmatter delimiter")
	}

	yamlContent := rest[:idx]
	body := rest[idx+len("\n"+frontmatterDelimiter):]
	body = strings.TrimLeft(body, "\n")

	rec := Record{}
	if err := yaml.Unmarshal([]byte(yamlContent), &rec); err != nil {
		return nil, "", fmt.Errorf("parsing frontmatter YAML: %w", err)
	}
	return rec, body, nil
}

// SerializeFrontmatter renders a record as YAML frontmatter followed by body.
func SerializeFrontmatter(rec Record, body string) (string, error) {
	yamlBytes, err := yaml.Marshal(map[string]any(rec))
	if err != nil {
		return "", fmt.Errorf("serializing frontmatter YAML: %w", err)
	}

	var b strings.Builder
	b.WriteString(frontmatterDelimiter)
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(string(yamlBytes), "\n"))
	b.WriteString("\n")
	b.WriteString(frontmatterDelimiter)
	b.WriteString("\n")
	if body != "" {
		b.WriteString("\n")
		b.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			b.WriteString("\n")
		}
	}

	return b.String(), nil
}

// splitBody copies rec, moving the column stored as markdown body out.
func splitBody(table string, rec Record) (Record, string) {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	if table != TableGoals {
		return out, ""
	}
	body, _ := out[ColDescription].(string)
	delete(out, ColDescription)
	return out, body
}

// joinBody is the inverse of splitBody.
func joinBody(table string, rec Record, body string) Record {
	if table == TableGoals {
		rec[ColDescription] = strings.TrimRight(body, "\n")
	}
	return rec
}
