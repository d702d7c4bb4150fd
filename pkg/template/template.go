// Package template renders prompt and message templates against the
// execution payload.
package template

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Render parses the template string and executes it against the payload,
// which is exposed as ".data". Two helper functions are available: "json"
// marshals a value to compact JSON, and "now" returns the current UTC time
// in RFC3339.
func Render(templateStr string, payload map[string]any) (string, error) {
	tmpl, err := template.
		New("render").
		Funcs(template.FuncMap{
			"json": func(v any) string {
				b, err := json.Marshal(v)
				if err != nil {
					return fmt.Sprintf("%v", v)
				}

				return string(b)
			},
			"now": func() string {
				return time.Now().UTC().Format(time.RFC3339)
			},
		}).Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %q: %w", templateStr, err)
	}

	var buf strings.Builder

	err = tmpl.Execute(&buf, map[string]any{"data": payload})
	if err != nil {
		return "", fmt.Errorf("failed to execute template %q: %w", templateStr, err)
	}

	return buf.String(), nil
}
