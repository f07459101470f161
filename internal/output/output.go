// Package output renders Dribbble records for the CLI.
package output

import (
	"fmt"
	"strings"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatYAML     Format = "yaml"
)

// Formats lists the accepted --output-format values.
var Formats = []Format{FormatTable, FormatJSON, FormatMarkdown, FormatYAML}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	case string(FormatYAML), "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// Render formats value. Table and markdown accept the record types known to
// viewOf; JSON and YAML accept anything serializable.
func Render(format Format, value any) (string, error) {
	switch format {
	case FormatJSON:
		return renderJSON(value)
	case FormatYAML:
		return renderYAML(value)
	}

	v, err := viewOf(value)
	if err != nil {
		return "", err
	}
	if format == FormatMarkdown {
		return renderMarkdown(v), nil
	}
	return renderTable(v), nil
}
