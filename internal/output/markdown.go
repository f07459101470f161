package output

import (
	"fmt"
	"strings"
)

func renderMarkdown(v view) string {
	var sb strings.Builder
	if v.title != "" {
		sb.WriteString(fmt.Sprintf("## %s\n\n", escapeMarkdownCell(v.title)))
	}

	writeMarkdownRow(&sb, v.header)
	sb.WriteString("|")
	for range v.header {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")

	for _, row := range v.rows {
		writeMarkdownRow(&sb, row)
	}

	if v.footer != "" {
		sb.WriteString(fmt.Sprintf("\n_%s_\n", v.footer))
	}
	return sb.String()
}

func writeMarkdownRow(sb *strings.Builder, cells []string) {
	sb.WriteString("|")
	for _, cell := range cells {
		sb.WriteString(" " + escapeMarkdownCell(cell) + " |")
	}
	sb.WriteString("\n")
}

func escapeMarkdownCell(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	return strings.ReplaceAll(value, "|", "\\|")
}
