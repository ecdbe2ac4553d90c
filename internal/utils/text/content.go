// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-02-13
// Last Modified: 2026-10-19

// Package text formats source issues into ticket title and content.
package text

import (
	"fmt"
	"strings"
)

// Issue is the subset of a source issue used to build a ticket.
type Issue struct {
	Number int
	Title  string
	URL    string
	Author string
	Labels []string
	Body   string
}

// NormalizeIssue returns the ticket title and content for an issue.
//
// Title is "<labels> #<number> <title> by <author>", labels rendered as a
// quoted list such as ['bug', 'p1'] or [] when empty. Content is the body
// followed by a separator and the issue URL.
func NormalizeIssue(issue Issue) (title, content string) {
	title = fmt.Sprintf("%s #%d %s by %s", FormatLabels(issue.Labels), issue.Number, issue.Title, issue.Author)
	content = fmt.Sprintf("%s\n----\nURL: %s", issue.Body, issue.URL)
	return title, content
}

// FormatLabels renders labels as a bracketed list of quoted names.
func FormatLabels(labels []string) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, l := range labels {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(quote(l))
	}
	sb.WriteByte(']')
	return sb.String()
}

// quote uses single quotes unless the value contains one and no double quote.
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var sb strings.Builder
	sb.WriteByte(q)
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r == rune(q) {
				sb.WriteByte('\\')
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte(q)
	return sb.String()
}
