// Package report renders a finished run for people and tools.
//
// Writers:
//   - SimpleWriter: colored text for the terminal
//   - JSONWriter: the full run as JSON
//   - MarkdownWriter: a shareable document with a mermaid pie chart
//
// All writers implement Writer and can be combined with MultiWriter.
package report
