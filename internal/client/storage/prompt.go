package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/SRAS2024/About-Me/internal/client/session"
)

// Prompter reads interactive answers line by line.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewPrompter reads from in and writes prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{scanner: bufio.NewScanner(in), out: out}
}

// Ask prints question and returns the trimmed answer. ok is false on EOF.
func (p *Prompter) Ask(question string) (answer string, ok bool) {
	fmt.Fprint(p.out, question)
	if !p.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.scanner.Text()), true
}

// PromptLinkRows asks for link rows until an empty label is entered or
// limit rows were read.
func (p *Prompter) PromptLinkRows(limit int) []session.Row {
	rows := []session.Row{}
	for len(rows) < limit {
		label, ok := p.Ask(fmt.Sprintf("Link %d label (empty to finish): ", len(rows)+1))
		if !ok || label == "" {
			break
		}
		url, _ := p.Ask("URL: ")
		rows = append(rows, session.Row{Label: label, URL: url})
	}
	return rows
}

// PromptTextRows asks for text rows until an empty line or limit rows.
func (p *Prompter) PromptTextRows(what string, limit int) []session.Row {
	rows := []session.Row{}
	for len(rows) < limit {
		text, ok := p.Ask(fmt.Sprintf("%s %d (empty to finish): ", what, len(rows)+1))
		if !ok || text == "" {
			break
		}
		rows = append(rows, session.Row{Text: text})
	}
	return rows
}

// PromptFile asks for a file path and reads it.
func (p *Prompter) PromptFile(question string) (path string, data []byte, err error) {
	path, ok := p.Ask(question)
	if !ok || path == "" {
		return "", nil, fmt.Errorf("no file given")
	}
	data, err = os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}
	return path, data, nil
}
