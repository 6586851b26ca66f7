package urllist

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotAList is returned when the content looks like an array but is not
// an array of strings.
var ErrNotAList = errors.New("URL list must be an array of strings")

// Load reads the URL list at path.
func Load(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the user
	if err != nil {
		return nil, fmt.Errorf("failed to open URL list: %w", err)
	}
	defer f.Close()

	urls, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL list %s: %w", path, err)
	}
	return urls, nil
}

// Parse reads a URL list from r. Entries are trimmed and blank entries are
// dropped; order and duplicates are preserved.
func Parse(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []string{}, nil
	}

	if trimmed[0] == '[' {
		// Decoding into []string would turn bare scalars like 1 or true
		// into strings.
		var items []any
		if err := yaml.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotAList, err)
		}
		raw := make([]string, 0, len(items))
		for i, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: entry %d is %v", ErrNotAList, i, item)
			}
			raw = append(raw, s)
		}
		return clean(raw), nil
	}

	return parseLines(trimmed)
}

func parseLines(data []byte) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if urls == nil {
		urls = []string{}
	}
	return urls, nil
}

func clean(raw []string) []string {
	urls := make([]string, 0, len(raw))
	for _, u := range raw {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// Save writes urls to path as an indented JSON array. A nil slice is
// written as [] so the file is always a valid list.
func Save(path string, urls []string) error {
	if urls == nil {
		urls = []string{}
	}
	data, err := json.MarshalIndent(urls, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode URL list: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write URL list: %w", err)
	}
	return nil
}

// Dedupe returns urls without repeats, keeping the first occurrence, and
// the number of entries removed.
func Dedupe(urls []string) ([]string, int) {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out, len(urls) - len(out)
}
