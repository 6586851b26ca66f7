// Package urllist reads and writes the URL list files that feed and
// receive a link check.
//
// A list file holds a literal array of strings. JSON arrays and
// single-quoted lists are both valid YAML flow sequences, so they are
// parsed with gopkg.in/yaml.v3. Files that are not a sequence are read as
// one URL per line, with blank lines and lines starting with '#' skipped.
package urllist
