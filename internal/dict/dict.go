// Package dict holds the static membership set of valid game words.
// Entries are normalized once at load time; lookups afterwards are a plain
// set test against an already-normalized candidate.
package dict

import (
	"bufio"
	_ "embed"
	"errors"
	"os"
	"strings"

	"github.com/Mohampouraz/Zanjirvajeh/internal/persian"
)

//go:embed words.fa.txt
var embedded string

var ErrEmptyDictionary = errors.New("dictionary contains no usable words")

// Dictionary is immutable after Load.
type Dictionary struct {
	words map[string]struct{}
}

// Load builds the dictionary from path, or from the embedded default list
// when path is empty. Lines are normalized; blanks and # comments skipped.
func Load(path string) (*Dictionary, error) {
	var r *strings.Reader
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		r = strings.NewReader(string(raw))
	} else {
		r = strings.NewReader(embedded)
	}

	d := &Dictionary{words: make(map[string]struct{})}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		w := persian.Normalize(line)
		if w == "" {
			continue
		}
		d.words[w] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(d.words) == 0 {
		return nil, ErrEmptyDictionary
	}
	return d, nil
}

// Contains reports membership of an already-normalized word.
func (d *Dictionary) Contains(normalized string) bool {
	_, ok := d.words[normalized]
	return ok
}

// Len returns the number of loaded words.
func (d *Dictionary) Len() int { return len(d.words) }
