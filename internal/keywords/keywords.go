// Package keywords derives a handful of representative terms from article text.
package keywords

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"
)

// DefaultMax is the number of keywords derived per article.
const DefaultMax = 5

const (
	minTermLength = 3
	titleWeight   = 3
)

// Deriver ranks terms by frequency, weighting title terms higher.
type Deriver struct {
	stopwords map[string]struct{}
}

// NewDeriver creates a deriver using the built-in English stopwords plus any
// words listed one per line in extraPath. A missing or unreadable file is an error.
func NewDeriver(extraPath string) (*Deriver, error) {
	stop := make(map[string]struct{}, len(englishStopwords))
	for _, w := range englishStopwords {
		stop[w] = struct{}{}
	}

	if extraPath != "" {
		f, err := os.Open(extraPath)
		if err != nil {
			return nil, fmt.Errorf("open stopwords file: %w", err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			w := strings.ToLower(strings.TrimSpace(scanner.Text()))
			if w != "" && !strings.HasPrefix(w, "#") {
				stop[w] = struct{}{}
			}
		}
		if err = scanner.Err(); err != nil {
			return nil, fmt.Errorf("read stopwords file: %w", err)
		}
	}

	return &Deriver{stopwords: stop}, nil
}

type termStat struct {
	term  string
	count int
	first int
}

// Derive returns up to max lowercase terms from title and body, most
// frequent first. Ties keep first-occurrence order.
func (d *Deriver) Derive(title, body string, max int) []string {
	if max <= 0 {
		return nil
	}

	stats := make(map[string]*termStat)
	pos := 0
	add := func(text string, weight int) {
		for _, tok := range tokenize(text) {
			if d.skip(tok) {
				continue
			}
			s, ok := stats[tok]
			if !ok {
				s = &termStat{term: tok, first: pos}
				stats[tok] = s
			}
			s.count += weight
			pos++
		}
	}
	add(title, titleWeight)
	add(body, 1)

	ranked := make([]*termStat, 0, len(stats))
	for _, s := range stats {
		ranked = append(ranked, s)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].first < ranked[j].first
	})

	if len(ranked) > max {
		ranked = ranked[:max]
	}
	out := make([]string, len(ranked))
	for i, s := range ranked {
		out[i] = s.term
	}
	return out
}

func (d *Deriver) skip(tok string) bool {
	if len([]rune(tok)) < minTermLength {
		return true
	}
	if _, ok := d.stopwords[tok]; ok {
		return true
	}
	for _, r := range tok {
		if unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
}
