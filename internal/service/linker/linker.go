// Package linker maps free text to the fixed set of tracked meme-coin
// tickers via case-insensitive whole-word patterns.
package linker

import (
	"regexp"
	"sort"
	"strings"
)

// defaultTickerTerms maps each tracked symbol to the terms that identify it.
// Immutable after process start.
var defaultTickerTerms = map[string][]string{
	"DOGE":  {"doge", "dogecoin", "shibainu", "shib"},
	"PEPE":  {"pepe", "pepecoin"},
	"WOJAK": {"wojak", "wojakcoin"},
	"FLOKI": {"floki", "flokiinu"},
	"BONK":  {"bonk", "bonkcoin"},
	"MEME":  {"meme", "memecoin"},
}

// Linker matches text against compiled per-ticker patterns.
type Linker struct {
	terms    map[string][]string
	patterns map[string][]*regexp.Regexp
	symbols  []string
}

// New builds a linker over the default ticker set.
func New() *Linker {
	return NewWithTerms(defaultTickerTerms)
}

// NewWithTerms builds a linker from an explicit symbol→terms mapping. Each
// symbol also matches itself as a term.
func NewWithTerms(tickerTerms map[string][]string) *Linker {
	l := &Linker{
		terms:    make(map[string][]string, len(tickerTerms)),
		patterns: make(map[string][]*regexp.Regexp, len(tickerTerms)),
	}

	for symbol, terms := range tickerTerms {
		all := append([]string{strings.ToLower(symbol)}, terms...)
		l.terms[symbol] = all

		compiled := make([]*regexp.Regexp, 0, len(all))
		for _, term := range all {
			compiled = append(compiled, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(term)+`\b`))
		}
		l.patterns[symbol] = compiled
		l.symbols = append(l.symbols, symbol)
	}

	sort.Strings(l.symbols)
	return l
}

// Symbols returns every tracked ticker symbol, sorted.
func (l *Linker) Symbols() []string {
	out := make([]string, len(l.symbols))
	copy(out, l.symbols)
	return out
}

// Terms returns the lowercased terms linked to a symbol, including the
// symbol itself. Unknown symbols yield just the lowercased symbol.
func (l *Linker) Terms(symbol string) []string {
	if terms, ok := l.terms[symbol]; ok {
		out := make([]string, len(terms))
		copy(out, terms)
		return out
	}
	return []string{strings.ToLower(symbol)}
}

// Link returns the set of symbols whose patterns match any of the input
// strings. Result is sorted and duplicate-free.
func (l *Linker) Link(texts ...string) []string {
	var matched []string
	for _, symbol := range l.symbols {
		if l.Matches(symbol, texts...) {
			matched = append(matched, symbol)
		}
	}
	return matched
}

// Matches reports whether any pattern for symbol matches any input string.
func (l *Linker) Matches(symbol string, texts ...string) bool {
	for _, pattern := range l.patterns[symbol] {
		for _, text := range texts {
			if text == "" {
				continue
			}
			if pattern.MatchString(text) {
				return true
			}
		}
	}
	return false
}
