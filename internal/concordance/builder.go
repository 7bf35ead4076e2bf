package concordance

import (
	"slices"
	"strconv"
	"strings"

	"github.com/ppiankov/concordance/internal/model"
)

// Concordance maps a normalized word to its entry. It has no order; use
// Sorted or SortKeys + BuildSortedView for presentation.
type Concordance map[string]model.WordEntry

// Record stores one occurrence of key at the given sentence. Entries are
// replaced rather than mutated in place.
func Record(store Concordance, key string, sentence int) Concordance {
	if entry, exists := store[key]; exists {
		store[key] = entry.Observe(sentence)
	} else {
		store[key] = model.NewWordEntry(1, strconv.Itoa(sentence))
	}
	return store
}

// State is the value carried through the token fold
type State struct {
	Sentence int
	Store    Concordance
	Tokens   int
	Words    int
}

// NewState returns the initial fold state: sentence 1, empty store
func NewState() State {
	return State{
		Sentence: 1,
		Store:    make(Concordance),
	}
}

// Stats summarises one Analyze run
type Stats struct {
	Tokens    int // Raw tokens, empty ones included
	Sentences int // Final sentence counter
	Words     int // Occurrences recorded
}

// Builder accumulates a concordance from text
type Builder struct {
	abbreviations map[string]struct{}
}

// NewBuilder creates a builder. A nil list means the default, where "i.e." is
// the only abbreviation; an empty non-nil list turns abbreviations off.
func NewBuilder(abbreviations ...string) *Builder {
	if abbreviations == nil {
		abbreviations = model.DefaultAbbreviations
	}

	set := make(map[string]struct{}, len(abbreviations))
	for _, a := range abbreviations {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" {
			set[a] = struct{}{}
		}
	}

	return &Builder{abbreviations: set}
}

// Step processes one raw token and returns the next state.
//
// An abbreviation is recorded verbatim at the current sentence and nothing
// else happens. A token containing a period is recorded as a normal word at
// the current sentence, and the counter advances for the tokens after it.
func (b *Builder) Step(st State, token string) State {
	st.Tokens++
	next := st.Sentence

	stripped := StripRestricted(token)
	if _, ok := b.abbreviations[stripped]; ok {
		st.Store = Record(st.Store, stripped, st.Sentence)
		st.Words++
		return st
	}
	if strings.Contains(stripped, ".") {
		next++
	}

	if word := Normalize(token); strings.TrimSpace(word) != "" {
		st.Store = Record(st.Store, word, st.Sentence)
		st.Words++
	}

	st.Sentence = next
	return st
}

// Build returns the concordance for text
func (b *Builder) Build(text string) Concordance {
	c, _ := b.Analyze(text)
	return c
}

// Analyze folds Step over the tokens of text and returns the concordance
// along with counters describing the run.
func (b *Builder) Analyze(text string) (Concordance, Stats) {
	st := NewState()
	for _, token := range Tokenize(text) {
		st = b.Step(st, token)
	}

	return st.Store, Stats{
		Tokens:    st.Tokens,
		Sentences: st.Sentence,
		Words:     st.Words,
	}
}

// SortKeys returns the keys of c in ascending byte order
func SortKeys(c Concordance) []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// BuildSortedView copies the entries of c in the order of sortedKeys.
// Keys missing from c are skipped.
func BuildSortedView(c Concordance, sortedKeys []string) []model.Record {
	records := make([]model.Record, 0, len(sortedKeys))
	for _, key := range sortedKeys {
		entry, ok := c[key]
		if !ok {
			continue
		}
		records = append(records, model.Record{
			Word:      key,
			Frequency: entry.Frequency(),
			Locations: entry.Locations(),
		})
	}
	return records
}

// Sorted returns the concordance as records ordered by word
func Sorted(c Concordance) []model.Record {
	return BuildSortedView(c, SortKeys(c))
}
