package model

import (
	"slices"
	"strconv"
	"strings"
)

// WordEntry is the frequency and sentence-location record for one distinct word.
// It is a value type: every update returns a new entry and never writes through
// the receiver's location slice.
type WordEntry struct {
	frequency int
	locations []string
}

// NewWordEntry creates an entry holding a single location
func NewWordEntry(frequency int, location string) WordEntry {
	return WordEntry{
		frequency: frequency,
		locations: []string{location},
	}
}

// NewWordEntryFrom creates an entry from an existing location sequence.
// The sequence is copied.
func NewWordEntryFrom(frequency int, locations []string) WordEntry {
	return WordEntry{
		frequency: frequency,
		locations: slices.Clone(locations),
	}
}

// Increment returns the entry with its frequency raised by one
func (e WordEntry) Increment() WordEntry {
	e.frequency++
	return e
}

// AddLocation returns the entry with the sentence number appended to its locations
func (e WordEntry) AddLocation(sentence int) WordEntry {
	locations := make([]string, len(e.locations), len(e.locations)+1)
	copy(locations, e.locations)
	e.locations = append(locations, strconv.Itoa(sentence))
	return e
}

// Observe records one more occurrence of the word in the given sentence
func (e WordEntry) Observe(sentence int) WordEntry {
	return e.Increment().AddLocation(sentence)
}

// Frequency returns how many times the word occurred
func (e WordEntry) Frequency() int {
	return e.frequency
}

// Locations returns a copy of the sentence locations in order of appearance
func (e WordEntry) Locations() []string {
	return slices.Clone(e.locations)
}

// FormattedLocations joins the locations with commas, e.g. "1,1,4"
func (e WordEntry) FormattedLocations() string {
	return strings.Join(e.locations, ",")
}
