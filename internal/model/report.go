package model

import (
	"fmt"
	"strings"
	"time"
)

// WordColumnWidth is the padded width of the word column in text output
const WordColumnWidth = 25

// Record is one line of the sorted concordance
type Record struct {
	Word      string   `json:"word" yaml:"word"`
	Frequency int      `json:"frequency" yaml:"frequency"`
	Locations []string `json:"locations" yaml:"locations"`
}

// String renders the record as "word<padding>{frequency:loc1,loc2}"
func (r Record) String() string {
	return fmt.Sprintf("%-*s{%d:%s}", WordColumnWidth, r.Word, r.Frequency, strings.Join(r.Locations, ","))
}

// Report is the complete concordance for one source document
type Report struct {
	Source      string    `json:"source" yaml:"source"`           // Path or URL that was read
	Subject     string    `json:"subject" yaml:"subject"`         // Human-readable name derived from the source
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`

	Tokens    int `json:"tokens" yaml:"tokens"`       // Raw tokens after splitting
	Sentences int `json:"sentences" yaml:"sentences"` // Final sentence counter value
	Words     int `json:"words" yaml:"words"`         // Words recorded (sum of frequencies)

	Records []Record `json:"records" yaml:"records"` // Ascending by word
}

// TotalFrequency sums the frequencies of all records
func (r *Report) TotalFrequency() int {
	total := 0
	for _, rec := range r.Records {
		total += rec.Frequency
	}
	return total
}

// Distinct returns the number of distinct words
func (r *Report) Distinct() int {
	return len(r.Records)
}
