package model

import "time"

// MissingSentence is written as og_sentence when no sentence of the speech contains the mention
const MissingSentence = "missing"

// MentionGroup is one (speech, source, target, date) row of the mention query
type MentionGroup struct {
	Speech   string    // speech IRI
	Content  string    // full speech text
	Source   string    // speaker IRI
	Target   string    // referenced person IRI
	Date     time.Time // speech date
	Mentions string    // surface forms joined with ';'
}

// MentionRecord is one row of the mention sentences output
type MentionRecord struct {
	Speech      string
	Source      string
	Target      string
	Date        time.Time
	Mention     string
	OGSentence  string  // matched sentence, or MissingSentence
	LemSentence *string // nil when the mention was not found
	Misses      int     // tokens the analyzer could not analyse
}

// IsMissing reports whether the record stands for an unmatched mention
func (r MentionRecord) IsMissing() bool {
	return r.LemSentence == nil
}
