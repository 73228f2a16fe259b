package model

import "time"

// Person is the resolved metadata of a speaker or referenced member
type Person struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`  // label without its trailing token
	Party string    `json:"party"` // Finnish party label
	Date  time.Time `json:"date"`  // membership start
	Color string    `json:"color"` // party hex colour
}

// RunSummary reports the counters of one period run
type RunSummary struct {
	RunID          string   `json:"run_id"`
	Period         Period   `json:"-"`
	Speeches       int      `json:"speeches"`
	Mentions       int      `json:"mentions"`
	Rows           int      `json:"rows"`
	Missing        int      `json:"missing"`
	EmptySentences int      `json:"empty_sentences"`
	People         int      `json:"people"`
	Resolved       int      `json:"resolved"`
	Unresolved     []string `json:"unresolved,omitempty"`
	MentionsFile   string   `json:"mentions_file"`
	PeopleFile     string   `json:"people_file"`
}
