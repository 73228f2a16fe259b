// Package people resolves the party affiliation of speakers and mentioned members.
package people

import (
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/mentions/internal/model"
	"github.com/ppiankov/mentions/internal/sparql"
	"github.com/rs/zerolog"
)

// Record is one party membership row of the people query
type Record struct {
	ID    string
	Label string
	Party string
	Date  time.Time // membership start
	Color string
}

// RecordsFromRows reads id, label, group2, date and color from converted bindings
func RecordsFromRows(rows []sparql.Row) ([]Record, error) {
	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		var (
			r   Record
			err error
		)
		if r.ID, err = row.String("id"); err != nil {
			return nil, fmt.Errorf("person row %d: %w", i, err)
		}
		if r.Label, err = row.String("label"); err != nil {
			return nil, fmt.Errorf("person row %d: %w", i, err)
		}
		if r.Party, err = row.String("group2"); err != nil {
			return nil, fmt.Errorf("person row %d: %w", i, err)
		}
		if r.Date, err = row.Date("date"); err != nil {
			return nil, fmt.Errorf("person row %d: %w", i, err)
		}
		// colour is sampled and may be unbound
		r.Color, _ = row.String("color")
		records = append(records, r)
	}
	return records, nil
}

// DisplayName drops the last space-separated token of a label
func DisplayName(label string) string {
	parts := strings.Split(label, " ")
	return strings.Join(parts[:len(parts)-1], " ")
}

// Resolver picks one membership per person as of the end of the analysed period
type Resolver struct {
	end    time.Time
	logger zerolog.Logger
}

// NewResolver creates a resolver for memberships up to end
func NewResolver(end time.Time, logger zerolog.Logger) *Resolver {
	return &Resolver{end: end, logger: logger}
}

// Resolve keeps, per person, the membership with the latest start not after
// the end date. When every membership starts later, the first one seen is kept.
// Persons are returned in the order their first record appears; ids without
// any record are returned separately.
func (r *Resolver) Resolve(ids []string, records []Record) ([]model.Person, []string) {
	index := make(map[string]int)
	var persons []model.Person

	for _, rec := range records {
		i, ok := index[rec.ID]
		if !ok {
			index[rec.ID] = len(persons)
			persons = append(persons, toPerson(rec))
			continue
		}

		kept := persons[i].Date
		if rec.Date.After(r.end) {
			continue
		}
		if kept.After(r.end) || rec.Date.After(kept) {
			persons[i] = toPerson(rec)
		}
	}

	var unresolved []string
	for _, id := range ids {
		if _, ok := index[id]; !ok {
			unresolved = append(unresolved, id)
			r.logger.Warn().Str("person", id).Msg("no party membership found")
		}
	}
	return persons, unresolved
}

func toPerson(rec Record) model.Person {
	return model.Person{
		ID:    rec.ID,
		Name:  DisplayName(rec.Label),
		Party: rec.Party,
		Date:  rec.Date,
		Color: rec.Color,
	}
}
