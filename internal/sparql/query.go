package sparql

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/mentions/internal/model"
)

// Prefixes used by the Semantic Parliament (SemParl) knowledge graph
const Prefixes = `
PREFIX bioc: <http://ldf.fi/schema/bioc/>
PREFIX crm: <http://erlangen-crm.org/current/>
PREFIX dct: <http://purl.org/dc/terms/>
PREFIX eterms: <http://ldf.fi/semparl/times/electoral-terms/>
PREFIX people: <http://ldf.fi/semparl/people/>
PREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
PREFIX semparls: <http://ldf.fi/schema/semparl/>
PREFIX semparl_linguistics: <http://ldf.fi/schema/semparl/linguistics/>
PREFIX skos: <http://www.w3.org/2004/02/skos/core#>
PREFIX xsd: <http://www.w3.org/2001/XMLSchema#>
`

const mentionQueryTemplate = `
SELECT DISTINCT ?sp ?content ?source ?target ?date (GROUP_CONCAT(DISTINCT ?mentions; SEPARATOR=";") AS ?mention) WHERE {
  BIND('%[1]s'^^xsd:date AS ?start)
  BIND('%[2]s'^^xsd:date AS ?end)
  ?sp a semparls:Subcorpus5 .
  ?sp semparl_linguistics:referenceToPerson/skos:relatedMatch ?target ;
      semparls:speaker ?source ;
      dct:date ?date
  FILTER (?start<=?date && ?date <= ?end)
  ?sp semparls:speechType ?type .
  FILTER (?type != <http://ldf.fi/semparl/speechtypes/PuhemiesPuheenvuoro>) .
  ?sp dct:language <http://id.loc.gov/vocabulary/iso639-2/fin> .

  ?sp semparl_linguistics:referenceToPerson [
            skos:relatedMatch ?target ;
            semparl_linguistics:surfaceForm ?mentions  ] .

  ?target bioc:bearer_of/crm:P11i_participated_in ?event .
  ?event a semparls:ParliamentaryGroupMembership .
  ?event crm:P10_falls_within eterms:%[3]s .
  ?event crm:P4_has_time-span ?tspant .
  ?tspant crm:P81a_begin_of_the_begin ?t_startt .
  OPTIONAL { ?tspant crm:P82b_end_of_the_end ?t_endt }
  FILTER (?t_startt <= ?date && (!BOUND(?t_endtt) || ?t_endtt >= ?date))
  FILTER (?source != ?target)

  ?sp semparls:content ?content .
}
GROUP BY ?sp ?content ?date ?source ?target
`

const peopleQueryTemplate = `
SELECT DISTINCT ?id ?label ?group2 ?date (SAMPLE(?colors) AS ?color) WHERE {
  VALUES ?id { %s }
  ?id skos:prefLabel ?label .
  ?id semparls:has_party_membership ?partyms .
  ?partyms semparls:party ?group .
  ?group skos:prefLabel ?group2 .
  FILTER(LANG(?group2)='fi')
  ?group semparls:hexcolor ?colors .
  ?partyms crm:P4_has_time-span ?tspan .
  ?tspan crm:P81a_begin_of_the_begin ?date .
} GROUP BY ?id ?label ?group2 ?date`

// MentionQuery selects speeches of the period that reference a sitting member,
// one row per (speech, source, target, date) with surface forms joined by ';'.
// The membership end filter tests ?t_endtt, which is never bound, so any
// membership that started before the speech counts; the extracted data set
// depends on that.
func MentionQuery(p model.Period) string {
	return Prefixes + fmt.Sprintf(mentionQueryTemplate, p.StartString(), p.EndString(), p.Term)
}

// PeopleQuery selects label, party, membership start and party colour for the given IRIs
func PeopleQuery(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	values := make([]string, 0, len(sorted))
	for _, id := range sorted {
		values = append(values, "<"+id+">")
	}
	return Prefixes + fmt.Sprintf(peopleQueryTemplate, strings.Join(values, " "))
}
