package extract

import (
	"slices"
	"strings"
)

// Match is the sentence selected for a mention
type Match struct {
	Sentence   string   // original sentence without semicolons
	Words      []string // cleaned, lowercased tokens left for normalization
	MultiToken bool
}

// stripPunctuation drops — . , ; ? ! :
func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '—', '.', ',', ';', '?', '!', ':':
			return -1
		}
		return r
	}, s)
}

func removeAll(s string, forms []string) string {
	for _, f := range forms {
		if f == "" {
			continue
		}
		s = strings.ReplaceAll(s, f, "")
	}
	return s
}

// Locate finds the first sentence that mentions mention. mentions holds every
// surface form of the group, mention included, in processing order.
//
// A form without spaces must survive as a whole token once punctuation and
// all surface forms in their lowercase spelling are removed; a form with
// spaces only has to occur in the lowercased sentence.
func Locate(sentences []string, mention string, mentions []string) (Match, bool) {
	if strings.Contains(mention, " ") {
		return locateMultiToken(sentences, mention, mentions)
	}
	return locateSingleToken(sentences, mention, mentions)
}

func locateSingleToken(sentences []string, mention string, mentions []string) (Match, bool) {
	for _, s := range sentences {
		cleaned := removeAll(stripPunctuation(s), mentions)
		words := strings.Split(strings.ToLower(cleaned), " ")
		if slices.Contains(words, mention) {
			return Match{
				Sentence: strings.ReplaceAll(s, ";", ""),
				Words:    words,
			}, true
		}
	}
	return Match{}, false
}

func locateMultiToken(sentences []string, mention string, mentions []string) (Match, bool) {
	for _, s := range sentences {
		lower := strings.ToLower(s)
		if !strings.Contains(lower, mention) {
			continue
		}
		cleaned := stripPunctuation(removeAll(lower, mentions))
		return Match{
			Sentence:   strings.ReplaceAll(s, ";", ""),
			Words:      strings.Split(cleaned, " "),
			MultiToken: true,
		}, true
	}
	return Match{}, false
}
