// Test program to demonstrate sentence segmentation and mention location
// on a sample speech, without the SPARQL endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/mentions/internal/extract"
	"github.com/ppiankov/mentions/internal/lemma"
	"github.com/ppiankov/mentions/internal/model"
	"github.com/rs/zerolog"
)

const sampleSpeech = `Arvoisa puhemies! Pekka sanoi, että Matti on hyvä. (Välihuuto) Hän jatkoi puhumista…
Ministeri Kiuru totesi, että sosiaali- ja terveysministeriön esitys on valmis; edustaja Markku Pakkanen oli samaa mieltä`

func main() {
	lexicon := flag.String("lexicon", "", "lexicon file (form<TAB>baseform); empty counts every token as a miss")
	stopwords := flag.String("stopwords", "", "stopword list")
	mentions := flag.String("mentions", "Matti;Kiuru;Markku Pakkanen;Virtanen", "surface forms joined with ';'")
	flag.Parse()

	fmt.Println("=== Mention Sentence Test ===")
	fmt.Println()

	var analyzer lemma.Analyzer = lemma.NoneAnalyzer{}
	if *lexicon != "" {
		lex, err := lemma.LoadLexicon(*lexicon)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		analyzer = lex
	}

	sw := lemma.NewStopwords("että", "on", "oli", "ja")
	if *stopwords != "" {
		loaded, err := lemma.LoadStopwords(*stopwords)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		sw = loaded
	}

	sentences := extract.SplitSentences(sampleSpeech)
	fmt.Printf("Sentences (%d):\n", len(sentences))
	for i, s := range sentences {
		fmt.Printf("  %d. %s\n", i+1, s)
	}
	fmt.Println()
	fmt.Println(strings.Repeat("-", 60))

	group := model.MentionGroup{
		Speech:   "sample",
		Content:  sampleSpeech,
		Mentions: *mentions,
	}
	builder := extract.NewBuilder(extract.NewNormalizer(analyzer, sw), 1, zerolog.Nop())
	res, err := builder.BuildGroup(context.Background(), group)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, rec := range res.Records {
		fmt.Printf("Mention: %s\n", rec.Mention)
		if rec.IsMissing() {
			fmt.Printf("  ✗ no sentence\n\n")
			continue
		}
		fmt.Printf("  Sentence: %s\n", rec.OGSentence)
		fmt.Printf("  Lemmas:   %s\n", *rec.LemSentence)
		fmt.Printf("  Misses:   %d\n\n", rec.Misses)
	}

	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Mentions: %d, found: %d, missing: %d, empty: %d\n",
		res.Stats.Mentions, res.Stats.Found, res.Stats.Missing, res.Stats.EmptySentences)
}
