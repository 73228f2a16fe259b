package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/mentions/internal/model"
	"github.com/ppiankov/mentions/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var runTimeout time.Duration

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract mention sentences and people for one period",
	Long: `Run processes the speeches of one period:
- Query speeches in which a member refers to another sitting member
- Split every speech into sentences and find the sentence of each mention
- Lemmatize the sentence, dropping stopwords and the mention itself
- Resolve the party and colour of every speaker and referenced member
- Write mention_sentences_<start>_<end>.csv and people_<start>_<end>.csv

Example:
  mentions run
  mentions run --start 2011-04-20 --end 2015-04-21 --output-dir ./out
  mentions run --lemmatizer remote --lemmatizer-url http://localhost:8080/analyze`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()

	// Period flags
	flags.String("start", "2015-04-22", "first speech date (YYYY-MM-DD)")
	flags.String("end", "2019-04-16", "last speech date (YYYY-MM-DD)")
	flags.String("term", "", "electoral term id (default: e_<start>-<end>)")
	flags.DurationVar(&runTimeout, "timeout", 30*time.Minute, "overall run timeout")

	addPipelineFlags(flags)
}

// addPipelineFlags adds the flags shared by run and batch
func addPipelineFlags(flags *pflag.FlagSet) {
	// Endpoint flags
	flags.String("endpoint", "http://ldf.fi/semparl/sparql", "SPARQL endpoint URL")
	flags.String("ua", "mentions/0.1 (+https://github.com/ppiankov/mentions)", "HTTP User-Agent")
	flags.Duration("query-timeout", 5*time.Minute, "timeout of a single SPARQL query")
	flags.String("http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	flags.String("https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	flags.Bool("respect-robots", false, "honour robots.txt of the endpoint host")
	flags.Bool("no-cache", false, "disable the query cache (force fresh queries)")

	// Lemmatizer flags
	flags.String("lemmatizer", "lexicon", "morphological analyzer (lexicon, remote, none)")
	flags.String("lexicon", "lemmas.tsv", "lexicon file (form<TAB>baseform)")
	flags.String("lemmatizer-url", "", "analysis service URL for --lemmatizer remote")
	flags.String("stopwords", "stopwords2.txt", "stopword list, one word per line")

	// Output flags
	flags.String("output-dir", ".", "output directory for the CSV files")
	flags.Int("workers", 1, "mention groups processed in parallel (output order is kept)")
}

// flagKeys maps configuration keys to flag names
var flagKeys = map[string]string{
	"period.start":            "start",
	"period.end":              "end",
	"period.term":             "term",
	"endpoint.url":            "endpoint",
	"endpoint.user_agent":     "ua",
	"endpoint.timeout":        "query-timeout",
	"endpoint.http_proxy":     "http-proxy",
	"endpoint.https_proxy":    "https-proxy",
	"endpoint.respect_robots": "respect-robots",
	"lemmatizer.kind":         "lemmatizer",
	"lemmatizer.lexicon_path": "lexicon",
	"lemmatizer.remote_url":   "lemmatizer-url",
	"stopwords.path":          "stopwords",
	"output.dir":              "output-dir",
	"concurrency.workers":     "workers",
}

// bindFlags binds the flags of the running command to their configuration keys.
// Binding happens at run time because run and batch share flag names.
func bindFlags(cmd *cobra.Command) error {
	for key, name := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// commandConfig loads the configuration of cmd
func commandConfig(cmd *cobra.Command) (*model.Config, error) {
	if err := bindFlags(cmd); err != nil {
		return nil, err
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}
	return cfg, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}

	period, err := cfg.Period.Period()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Period:     %s (%s)\n", period, period.Term)
		fmt.Fprintf(os.Stderr, "Endpoint:   %s\n", cfg.Endpoint.URL)
		fmt.Fprintf(os.Stderr, "Lemmatizer: %s\n", cfg.Lemmatizer.Kind)
		fmt.Fprintf(os.Stderr, "Cache:      %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(cfg, logger)
	if err != nil {
		return err
	}

	summary, err := p.Run(ctx, period)
	if err != nil {
		return fmt.Errorf("run %s: %w", period, err)
	}

	printSummary(summary)
	return nil
}

func printSummary(s *model.RunSummary) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Period:              %s\n", s.Period)
	fmt.Fprintf(os.Stderr, "  Speeches:            %d\n", s.Speeches)
	fmt.Fprintf(os.Stderr, "  Mentions:            %d\n", s.Mentions)
	fmt.Fprintf(os.Stderr, "  Sentences found:     %d\n", s.Rows)
	fmt.Fprintf(os.Stderr, "  Missing:             %d\n", s.Missing)
	fmt.Fprintf(os.Stderr, "  Empty sentences:     %d\n", s.EmptySentences)
	fmt.Fprintf(os.Stderr, "  People:              %d (%d resolved)\n", s.People, s.Resolved)
	for _, id := range s.Unresolved {
		fmt.Fprintf(os.Stderr, "    no metadata: %s\n", id)
	}
	fmt.Fprintf(os.Stderr, "  Output:              %s\n", s.MentionsFile)
	fmt.Fprintf(os.Stderr, "                       %s\n", s.PeopleFile)
	fmt.Fprintf(os.Stderr, "\n")
}
