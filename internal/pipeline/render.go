package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ppiankov/mentions/internal/model"
)

// MentionColumns is the header of the mention sentences file
var MentionColumns = []string{"speech", "source", "target", "date", "mention", "og_sentence", "lem_sentence", "misses"}

// PeopleColumns is the header of the people file; the first column holds the person IRI
var PeopleColumns = []string{"", "name", "party", "date", "color"}

// MentionsFileName returns mention_sentences_<start>_<end>.csv
func MentionsFileName(p model.Period) string {
	return fmt.Sprintf("mention_sentences_%s_%s.csv", p.StartString(), p.EndString())
}

// PeopleFileName returns people_<start>_<end>.csv
func PeopleFileName(p model.Period) string {
	return fmt.Sprintf("people_%s_%s.csv", p.StartString(), p.EndString())
}

// Renderer writes the ';'-separated output tables
type Renderer struct {
	dir string
}

// NewRenderer creates a renderer writing into dir
func NewRenderer(dir string) *Renderer {
	if dir == "" {
		dir = "."
	}
	return &Renderer{dir: dir}
}

// Path returns the output path of name
func (r *Renderer) Path(name string) string {
	return filepath.Join(r.dir, name)
}

// WriteMentions writes one row per mention record
func WriteMentions(w io.Writer, records []model.MentionRecord) error {
	cw := newWriter(w)
	if err := cw.Write(MentionColumns); err != nil {
		return err
	}

	for _, rec := range records {
		lem := ""
		if rec.LemSentence != nil {
			lem = *rec.LemSentence
		}
		row := []string{
			rec.Speech,
			rec.Source,
			rec.Target,
			rec.Date.Format(model.DateLayout),
			rec.Mention,
			rec.OGSentence,
			lem,
			strconv.Itoa(rec.Misses),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WritePeople writes one row per resolved person
func WritePeople(w io.Writer, persons []model.Person) error {
	cw := newWriter(w)
	if err := cw.Write(PeopleColumns); err != nil {
		return err
	}

	for _, p := range persons {
		if err := cw.Write([]string{p.ID, p.Name, p.Party, p.Date.Format(model.DateLayout), p.Color}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// RenderMentions writes the mention sentences file and returns its path
func (r *Renderer) RenderMentions(p model.Period, records []model.MentionRecord) (string, error) {
	return r.render(MentionsFileName(p), func(w io.Writer) error {
		return WriteMentions(w, records)
	})
}

// RenderPeople writes the people file and returns its path
func (r *Renderer) RenderPeople(p model.Period, persons []model.Person) (string, error) {
	return r.render(PeopleFileName(p), func(w io.Writer) error {
		return WritePeople(w, persons)
	})
}

func (r *Renderer) render(name string, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := r.Path(name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}

	if err := write(f); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return path, nil
}

func newWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	return cw
}
