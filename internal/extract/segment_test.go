package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrepareText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"terminal period", "Hyvä.", "Hyvä. S"},
		{"no terminal punctuation", "Hyvä ehdotus", "Hyvä ehdotus. S"},
		{"question", "Miksi?", "Miksi? S"},
		{"empty", "", ". S"},
		{"brackets", "Puhemies! (Välihuuto) Totta [Naurua].", "Puhemies!  Totta . S"},
		{"newlines", "Yksi.\nKaksi.", "Yksi. Kaksi. S"},
		{"noise", "Hän sanoi ”kyllä”; \"ei\".", "Hän sanoi kyllä ei. S"},
		{"nbsp", "Sata\u00a0euroa.", "Sataeuroa. S"},
		{"ellipsis", "Niin…", "Niin. S"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PrepareText(tt.in))
		})
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "two sentences",
			in:   "Pekka sanoi, että Matti on hyvä. Hän jatkoi puhumista.",
			want: []string{"Pekka sanoi, että Matti on hyvä.", "Hän jatkoi puhumista."},
		},
		{
			name: "missing final punctuation",
			in:   "Ensimmäinen lause. Toinen ilman pistettä",
			want: []string{"Ensimmäinen lause.", "Toinen ilman pistettä."},
		},
		{
			name: "interjections removed",
			in:   "Arvoisa puhemies! (Välihuuto) Tämä on [Naurua] totta.",
			want: []string{"Arvoisa puhemies!", "Tämä on  totta."},
		},
		{
			name: "abbreviation followed by lowercase is not a boundary",
			in:   "Esim. tämä on 5. kohta. Loppu.",
			want: []string{"Esim. tämä on 5. kohta.", "Loppu."},
		},
		{
			name: "ordinal followed by capital splits",
			in:   "Luku 5. Kohta on selvä.",
			want: []string{"Luku 5.", "Kohta on selvä."},
		},
		{
			name: "digit start",
			in:   "2015 oli vaalivuosi. Nyt on toisin!",
			want: []string{"2015 oli vaalivuosi.", "Nyt on toisin!"},
		},
		{
			name: "accented capital",
			in:   "Äänestys alkaa. Ålandin asia on esillä.",
			want: []string{"Äänestys alkaa.", "Ålandin asia on esillä."},
		},
		{
			name: "lowercase lead-in dropped",
			in:   "ja niin edelleen. Sitten asiaan.",
			want: []string{"Sitten asiaan."},
		},
		{
			name: "ellipsis ends a sentence",
			in:   "Niin… Ehkä.",
			want: []string{"Niin.", "Ehkä."},
		},
		{
			name: "empty",
			in:   "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.in))
		})
	}
}

func TestStripNoise_Idempotent(t *testing.T) {
	inputs := []string{
		"Hän sanoi ”kyllä”; \"ei\". Sitten\u00a0lähti.",
		"Tavallinen lause. Toinen lause.",
		";;\"\"\u00a0",
	}

	for _, in := range inputs {
		once := StripNoise(in)
		assert.Equal(t, once, StripNoise(once))
		assert.Len(t, SplitSentences(once), len(SplitSentences(in)))
	}
}
