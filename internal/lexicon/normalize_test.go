package lexicon

import (
	"strings"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "Happy", "happy"},
		{"trim", "  joy \t", "joy"},
		{"polish-diacritics", "Radość", "radosc"},
		{"polish-stroke-l", "ŁÓDŹ", "lodz"},
		{"polish-verb", "nienawidzę", "nienawidze"},
		{"german-sharp-s", "Straße", "strasse"},
		{"french", "naïve café", "naivecafe"},
		{"punctuation", "don't!", "dont"},
		{"underscore-digits", "word_2", "word_2"},
		{"emoji", "joy😀", "joy"},
		{"ligature-with-macron", "Ǣ", "ae"},
		{"ligature-with-acute", "ǽ", "ae"},
		{"stroke-o-acute", "ǿ", "o"},
		{"mixed-ligature", "Eǣß", "eaess"},
		{"only-symbols", "?!...", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	tricky := []string{
		"İstanbul", "ΣΊΣΥΦΟΣ", "Ærøskøbing", "ǅemal", "한국어", "Straße",
		"é́", "\xff\xfe broken utf8", "ﬁne", "Ⅻ", "x​y", strings.Repeat("ą", 500),
		"ǣ", "Ǣ", "Ǽ", "ǽ", "ǿ", "Ǿ", "Eǣß",
	}
	for _, s := range tricky {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "input %q", s)
	}

	// Every letter in the Latin blocks, alone and between other letters.
	for r := rune(0x00C0); r <= 0x024F; r++ {
		for _, s := range []string{string(r), "E" + string(r) + "ß"} {
			once := Normalize(s)
			assert.Equal(t, once, Normalize(once), "input %q (%U)", s, r)
		}
	}

	f := func(s string) bool {
		once := Normalize(s)
		return Normalize(once) == once
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 2000}); err != nil {
		t.Fatal(err)
	}
}

func TestTokenizeDropsShortTokens(t *testing.T) {
	got := tokenize("I am so HAPPY, really!", 3)
	assert.Equal(t, []string{"happy", "really"}, got)
}
