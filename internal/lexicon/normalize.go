package lexicon

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// #region normalize
// letterFold covers letters that carry no combining mark under NFD and so
// survive diacritic stripping. Input is already lower-cased.
var letterFold = strings.NewReplacer(
	"ł", "l",
	"ø", "o",
	"đ", "d",
	"ð", "d",
	"ħ", "h",
	"ı", "i",
	"ß", "ss",
	"æ", "ae",
	"œ", "oe",
	"þ", "th",
)

// Normalize lower-cases a word, folds diacritics to their base letters and
// removes every rune that is not a letter, digit or underscore.
// Normalize(Normalize(w)) == Normalize(w) for every w.
func Normalize(word string) string {
	s := strings.ToLower(strings.TrimSpace(word))
	if s == "" {
		return ""
	}

	// Marks go first so letters like ǣ or ǿ reach letterFold as æ or ø.
	stripped, _, err := transform.String(transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
	), s)
	if err != nil {
		stripped = s
	}
	s = letterFold.Replace(stripped)

	// Composition runs last, over word runes only, so a second pass sees the same input.
	folded, _, err := transform.String(transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(notWordRune)),
		norm.NFC,
	), s)
	if err != nil {
		return strings.Map(func(r rune) rune {
			if notWordRune(r) {
				return -1
			}
			return r
		}, s)
	}
	return folded
}

func notWordRune(r rune) bool {
	return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// tokenize splits text on whitespace and normalizes each token, dropping
// tokens shorter than minLen runes.
func tokenize(text string, minLen int) []string {
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		w := Normalize(f)
		if w == "" || utf8.RuneCountInString(w) < minLen {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// #endregion normalize
