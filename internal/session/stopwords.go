package session

// #region stopwords
// stopwords are function words never taught to the lexicon. Entries are in
// normalized form (lower case, diacritics folded).
var stopwords = map[string]bool{
	// English
	"the": true, "are": true, "was": true, "were": true, "does": true,
	"did": true, "have": true, "has": true, "had": true, "been": true,
	"being": true, "will": true, "would": true, "could": true, "should": true,
	"may": true, "might": true, "can": true, "shall": true, "not": true,
	"and": true, "but": true, "then": true, "than": true, "for": true,
	"from": true, "into": true, "with": true, "about": true, "out": true,
	"its": true, "this": true, "that": true, "what": true, "which": true,
	"who": true, "how": true, "when": true, "where": true, "why": true,
	"you": true, "your": true, "they": true, "she": true, "her": true,
	"him": true, "them": true, "just": true, "very": true, "really": true,
	"feel": true, "feeling": true, "today": true, "some": true, "all": true,

	// Polish
	"nie": true, "jest": true, "sie": true, "jak": true, "ale": true,
	"czy": true, "tak": true, "ten": true, "jestem": true, "mnie": true,
	"mam": true, "dla": true, "przez": true, "bardzo": true, "tylko": true,
	"juz": true, "jeszcze": true, "kiedy": true, "gdzie": true, "dlaczego": true,
	"ktory": true, "ktora": true, "ktore": true, "bylo": true, "byl": true,
	"moze": true, "tego": true, "temu": true, "tym": true, "jego": true,
	"jej": true, "ich": true, "nas": true, "wam": true, "mi": true,
}

// candidates drops stopwords and duplicates from normalized unknown tokens.
func candidates(unknown []string) []string {
	seen := make(map[string]bool, len(unknown))
	var out []string
	for _, w := range unknown {
		if stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// #endregion stopwords
