package config

import (
	"github.com/Maciej615/EriAmo-sub001/internal/kurz"
	"github.com/Maciej615/EriAmo-sub001/internal/lexicon"
	"github.com/Maciej615/EriAmo-sub001/internal/session"
)

// #region basic-profile
// DefaultProfile returns the built-in profile over the eight basic affect axes.
func DefaultProfile() Profile {
	return Profile{
		Name: BaseBasic,
		Axes: []string{"joy", "sadness", "fear", "anger", "love", "disgust", "surprise", "acceptance"},
		Seeds: map[string][]string{
			"joy":        {"radość", "szczęście", "wesoły", "śmiech", "happy", "joy", "glad", "delight"},
			"sadness":    {"smutek", "żal", "płacz", "samotność", "sad", "sorrow", "grief", "lonely"},
			"fear":       {"strach", "lęk", "boję", "przerażenie", "fear", "afraid", "scared", "terror"},
			"anger":      {"złość", "gniew", "wściekłość", "nienawidzę", "anger", "angry", "furious", "rage"},
			"love":       {"miłość", "kocham", "czułość", "tęsknota", "love", "adore", "tender", "beloved"},
			"disgust":    {"wstręt", "obrzydzenie", "ohyda", "disgust", "gross", "revolting"},
			"surprise":   {"zaskoczenie", "niespodzianka", "zdumienie", "surprise", "astonished", "unexpected"},
			"acceptance": {"akceptacja", "zgoda", "spokój", "zaufanie", "accept", "trust", "calm", "peace"},
		},
		Triggers: map[string][]string{
			"joy":        {"hurra", "jupi", "hurray", "yay", "haha", ":)"},
			"sadness":    {"niestety", "szkoda", "sigh", ":("},
			"fear":       {"pomocy", "ratunku", "help", "eek"},
			"anger":      {"nienawidzę", "mam dość", "i hate", "damn"},
			"love":       {"kocham", "<3", "love you"},
			"disgust":    {"fuj", "bleh", "yuck", "eww"},
			"surprise":   {"wow", "o rany", "omg", "what?!"},
			"acceptance": {"zgoda", "dobrze", "alright", "of course"},
		},
		Axioms: []Axiom{
			{Word: "przyjaciel", Axis: "love", Strength: 0.6},
			{Word: "friend", Axis: "love", Strength: 0.6},
			{Word: "pogrzeb", Axis: "sadness", Strength: 0.7},
			{Word: "funeral", Axis: "sadness", Strength: 0.7},
			{Word: "prezent", Axis: "joy", Strength: 0.5},
			{Word: "gift", Axis: "joy", Strength: 0.5},
			{Word: "ciemność", Axis: "fear", Strength: 0.4},
			{Word: "darkness", Axis: "fear", Strength: 0.4},
		},
		Lexicon: defaultLexiconPolicy(),
		Scanner: ScannerPolicy{PerMatchWeight: kurz.DefaultConfig().PerMatchWeight},
		Session: defaultSessionPolicy(),
		Paths: Paths{
			Lexicon:   "data/lexicon.json",
			DB:        "data/companion.db",
			MemoryLog: "data/soul.jsonl",
		},
	}
}

// #endregion basic-profile

// #region extended-profile
// ExtendedProfile returns the basic profile widened to fifteen axes with the
// abstract dimensions appended after the affect axes.
func ExtendedProfile() Profile {
	p := DefaultProfile()
	p.Name = BaseExtended
	p.Axes = append(p.Axes, "logic", "knowledge", "time", "creation", "being", "space", "chaos")

	extraSeeds := map[string][]string{
		"logic":     {"logika", "dowód", "wniosek", "logic", "proof", "reason", "therefore"},
		"knowledge": {"wiedza", "nauka", "książka", "knowledge", "learn", "study", "wisdom"},
		"time":      {"czas", "wczoraj", "jutro", "pamięć", "time", "yesterday", "tomorrow", "memory"},
		"creation":  {"tworzenie", "muzyka", "sztuka", "create", "music", "art", "build"},
		"being":     {"istnienie", "dusza", "życie", "exist", "soul", "life", "self"},
		"space":     {"przestrzeń", "gwiazdy", "niebo", "space", "stars", "sky", "distance"},
		"chaos":     {"chaos", "bałagan", "burza", "mess", "storm", "random"},
	}
	extraTriggers := map[string][]string{
		"logic":     {"więc", "zatem", "hence", "qed"},
		"knowledge": {"dlaczego", "why", "how come"},
		"time":      {"kiedyś", "someday", "again"},
		"creation":  {"zróbmy", "let's make"},
		"being":     {"jestem", "i am"},
		"space":     {"daleko", "far away"},
		"chaos":     {"aaa", "!!!", "wtf"},
	}
	for axis, words := range extraSeeds {
		p.Seeds[axis] = words
	}
	for axis, words := range extraTriggers {
		p.Triggers[axis] = words
	}
	p.Axioms = append(p.Axioms,
		Axiom{Word: "matematyka", Axis: "logic", Strength: 0.6},
		Axiom{Word: "mathematics", Axis: "logic", Strength: 0.6},
		Axiom{Word: "wszechświat", Axis: "space", Strength: 0.6},
		Axiom{Word: "universe", Axis: "space", Strength: 0.6},
	)
	return p
}

// #endregion extended-profile

// #region policy-defaults
func defaultLexiconPolicy() LexiconPolicy {
	d := lexicon.DefaultConfig()
	return LexiconPolicy{
		MinWordLength:       d.MinWordLength,
		ActivationThreshold: d.ActivationThreshold,
		LearningThreshold:   d.LearningThreshold,
		ReinforcementStep:   d.ReinforcementStep,
		LearnedWeightScale:  d.LearnedWeightScale,
		DecayRate:           d.DecayRate,
		DecayFloor:          d.DecayFloor,
	}
}

func defaultSessionPolicy() SessionPolicy {
	d := session.DefaultConfig()
	return SessionPolicy{
		Reinforce:         d.Reinforce,
		DecayEvery:        d.DecayEvery,
		MinSimilarity:     d.MinSimilarity,
		MinConfidence:     d.Gate.MinConfidence,
		AgreementBoost:    d.Gate.AgreementBoost,
		ConflictIntensity: d.Gate.ConflictIntensity,
	}
}

// #endregion policy-defaults
