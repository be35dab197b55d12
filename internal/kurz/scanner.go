// Package kurz is the fast path of text analysis: a per-axis trigger scanner
// that gives an instant axis guess before the lexicon runs.
//
// A Scanner is not safe for concurrent use.
package kurz

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// #region scanner
// Scanner holds one compiled case-insensitive alternation per axis.
type Scanner struct {
	cfg      Config
	axes     []string
	triggers map[string][]string
	patterns map[string]*regexp.Regexp
}

// New compiles triggers for every axis. Trigger lists for axes outside axes
// are ignored. The maps and slices passed in are copied.
func New(axes []string, triggers map[string][]string, cfg Config) *Scanner {
	if cfg.PerMatchWeight <= 0 || math.IsNaN(cfg.PerMatchWeight) {
		cfg.PerMatchWeight = DefaultConfig().PerMatchWeight
	}
	s := &Scanner{
		cfg:      cfg,
		axes:     append([]string(nil), axes...),
		triggers: make(map[string][]string, len(axes)),
		patterns: make(map[string]*regexp.Regexp, len(axes)),
	}
	s.ReplaceTriggers(triggers)
	return s
}

// Axes returns the configured axis order.
func (s *Scanner) Axes() []string {
	return append([]string(nil), s.axes...)
}

// #endregion scanner

// #region quick-scan
// QuickScan returns the axis with the most trigger matches in text and its
// intensity, min(1, matches*PerMatchWeight). On equal counts the axis listed
// first wins. ok is false when nothing matched.
func (s *Scanner) QuickScan(text string) (axis string, intensity float64, ok bool) {
	if strings.TrimSpace(text) == "" {
		return "", 0, false
	}
	best := 0
	for _, a := range s.axes {
		n := s.count(a, text)
		if n > best {
			best, axis = n, a
		}
	}
	if best == 0 {
		return "", 0, false
	}
	return axis, s.intensity(best), true
}

// ScanAll returns the intensity of every axis, in axis order.
func (s *Scanner) ScanAll(text string) []float64 {
	out := make([]float64, len(s.axes))
	if strings.TrimSpace(text) == "" {
		return out
	}
	for i, a := range s.axes {
		out[i] = s.intensity(s.count(a, text))
	}
	return out
}

func (s *Scanner) count(axis, text string) int {
	re := s.patterns[axis]
	if re == nil {
		return 0
	}
	return len(re.FindAllStringIndex(text, -1))
}

func (s *Scanner) intensity(matches int) float64 {
	return math.Min(1.0, float64(matches)*s.cfg.PerMatchWeight)
}

// #endregion quick-scan

// #region triggers
// AddTrigger appends word to the axis trigger list and recompiles that axis.
// It reports false for an unknown axis, an empty word or a duplicate.
func (s *Scanner) AddTrigger(axis, word string) bool {
	if !s.hasAxis(axis) {
		return false
	}
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" {
		return false
	}
	for _, existing := range s.triggers[axis] {
		if existing == w {
			return false
		}
	}
	s.triggers[axis] = append(s.triggers[axis], w)
	s.patterns[axis] = compile(s.triggers[axis])
	return true
}

// Triggers returns a copy of the axis trigger list.
func (s *Scanner) Triggers(axis string) []string {
	return append([]string(nil), s.triggers[axis]...)
}

// ReplaceTriggers swaps every trigger list and recompiles all axes. Axes
// missing from triggers end up with no triggers.
func (s *Scanner) ReplaceTriggers(triggers map[string][]string) {
	for _, a := range s.axes {
		var list []string
		seen := make(map[string]bool)
		for _, raw := range triggers[a] {
			w := strings.ToLower(strings.TrimSpace(raw))
			if w == "" || seen[w] {
				continue
			}
			seen[w] = true
			list = append(list, w)
		}
		s.triggers[a] = list
		s.patterns[a] = compile(list)
	}
}

func (s *Scanner) hasAxis(axis string) bool {
	for _, a := range s.axes {
		if a == axis {
			return true
		}
	}
	return false
}

// compile builds a case-insensitive alternation with the longest triggers
// first, so a trigger that contains a shorter one is matched whole.
func compile(triggers []string) *regexp.Regexp {
	if len(triggers) == 0 {
		return nil
	}
	ordered := append([]string(nil), triggers...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len([]rune(ordered[i])) > len([]rune(ordered[j]))
	})
	quoted := make([]string, len(ordered))
	for i, t := range ordered {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile("(?i)(?:" + strings.Join(quoted, "|") + ")")
}

// #endregion triggers
