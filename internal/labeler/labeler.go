package labeler

import "strings"

// Rule identifiers recorded in the Assignment trace.
const (
	RuleVPNegated    = "VP_negated"
	RuleCynOverrides = "Cyn_overrides_positive"
	RuleMobiEnhances = "Mobi_enhances_VP"
)

// Assignment is the result of labeling one comment text.
//
// Labels holds the final 0/1 value for every category. RulesApplied is the
// ordered trace of priority rules that fired. MatchedKeywords records the raw
// dictionary hits per label, before any suppression, so a coder can see why a
// suppressed label was detected in the first place. Labels with no hits do
// not appear in the map.
type Assignment struct {
	Labels          map[Label]int      `json:"labels"`
	RulesApplied    []string           `json:"priority_applied"`
	MatchedKeywords map[Label][]string `json:"detected_keywords"`
}

// Labeler applies dictionary detection plus ordered priority rules.
// It is stateless after construction and safe for concurrent use.
type Labeler struct {
	dict  *Dictionary
	rules []priorityRule
}

// detection is the raw per-text evidence the rules operate on.
type detection struct {
	raw       map[Label]int
	matches   map[Label][]string
	vpNegated bool
}

// priorityRule is one step of the resolution pipeline. Rules run in slice
// order; later rules see the effects of earlier ones.
type priorityRule struct {
	name    string
	applies func(d *detection, labels map[Label]int) bool
	apply   func(d *detection, labels map[Label]int)
}

// New creates a labeler over the given dictionary. A nil dictionary uses the
// built-in defaults.
func New(dict *Dictionary) *Labeler {
	if dict == nil {
		dict = DefaultDictionary()
	}
	l := &Labeler{dict: dict}
	l.rules = []priorityRule{
		{
			// Negation is resolved before anything consumes the VP detection.
			name: RuleVPNegated,
			applies: func(d *detection, _ map[Label]int) bool {
				return d.vpNegated
			},
			apply: func(d *detection, labels map[Label]int) {
				d.raw[LabelVP] = 0
				labels[LabelVP] = 0
			},
		},
		{
			// Cynicism contradicts VP, E_ext, Norm and Mobi. E_int and Info
			// can coexist with it (researching or asking how, but cynical).
			name: RuleCynOverrides,
			applies: func(d *detection, _ map[Label]int) bool {
				return d.raw[LabelCyn] == 1
			},
			apply: func(d *detection, labels map[Label]int) {
				labels[LabelCyn] = 1
				labels[LabelVP] = 0
				labels[LabelEExt] = 0
				labels[LabelNorm] = 0
				labels[LabelMobi] = 0
			},
		},
		{
			// Advisory: mobilization alongside an intact vote pledge. Trace
			// only, no label change.
			name: RuleMobiEnhances,
			applies: func(d *detection, _ map[Label]int) bool {
				return d.raw[LabelMobi] == 1 && d.raw[LabelVP] == 1 && d.raw[LabelCyn] == 0
			},
			apply: func(_ *detection, _ map[Label]int) {},
		},
	}
	return l
}

// Resolve labels a single text. Pure function: any input, including the
// empty string, yields a complete Assignment and never fails.
func (l *Labeler) Resolve(text string) Assignment {
	d := &detection{
		raw:     make(map[Label]int, len(Labels)),
		matches: make(map[Label][]string),
	}

	for _, label := range Labels {
		hits := matchKeywords(text, l.dict.Keywords(label))
		if len(hits) > 0 {
			d.raw[label] = 1
			d.matches[label] = hits
		} else {
			d.raw[label] = 0
		}
	}
	d.vpNegated = len(matchKeywords(text, l.dict.VPNegations)) > 0

	// Pass-through baseline, then the ordered override pipeline.
	labels := make(map[Label]int, len(Labels))
	for _, label := range Labels {
		labels[label] = d.raw[label]
	}

	trace := []string{}
	for _, rule := range l.rules {
		if rule.applies(d, labels) {
			rule.apply(d, labels)
			trace = append(trace, rule.name)
		}
	}

	return Assignment{
		Labels:          labels,
		RulesApplied:    trace,
		MatchedKeywords: d.matches,
	}
}

// matchKeywords returns every dictionary entry that occurs as a case-folded
// substring of text. Detection is substring-based, not tokenized.
func matchKeywords(text string, keywords []string) []string {
	lower := strings.ToLower(text)
	var hits []string
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			hits = append(hits, kw)
		}
	}
	return hits
}
