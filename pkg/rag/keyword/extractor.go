package keyword

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// SentinelKeyword is returned alone when a question yields no usable term.
const SentinelKeyword = "全般"

const (
	minWindow = 2
	maxWindow = 4
)

var (
	chatworkTags = regexp.MustCompile(`\[To:\d+\]|\[rp aid=\d+ to=\d+-\d+\]|\[piconname:\d+\]`)
	whitespace   = regexp.MustCompile(`\s+`)

	digitsOnly    = regexp.MustCompile(`^[0-9０-９]+$`)
	punctuation   = regexp.MustCompile(`[？?！!。、，,．～〜\[\]「」『』（）()【】]`)
	asciiAndColon = regexp.MustCompile(`^[a-zA-Z0-9:]+$`)
)

// Extractor derives search terms from chat questions. It is safe for
// concurrent use.
type Extractor struct {
	botMention *regexp.Regexp
}

// NewExtractor builds an extractor that also strips mentions of botName,
// with or without the さん honorific.
func NewExtractor(botName string) *Extractor {
	e := &Extractor{}
	if botName = strings.TrimSpace(botName); botName != "" {
		e.botMention = regexp.MustCompile(regexp.QuoteMeta(botName) + `(さん)?`)
	}
	return e
}

// StripMentions removes mention markup and the bot name, keeping the
// question readable.
func (e *Extractor) StripMentions(question string) string {
	s := chatworkTags.ReplaceAllString(question, "")
	if e.botMention != nil {
		s = e.botMention.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}

// Clean is StripMentions with every whitespace rune removed.
func (e *Extractor) Clean(question string) string {
	return whitespace.ReplaceAllString(e.StripMentions(question), "")
}

// Extract returns the keyword set of question in insertion order:
// compounds, then sliding windows, then synonyms. The result is never empty.
func (e *Extractor) Extract(question string) []string {
	cleaned := e.Clean(question)

	set := newOrderedSet()

	for _, c := range compounds {
		if strings.Contains(cleaned, c) {
			set.add(c)
		}
	}

	runes := []rune(cleaned)
	for i := range runes {
		for n := maxWindow; n >= minWindow; n-- {
			if i+n > len(runes) {
				continue
			}
			if w := string(runes[i : i+n]); keepWindow(w) {
				set.add(w)
			}
		}
	}

	extracted := set.items()
	for _, kw := range extracted {
		for _, syn := range synonyms[kw] {
			set.add(syn)
		}
	}

	out := make([]string, 0, len(set.order))
	for _, kw := range set.items() {
		if utf8.RuneCountInString(kw) >= minWindow {
			out = append(out, kw)
		}
	}

	if len(out) == 0 {
		return []string{SentinelKeyword}
	}
	return out
}

// IsSentinel reports whether keywords is the no-specific-keyword result.
func IsSentinel(keywords []string) bool {
	return len(keywords) == 1 && keywords[0] == SentinelKeyword
}

func keepWindow(w string) bool {
	if _, stop := stopWords[w]; stop {
		return false
	}
	return !digitsOnly.MatchString(w) &&
		!punctuation.MatchString(w) &&
		!asciiAndColon.MatchString(w)
}

type orderedSet struct {
	seen  map[string]struct{}
	order []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.order = append(s.order, v)
}

func (s *orderedSet) items() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
