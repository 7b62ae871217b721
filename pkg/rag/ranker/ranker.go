package ranker

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"kb-assistant-be/pkg/knowledge"
	"kb-assistant-be/pkg/rag/keyword"
)

// Scoring weights. A hit inside the title region outweighs the same hit
// further down the body.
const (
	TitleRegionRunes     = 200
	TitleWeight          = 10
	BodyWeight           = 3
	ProperNounTitleBonus = 5
	ProperNounMinRunes   = 3
)

// Cutoffs. A top score at or above HighConfidenceScore means the question
// is unambiguous and fewer documents are kept.
const (
	HighConfidenceScore   = 100
	TopKConfident         = 10
	TopKAmbiguous         = 20
	SentinelFallbackCount = 5
)

var katakanaOnly = regexp.MustCompile(`^[ァ-ヴー]+$`)

// Ranked is one scored document.
type Ranked struct {
	knowledge.TaggedDocument
	Score int `json:"score"`
}

// RankedSet is ordered by descending score. Equal scores keep input order.
type RankedSet []Ranked

func (s RankedSet) MaxScore() int {
	if len(s) == 0 {
		return 0
	}
	return s[0].Score
}

func (s RankedSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for _, r := range s {
		ids = append(ids, r.ID)
	}
	return ids
}

// URLs returns the set of source URLs present in the ranked documents.
func (s RankedSet) URLs() map[string]struct{} {
	urls := make(map[string]struct{}, len(s))
	for _, r := range s {
		urls[r.SourceURL] = struct{}{}
	}
	return urls
}

// Rank scores every document against keywords and keeps the top K, where K
// depends on the highest score observed. Zero-score documents are dropped.
// For the sentinel keyword the first SentinelFallbackCount documents are
// returned in input order with score 0.
func Rank(docs []knowledge.TaggedDocument, keywords []string) RankedSet {
	if keyword.IsSentinel(keywords) {
		n := min(SentinelFallbackCount, len(docs))
		out := make(RankedSet, 0, n)
		for _, d := range docs[:n] {
			out = append(out, Ranked{TaggedDocument: d})
		}
		return out
	}

	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw != "" {
			lowered = append(lowered, strings.ToLower(kw))
		}
	}

	scored := make(RankedSet, 0, len(docs))
	for _, d := range docs {
		if s := scoreLowered(d.Body, lowered); s > 0 {
			scored = append(scored, Ranked{TaggedDocument: d, Score: s})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	limit := TopKAmbiguous
	if scored.MaxScore() >= HighConfidenceScore {
		limit = TopKConfident
	}
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// Score is the relevance of body to keywords. It is a pure function.
func Score(body string, keywords []string) int {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw != "" {
			lowered = append(lowered, strings.ToLower(kw))
		}
	}
	return scoreLowered(body, lowered)
}

func scoreLowered(body string, keywords []string) int {
	title, rest := splitTitle(strings.ToLower(body))

	score := 0
	for _, kw := range keywords {
		titleHits := strings.Count(title, kw)
		score += titleHits*TitleWeight + strings.Count(rest, kw)*BodyWeight

		if isProperNoun(kw) {
			score += titleHits * ProperNounTitleBonus
		}
	}
	return score
}

func splitTitle(body string) (string, string) {
	if utf8.RuneCountInString(body) <= TitleRegionRunes {
		return body, ""
	}
	n := 0
	for i := range body {
		if n == TitleRegionRunes {
			return body[:i], body[i:]
		}
		n++
	}
	return body, ""
}

// isProperNoun treats katakana-only terms of at least ProperNounMinRunes as
// names of people, places or projects.
func isProperNoun(kw string) bool {
	return utf8.RuneCountInString(kw) >= ProperNounMinRunes && katakanaOnly.MatchString(kw)
}
