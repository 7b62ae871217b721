package response

import (
	"regexp"
	"strings"

	"kb-assistant-be/internal/constant"
	"kb-assistant-be/pkg/rag/ranker"
)

// DegradedBodyRunes caps the document excerpt of a degraded answer.
const DegradedBodyRunes = 800

var (
	headerLine = regexp.MustCompile(`(?m)^\s*(データソース|Tab):.*$\n?`)
	blankRuns  = regexp.MustCompile(`\n{3,}`)
)

// DegradedAnswer is the reply used when the language model is unavailable:
// the top document's cleaned text and its link.
func DegradedAnswer(docs ranker.RankedSet) (string, []string) {
	if len(docs) == 0 {
		return constant.MessageNoInformation, nil
	}

	top := docs[0]
	var b strings.Builder
	b.WriteString(constant.MessageDegraded)
	b.WriteString("\n\n")
	b.WriteString(truncateRunes(CleanBody(top.Body), DegradedBodyRunes))
	b.WriteString("\n\n")
	b.WriteString(constant.CitationLabel)
	b.WriteString(" ")
	b.WriteString(top.SourceURL)

	return b.String(), []string{top.SourceURL}
}

// CleanBody drops the export header lines that only make sense to the model.
func CleanBody(body string) string {
	s := headerLine.ReplaceAllString(body, "")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
