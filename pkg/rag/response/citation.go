package response

import (
	"regexp"
	"strings"

	"kb-assistant-be/internal/constant"
)

const urlTrailingSet = ".,。、!！?？:;"

var (
	urlPattern  = regexp.MustCompile(`https?://[^\s<>"'「」『』【】（）()]+`)
	idSeparator = regexp.MustCompile(`[,、，\s]+`)
)

// ParseUsedDocuments strips a leading used-documents line from text and
// returns the ids it listed. The list is the model's own claim and is only
// used for diagnostics.
func ParseUsedDocuments(text string) ([]string, string) {
	trimmed := strings.TrimLeft(text, " \t\r\n")
	if !strings.HasPrefix(trimmed, constant.UsedDocumentsMark) {
		return nil, strings.TrimSpace(text)
	}

	line, rest, _ := strings.Cut(trimmed, "\n")
	list := strings.TrimSpace(strings.TrimPrefix(line, constant.UsedDocumentsMark))
	list = strings.TrimLeft(list, ":：")

	var ids []string
	for _, id := range idSeparator.Split(list, -1) {
		if id = strings.TrimSpace(id); id != "" && id != "なし" {
			ids = append(ids, id)
		}
	}
	return ids, strings.TrimSpace(rest)
}

// ExtractURLs returns the distinct URLs in text in order of appearance.
func ExtractURLs(text string) []string {
	seen := make(map[string]struct{})
	var urls []string
	for _, raw := range urlPattern.FindAllString(text, -1) {
		u := strings.TrimRight(raw, urlTrailingSet)
		if _, ok := seen[u]; ok || u == "" {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	return urls
}

// ValidateCitations splits urls into those present in known and the rest.
func ValidateCitations(urls []string, known map[string]struct{}) (valid, invalid []string) {
	for _, u := range urls {
		if _, ok := known[u]; ok {
			valid = append(valid, u)
		} else {
			invalid = append(invalid, u)
		}
	}
	return valid, invalid
}
