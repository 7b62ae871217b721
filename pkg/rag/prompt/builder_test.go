package prompt

import (
	"strings"
	"testing"

	"kb-assistant-be/internal/constant"
	"kb-assistant-be/pkg/knowledge"
	"kb-assistant-be/pkg/rag/ranker"

	"github.com/stretchr/testify/assert"
)

func TestBuildSerializesDocumentsAndQuestion(t *testing.T) {
	docs := ranker.RankedSet{
		{TaggedDocument: knowledge.TaggedDocument{ID: "rule_296_26", SourceURL: "https://example.cybozu.com/k/296/show#record=26", Body: "前受金は負債"}, Score: 90},
	}

	p := NewAnswerBuilder("前受金について教えて", []string{"前受金"}, docs, DefaultStyle()).Build()

	assert.Contains(t, p, `<document id="rule_296_26" url="https://example.cybozu.com/k/296/show#record=26">`)
	assert.Contains(t, p, "前受金は負債")
	assert.Contains(t, p, constant.UsedDocumentsMark)
	assert.Contains(t, p, "5文以内")
	assert.Contains(t, p, "<keywords>\n前受金\n</keywords>")
	assert.True(t, strings.Index(p, "<documents>") < strings.Index(p, "<user_question>"))
	assert.True(t, strings.HasSuffix(p, "回答を作成してください:"))
}

func TestBuildEmptyDocumentsAndFormalStyle(t *testing.T) {
	style := Style{Personality: constant.PersonalityFormal}
	p := NewAnswerBuilder("社内旅行は？", nil, nil, style).Build()

	assert.Contains(t, p, "該当するドキュメントはありません")
	assert.Contains(t, p, constant.FormalStylePrompt)
	assert.NotContains(t, p, "<ng_rules>")
	assert.NotContains(t, p, "<keywords>")
}
