package prompt

import (
	"fmt"
	"strings"

	"kb-assistant-be/internal/constant"
	"kb-assistant-be/pkg/rag/ranker"
)

// Style holds the presentation directives of the answer.
type Style struct {
	Personality  string
	MaxSentences int
	Forbidden    []string
}

func DefaultStyle() Style {
	return Style{
		Personality:  constant.PersonalityFriendly,
		MaxSentences: 5,
		Forbidden:    constant.ForbiddenPhrasings,
	}
}

// AnswerBuilder builds the grounded answer prompt for one question
type AnswerBuilder struct {
	question string
	keywords []string
	docs     ranker.RankedSet
	style    Style
}

func NewAnswerBuilder(question string, keywords []string, docs ranker.RankedSet, style Style) *AnswerBuilder {
	return &AnswerBuilder{
		question: question,
		keywords: keywords,
		docs:     docs,
		style:    style,
	}
}

func (b *AnswerBuilder) Build() string {
	var prompt strings.Builder

	b.writeRole(&prompt)
	b.writeDocuments(&prompt)
	b.writeTask(&prompt)
	b.writeStyle(&prompt)
	b.writeRules(&prompt)
	b.writeUserQuestion(&prompt)

	return prompt.String()
}

func (b *AnswerBuilder) writeRole(prompt *strings.Builder) {
	prompt.WriteString("<role>\n")
	prompt.WriteString(constant.AssistantRolePrompt)
	prompt.WriteString("\n</role>\n\n")
}

func (b *AnswerBuilder) writeDocuments(prompt *strings.Builder) {
	prompt.WriteString("<documents>\n")
	if len(b.docs) == 0 {
		prompt.WriteString("（質問に該当するドキュメントはありません）\n")
	}
	for _, d := range b.docs {
		fmt.Fprintf(prompt, "<document id=\"%s\" url=\"%s\">\n", d.ID, d.SourceURL)
		prompt.WriteString(d.Body)
		prompt.WriteString("\n</document>\n")
	}
	prompt.WriteString("</documents>\n\n")

	if len(b.keywords) > 0 {
		prompt.WriteString("<keywords>\n")
		prompt.WriteString(strings.Join(b.keywords, ", "))
		prompt.WriteString("\n</keywords>\n\n")
	}
}

func (b *AnswerBuilder) writeTask(prompt *strings.Builder) {
	prompt.WriteString("<task>\n")
	prompt.WriteString("上記のドキュメントだけを根拠に、質問に回答してください。資料にない知識は使わないでください。\n")
	prompt.WriteString("1. 最初の行に「" + constant.UsedDocumentsMark + "」に続けて、実際に回答に使ったドキュメントのidをカンマ区切りで書く\n")
	prompt.WriteString("2. 2行目以降に回答本文を書く\n")
	prompt.WriteString("3. 最後に「" + constant.CitationLabel + "」として、回答に使ったドキュメントのurlだけをそのまま書く（渡された全てのurlではない）\n")
	prompt.WriteString("4. 該当する情報がない場合は、見つからなかったことを正直に伝え、urlは書かない\n")
	prompt.WriteString("5. 「データソース:」「Tab:」などの見出しは回答に含めない\n")
	prompt.WriteString("</task>\n\n")
}

func (b *AnswerBuilder) writeStyle(prompt *strings.Builder) {
	prompt.WriteString("<style>\n")
	switch b.style.Personality {
	case constant.PersonalityFormal:
		prompt.WriteString(constant.FormalStylePrompt)
	default:
		prompt.WriteString(constant.FriendlyStylePrompt)
	}
	prompt.WriteString("\n")
	if b.style.MaxSentences > 0 {
		fmt.Fprintf(prompt, "- 回答本文は%d文以内にまとめる\n", b.style.MaxSentences)
	}
	prompt.WriteString("- 数値・日時・場所・人名は資料の記載通りに正確に伝える\n")
	prompt.WriteString("</style>\n\n")
}

func (b *AnswerBuilder) writeRules(prompt *strings.Builder) {
	if len(b.style.Forbidden) == 0 {
		return
	}
	prompt.WriteString("<ng_rules>\n")
	for _, f := range b.style.Forbidden {
		prompt.WriteString("❌ ")
		prompt.WriteString(f)
		prompt.WriteString("\n")
	}
	prompt.WriteString("</ng_rules>\n\n")
}

func (b *AnswerBuilder) writeUserQuestion(prompt *strings.Builder) {
	prompt.WriteString("<user_question>\n")
	prompt.WriteString(b.question)
	prompt.WriteString("\n</user_question>\n\n")
	prompt.WriteString("回答を作成してください:")
}
