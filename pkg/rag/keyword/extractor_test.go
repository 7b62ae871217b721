package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	e := NewExtractor("AIチャット")

	got := e.Clean("[To:10686206]AIチャットさん\n夏期休業は いつ ですか？")
	assert.Equal(t, "夏期休業はいつですか？", got)

	got = e.Clean("[rp aid=123 to=456-789][piconname:42] 前受金")
	assert.Equal(t, "前受金", got)
}

func TestStripMentionsKeepsSpacing(t *testing.T) {
	e := NewExtractor("AIチャット")

	got := e.StripMentions("[To:10686206]AIチャットさん\n夏期休業は いつ ですか？ ")
	assert.Equal(t, "夏期休業は いつ ですか？", got)
}

func TestExtractNeverEmpty(t *testing.T) {
	e := NewExtractor("AIチャット")

	questions := []string{"", "   ", "？", "[To:1]AIチャットさん", "123", "abc:", "は", "いつ？"}
	for _, q := range questions {
		kws := e.Extract(q)
		assert.NotEmpty(t, kws, "question %q", q)
	}
}

func TestExtractSentinel(t *testing.T) {
	e := NewExtractor("AIチャット")

	kws := e.Extract("[To:10686206]AIチャットさん ？")
	assert.Equal(t, []string{SentinelKeyword}, kws)
	assert.True(t, IsSentinel(kws))
	assert.False(t, IsSentinel([]string{"前受金"}))
}

func TestExtractCompoundsFirst(t *testing.T) {
	kws := NewExtractor("").Extract("前受金について教えて")

	assert.Equal(t, "前受金", kws[0])
	assert.Contains(t, kws, "前受")
	assert.Contains(t, kws, "受金")
	assert.NotContains(t, kws, "について")
	assert.NotContains(t, kws, "教えて")
}

func TestExtractExclusions(t *testing.T) {
	kws := NewExtractor("").Extract("2025年のNDA:確認！")

	for _, kw := range kws {
		assert.NotRegexp(t, `^[0-9]+$`, kw)
		assert.NotContains(t, kw, "！")
		assert.NotRegexp(t, `^[a-zA-Z0-9:]+$`, kw)
	}
	assert.Contains(t, kws, "年の")
}

func TestExtractSynonymsOneLevel(t *testing.T) {
	kws := NewExtractor("").Extract("夏期休業")

	assert.Contains(t, kws, "夏期休業")
	assert.Contains(t, kws, "8月")
	assert.Contains(t, kws, "休暇")
	// 夏 is a single rune and is filtered out
	assert.NotContains(t, kws, "夏")
	// 休暇 came from expansion, so its own synonym 休日 is not added
	assert.NotContains(t, kws, "休日")
}

func TestExtractDeterministic(t *testing.T) {
	e := NewExtractor("AIチャット")
	q := "お歳暮の受け取りはどうすればいいですか"

	assert.Equal(t, e.Extract(q), e.Extract(q))
}

func TestExtractNoDuplicates(t *testing.T) {
	kws := NewExtractor("").Extract("給与と賞与と給与")

	seen := map[string]bool{}
	for _, kw := range kws {
		assert.False(t, seen[kw], "duplicate %q", kw)
		seen[kw] = true
	}
}
