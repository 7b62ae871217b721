package constant

// Fixed replies posted to the chat room.
const (
	MessageApology       = "申し訳ありません、エラーが発生しました。時間をおいてもう一度お試しください。"
	MessageEmptyQuestion = "質問内容が見つかりませんでした。メンションに続けて、知りたいことを書いてくださいね。"
	MessageNoInformation = "申し訳ありませんが、お探しの情報が社内資料（議事録・年間スケジュール・ルールブック）に見つかりませんでした。"
	MessageDegraded      = "ただいまAIによる回答の作成ができないため、関連性の高い社内資料の内容をそのままお届けします。"

	CitationLabel     = "📎 参考:"
	UsedDocumentsMark = "【使用ドキュメント】"
)

// Personality modes accepted by PERSONALITY_MODE.
const (
	PersonalityFriendly = "friendly"
	PersonalityFormal   = "formal"
)

const (
	AssistantRolePrompt = `あなたは社内ルールに詳しいアシスタントです。
社員が気軽に質問できる、頼れる先輩のような存在として振る舞ってください。`

	FriendlyStylePrompt = `- 「〜ですよ！」「〜してくださいね」のような柔らかい表現を使う
- 絵文字は1〜2個まで（📝 ⏰ 💡 ✅ など）
- 必ず「です・ます」調を維持する（「〜だね」「〜だよ」は使わない）`

	FormalStylePrompt = `- 丁寧で簡潔なビジネス文体で回答する
- 絵文字や感嘆符は使わない`
)

// ForbiddenPhrasings are listed in every prompt as NG rules.
var ForbiddenPhrasings = []string{
	"「総務に聞いて」「〜さんに確認して」などの丸投げ表現",
	"「**」記法（強調には「」や【】を使う）",
	"Markdownリンク記法（[テキスト](URL)）",
	"数値や日時の省略（資料に記載されている通りに正確に伝える）",
}
