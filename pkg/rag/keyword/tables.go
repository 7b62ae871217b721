package keyword

// compounds are domain phrases added verbatim when present in a question.
var compounds = []string{
	"夏期休業", "冬期休業", "年末年始", "研修旅行", "社員旅行", "一級建築士", "二級建築士",
	"秘密保持契約", "有給休暇", "社員面談", "勤続祝い", "売上目標", "給与", "賞与",
	"ボーナス", "夏期", "冬期", "建築士", "ガイダンス", "お歳暮", "お中元", "贈答品",
	"リモートワーク", "前受金", "計画取得日", "代休", "リファラル", "採用",
}

// stopWords are particles, question words and polite endings that never
// make a useful search term on their own.
var stopWords = map[string]struct{}{
	"は": {}, "が": {}, "を": {}, "に": {}, "で": {}, "と": {}, "の": {}, "や": {}, "か": {},
	"から": {}, "まで": {}, "？": {}, "?": {},
	"いつ": {}, "どこ": {}, "何": {}, "なに": {}, "だれ": {}, "どう": {}, "どれ": {}, "いくら": {},
	"ます": {}, "です": {}, "ください": {}, "ますか": {}, "ですか": {}, "でしょう": {},
	"教えて": {}, "について": {},
}

// synonyms expand one level only; expansions are never expanded again.
var synonyms = map[string][]string{
	"休暇":  {"休み", "休業", "休日"},
	"休み":  {"休暇", "休業"},
	"休業":  {"休暇", "休み"},
	"夏期":  {"夏", "8月"},
	"冬期":  {"冬", "年末", "年始"},
	"給与":  {"給料", "賃金", "報酬", "ボーナス"},
	"賞与":  {"ボーナス", "一時金", "給与"},
	"契約":  {"秘密保持", "NDA"},
	"旅行":  {"研修旅行", "社員旅行"},
	"建築士": {"一級建築士", "二級建築士", "資格"},
	"面談":  {"社員面談", "評価"},
	"売上":  {"売り上げ", "目標"},
	"お歳暮": {"贈答品", "お中元", "受け取り", "郵便物"},
	"お中元": {"贈答品", "お歳暮", "受け取り", "郵便物"},
	"贈答品": {"お歳暮", "お中元", "受け取り", "郵便物"},
}
