package kintone

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"kb-assistant-be/internal/pkg/apperror"
	"kb-assistant-be/pkg/knowledge"
)

const (
	SourceMeetingMinutes = "meeting_minutes"
	SourceSchedule       = "schedule"
	SourceRulebook       = "rulebook"
)

// ScheduleTable maps a schedule subtable to the tab it is shown on.
type ScheduleTable struct {
	Code  string
	Label string
	Tab   int
}

// ScheduleTables follows the tab layout of the annual schedule app.
// Table_15 holds July and Table_14 holds August.
var ScheduleTables = []ScheduleTable{
	{Code: "Table_3", Label: "毎月", Tab: 0},
	{Code: "Table_4", Label: "随時", Tab: 1},
	{Code: "Table_5", Label: "10月", Tab: 2},
	{Code: "Table_6", Label: "11月", Tab: 3},
	{Code: "Table_7", Label: "12月", Tab: 4},
	{Code: "Table_8", Label: "1月", Tab: 5},
	{Code: "Table_9", Label: "2月", Tab: 6},
	{Code: "Table_10", Label: "3月", Tab: 7},
	{Code: "Table_11", Label: "4月", Tab: 8},
	{Code: "Table_12", Label: "5月", Tab: 9},
	{Code: "Table_13", Label: "6月", Tab: 10},
	{Code: "Table_15", Label: "7月", Tab: 11},
	{Code: "Table_14", Label: "8月", Tab: 12},
	{Code: "Table_16", Label: "9月", Tab: 13},
}

// recruitmentTab only carries mid-career recruitment rows.
const recruitmentTab = 1

// SourceConfig is what every kintone source needs besides the client.
// LinkBase is the "https://{domain}" prefix used for record links and
// TokenKey names the environment variable reported when Token is empty.
type SourceConfig struct {
	App      App
	LinkBase string
	TokenKey string
}

func (c SourceConfig) check() error {
	var missing []string
	if c.LinkBase == "" {
		missing = append(missing, "KINTONE_DOMAIN")
	}
	if c.App.Token == "" {
		missing = append(missing, c.TokenKey)
	}
	if len(missing) > 0 {
		return &apperror.ConfigurationError{Keys: missing}
	}
	return nil
}

func (c SourceConfig) recordURL(id string) string {
	return fmt.Sprintf("%s/k/%s/show#record=%s", strings.TrimRight(c.LinkBase, "/"), c.App.ID, id)
}

// MeetingMinutesSource exports all-hands meeting minutes held on or after
// FromDate, newest first.
type MeetingMinutesSource struct {
	client   *Client
	cfg      SourceConfig
	fromDate string
}

func NewMeetingMinutesSource(client *Client, cfg SourceConfig, fromDate string) *MeetingMinutesSource {
	return &MeetingMinutesSource{client: client, cfg: cfg, fromDate: fromDate}
}

func (s *MeetingMinutesSource) Name() string { return SourceMeetingMinutes }

func (s *MeetingMinutesSource) Check() error { return s.cfg.check() }

func (s *MeetingMinutesSource) Fetch(ctx context.Context) ([]knowledge.TaggedDocument, error) {
	if err := s.cfg.check(); err != nil {
		return nil, err
	}

	condition := ""
	if s.fromDate != "" {
		condition = fmt.Sprintf(`日付 >= "%s"`, s.fromDate)
	}

	records, err := s.client.GetAllRecords(ctx, s.cfg.App, condition, "$id desc")
	if err != nil {
		return nil, err
	}
	return ConvertMeetingMinutes(records, s.cfg), nil
}

// ConvertMeetingMinutes builds one document per record that has minutes rows.
func ConvertMeetingMinutes(records []Record, cfg SourceConfig) []knowledge.TaggedDocument {
	docs := make([]knowledge.TaggedDocument, 0, len(records))

	for _, rec := range records {
		id := rec.ID()
		date := orDefault(rec.String("日付"), "日付不明")
		period := orDefault(rec.String("ドロップダウン"), "期不明")

		var rows []string
		for _, row := range rec.Table("Table") {
			if v := strings.TrimSpace(row.String("文字列__複数行_")); v != "" {
				rows = append(rows, v)
			}
		}
		if len(rows) == 0 {
			continue
		}

		header := []string{
			"データソース: JM記録アプリ - 全体ミーティング",
			"日付: " + date,
			"期: " + period,
		}

		docs = append(docs, knowledge.TaggedDocument{
			ID:        fmt.Sprintf("jm_%s_%s", cfg.App.ID, id),
			Kind:      knowledge.KindRecord,
			Source:    SourceMeetingMinutes,
			SourceURL: cfg.recordURL(id),
			Body:      joinBody(header, rows),
		})
	}

	return docs
}

// ScheduleSource exports the single annual-schedule record, split into one
// document per tab.
type ScheduleSource struct {
	client   *Client
	cfg      SourceConfig
	recordID string
}

func NewScheduleSource(client *Client, cfg SourceConfig, recordID string) *ScheduleSource {
	return &ScheduleSource{client: client, cfg: cfg, recordID: recordID}
}

func (s *ScheduleSource) Name() string { return SourceSchedule }

func (s *ScheduleSource) Check() error { return s.cfg.check() }

func (s *ScheduleSource) Fetch(ctx context.Context) ([]knowledge.TaggedDocument, error) {
	if err := s.cfg.check(); err != nil {
		return nil, err
	}

	rec, err := s.client.GetRecord(ctx, s.cfg.App, s.recordID)
	if err != nil {
		return nil, err
	}
	return ConvertSchedule(rec, s.cfg), nil
}

// ConvertSchedule groups the schedule subtables by tab, ordered by tab number.
func ConvertSchedule(rec Record, cfg SourceConfig) []knowledge.TaggedDocument {
	id := rec.ID()
	period := orDefault(rec.String("数値"), "期不明")

	byTab := make(map[int][]ScheduleTable)
	for _, t := range ScheduleTables {
		if len(rec.Table(t.Code)) == 0 {
			continue
		}
		byTab[t.Tab] = append(byTab[t.Tab], t)
	}

	tabs := make([]int, 0, len(byTab))
	for tab := range byTab {
		tabs = append(tabs, tab)
	}
	sort.Ints(tabs)

	docs := make([]knowledge.TaggedDocument, 0, len(tabs))
	for _, tab := range tabs {
		var sections []string
		for _, t := range byTab[tab] {
			var rows []string
			for _, row := range rec.Table(t.Code) {
				texts := row.Texts()
				if len(texts) == 0 {
					continue
				}
				if tab == recruitmentTab && !IsCareerRecruitmentRow(strings.Join(texts, " ")) {
					continue
				}
				rows = append(rows, strings.Join(texts, "\n"))
			}
			if len(rows) == 0 {
				continue
			}
			sections = append(sections, "【"+t.Label+"】")
			sections = append(sections, rows...)
		}
		if len(sections) == 0 {
			continue
		}

		header := []string{
			"データソース: 年間スケジュールアプリ",
			fmt.Sprintf("期: %s期", period),
			fmt.Sprintf("Tab: %d", tab),
		}

		docs = append(docs, knowledge.TaggedDocument{
			ID:        fmt.Sprintf("schedule_%s_%s_tab%d", cfg.App.ID, id, tab),
			Kind:      knowledge.KindSchedule,
			Source:    SourceSchedule,
			SourceURL: fmt.Sprintf("%s&tab=%d", cfg.recordURL(id), tab),
			Body:      joinBody(header, sections),
		})
	}

	return docs
}

// IsCareerRecruitmentRow reports whether a row of the ad-hoc tab is about
// mid-career hiring rather than staff interviews or evaluations.
func IsCareerRecruitmentRow(text string) bool {
	recruitment := strings.Contains(text, "キャリア採用") ||
		strings.Contains(text, "中途採用") ||
		(strings.Contains(text, "採用") &&
			(strings.Contains(text, "選考") || strings.Contains(text, "面接") || strings.Contains(text, "応募")))

	interview := strings.Contains(text, "社員面談") ||
		strings.Contains(text, "SGシート") ||
		strings.Contains(text, "面談室") ||
		strings.Contains(text, "評価")

	return recruitment && !interview
}

// RulebookSource exports every rulebook record in id order.
type RulebookSource struct {
	client *Client
	cfg    SourceConfig
}

func NewRulebookSource(client *Client, cfg SourceConfig) *RulebookSource {
	return &RulebookSource{client: client, cfg: cfg}
}

func (s *RulebookSource) Name() string { return SourceRulebook }

func (s *RulebookSource) Check() error { return s.cfg.check() }

func (s *RulebookSource) Fetch(ctx context.Context) ([]knowledge.TaggedDocument, error) {
	if err := s.cfg.check(); err != nil {
		return nil, err
	}

	records, err := s.client.GetAllRecords(ctx, s.cfg.App, "", "$id asc")
	if err != nil {
		return nil, err
	}
	return ConvertRulebook(records, s.cfg), nil
}

func ConvertRulebook(records []Record, cfg SourceConfig) []knowledge.TaggedDocument {
	docs := make([]knowledge.TaggedDocument, 0, len(records))

	for _, rec := range records {
		id := rec.ID()

		var rows []string
		for _, row := range rec.Table("Table") {
			for _, code := range []string{"ルール", "ルール_0"} {
				if v := strings.TrimSpace(row.String(code)); v != "" {
					rows = append(rows, v)
				}
			}
		}
		if len(rows) == 0 {
			continue
		}

		header := []string{
			"データソース: ルールブック",
			"分類: " + orDefault(rec.String("分類"), "未分類"),
			"項目: " + orDefault(rec.String("項目"), "タイトルなし"),
		}

		docs = append(docs, knowledge.TaggedDocument{
			ID:        fmt.Sprintf("rule_%s_%s", cfg.App.ID, id),
			Kind:      knowledge.KindRule,
			Source:    SourceRulebook,
			SourceURL: cfg.recordURL(id),
			Body:      joinBody(header, rows),
		})
	}

	return docs
}

func joinBody(header, blocks []string) string {
	var b strings.Builder
	b.WriteString(strings.Join(header, "\n"))
	for _, block := range blocks {
		b.WriteString("\n\n")
		b.WriteString(block)
	}
	return b.String()
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
