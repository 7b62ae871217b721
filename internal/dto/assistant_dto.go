package dto

type AskRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
}

type RankedDocumentDTO struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	SourceURL string `json:"source_url"`
	Score     int    `json:"score"`
}

type PerformanceDTO struct {
	FetchMs      int64 `json:"fetch_ms"`
	RankMs       int64 `json:"rank_ms"`
	GenerationMs int64 `json:"generation_ms"`
	TotalMs      int64 `json:"total_ms"`
}

type AskResponse struct {
	Question         string              `json:"question"`
	Answer           string              `json:"answer"`
	Mode             string              `json:"mode"`
	Keywords         []string            `json:"keywords"`
	Citations        []string            `json:"citations"`
	InvalidCitations []string            `json:"invalid_citations,omitempty"`
	CitedIDs         []string            `json:"cited_ids"`
	Documents        int                 `json:"documents"`
	Ranked           []RankedDocumentDTO `json:"ranked"`
	PromptTokens     int                 `json:"prompt_tokens"`
	Warnings         []string            `json:"warnings,omitempty"`
	ExportError      string              `json:"export_error,omitempty"`
	Performance      PerformanceDTO      `json:"performance"`
}

type PurgeCacheResponse struct {
	Sources []string `json:"sources"`
}
