package models

import "time"

// KnowledgeUnit is a single advice technique document: tagged, embedded and
// stored in the knowledge base. Units are created and updated by the
// ingestion pipeline (cmd/loadkb) and never deleted by the service.
type KnowledgeUnit struct {
	ID           int64     `db:"id"`
	KuID         string    `db:"ku_id"`
	Title        string    `db:"title"`
	Content      string    `db:"content"`
	Level        string    `db:"level"`
	UserLevelFit []string  `db:"user_level_fit"`
	Stage        []string  `db:"stage"`
	Channel      []string  `db:"channel"`
	Goal         []string  `db:"goal"`
	Style        []string  `db:"style"`
	Riskiness    int       `db:"riskiness"`
	Embedding    []float32 `db:"embedding"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// ScoredUnit is a retrieval result: a knowledge unit with its cosine
// similarity to the query embedding.
type ScoredUnit struct {
	Unit       *KnowledgeUnit
	Similarity float64
}
