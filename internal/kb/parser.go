// Package kb parses knowledge-unit markdown files: a YAML front-matter
// header with categorical tags followed by the technique body.
package kb

import (
	"fmt"
	"regexp"
	"strings"

	"rag-mentor/internal/models"

	"gopkg.in/yaml.v3"
)

const (
	defaultLevel     = "база"
	defaultRiskiness = 1

	// embedBudget caps how much of the body feeds the embedding, in runes.
	embedBudget = 1000
)

var defaultUserLevelFit = []string{"новичок"}

// stringList accepts both a YAML scalar and a YAML sequence, since authors
// write single-valued tags without brackets.
type stringList []string

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		if s != "" {
			*l = stringList{s}
		}
		return nil
	case yaml.SequenceNode:
		var ss []string
		if err := value.Decode(&ss); err != nil {
			return err
		}
		*l = stringList(ss)
		return nil
	default:
		return fmt.Errorf("unexpected YAML node kind %d for tag list", value.Kind)
	}
}

type frontMatter struct {
	ID           string     `yaml:"id"`
	Title        string     `yaml:"title"`
	Level        string     `yaml:"Level"`
	UserLevelFit stringList `yaml:"UserLevelFit"`
	Stage        stringList `yaml:"Stage"`
	Channel      stringList `yaml:"Channel"`
	Goal         stringList `yaml:"Goal"`
	Style        stringList `yaml:"Style"`
	Riskiness    *int       `yaml:"Riskiness"`
}

// Parse builds a KnowledgeUnit from a markdown document. fallbackID (the
// file stem) is used when the header carries no id. The embedding is left
// nil; the loader fills it in.
func Parse(fallbackID string, data []byte) (*models.KnowledgeUnit, error) {
	content := string(data)
	if !strings.HasPrefix(content, "---") {
		return nil, fmt.Errorf("missing front-matter header")
	}

	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return nil, fmt.Errorf("unterminated front-matter header")
	}

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(parts[1]), &fm); err != nil {
		return nil, fmt.Errorf("invalid front-matter YAML: %w", err)
	}

	body := strings.TrimSpace(parts[2])

	ku := &models.KnowledgeUnit{
		KuID:         fm.ID,
		Title:        fm.Title,
		Content:      body,
		Level:        fm.Level,
		UserLevelFit: fm.UserLevelFit,
		Stage:        fm.Stage,
		Channel:      fm.Channel,
		Goal:         fm.Goal,
		Style:        fm.Style,
		Riskiness:    defaultRiskiness,
	}
	if fm.Riskiness != nil {
		ku.Riskiness = *fm.Riskiness
	}
	if ku.KuID == "" {
		ku.KuID = fallbackID
	}
	if ku.Title == "" {
		ku.Title = ku.KuID
	}
	if ku.Level == "" {
		ku.Level = defaultLevel
	}
	if len(ku.UserLevelFit) == 0 {
		ku.UserLevelFit = defaultUserLevelFit
	}

	return ku, nil
}

var (
	markdownLinkRe   = regexp.MustCompile(`\[([^\]]+)\]\([^\)]+\)`)
	markdownSymbolRe = regexp.MustCompile("[#*_`]")
)

// EmbeddingText is the text actually embedded for a unit: title plus the
// start of the body, with markdown markup stripped so it does not pollute
// the vector.
func EmbeddingText(ku *models.KnowledgeUnit) string {
	body := markdownLinkRe.ReplaceAllString(ku.Content, "$1")
	body = markdownSymbolRe.ReplaceAllString(body, "")

	runes := []rune(body)
	if len(runes) > embedBudget {
		body = string(runes[:embedBudget])
	}

	return ku.Title + "\n" + body
}
