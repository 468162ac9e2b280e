// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

// Package assessment holds the supply chain questionnaire and its scoring.
package assessment

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var defaultQuestions []byte

// Question is a single yes/partial/no item.
type Question struct {
	ID       string `json:"id" yaml:"id"`
	Text     string `json:"text" yaml:"text"`
	Guidance string `json:"guidance,omitempty" yaml:"guidance"`
}

// Section groups questions for scoring.
type Section struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description"`
	Questions   []Question `json:"questions" yaml:"questions"`
}

// Bank is an ordered questionnaire.
type Bank struct {
	Sections []Section `json:"sections" yaml:"sections"`

	sectionOf map[string]string
}

// ParseBank decodes a YAML questionnaire. Question IDs must be unique
// across sections.
func ParseBank(data []byte) (*Bank, error) {
	var b Bank
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parsing question bank: %w", err)
	}

	b.sectionOf = make(map[string]string)
	for _, s := range b.Sections {
		if s.ID == "" {
			return nil, fmt.Errorf("section %q has no id", s.Title)
		}
		for _, q := range s.Questions {
			if q.ID == "" {
				return nil, fmt.Errorf("question in section %q has no id", s.ID)
			}
			if prev, ok := b.sectionOf[q.ID]; ok {
				return nil, fmt.Errorf("duplicate question id %q in sections %q and %q", q.ID, prev, s.ID)
			}
			b.sectionOf[q.ID] = s.ID
		}
	}
	return &b, nil
}

var loadDefault = sync.OnceValues(func() (*Bank, error) {
	return ParseBank(defaultQuestions)
})

// DefaultBank returns the built-in questionnaire.
func DefaultBank() *Bank {
	b, err := loadDefault()
	if err != nil {
		panic(fmt.Sprintf("built-in question bank: %v", err))
	}
	return b
}

// SectionOf returns the section a question belongs to.
func (b *Bank) SectionOf(questionID string) (string, bool) {
	s, ok := b.sectionOf[questionID]
	return s, ok
}

// QuestionCount is the total number of questions.
func (b *Bank) QuestionCount() int {
	return len(b.sectionOf)
}
