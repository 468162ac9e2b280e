// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package assessment

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Answer is the response to a question.
type Answer string

const (
	AnswerYes           Answer = "yes"
	AnswerPartial       Answer = "partial"
	AnswerNo            Answer = "no"
	AnswerNotApplicable Answer = "not_applicable"
)

var (
	ErrUnknownQuestion = errors.New("unknown question")
	ErrInvalidAnswer   = errors.New("invalid answer")
)

// ParseAnswer accepts the canonical values plus "n/a" and "na".
func ParseAnswer(s string) (Answer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes":
		return AnswerYes, nil
	case "partial":
		return AnswerPartial, nil
	case "no":
		return AnswerNo, nil
	case "not_applicable", "n/a", "na":
		return AnswerNotApplicable, nil
	default:
		return "", fmt.Errorf("%w: %q (expected yes, partial, no or not_applicable)", ErrInvalidAnswer, s)
	}
}

// points returns the score for a, and false when it does not count.
func (a Answer) points() (int, bool) {
	switch a {
	case AnswerYes:
		return 100, true
	case AnswerPartial:
		return 50, true
	case AnswerNo:
		return 0, true
	default:
		return 0, false
	}
}

// Validate normalizes answers and rejects unknown questions or values.
func (b *Bank) Validate(answers map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(answers))
	for id, raw := range answers {
		if _, ok := b.sectionOf[id]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownQuestion, id)
		}
		a, err := ParseAnswer(raw)
		if err != nil {
			return nil, fmt.Errorf("question %q: %w", id, err)
		}
		out[id] = string(a)
	}
	return out, nil
}

// Result is a scored assessment.
type Result struct {
	SectionScores map[string]int `json:"section_scores"`
	Overall       int            `json:"overall_score"`
}

// Score computes per-section and overall scores. Sections with no scored
// answers are left out and do not drag the overall score down.
func (b *Bank) Score(answers map[string]string) (Result, error) {
	normalized, err := b.Validate(answers)
	if err != nil {
		return Result{}, err
	}

	sums := make(map[string]int)
	counts := make(map[string]int)
	for id, a := range normalized {
		pts, ok := Answer(a).points()
		if !ok {
			continue
		}
		section := b.sectionOf[id]
		sums[section] += pts
		counts[section]++
	}

	res := Result{SectionScores: make(map[string]int, len(counts))}
	if len(counts) == 0 {
		return res, nil
	}

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	total := 0
	for _, id := range ids {
		score := int(math.Round(float64(sums[id]) / float64(counts[id])))
		res.SectionScores[id] = score
		total += score
	}
	res.Overall = int(math.Round(float64(total) / float64(len(ids))))
	return res, nil
}

// Progress reports how many questions have an answer of any kind.
func (b *Bank) Progress(answers map[string]string) (answered, total int) {
	for id := range answers {
		if _, ok := b.sectionOf[id]; ok {
			answered++
		}
	}
	return answered, b.QuestionCount()
}
