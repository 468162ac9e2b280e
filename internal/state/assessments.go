// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"context"

	"github.com/bonial-oss/vendor-risk/internal/assessment"
	"github.com/bonial-oss/vendor-risk/internal/query"
	"github.com/bonial-oss/vendor-risk/internal/types"
)

// AssessmentBackend persists supply chain assessments.
type AssessmentBackend interface {
	ListAssessments(ctx context.Context) ([]types.Assessment, error)
	CreateAssessment(ctx context.Context, in types.AssessmentInput) (*types.Assessment, error)
	AnswerAssessment(ctx context.Context, id string, answers map[string]string) (*types.Assessment, error)
	CompleteAssessment(ctx context.Context, id string) (*types.Assessment, error)
	DeleteAssessment(ctx context.Context, id string) error
}

// AssessmentState is the assessment list container.
type AssessmentState struct {
	base
	backend     AssessmentBackend
	bank        *assessment.Bank
	assessments []types.Assessment
}

// NewAssessmentState creates an empty container. A nil bank means the
// built-in questionnaire.
func NewAssessmentState(backend AssessmentBackend, bank *assessment.Bank) *AssessmentState {
	if bank == nil {
		bank = assessment.DefaultBank()
	}
	return &AssessmentState{backend: backend, bank: bank}
}

// Assessments returns a copy of the current list.
func (s *AssessmentState) Assessments() []types.Assessment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Assessment, len(s.assessments))
	copy(out, s.assessments)
	return out
}

// Get returns one assessment from the current list.
func (s *AssessmentState) Get(id string) (types.Assessment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.assessments {
		if a.ID == id {
			return a, true
		}
	}
	return types.Assessment{}, false
}

func (s *AssessmentState) Fetch(ctx context.Context) error {
	s.begin()
	list, err := s.backend.ListAssessments(ctx)
	return s.finish(err, func() { s.assessments = list })
}

func (s *AssessmentState) Start(ctx context.Context, in types.AssessmentInput) (*types.Assessment, error) {
	s.begin()
	a, err := s.backend.CreateAssessment(ctx, in)
	err = s.finish(err, func() {
		s.assessments = append([]types.Assessment{*a}, s.assessments...)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Answer merges answers after checking them against the questionnaire,
// so invalid input never reaches the backend.
func (s *AssessmentState) Answer(ctx context.Context, id string, answers map[string]string) (*types.Assessment, error) {
	s.begin()
	normalized, err := s.bank.Validate(answers)
	if err != nil {
		return nil, s.finish(err, nil)
	}
	a, err := s.backend.AnswerAssessment(ctx, id, normalized)
	err = s.finish(err, func() { s.replace(*a) })
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentState) Complete(ctx context.Context, id string) (*types.Assessment, error) {
	s.begin()
	a, err := s.backend.CompleteAssessment(ctx, id)
	err = s.finish(err, func() { s.replace(*a) })
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentState) Delete(ctx context.Context, id string) error {
	s.begin()
	err := s.backend.DeleteAssessment(ctx, id)
	return s.finish(err, func() {
		out := s.assessments[:0]
		for _, a := range s.assessments {
			if a.ID != id {
				out = append(out, a)
			}
		}
		s.assessments = out
	})
}

// CountsByStatus counts assessments per lifecycle status.
func (s *AssessmentState) CountsByStatus() map[types.AssessmentStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := map[types.AssessmentStatus]int{
		types.StatusInProgress: 0,
		types.StatusCompleted:  0,
	}
	for _, a := range s.assessments {
		counts[a.Status]++
	}
	return counts
}

// Summary aggregates the current list.
func (s *AssessmentState) Summary() query.AssessmentStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return query.AssessmentSummary(s.assessments)
}

// Progress reports answered and total question counts for one assessment.
func (s *AssessmentState) Progress(id string) (answered, total int, ok bool) {
	a, ok := s.Get(id)
	if !ok {
		return 0, s.bank.QuestionCount(), false
	}
	answered, total = s.bank.Progress(a.Answers)
	return answered, total, true
}

// replace expects s.mu to be held.
func (s *AssessmentState) replace(a types.Assessment) {
	for i := range s.assessments {
		if s.assessments[i].ID == a.ID {
			s.assessments[i] = a
			return
		}
	}
	s.assessments = append(s.assessments, a)
}
