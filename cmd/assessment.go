// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bonial-oss/vendor-risk/internal/assessment"
	"github.com/bonial-oss/vendor-risk/internal/output"
	"github.com/bonial-oss/vendor-risk/internal/state"
	"github.com/bonial-oss/vendor-risk/internal/types"
)

func newAssessmentCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "assessment",
		Aliases: []string{"assessments"},
		Short:   "Run NIST SP 800-161 supply chain assessments",
	}
	cmd.AddCommand(
		newAssessmentQuestionsCommand(a),
		newAssessmentListCommand(a),
		newAssessmentStartCommand(a),
		newAssessmentAnswerCommand(a),
		newAssessmentCompleteCommand(a),
		newAssessmentShowCommand(a),
		newAssessmentDeleteCommand(a),
	)
	return cmd
}

func (a *app) assessmentState() (*state.AssessmentState, error) {
	c, err := a.authedClient()
	if err != nil {
		return nil, err
	}
	return state.NewAssessmentState(c, assessment.DefaultBank()), nil
}

func (a *app) renderAssessment(as *types.Assessment) error {
	return a.render(as, func(w io.Writer, cfg output.TableConfig) error {
		return output.WriteAssessment(w, as, assessment.DefaultBank(), cfg)
	})
}

func newAssessmentQuestionsCommand(a *app) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "List the assessment questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bank := assessment.DefaultBank()
			var answers map[string]string
			if id != "" {
				c, err := a.authedClient()
				if err != nil {
					return err
				}
				as, err := c.GetAssessment(cmd.Context(), id)
				if err != nil {
					return apiError(err)
				}
				answers = as.Answers
			}
			return a.render(bank, func(w io.Writer, cfg output.TableConfig) error {
				return output.WriteQuestions(w, bank, answers, cfg)
			})
		},
	}
	cmd.Flags().StringVar(&id, "assessment", "", "Show the answers given in this assessment")
	return cmd
}

func newAssessmentListCommand(a *app) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assessments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := types.AssessmentStatus(status)
			if status != "" && !filter.Valid() {
				return usageError("invalid status %q (expected in_progress or completed)", status)
			}
			st, err := a.assessmentState()
			if err != nil {
				return err
			}
			if err := st.Fetch(cmd.Context()); err != nil {
				return apiError(err)
			}
			var list []types.Assessment
			for _, as := range st.Assessments() {
				if status == "" || as.Status == filter {
					list = append(list, as)
				}
			}
			return a.render(list, func(w io.Writer, cfg output.TableConfig) error {
				if err := output.WriteAssessments(w, list, assessment.DefaultBank(), cfg); err != nil {
					return err
				}
				s := st.Summary()
				_, err := fmt.Fprintf(w, "Completed: %d, In progress: %d, Average score: %d\n", s.Completed, s.InProgress, s.AverageScore)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only assessments with this status: in_progress, completed")
	return cmd
}

func newAssessmentStartCommand(a *app) *cobra.Command {
	var in types.AssessmentInput
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a new assessment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.assessmentState()
			if err != nil {
				return err
			}
			as, err := st.Start(cmd.Context(), in)
			if err != nil {
				return apiError(err)
			}
			return a.renderAssessment(as)
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "Assessment name")
	cmd.Flags().StringVar(&in.VendorID, "vendor", "", "Vendor ID the assessment covers")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newAssessmentAnswerCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "answer ID QUESTION=ANSWER...",
		Short:   "Record answers (yes, partial, no, not_applicable)",
		Example: `  vendor-risk assessment answer 3f2a gov-1=yes gov-2=partial sup-1=n/a`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			answers, err := parseKeyValues(args[1:])
			if err != nil {
				return err
			}
			st, err := a.assessmentState()
			if err != nil {
				return err
			}
			as, err := st.Answer(cmd.Context(), args[0], answers)
			if errors.Is(err, assessment.ErrUnknownQuestion) || errors.Is(err, assessment.ErrInvalidAnswer) {
				return usageError("%v", err)
			}
			if err != nil {
				return apiError(err)
			}
			return a.renderAssessment(as)
		},
	}
}

func newAssessmentCompleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "complete ID",
		Short: "Complete an assessment and compute its final score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.assessmentState()
			if err != nil {
				return err
			}
			as, err := st.Complete(cmd.Context(), args[0])
			if err != nil {
				return apiError(err)
			}
			a.notify(state.NotifySuccess, "Assessment %q completed: overall score %d", as.Name, as.OverallScore)
			return a.renderAssessment(as)
		},
	}
}

func newAssessmentShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show an assessment with section scores",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			as, err := c.GetAssessment(cmd.Context(), args[0])
			if err != nil {
				return apiError(err)
			}
			return a.renderAssessment(as)
		},
	}
}

func newAssessmentDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete an assessment",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.assessmentState()
			if err != nil {
				return err
			}
			if err := st.Delete(cmd.Context(), args[0]); err != nil {
				return apiError(err)
			}
			fmt.Fprintf(a.stdout, "Deleted assessment %s\n", args[0])
			return nil
		},
	}
}
