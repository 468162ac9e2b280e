// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/bonial-oss/vendor-risk/internal/output"
	"github.com/bonial-oss/vendor-risk/internal/risk"
)

func newRiskCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Score vendor risk from weighted factors",
	}
	cmd.AddCommand(newRiskCalcCommand(a), newRiskFactorsCommand(a))
	return cmd
}

func newRiskCalcCommand(a *app) *cobra.Command {
	var (
		ratings []string
		offline bool
	)
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate a risk score from factor ratings (1 = low risk, 5 = high risk)",
		Example: `  vendor-risk risk calc --factor data_access=4 --factor security_posture=2
  vendor-risk risk calc --offline --factor data_access=5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := parseRatings(ratings)
			if err != nil {
				return err
			}

			var result *risk.Assessment
			if offline {
				result, err = risk.ScoreFactors(parsed, nil)
				if errors.Is(err, risk.ErrNoRatings) || errors.Is(err, risk.ErrUnknownFactor) || errors.Is(err, risk.ErrInvalidRating) {
					return usageError("%v", err)
				}
			} else {
				c, cerr := a.authedClient()
				if cerr != nil {
					return cerr
				}
				result, err = c.CalculateRisk(cmd.Context(), parsed)
				err = apiError(err)
			}
			if err != nil {
				return err
			}
			return a.render(result, func(w io.Writer, cfg output.TableConfig) error {
				return output.WriteRiskAssessment(w, result, cfg)
			})
		},
	}
	cmd.Flags().StringArrayVar(&ratings, "factor", nil, "Factor rating as id=1..5 (repeatable)")
	cmd.Flags().BoolVar(&offline, "offline", false, "Compute locally instead of calling the API")
	_ = cmd.MarkFlagRequired("factor")
	return cmd
}

func newRiskFactorsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "factors",
		Short: "List the risk factors and their weights",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			factors := risk.DefaultFactors
			return a.render(factors, func(w io.Writer, cfg output.TableConfig) error {
				return output.WriteFactors(w, factors, cfg)
			})
		},
	}
}

func newDashboardCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show an overview of vendors, SBOM analyses and assessments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			d, err := c.Dashboard(cmd.Context())
			if err != nil {
				return apiError(err)
			}
			return a.render(d, func(w io.Writer, cfg output.TableConfig) error {
				return output.WriteDashboard(w, d, cfg)
			})
		},
	}
}
