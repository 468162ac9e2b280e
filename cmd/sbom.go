// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bonial-oss/vendor-risk/internal/output"
	"github.com/bonial-oss/vendor-risk/internal/sbom"
	"github.com/bonial-oss/vendor-risk/internal/state"
	"github.com/bonial-oss/vendor-risk/internal/types"
)

func newSBOMCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sbom",
		Short: "Analyze SBOM documents (CycloneDX JSON/XML, SPDX JSON/tag-value)",
	}
	cmd.AddCommand(
		newSBOMParseCommand(a),
		newSBOMDemoCommand(a),
		newSBOMUploadCommand(a),
		newSBOMListCommand(a),
		newSBOMShowCommand(a),
		newSBOMDeleteCommand(a),
	)
	return cmd
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		if len(data) == 0 {
			return nil, usageError("no input provided on stdin")
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// sbomError maps parser errors to usage errors.
func sbomError(err error) error {
	switch {
	case errors.Is(err, sbom.ErrUnsupportedExtension),
		errors.Is(err, sbom.ErrEmptyInput),
		errors.Is(err, sbom.ErrUnrecognizedFormat),
		errors.Is(err, sbom.ErrInvalidDocument):
		return usageError("%v", err)
	}
	return fmt.Errorf("parsing SBOM: %w", err)
}

// analysisReport turns a stored analysis into a component report.
func analysisReport(an *types.SBOMAnalysis) output.SBOMReport {
	return output.SBOMReport{
		Title:           an.Filename,
		Format:          an.FileType,
		SpecVersion:     an.AnalysisData.SpecVersion,
		Components:      an.AnalysisData.Components,
		Vulnerabilities: an.TotalVulnerabilities,
		RiskScore:       an.RiskScore,
	}
}

// localAnalysis builds an unsaved analysis from a parse result.
func localAnalysis(name string, res *sbom.Result) types.SBOMAnalysis {
	summary := res.Summary()
	return types.SBOMAnalysis{
		Filename:             name,
		FileType:             res.Format.String(),
		TotalComponents:      summary.TotalComponents,
		TotalVulnerabilities: summary.TotalVulnerabilities,
		RiskScore:            summary.RiskScore,
		AnalysisData:         res.AnalysisData(),
		CreatedAt:            timeNow().UTC(),
	}
}

func newSBOMParseCommand(a *app) *cobra.Command {
	var failBelow int
	cmd := &cobra.Command{
		Use:   "parse [FILE|-]",
		Short: "Parse an SBOM locally and score its components",
		Long: `Parse an SBOM without uploading it. Reads stdin when FILE is "-" or omitted.

Exits with code 1 when --fail-below is set and the overall risk score is
lower than the threshold.`,
		Example: `  vendor-risk sbom parse bom.cdx.json
  syft -o spdx-json alpine | vendor-risk sbom parse --fail-below 60`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			if failBelow < 0 || failBelow > 100 {
				return usageError("--fail-below must be between 0 and 100")
			}
			data, err := readInput(cmd, path)
			if err != nil {
				return err
			}
			parser, err := a.sbomParser()
			if err != nil {
				return err
			}
			res, err := parser.Parse(cmd.Context(), data, path)
			if err != nil {
				return sbomError(err)
			}

			name := filepath.Base(path)
			if path == "-" {
				name = "stdin"
			}
			an := localAnalysis(name, res)
			if err := a.render(an, func(w io.Writer, cfg output.TableConfig) error {
				return output.WriteComponents(w, analysisReport(&an), cfg)
			}); err != nil {
				return err
			}

			if failBelow > 0 && an.RiskScore < failBelow {
				return &ExitError{
					Code:    exitPolicy,
					Message: fmt.Sprintf("risk score %d is below threshold %d", an.RiskScore, failBelow),
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&failBelow, "fail-below", 0, "Exit code 1 if the overall risk score is below this value")
	return cmd
}

func newSBOMDemoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Show the sample analysis used when no SBOM is available",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			an := localAnalysis("demo", sbom.DemoComponents())
			return a.render(an, func(w io.Writer, cfg output.TableConfig) error {
				return output.WriteComponents(w, analysisReport(&an), cfg)
			})
		},
	}
}

func newSBOMUploadCommand(a *app) *cobra.Command {
	var vendorID string
	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload an SBOM for analysis and store the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sbom.CheckExtension(args[0]); err != nil {
				return usageError("%v", err)
			}
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			an, err := c.UploadSBOM(cmd.Context(), filepath.Base(args[0]), data, vendorID)
			if err != nil {
				return apiError(err)
			}
			a.logger.Debug("sbom uploaded", "id", an.ID, "components", an.TotalComponents)
			a.notify(state.NotifySuccess, "SBOM %s analyzed: %d components, risk score %d", an.Filename, an.TotalComponents, an.RiskScore)
			return a.render(an, func(w io.Writer, cfg output.TableConfig) error {
				return output.WriteComponents(w, analysisReport(an), cfg)
			})
		},
	}
	cmd.Flags().StringVar(&vendorID, "vendor", "", "Attach the analysis to this vendor ID")
	return cmd
}

func newSBOMListCommand(a *app) *cobra.Command {
	var vendorID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored SBOM analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			list, err := c.ListAnalyses(cmd.Context(), vendorID)
			if err != nil {
				return apiError(err)
			}
			return a.render(list, func(w io.Writer, cfg output.TableConfig) error {
				return output.WriteAnalyses(w, list, cfg)
			})
		},
	}
	cmd.Flags().StringVar(&vendorID, "vendor", "", "Only analyses attached to this vendor ID")
	return cmd
}

func newSBOMShowCommand(a *app) *cobra.Command {
	var minScore int
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show the components of a stored analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			an, err := c.GetAnalysis(cmd.Context(), args[0])
			if err != nil {
				return apiError(err)
			}
			if minScore > 0 {
				an.AnalysisData.Components = riskiest(an.AnalysisData.Components, minScore)
			}
			return a.render(an, func(w io.Writer, cfg output.TableConfig) error {
				return output.WriteComponents(w, analysisReport(an), cfg)
			})
		},
	}
	cmd.Flags().IntVar(&minScore, "below", 0, "Only components scoring below this value")
	return cmd
}

// riskiest keeps components whose score is below limit.
func riskiest(components []types.Component, limit int) []types.Component {
	var out []types.Component
	for _, c := range components {
		if c.RiskScore < limit {
			out = append(out, c)
		}
	}
	return out
}

func newSBOMDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a stored analysis",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			if err := c.DeleteAnalysis(cmd.Context(), args[0]); err != nil {
				return apiError(err)
			}
			fmt.Fprintf(a.stdout, "Deleted analysis %s\n", args[0])
			return nil
		},
	}
}
