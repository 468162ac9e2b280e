// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bonial-oss/vendor-risk/internal/output"
	"github.com/bonial-oss/vendor-risk/internal/query"
	"github.com/bonial-oss/vendor-risk/internal/state"
	"github.com/bonial-oss/vendor-risk/internal/types"
)

func newVendorCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "vendor",
		Aliases: []string{"vendors"},
		Short:   "Manage vendors",
	}
	cmd.AddCommand(
		newVendorListCommand(a),
		newVendorShowCommand(a),
		newVendorAddCommand(a),
		newVendorUpdateCommand(a),
		newVendorDeleteCommand(a),
		newVendorBulkCommand(a),
		newVendorStatsCommand(a),
	)
	return cmd
}

// vendorFields are the editable vendor attributes shared by add, update
// and bulk.
type vendorFields struct {
	name         string
	industry     string
	website      string
	contactEmail string
	riskScore    int
	riskLevel    string
	compliance   string
	assessed     string
	notes        string
	factors      []string
}

func (f *vendorFields) register(flags *pflag.FlagSet, withName bool) {
	if withName {
		flags.StringVar(&f.name, "name", "", "Vendor name")
	}
	flags.StringVar(&f.industry, "industry", "", "Industry")
	flags.StringVar(&f.website, "website", "", "Website URL")
	flags.StringVar(&f.contactEmail, "contact-email", "", "Contact email")
	flags.IntVar(&f.riskScore, "risk-score", 0, "Risk score (0-100, higher is safer)")
	flags.StringVar(&f.riskLevel, "risk-level", "", "Risk level: Low, Medium, High, Critical")
	flags.StringVar(&f.compliance, "compliance", "", "Compliance status: Compliant, Partial, Non-Compliant")
	flags.StringVar(&f.assessed, "assessed", "", "Last assessment date (YYYY-MM-DD)")
	flags.StringVar(&f.notes, "notes", "", "Free-form notes")
}

// patch builds a VendorPatch from the flags the user actually set.
func (f *vendorFields) patch(flags *pflag.FlagSet) (types.VendorPatch, error) {
	var p types.VendorPatch
	if flags.Changed("name") {
		p.Name = &f.name
	}
	if flags.Changed("industry") {
		p.Industry = &f.industry
	}
	if flags.Changed("website") {
		p.Website = &f.website
	}
	if flags.Changed("contact-email") {
		p.ContactEmail = &f.contactEmail
	}
	if flags.Changed("risk-score") {
		p.RiskScore = &f.riskScore
	}
	if flags.Changed("risk-level") {
		l, err := types.ParseRiskLevel(f.riskLevel)
		if err != nil {
			return p, usageError("%v", err)
		}
		p.RiskLevel = &l
	}
	if flags.Changed("compliance") {
		c, err := types.ParseComplianceStatus(f.compliance)
		if err != nil {
			return p, usageError("%v", err)
		}
		p.ComplianceStatus = &c
	}
	if flags.Changed("assessed") {
		t, err := parseDate(f.assessed)
		if err != nil {
			return p, err
		}
		p.LastAssessmentDate = &t
	}
	if flags.Changed("notes") {
		p.Notes = &f.notes
	}
	return p, nil
}

// input builds a VendorInput for creation.
func (f *vendorFields) input(flags *pflag.FlagSet) (types.VendorInput, error) {
	p, err := f.patch(flags)
	if err != nil {
		return types.VendorInput{}, err
	}
	in := types.VendorInput{
		Name:               f.name,
		Industry:           f.industry,
		Website:            f.website,
		ContactEmail:       f.contactEmail,
		RiskScore:          p.RiskScore,
		LastAssessmentDate: p.LastAssessmentDate,
		Notes:              f.notes,
	}
	if p.RiskLevel != nil {
		in.RiskLevel = *p.RiskLevel
	}
	if p.ComplianceStatus != nil {
		in.ComplianceStatus = *p.ComplianceStatus
	}
	if len(f.factors) > 0 {
		if in.RiskScore != nil {
			return in, &ExitError{Code: exitIncompatible, Message: "--risk-score and --factor are mutually exclusive"}
		}
		factors, err := parseRatings(f.factors)
		if err != nil {
			return in, err
		}
		in.Factors = factors
	}
	return in, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, usageError("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return t, nil
}

// parseKeyValues parses key=value arguments.
func parseKeyValues(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, usageError("invalid argument %q (expected key=value)", arg)
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}

// parseRatings parses factor=rating arguments.
func parseRatings(args []string) (map[string]int, error) {
	kv, err := parseKeyValues(args)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(kv))
	for k, v := range kv {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, usageError("invalid rating %q for %s (expected a number)", v, k)
		}
		out[k] = n
	}
	return out, nil
}

func newVendorListCommand(a *app) *cobra.Command {
	var (
		search     string
		levels     []string
		compliance []string
		sortBy     string
		desc       bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List vendors with optional filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := query.ParseFilter(search, levels, compliance, sortBy, desc)
			if err != nil {
				return usageError("%v", err)
			}
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			vendors := state.NewVendorState(c)
			if err := vendors.Fetch(cmd.Context()); err != nil {
				return apiError(err)
			}
			list := vendors.Filtered(filter)
			return a.render(list, func(w io.Writer, cfg output.TableConfig) error {
				return output.WriteVendors(w, list, cfg)
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&search, "search", "s", "", "Match name or industry (case-insensitive)")
	flags.StringSliceVar(&levels, "risk-level", nil, "Only these risk levels (comma separated)")
	flags.StringSliceVar(&compliance, "compliance", nil, "Only these compliance statuses (comma separated)")
	flags.StringVar(&sortBy, "sort-by", "name", "Sort by: name, risk_score, risk_level, compliance, last_assessment, created_at")
	flags.BoolVar(&desc, "desc", false, "Sort in descending order")
	return cmd
}

func newVendorShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a vendor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			v, err := c.GetVendor(cmd.Context(), args[0])
			if err != nil {
				return apiError(err)
			}
			return a.render(v, func(w io.Writer, cfg output.TableConfig) error {
				return output.WriteVendor(w, v, cfg)
			})
		},
	}
}

func newVendorAddCommand(a *app) *cobra.Command {
	var fields vendorFields
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a vendor",
		Long: `Add a vendor. The risk score is taken from --risk-score, or computed from
--factor ratings (see "vendor-risk risk factors"), or defaults to 50.`,
		Example: `  vendor-risk vendor add --name "Acme Cloud" --industry Hosting --risk-score 80
  vendor-risk vendor add --name "Beta Payroll" --factor data_access=5 --factor financial_stability=2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := fields.input(cmd.Flags())
			if err != nil {
				return err
			}
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			v, err := state.NewVendorState(c).Create(cmd.Context(), in)
			if err != nil {
				return apiError(err)
			}
			return a.render(v, func(w io.Writer, cfg output.TableConfig) error {
				return output.WriteVendor(w, v, cfg)
			})
		},
	}
	fields.register(cmd.Flags(), true)
	cmd.Flags().StringArrayVar(&fields.factors, "factor", nil, "Risk factor rating as id=1..5 (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newVendorUpdateCommand(a *app) *cobra.Command {
	var fields vendorFields
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update vendor attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := fields.patch(cmd.Flags())
			if err != nil {
				return err
			}
			if patch.Empty() {
				return usageError("nothing to update; pass at least one attribute flag")
			}
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			v, err := state.NewVendorState(c).Update(cmd.Context(), args[0], patch)
			if err != nil {
				return apiError(err)
			}
			return a.render(v, func(w io.Writer, cfg output.TableConfig) error {
				return output.WriteVendor(w, v, cfg)
			})
		},
	}
	fields.register(cmd.Flags(), true)
	return cmd
}

func newVendorDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a vendor",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			if err := state.NewVendorState(c).Delete(cmd.Context(), args[0]); err != nil {
				return apiError(err)
			}
			fmt.Fprintf(a.stdout, "Deleted vendor %s\n", args[0])
			return nil
		},
	}
}

func newVendorBulkCommand(a *app) *cobra.Command {
	var (
		fields vendorFields
		ids    []string
		remove bool
	)
	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Update or delete several vendors at once",
		Example: `  vendor-risk vendor bulk --ids id1,id2 --compliance Compliant
  vendor-risk vendor bulk --ids id1,id2 --delete`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			patch, err := fields.patch(cmd.Flags())
			if err != nil {
				return err
			}
			if remove && !patch.Empty() {
				return &ExitError{Code: exitIncompatible, Message: "--delete cannot be combined with attribute flags"}
			}
			if !remove && patch.Empty() {
				return usageError("pass --delete or at least one attribute flag")
			}
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			n, err := state.NewVendorState(c).Bulk(cmd.Context(), types.BulkVendorUpdate{
				IDs:    ids,
				Patch:  patch,
				Delete: remove,
			})
			if err != nil {
				return apiError(err)
			}
			verb := "Updated"
			if remove {
				verb = "Deleted"
			}
			fmt.Fprintf(a.stdout, "%s %d of %d vendors\n", verb, n, len(ids))
			return nil
		},
	}
	fields.register(cmd.Flags(), false)
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "Vendor IDs (comma separated)")
	cmd.Flags().BoolVar(&remove, "delete", false, "Delete the vendors")
	_ = cmd.MarkFlagRequired("ids")
	return cmd
}

func newVendorStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show vendor counts by risk level and compliance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			stats, err := c.VendorStats(cmd.Context())
			if err != nil {
				return apiError(err)
			}
			return a.render(stats, func(w io.Writer, cfg output.TableConfig) error {
				return output.WriteVendorStats(w, *stats, cfg)
			})
		},
	}
}
