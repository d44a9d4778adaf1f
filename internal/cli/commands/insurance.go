package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wheelx-dev/wheelx/internal/api"
)

var insuranceStatuses = []string{
	api.InsurancePending,
	api.InsuranceProcessing,
	api.InsuranceApproved,
	api.InsuranceRejected,
	api.InsuranceActive,
}

// NewInsuranceCmd creates the insurance command group
func NewInsuranceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insurance",
		Short: "Review insurance requests",
		Long: `Review insurance requests.

A request moves pending -> processing -> approved -> active, or is rejected.`,
	}

	var (
		page, limit int
		status      string
		output      string
	)
	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List insurance requests",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			if status != "" && !validStatus(status) {
				return fmt.Errorf("unknown status %q (use %s)", status, strings.Join(insuranceStatuses, ", "))
			}
			a, err := newApp(cmd, "/private/insurance")
			if err != nil {
				return err
			}
			return runInsuranceList(cmd.Context(), a, page, limit, status, output)
		},
	}
	ls.Flags().IntVar(&page, "page", 1, "Page number")
	ls.Flags().IntVar(&limit, "limit", api.DefaultLimit, "Items per page")
	ls.Flags().StringVar(&status, "status", "", "Only show requests with this status")
	addOutputFlag(ls, &output)

	process := &cobra.Command{
		Use:   "process <request-id>",
		Short: "Mark a request as being processed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, "/private/insurance")
			if err != nil {
				return err
			}
			id := args[0]
			return a.perform(cmd.Context(), "insurance.process", id, fmt.Sprintf("Request %s is processing", id), func(ctx context.Context) bool {
				return a.client.MarkInsuranceProcessing(ctx, id)
			})
		},
	}

	var approval api.InsuranceApproval
	approve := &cobra.Command{
		Use:   "approve <request-id>",
		Short: "Approve a request with its policy details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := api.Validate(approval); err != nil {
				return err
			}
			a, err := newApp(cmd, "/private/insurance")
			if err != nil {
				return err
			}
			id := args[0]
			return a.perform(cmd.Context(), "insurance.approve", id, fmt.Sprintf("Approved request %s (policy %s)", id, approval.PolicyNumber), func(ctx context.Context) bool {
				return a.client.ApproveInsurance(ctx, id, approval)
			})
		},
	}
	approve.Flags().StringVar(&approval.Provider, "provider", "", "Insurance provider")
	approve.Flags().StringVar(&approval.PolicyNumber, "policy-number", "", "Policy number")
	approve.Flags().StringVar(&approval.ActualStartDate, "start", "", "Coverage start date (YYYY-MM-DD)")
	approve.Flags().StringVar(&approval.ExpirationDate, "expires", "", "Coverage end date (YYYY-MM-DD)")
	approve.Flags().StringSliceVar(&approval.Documents, "document", nil, "Policy document URL (repeatable)")
	approve.Flags().StringVar(&approval.AdminNotes, "notes", "", "Internal notes")

	var reason string
	reject := &cobra.Command{
		Use:   "reject <request-id>",
		Short: "Reject a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(strings.TrimSpace(reason)) < 10 {
				return fmt.Errorf("--reason must be at least 10 characters")
			}
			a, err := newApp(cmd, "/private/insurance")
			if err != nil {
				return err
			}
			id := args[0]
			return a.perform(cmd.Context(), "insurance.reject", id, fmt.Sprintf("Rejected request %s", id), func(ctx context.Context) bool {
				return a.client.RejectInsurance(ctx, id, reason)
			})
		},
	}
	reject.Flags().StringVar(&reason, "reason", "", "Reason shown to the rider")

	activate := &cobra.Command{
		Use:   "activate <request-id>",
		Short: "Activate an approved policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, "/private/insurance")
			if err != nil {
				return err
			}
			id := args[0]
			return a.perform(cmd.Context(), "insurance.activate", id, fmt.Sprintf("Activated request %s", id), func(ctx context.Context) bool {
				return a.client.ActivateInsurance(ctx, id)
			})
		},
	}

	cmd.AddCommand(ls, process, approve, reject, activate)
	return cmd
}

func validStatus(s string) bool {
	for _, st := range insuranceStatuses {
		if st == s {
			return true
		}
	}
	return false
}

func runInsuranceList(ctx context.Context, a *app, page, limit int, status, output string) error {
	res := a.client.InsuranceRequests(ctx, page, limit, status)

	return render(a.out, output, res, func(w *tabwriter.Writer) {
		if len(res.Data) == 0 {
			fmt.Fprintln(w, "No insurance requests found.")
			return
		}
		header(w, "ID", "RIDER", "MOTORCYCLE", "COVERAGE", "STATUS", "REQUESTED")
		for _, r := range res.Data {
			bike := strings.TrimSpace(fmt.Sprintf("%s %s", r.MotorcycleID.Brand, r.MotorcycleID.Model))
			if r.MotorcycleID.Year > 0 {
				bike = fmt.Sprintf("%s (%d)", bike, r.MotorcycleID.Year)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.Key(), orDash(r.UserID.Username), orDash(bike), orDash(r.RequestData.CoverageType), r.Status, orDash(r.RequestedAt))
		}
		footer(w, res.Meta, len(res.Data), "")
	})
}
