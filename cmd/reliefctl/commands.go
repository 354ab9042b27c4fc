package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"reliefcore/internal/core"
	"reliefcore/internal/jobs"
	"reliefcore/pkg/domain"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func summaryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print dashboard statistics for the current state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := app.svc.Summary(app.ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}
}

func exportSummaryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export-summary",
		Short: "Compute the summary and write it to the archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := app.runner.ExportSummary(app.ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
}

func latestSummaryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "latest-summary",
		Short: "Print the most recently archived summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, info, err := app.exporter.Latest(app.ctx)
			if err != nil {
				return err
			}
			app.logger.Debug("latest summary", zap.String("key", info.Key))
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}
}

func loadCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "load <seed.yaml>",
		Short: "Load users, reports, campaigns, donations and staffing from a seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := readSeed(args[0])
			if err != nil {
				return err
			}
			counts, _, err := app.svc.LoadSeed(app.ctx, seed)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), counts)
		},
	}
}

// readSeed decodes a YAML or JSON seed file. Records use their JSON field
// names, so the YAML is normalized through JSON before decoding.
func readSeed(path string) (core.Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.Seed{}, fmt.Errorf("read seed: %w", err)
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return core.Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	normalized, err := json.Marshal(raw)
	if err != nil {
		return core.Seed{}, fmt.Errorf("normalize seed: %w", err)
	}
	var seed core.Seed
	if err := json.Unmarshal(normalized, &seed); err != nil {
		return core.Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	return seed, nil
}

func assignCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <assignment_id> <volunteer_id>",
		Short: "Staff a volunteer on an open assignment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			staffing, _, err := app.svc.AssignVolunteer(app.ctx, args[0], args[1])
			if err != nil {
				return err
			}
			a := staffing.Assignment
			fmt.Fprintf(cmd.OutOrStdout(), "%s assigned to %s (%d/%d, %s)\n",
				staffing.Volunteer.Name, a.Title, a.VolunteersAssigned, a.VolunteersNeeded, a.Status)
			return nil
		},
	}
}

func eligibleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "eligible <assignment_id>",
		Short: "List available volunteers ranked for an assignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			volunteers, err := app.svc.EligibleVolunteers(app.ctx, args[0])
			if err != nil {
				return err
			}
			for _, v := range volunteers {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%.1f\n", v.ID, v.Name, v.Rating)
			}
			return nil
		},
	}
}

func completeAssignmentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "complete-assignment <assignment_id>",
		Short: "Complete an in-progress assignment and release its volunteers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := app.svc.CompleteAssignment(app.ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", a.ID, a.Status)
			return nil
		},
	}
}

func cancelAssignmentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel-assignment <assignment_id>",
		Short: "Cancel an assignment and release its volunteers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := app.svc.CancelAssignment(app.ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", a.ID, a.Status)
			return nil
		},
	}
}

func applyDonationCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "apply-donation <donation_id>",
		Short: "Credit a completed donation to its campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := app.svc.ApplyDonation(app.ctx, args[0])
			if err != nil {
				return err
			}
			return printContribution(cmd.OutOrStdout(), c.Donation, c.Campaign)
		},
	}
}

func completeDonationCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "complete-donation <donation_id>",
		Short: "Confirm a pending donation and apply it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := app.svc.CompleteDonation(app.ctx, args[0])
			if err != nil {
				return err
			}
			return printContribution(cmd.OutOrStdout(), c.Donation, c.Campaign)
		},
	}
}

func printContribution(w io.Writer, d domain.Donation, c *domain.Campaign) error {
	if c == nil {
		_, err := fmt.Fprintf(w, "donation %s %s\n", d.ID, d.Status)
		return err
	}
	_, err := fmt.Fprintf(w, "donation %s %s, %s raised %d of %d from %d donors\n",
		d.ID, d.Status, c.Title, c.CurrentAmount, c.TargetAmount, c.DonorCount)
	return err
}

func failDonationCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "fail-donation <donation_id>",
		Short: "Mark a pending donation as failed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := app.svc.FailDonation(app.ctx, args[0])
			if err != nil {
				return err
			}
			return printContribution(cmd.OutOrStdout(), d, nil)
		},
	}
}

func acceptRequestCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "accept-request <request_id> <assignee_id>",
		Short: "Hand an open help request to an assignee",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := app.svc.AcceptHelpRequest(app.ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", r.ID, r.Status)
			return nil
		},
	}
}

func fulfillRequestCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "fulfill-request <request_id>",
		Short: "Mark an in-progress help request as fulfilled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := app.svc.FulfillHelpRequest(app.ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", r.ID, r.Status)
			return nil
		},
	}
}

func closeRequestCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "close-request <request_id>",
		Short: "Withdraw an open or in-progress help request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := app.svc.CloseHelpRequest(app.ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", r.ID, r.Status)
			return nil
		},
	}
}

func distributeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "distribute <resource_id> <quantity>",
		Short: "Draw stock from a resource listing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity must be a number: %w", err)
			}
			r, _, err := app.svc.DistributeResource(app.ctx, args[0], quantity)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d %s (%s)\n", r.Name, r.Quantity, r.Unit, r.Availability)
			return nil
		},
	}
}

func restockCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restock <resource_id> <quantity>",
		Short: "Add stock to a resource listing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity must be a number: %w", err)
			}
			r, _, err := app.svc.RestockResource(app.ctx, args[0], quantity)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d %s (%s)\n", r.Name, r.Quantity, r.Unit, r.Availability)
			return nil
		},
	}
}

func transitionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "transition <report|user|moderation|campaign|volunteer> <id> <action>",
		Short: "Apply a lifecycle action to a record",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, action := args[1], domain.Action(args[2])
			var (
				status string
				err    error
			)
			switch args[0] {
			case "report":
				var r domain.DisasterReport
				r, _, err = app.svc.TransitionReport(app.ctx, id, action)
				status = string(r.Status)
			case "user":
				var u domain.User
				u, _, err = app.svc.TransitionUser(app.ctx, id, action)
				status = string(u.Status)
			case "moderation":
				var m domain.ModerationItem
				m, _, err = app.svc.TransitionModerationItem(app.ctx, id, action)
				status = string(m.Status)
			case "campaign":
				var c domain.Campaign
				c, _, err = app.svc.TransitionCampaign(app.ctx, id, action)
				status = string(c.Status)
			case "volunteer":
				var v domain.Volunteer
				v, _, err = app.svc.TransitionVolunteer(app.ctx, id, action)
				status = string(v.Availability)
			default:
				return fmt.Errorf("unknown record kind %q", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", id, status)
			return nil
		},
	}
}

func sweepCampaignsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-campaigns",
		Short: "Complete active campaigns past their end date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			closed, err := app.runner.SweepCampaigns(app.ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d campaigns closed\n", closed)
			return nil
		},
	}
}

func jobsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "Run the campaign sweep and summary export on their schedules until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scheduler, err := jobs.NewScheduler(app.runner, app.cfg.Scheduler)
			if err != nil {
				return err
			}
			scheduler.Start()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)
			select {
			case <-quit:
			case <-app.ctx.Done():
			}
			scheduler.Stop()
			return nil
		},
	}
}
