package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/imadgeboyega/kiekky-nearby/internal/auth"
	"github.com/imadgeboyega/kiekky-nearby/internal/trust"
)

var (
	banReason  string
	trustDelta int
	trustSetTo int
	statusNote string
)

var banCmd = &cobra.Command{
	Use:   "ban <user-id>",
	Short: "Ban a user",
	Long: `Bans a user. Banning an already banned user keeps the original ban time;
passing a different --reason replaces the stored reason.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseID(args[0])
		if err != nil {
			return err
		}
		var reason *string
		if cmd.Flags().Changed("reason") {
			reason = &banReason
		}
		return withActor(cmd, func(ctx context.Context, b *backend, actor auth.Actor) (interface{}, error) {
			return b.dispatcher.BanUser(ctx, actor, userID, reason)
		})
	},
}

var unbanCmd = &cobra.Command{
	Use:   "unban <user-id>",
	Short: "Lift a ban",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withActor(cmd, func(ctx context.Context, b *backend, actor auth.Actor) (interface{}, error) {
			return b.dispatcher.UnbanUser(ctx, actor, userID)
		})
	},
}

var trustCmd = &cobra.Command{
	Use:   "adjust-trust <user-id>",
	Short: "Adjust a trust score",
	Long: `Applies exactly one of --delta or --set. The result is clamped to [0, 100].

Examples:
  modctl --actor 1 adjust-trust 42 --delta -10
  modctl --actor 1 adjust-trust 42 --set 100`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseID(args[0])
		if err != nil {
			return err
		}

		var adj trust.Adjustment
		if cmd.Flags().Changed("delta") {
			adj.Delta = &trustDelta
		}
		if cmd.Flags().Changed("set") {
			adj.SetTo = &trustSetTo
		}

		return withActor(cmd, func(ctx context.Context, b *backend, actor auth.Actor) (interface{}, error) {
			return b.dispatcher.AdjustTrust(ctx, actor, userID, adj)
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "set-status <report-id> <status>",
	Short: "Set a report status",
	Long: `Sets a report to NEEDS_REVIEW, UNDER_REVIEW, RESOLVED_ACTION or
RESOLVED_NO_ACTION. Without --note the existing resolution note is kept;
--note "" clears it.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reportID, err := parseID(args[0])
		if err != nil {
			return err
		}
		var note *string
		if cmd.Flags().Changed("note") {
			note = &statusNote
		}
		return withActor(cmd, func(ctx context.Context, b *backend, actor auth.Actor) (interface{}, error) {
			return b.dispatcher.UpdateReportStatus(ctx, actor, reportID, args[1], note)
		})
	},
}

var reportedUsersCmd = &cobra.Command{
	Use:   "reported-users",
	Short: "List users in the review queue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withActor(cmd, func(ctx context.Context, b *backend, actor auth.Actor) (interface{}, error) {
			if !actor.IsAdmin {
				return nil, fmt.Errorf("user %d is not an admin", actor.UserID)
			}
			return b.reports.ReportedUsers(ctx)
		})
	},
}

func init() {
	banCmd.Flags().StringVar(&banReason, "reason", "", "ban reason")
	trustCmd.Flags().IntVar(&trustDelta, "delta", 0, "points to add (negative to deduct)")
	trustCmd.Flags().IntVar(&trustSetTo, "set", 0, "absolute score")
	statusCmd.Flags().StringVar(&statusNote, "note", "", "resolution note")
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
