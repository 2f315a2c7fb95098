package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newInvitesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invites",
		Short: "Manage admin invite codes",
	}

	cmd.AddCommand(newInvitesListCmd())
	cmd.AddCommand(newInvitesCreateCmd())
	cmd.AddCommand(newInvitesRevokeCmd())

	return cmd
}

// ---------- invites list ----------

func newInvitesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List invite codes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			invites, err := newClient().ListInvites(ctx)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(invites)
			}

			if len(invites) == 0 {
				fmt.Println("No invite codes. Use 'portfolioctl invites create' to issue one.")
				return nil
			}

			fmt.Printf("%-36s %-14s %-9s %-20s\n", "ID", "CODE", "STATUS", "EXPIRES")
			fmt.Printf("%-36s %-14s %-9s %-20s\n", "--", "----", "------", "-------")
			for _, inv := range invites {
				expires := "never"
				if inv.ExpiresAt != nil {
					expires = inv.ExpiresAt.Local().Format(time.DateTime)
				}
				fmt.Printf("%-36s %-14s %-9s %-20s\n", inv.ID, inv.Code, inv.Status, expires)
			}
			return nil
		},
	}
}

// ---------- invites create ----------

func newInvitesCreateCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Issue a new invite code",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			invite, err := newClient().CreateInvite(ctx, days)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(invite)
			}

			fmt.Printf("Invite code: %s\n", invite.Code)
			if invite.ExpiresAt != nil {
				fmt.Printf("Expires:     %s\n", invite.ExpiresAt.Local().Format(time.DateTime))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "days until the code expires, 1 to 365 (server default if omitted)")

	return cmd
}

// ---------- invites revoke ----------

func newInvitesRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke ID",
		Short: "Delete an invite code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			if err := newClient().RevokeInvite(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Revoked invite code %s\n", args[0])
			return nil
		},
	}
}

func newMessagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Read contact form submissions",
	}

	cmd.AddCommand(newMessagesListCmd())

	return cmd
}

// ---------- messages list ----------

func newMessagesListCmd() *cobra.Command {
	var unreadOnly bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List contact messages, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			msgs, err := newClient().ListMessages(ctx)
			if err != nil {
				return err
			}
			if unreadOnly {
				kept := msgs[:0]
				for _, m := range msgs {
					if !m.IsRead {
						kept = append(kept, m)
					}
				}
				msgs = kept
			}
			if jsonOutput {
				return writeJSON(msgs)
			}

			if len(msgs) == 0 {
				fmt.Println("No messages.")
				return nil
			}
			for _, m := range msgs {
				marker := " "
				if !m.IsRead {
					marker = "*"
				}
				fmt.Printf("%s %s  %s <%s>\n", marker, m.CreatedAt.Local().Format(time.DateTime), m.Name, m.Email)
				fmt.Printf("  %s\n\n", strings.ReplaceAll(strings.TrimSpace(m.Message), "\n", "\n  "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "only show unread messages")

	return cmd
}
