package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aidanjnn/lost-found-app/internal/claims"
)

func newClaimsCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claims",
		Short: "Inspect and adjudicate claims",
	}
	cmd.AddCommand(newTransitionClaimCommand(root))
	cmd.AddCommand(newShowClaimCommand(root))
	return cmd
}

type transitionOptions struct {
	staff  string
	status string
	notes  string
}

func newTransitionClaimCommand(root *RootOptions) *cobra.Command {
	opts := &transitionOptions{}

	cmd := &cobra.Command{
		Use:   "transition <claim-id>",
		Short: "Approve, reject or mark a claim picked up",
		Long: `Apply a staff decision to a claim.

Approving a claim rejects every other open claim on the same item. Marking
a claim picked_up also marks its item claimed. Staff notes are left as they
are unless --notes is given.`,
		Example: `  lostfoundctl claims transition 6f1c... --staff 0b7e... --status approved --notes "student card matched"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			claimID, err := uuid.Parse(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("invalid claim id %q", args[0])
			}
			env, err := root.environment(cmd.Context())
			if err != nil {
				return err
			}
			actor, err := actorFor(cmd.Context(), env, opts.staff)
			if err != nil {
				return err
			}

			input := claims.TransitionInput{ClaimID: claimID, Status: opts.status}
			if cmd.Flags().Changed("notes") {
				notes := opts.notes
				input.StaffNotes = &notes
			}

			result, err := env.Claims.Transition(cmd.Context(), actor, input)
			if err != nil {
				return err
			}
			return render(cmd, root, result, func(w io.Writer) {
				fmt.Fprintf(w, "claim %s is now %s\n", result.ClaimID, result.NewStatus)
				if result.ItemUpdated {
					fmt.Fprintln(w, "item marked claimed")
				}
				for _, id := range result.AutoRejected {
					fmt.Fprintf(w, "auto-rejected %s\n", id)
				}
			})
		},
	}

	cmd.Flags().StringVar(&opts.staff, "staff", "", "acting staff user id (required)")
	cmd.Flags().StringVar(&opts.status, "status", "", "approved|rejected|picked_up (required)")
	cmd.Flags().StringVar(&opts.notes, "notes", "", "replace the staff notes")
	_ = cmd.MarkFlagRequired("staff")
	_ = cmd.MarkFlagRequired("status")

	return cmd
}

func newShowClaimCommand(root *RootOptions) *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "show <claim-id>",
		Short: "Print a claim with its item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			claimID, err := uuid.Parse(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("invalid claim id %q", args[0])
			}
			env, err := root.environment(cmd.Context())
			if err != nil {
				return err
			}
			actor, err := actorFor(cmd.Context(), env, as)
			if err != nil {
				return err
			}

			claim, err := env.Claims.Get(cmd.Context(), actor, claimID)
			if err != nil {
				return err
			}
			return render(cmd, root, claim, func(w io.Writer) {
				fmt.Fprintf(w, "claim    %s\n", claim.ID)
				fmt.Fprintf(w, "status   %s\n", claim.Status)
				fmt.Fprintf(w, "claimant %s <%s>\n", claim.ClaimantName, claim.ClaimantEmail)
				if claim.Item != nil {
					fmt.Fprintf(w, "item     %s (%s, pickup at %s)\n", claim.Item.Name, claim.Item.Status, claim.Item.PickupAt)
				}
				if claim.StaffNotes != nil {
					fmt.Fprintf(w, "notes    %s\n", *claim.StaffNotes)
				}
			})
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "user id to view the claim as (required)")
	_ = cmd.MarkFlagRequired("as")

	return cmd
}
