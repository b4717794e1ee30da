package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanjnn/lost-found-app/pkg/auth"
)

type tokenView struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newTokenCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue API access tokens",
	}
	cmd.AddCommand(newMintTokenCommand(root))
	return cmd
}

func newMintTokenCommand(root *RootOptions) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint a bearer token for an existing user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := root.environment(cmd.Context())
			if err != nil {
				return err
			}
			actor, err := actorFor(cmd.Context(), env, userID)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			token, err := auth.MintAccessToken(env.JWT, now, auth.AccessTokenPayload{UserID: actor.UserID, Role: actor.Role})
			if err != nil {
				return err
			}

			view := tokenView{
				Token:     token,
				UserID:    actor.UserID.String(),
				Role:      string(actor.Role),
				ExpiresAt: now.Add(time.Duration(env.JWT.ExpirationMinutes) * time.Minute),
			}
			return render(cmd, root, view, func(w io.Writer) {
				fmt.Fprintln(w, view.Token)
			})
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
