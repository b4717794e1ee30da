package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanjnn/lost-found-app/internal/claims"
	"github.com/aidanjnn/lost-found-app/internal/users"
	"github.com/aidanjnn/lost-found-app/pkg/config"
)

// Env is what the commands operate on.
type Env struct {
	Users  users.Service
	Claims claims.Service
	JWT    config.JWTConfig
}

// EnvLoader builds an Env on first use so help and flag errors never touch
// the database. The caller owns whatever the loader opens.
type EnvLoader func(ctx context.Context) (*Env, error)

// RootOptions holds global flags.
type RootOptions struct {
	Format string

	load EnvLoader
	env  *Env
}

var validFormats = []string{"text", "json"}

func NewRootCommand(load EnvLoader) *cobra.Command {
	opts := &RootOptions{load: load}

	cmd := &cobra.Command{
		Use:           "lostfoundctl",
		Short:         "Operate the campus lost & found claim engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range validFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newUsersCommand(opts))
	cmd.AddCommand(newTokenCommand(opts))
	cmd.AddCommand(newClaimsCommand(opts))

	return cmd
}

func (o *RootOptions) environment(ctx context.Context) (*Env, error) {
	if o.env != nil {
		return o.env, nil
	}
	if o.load == nil {
		return nil, fmt.Errorf("no environment loader configured")
	}
	env, err := o.load(ctx)
	if err != nil {
		return nil, err
	}
	o.env = env
	return env, nil
}
