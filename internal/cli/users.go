package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aidanjnn/lost-found-app/internal/users"
	"github.com/aidanjnn/lost-found-app/pkg/auth"
	"github.com/aidanjnn/lost-found-app/pkg/enums"
)

type createUserOptions struct {
	email string
	name  string
	role  string
	phone string
}

func newUsersCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage campus users",
	}
	cmd.AddCommand(newCreateUserCommand(root))
	return cmd
}

func newCreateUserCommand(root *RootOptions) *cobra.Command {
	opts := &createUserOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a student or staff user",
		Example: `  lostfoundctl users create --email desk@uwaterloo.ca --name "SLC Desk" --role staff
  lostfoundctl users create --email j2smith@uwaterloo.ca --name "Jo Smith" --phone 519-555-0100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := enums.ParseUserRole(opts.role)
			if err != nil {
				return err
			}
			env, err := root.environment(cmd.Context())
			if err != nil {
				return err
			}

			input := users.CreateUserDTO{Email: opts.email, Name: opts.name, Role: role}
			if phone := strings.TrimSpace(opts.phone); phone != "" {
				input.Phone = &phone
			}
			user, err := env.Users.Create(cmd.Context(), input)
			if err != nil {
				return err
			}

			dto := users.FromModel(user)
			return render(cmd, root, dto, func(w io.Writer) {
				fmt.Fprintf(w, "created %s %s <%s>\n", dto.Role, dto.ID, dto.Email)
			})
		},
	}

	cmd.Flags().StringVar(&opts.email, "email", "", "user email (required)")
	cmd.Flags().StringVar(&opts.name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&opts.role, "role", string(enums.UserRoleStudent), "student|staff")
	cmd.Flags().StringVar(&opts.phone, "phone", "", "contact phone")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// actorFor resolves a user id into the actor the services expect.
func actorFor(ctx context.Context, env *Env, raw string) (auth.Actor, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return auth.Actor{}, fmt.Errorf("invalid user id %q", raw)
	}
	user, err := env.Users.Get(ctx, id)
	if err != nil {
		return auth.Actor{}, err
	}
	return auth.Actor{UserID: user.ID, Role: user.Role}, nil
}
