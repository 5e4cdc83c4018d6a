package cmd

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/services"
	"github.com/spf13/cobra"
)

type newUser struct {
	email     string
	name      string
	password  string
	superuser bool
}

func newUsersCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage application users",
	}
	cmd.AddCommand(newCreateUserCommand(global))
	cmd.AddCommand(newPromoteCommand(global))
	return cmd
}

func newCreateUserCommand(global *globalOptions) *cobra.Command {
	var in newUser
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user",
		Long: `Create a user account. Missing values are prompted for; the password
is read without echo.

Examples:
  server users create-user --email admin@example.com --superuser`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			if err := in.complete(p); err != nil {
				return err
			}

			_, db, err := global.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close(db)
			var user *models.User
			err = inTransaction(cmd.Context(), db, func(set *services.Set) error {
				user, err = createUser(cmd.Context(), set.Users, in)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User created: %s\n", user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.email, "email", "", "email address")
	cmd.Flags().StringVar(&in.name, "name", "", "full name")
	cmd.Flags().StringVar(&in.password, "password", "", "password (prompted when omitted)")
	cmd.Flags().BoolVar(&in.superuser, "superuser", false, "grant superuser")
	return cmd
}

func newPromoteCommand(global *globalOptions) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "promote-to-superuser",
		Short: "Grant superuser to an existing user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				var err error
				if email, err = newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).text("Email of user to promote"); err != nil {
					return err
				}
			}

			_, db, err := global.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close(db)
			err = inTransaction(cmd.Context(), db, func(set *services.Set) error {
				_, err := set.Users.Promote(cmd.Context(), email)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Upgraded %s to superuser\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the user to promote")
	return cmd
}

// complete prompts for anything not given on the command line.
func (u *newUser) complete(p *prompter) error {
	var err error
	if u.email == "" {
		if u.email, err = p.text("Email"); err != nil {
			return err
		}
	}
	if u.name == "" {
		if u.name, err = p.text("Full name"); err != nil {
			return err
		}
	}
	if u.password == "" {
		if u.password, err = p.password(); err != nil {
			return err
		}
	}
	return nil
}

func createUser(ctx context.Context, users *services.UserService, in newUser) (*models.User, error) {
	req := dto.UserCreateRequest{
		Email:       in.email,
		Password:    in.password,
		IsSuperuser: &in.superuser,
	}
	if in.name != "" {
		req.Name = &in.name
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	return users.CreateUser(ctx, req.Fields())
}
