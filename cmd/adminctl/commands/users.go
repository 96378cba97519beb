package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"marketplace-admin/internal/apiclient"
	"marketplace-admin/internal/domain"
)

var userHeaders = []string{"ID", "NAME", "EMAIL", "ROLE", "LOCATION", "VERIFIED", "JOINED"}

func userRow(u domain.User) []string {
	return []string{u.ID, u.FullName, u.Email, string(u.Role), orDash(u.Location), yesNo(u.IsVerified), formatDatePtr(u.CreatedAt)}
}

func userFields(u *domain.User) [][2]string {
	return [][2]string{
		{"ID", u.ID},
		{"Name", u.FullName},
		{"Email", u.Email},
		{"Role", string(u.Role)},
		{"Phone", orDash(u.Phone)},
		{"Location", orDash(u.Location)},
		{"Categories", orDash(strings.Join(u.Category, ", "))},
		{"Skills", orDash(strings.Join(u.Skills, ", "))},
		{"Hourly charge", formatMoney(u.HourlyCharge)},
		{"Verified", yesNo(u.IsVerified)},
		{"Bio", orDash(u.Bio)},
		{"Joined", formatDatePtr(u.CreatedAt)},
	}
}

func usersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Browse marketplace accounts",
	}
	cmd.AddCommand(usersListCmd(a), usersGetCmd(a), usersMeCmd(a))
	return cmd
}

func usersListCmd(a *app) *cobra.Command {
	var (
		params apiclient.UserListParams
		role   string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if role != "" {
				params.Role = domain.UserRole(strings.ToLower(role))
				switch params.Role {
				case domain.UserRoleContractor, domain.UserRoleCustomer, domain.UserRoleAdmin:
				default:
					return fmt.Errorf("unknown role %q", role)
				}
			}
			list, err := a.client.Users.List(cmd.Context(), params)
			if err != nil {
				return err
			}
			return renderList(a, list, userHeaders, userRow)
		},
	}
	addListFlags(cmd, &params.ListParams)
	cmd.Flags().StringVar(&role, "role", "", "contractor, customer or admin")
	cmd.Flags().StringVar(&params.Location, "location", "", "location filter")
	cmd.Flags().StringVar(&params.Category, "category", "", "category filter")
	return cmd
}

func usersGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.client.Users.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.renderFields(user, userFields(user))
		},
	}
}

func usersMeCmd(a *app) *cobra.Command {
	var (
		fullName, phone, bio, location string
		hourly                         float64
	)
	cmd := &cobra.Command{
		Use:   "me",
		Short: "Show or update the operator profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				update  apiclient.UserUpdate
				changed bool
			)
			flags := cmd.Flags()
			if flags.Changed("name") {
				update.FullName, changed = &fullName, true
			}
			if flags.Changed("phone") {
				update.Phone, changed = &phone, true
			}
			if flags.Changed("bio") {
				update.Bio, changed = &bio, true
			}
			if flags.Changed("location") {
				update.Location, changed = &location, true
			}
			if flags.Changed("hourly-charge") {
				update.HourlyCharge, changed = &hourly, true
			}

			var (
				user *domain.User
				err  error
			)
			if changed {
				user, err = a.client.Users.UpdateMe(cmd.Context(), update)
			} else {
				user, err = a.client.Users.Me(cmd.Context())
			}
			if err != nil {
				return err
			}
			return a.renderFields(user, userFields(user))
		},
	}
	cmd.Flags().StringVar(&fullName, "name", "", "new full name")
	cmd.Flags().StringVar(&phone, "phone", "", "new phone number")
	cmd.Flags().StringVar(&bio, "bio", "", "new bio")
	cmd.Flags().StringVar(&location, "location", "", "new location")
	cmd.Flags().Float64Var(&hourly, "hourly-charge", 0, "new hourly charge")
	return cmd
}
