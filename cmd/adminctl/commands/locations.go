package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"marketplace-admin/internal/apiclient"
	"marketplace-admin/internal/domain"
	"marketplace-admin/internal/forms"
)

var locationHeaders = []string{"ID", "NAME", "STATE", "LAT", "LNG", "CREATED"}

func formatCoord(f float64) string {
	return fmt.Sprintf("%.4f", f)
}

func locationRow(l domain.Location) []string {
	return []string{l.ID, l.Name, l.State, formatCoord(l.Coordinates.Lat), formatCoord(l.Coordinates.Lng), formatDate(l.CreatedAt)}
}

func locationFields(l *domain.Location) [][2]string {
	return [][2]string{
		{"ID", l.ID},
		{"Name", l.Name},
		{"State", l.State},
		{"Latitude", formatCoord(l.Coordinates.Lat)},
		{"Longitude", formatCoord(l.Coordinates.Lng)},
		{"Created", formatDate(l.CreatedAt)},
		{"Updated", formatDate(l.UpdatedAt)},
	}
}

func locationsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "locations",
		Aliases: []string{"location"},
		Short:   "Manage service locations",
	}
	cmd.AddCommand(locationsListCmd(a), locationsGetCmd(a), locationsCreateCmd(a), locationsUpdateCmd(a), locationsDeleteCmd(a))
	return cmd
}

func locationsListCmd(a *app) *cobra.Command {
	var params apiclient.LocationListParams
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.client.Locations.List(cmd.Context(), params)
			if err != nil {
				return err
			}
			return renderList(a, list, locationHeaders, locationRow)
		},
	}
	addListFlags(cmd, &params.ListParams)
	cmd.Flags().StringVar(&params.State, "state", "", "state filter")
	return cmd
}

func locationsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location, err := a.client.Locations.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.renderFields(location, locationFields(location))
		},
	}
}

func locationsCreateCmd(a *app) *cobra.Command {
	var (
		name, state string
		lat, lng    float64
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := forms.Validate(forms.Location{Name: name, State: state, Lat: lat, Lng: lng}); err != nil {
				return err
			}
			location, err := a.client.Locations.Create(cmd.Context(), apiclient.LocationInput{
				Name:        name,
				State:       state,
				Coordinates: &domain.Coordinates{Lat: lat, Lng: lng},
			})
			if err != nil {
				return err
			}
			return a.renderFields(location, locationFields(location))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "location name")
	cmd.Flags().StringVar(&state, "state", "", "state")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude")
	return cmd
}

func locationsUpdateCmd(a *app) *cobra.Command {
	var (
		name, state string
		lat, lng    float64
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := apiclient.LocationInput{Name: name, State: state}
			flags := cmd.Flags()
			if flags.Changed("lat") || flags.Changed("lng") {
				if !flags.Changed("lat") || !flags.Changed("lng") {
					return fmt.Errorf("--lat and --lng must be given together")
				}
				input.Coordinates = &domain.Coordinates{Lat: lat, Lng: lng}
			}
			location, err := a.client.Locations.Update(cmd.Context(), args[0], input)
			if err != nil {
				return err
			}
			return a.renderFields(location, locationFields(location))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&state, "state", "", "new state")
	cmd.Flags().Float64Var(&lat, "lat", 0, "new latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "new longitude")
	return cmd
}

func locationsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Locations.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted location %s\n", args[0])
			return nil
		},
	}
}
