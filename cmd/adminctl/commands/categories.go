package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"marketplace-admin/internal/apiclient"
	"marketplace-admin/internal/domain"
	"marketplace-admin/internal/forms"
)

var categoryHeaders = []string{"ID", "NAME", "DESCRIPTION", "ICON", "CREATED"}

func categoryRow(c domain.Category) []string {
	return []string{c.ID, c.Name, orDash(c.Description), orDash(c.Icon), formatDate(c.CreatedAt)}
}

func categoryFields(c *domain.Category) [][2]string {
	return [][2]string{
		{"ID", c.ID},
		{"Name", c.Name},
		{"Description", orDash(c.Description)},
		{"Icon", orDash(c.Icon)},
		{"Created", formatDate(c.CreatedAt)},
		{"Updated", formatDate(c.UpdatedAt)},
	}
}

func categoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "Manage job categories",
	}
	cmd.AddCommand(categoriesListCmd(a), categoriesGetCmd(a), categoriesCreateCmd(a), categoriesUpdateCmd(a), categoriesDeleteCmd(a))
	return cmd
}

func categoriesListCmd(a *app) *cobra.Command {
	var params apiclient.CategoryListParams
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.client.Categories.List(cmd.Context(), params)
			if err != nil {
				return err
			}
			return renderList(a, list, categoryHeaders, categoryRow)
		},
	}
	addListFlags(cmd, &params.ListParams)
	return cmd
}

func categoriesGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := a.client.Categories.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.renderFields(category, categoryFields(category))
		},
	}
}

// openIcon opens the icon file at path; the caller closes it.
func openIcon(path string) (*apiclient.Upload, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open icon: %w", err)
	}
	return &apiclient.Upload{Filename: filepath.Base(path), Content: f}, f, nil
}

func categoriesCreateCmd(a *app) *cobra.Command {
	var name, description, icon string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := forms.Validate(forms.Category{Name: name, Description: description, Icon: icon}); err != nil {
				return err
			}
			upload, f, err := openIcon(icon)
			if err != nil {
				return err
			}
			defer f.Close()

			category, err := a.client.Categories.Create(cmd.Context(), apiclient.CategoryInput{
				Name:        name,
				Description: description,
				Icon:        upload,
			})
			if err != nil {
				return err
			}
			return a.renderFields(category, categoryFields(category))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "category name")
	cmd.Flags().StringVar(&description, "description", "", "short description")
	cmd.Flags().StringVar(&icon, "icon", "", "path to the icon image")
	return cmd
}

func categoriesUpdateCmd(a *app) *cobra.Command {
	var name, description, icon string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a category or replace its icon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := forms.Validate(forms.CategoryUpdate{Name: name, Description: description}); err != nil {
				return err
			}
			input := apiclient.CategoryInput{Name: name, Description: description}
			if icon != "" {
				upload, f, err := openIcon(icon)
				if err != nil {
					return err
				}
				defer f.Close()
				input.Icon = upload
			}
			category, err := a.client.Categories.Update(cmd.Context(), args[0], input)
			if err != nil {
				return err
			}
			return a.renderFields(category, categoryFields(category))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&icon, "icon", "", "path to a new icon image")
	return cmd
}

func categoriesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Categories.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted category %s\n", args[0])
			return nil
		},
	}
}
