package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"staffhub/internal/domain/access"
)

type permissionView struct {
	Permission   access.Permission `json:"permission" yaml:"permission"`
	Description  string            `json:"description" yaml:"description"`
	AllowedRoles []access.Role     `json:"allowedRoles" yaml:"allowedRoles"`
}

func newPermissionsCmd(opts *options) *cobra.Command {
	var roleFilter string
	cmd := &cobra.Command{
		Use:   "permissions",
		Short: "List permission keys and the roles allowed to use them",
		Long: `List every permission key with its allowed-role list.

With --role, only the permissions that role is granted are shown. The super
admin is granted every permission whether or not it is listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter access.Role
			if roleFilter != "" {
				role, ok := access.ParseRole(roleFilter)
				if !ok {
					return fmt.Errorf("%w: %q", access.ErrUnknownRole, roleFilter)
				}
				filter = role
			}

			views := []permissionView{}
			for _, entry := range opts.table.Entries() {
				if filter != "" && !opts.table.Can(filter, entry.Permission) {
					continue
				}
				views = append(views, permissionView{Permission: entry.Permission, Description: entry.Description, AllowedRoles: entry.Allowed})
			}
			if done, err := opts.formatOutput(cmd.OutOrStdout(), views); done {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PERMISSION\tDESCRIPTION\tALLOWED ROLES")
			for _, v := range views {
				names := make([]string, 0, len(v.AllowedRoles))
				for _, role := range v.AllowedRoles {
					names = append(names, string(role))
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", v.Permission, v.Description, strings.Join(names, ","))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&roleFilter, "role", "", "Only show permissions granted to this role")
	return cmd
}
