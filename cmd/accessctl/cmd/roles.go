package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"staffhub/internal/domain/access"
)

type roleView struct {
	Role        access.Role         `json:"role" yaml:"role"`
	Label       string              `json:"label" yaml:"label"`
	Rank        int                 `json:"rank" yaml:"rank"`
	Permissions []access.Permission `json:"permissions" yaml:"permissions"`
}

func newRolesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "roles",
		Short: "List roles from broadest to narrowest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			roles := access.AllRoles()
			views := make([]roleView, 0, len(roles))
			for _, role := range roles {
				views = append(views, roleView{Role: role, Label: role.Label(), Rank: role.Rank(), Permissions: opts.table.GrantedTo(role)})
			}
			if done, err := opts.formatOutput(cmd.OutOrStdout(), views); done {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ROLE\tLABEL\tRANK\tPERMISSIONS")
			for _, v := range views {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", v.Role, v.Label, v.Rank, len(v.Permissions))
			}
			return w.Flush()
		},
	}
}
