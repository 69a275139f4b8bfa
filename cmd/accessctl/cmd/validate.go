package cmd

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"staffhub/internal/domain/access"
)

type changeView struct {
	Permission access.Permission `json:"permission" yaml:"permission"`
	Before     []access.Role     `json:"before" yaml:"before"`
	After      []access.Role     `json:"after" yaml:"after"`
}

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <policy-file>",
		Short: "Validate a policy override file against the built-in table",
		Long: `Parse a policy override file, reject unknown permissions and roles, and
list the permissions whose allowed-role lists it changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := access.DefaultTable()
			table, err := access.LoadPolicyFile(args[0], base)
			if err != nil {
				return fmt.Errorf("invalid policy: %w", err)
			}

			changes := []changeView{}
			for _, entry := range table.Entries() {
				before, _ := base.Allowed(entry.Permission)
				if !slices.Equal(before, entry.Allowed) {
					changes = append(changes, changeView{Permission: entry.Permission, Before: before, After: entry.Allowed})
				}
			}
			if done, err := opts.formatOutput(cmd.OutOrStdout(), changes); done {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s: %d permission(s) changed\n", allowFmt("OK"), args[0], len(changes))
			if len(changes) == 0 {
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PERMISSION\tBEFORE\tAFTER")
			for _, c := range changes {
				fmt.Fprintf(w, "%s\t%v\t%v\n", c.Permission, c.Before, c.After)
			}
			return w.Flush()
		},
	}
}

func newDumpCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the effective table in policy file format",
		Long: `Print the effective permission table as a policy file. The output can be
edited and passed back with --policy or ACCESS_POLICY_FILE.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := access.MarshalPolicy(opts.table)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
