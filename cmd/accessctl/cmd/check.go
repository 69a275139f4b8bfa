package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"staffhub/internal/domain/access"
)

// ErrDenied is returned by check when the role is not granted, so the process
// exits non-zero.
var ErrDenied = errors.New("access denied")

var (
	allowFmt = color.New(color.FgGreen, color.Bold).SprintFunc()
	denyFmt  = color.New(color.FgRed, color.Bold).SprintFunc()
	dimFmt   = color.New(color.Faint).SprintFunc()
)

type checkView struct {
	Role         string        `json:"role" yaml:"role"`
	Permission   string        `json:"permission,omitempty" yaml:"permission,omitempty"`
	AllowedRoles []access.Role `json:"allowedRoles" yaml:"allowedRoles"`
	Allowed      bool          `json:"allowed" yaml:"allowed"`
}

func newCheckCmd(opts *options) *cobra.Command {
	var allowed []string
	cmd := &cobra.Command{
		Use:   "check <role> [permission]",
		Short: "Decide whether a role holds a permission",
		Long: `Decide whether a role holds a named permission, or whether it passes an
explicit allowed-role list given with --allowed.

The command exits with status 1 when access is denied.

Examples:
  accessctl check manager leave.approve
  accessctl check hr_admin --allowed main_admin,hr_admin
  accessctl check super_admin --allowed ""`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := access.Role(args[0])
			listGiven := cmd.Flags().Changed("allowed")

			view := checkView{Role: string(role)}
			switch {
			case len(args) == 2 && listGiven:
				return errors.New("give either a permission or --allowed, not both")
			case len(args) == 2:
				permission := access.Permission(args[1])
				list, ok := opts.table.Allowed(permission)
				if !ok {
					return fmt.Errorf("%w: %q", access.ErrUnknownPermission, args[1])
				}
				view.Permission = string(permission)
				view.AllowedRoles = list
				view.Allowed = opts.table.Can(role, permission)
			case listGiven:
				list, err := parseRoles(allowed)
				if err != nil {
					return err
				}
				view.AllowedRoles = list
				view.Allowed = access.HasPermission(role, list)
			default:
				return errors.New("a permission or --allowed is required")
			}

			if !role.Valid() {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %q is not a known role\n", args[0])
			}

			done, err := opts.formatOutput(cmd.OutOrStdout(), view)
			if !done {
				err = printDecision(cmd, view)
			}
			if err != nil {
				return err
			}
			if !view.Allowed {
				return ErrDenied
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&allowed, "allowed", nil, "Comma-separated allowed-role list to evaluate instead of a permission")
	return cmd
}

func printDecision(cmd *cobra.Command, view checkView) error {
	verdict := allowFmt("ALLOW")
	if !view.Allowed {
		verdict = denyFmt("DENY")
	}
	target := view.Permission
	if target == "" {
		names := make([]string, 0, len(view.AllowedRoles))
		for _, role := range view.AllowedRoles {
			names = append(names, string(role))
		}
		target = "[" + strings.Join(names, ",") + "]"
	}
	note := ""
	if view.Allowed && access.Role(view.Role) == access.RoleSuperAdmin {
		note = " " + dimFmt("(super admin override)")
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s%s\n", verdict, view.Role, target, note)
	return err
}

func parseRoles(values []string) ([]access.Role, error) {
	out := make([]access.Role, 0, len(values))
	for _, raw := range values {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		role, ok := access.ParseRole(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %q", access.ErrUnknownRole, raw)
		}
		out = append(out, role)
	}
	return out, nil
}
