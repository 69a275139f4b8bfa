// Package cmd implements the accessctl CLI commands.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"staffhub/internal/domain/access"
)

// Version is set at build time.
var Version = "0.1.0"

type options struct {
	output     string
	policyFile string
	noColor    bool

	table *access.Table
}

// NewRootCmd builds the accessctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "accessctl",
		Short: "Inspect and test staffhub role permissions",
		Long: `accessctl evaluates staffhub's role-based permission table offline.

It lists roles and permissions, answers "can this role do that" questions,
renders the role by permission matrix and validates policy override files
before they are deployed with ACCESS_POLICY_FILE.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.noColor {
				color.NoColor = true
			}
			switch opts.output {
			case "table", "json", "yaml":
			default:
				return fmt.Errorf("unsupported output format %q (use table, json or yaml)", opts.output)
			}
			if cmd.Name() == "completion" || cmd.Name() == "help" {
				return nil
			}
			return opts.loadTable()
		},
	}

	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "Output format: table, json, yaml")
	root.PersistentFlags().StringVar(&opts.policyFile, "policy", os.Getenv("ACCESS_POLICY_FILE"), "Policy override file applied on top of the built-in table")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		newRolesCmd(opts),
		newPermissionsCmd(opts),
		newCheckCmd(opts),
		newMatrixCmd(opts),
		newValidateCmd(opts),
		newDumpCmd(opts),
		newCompletionCmd(root),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *options) loadTable() error {
	base := access.DefaultTable()
	if o.policyFile == "" {
		o.table = base
		return nil
	}
	table, err := access.LoadPolicyFile(o.policyFile, base)
	if err != nil {
		return err
	}
	o.table = table
	return nil
}

// formatOutput writes data as JSON or YAML. Table output is handled by each
// command, so it reports false for it.
func (o *options) formatOutput(w io.Writer, data any) (bool, error) {
	switch o.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(data)
	case "yaml":
		out, err := yaml.Marshal(data)
		if err != nil {
			return true, err
		}
		_, err = w.Write(out)
		return true, err
	default:
		return false, nil
	}
}

func newCompletionCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for accessctl.

Bash:
  source <(accessctl completion bash)

Zsh:
  source <(accessctl completion zsh)`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(out)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
