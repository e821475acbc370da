package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/robgonnella/fleetprobe/internal/protocol"
	"github.com/robgonnella/fleetprobe/internal/target"
	"github.com/spf13/cobra"
)

func singleID(args []string) (int, error) {
	id, err := strconv.Atoi(args[0])

	if err != nil {
		return 0, fmt.Errorf("invalid target id %q", args[0])
	}

	return id, nil
}

func printTargets(out io.Writer, targets []*target.Target) {
	tw := newTable(out, "ID", "ADDRESS", "PORT", "SCHEME", "PRINCIPAL", "NAMESPACE", "COMPANY", "PRODUCT", "ENABLED")

	for _, t := range targets {
		row(tw, t.ID, t.Address, t.Port, t.Scheme, t.Principal, t.Namespace, t.Company, t.Product, t.ScanEnabled)
	}

	tw.Flush()
}

func targets(props *CommandProps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "targets",
		Short: "Manage the target registry",
	}

	var company string
	var enabledOnly bool

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			appCore, err := props.core()

			if err != nil {
				return err
			}

			found, err := appCore.Targets().List(&target.Filter{
				Company:     company,
				EnabledOnly: enabledOnly,
			})

			if err != nil {
				return err
			}

			printTargets(cmd.OutOrStdout(), found)

			return nil
		},
	}

	list.Flags().StringVar(&company, "company", "", "only targets of company")
	list.Flags().BoolVar(&enabledOnly, "enabled", false, "only targets enabled for probing")

	show := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a registered target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := singleID(args)

			if err != nil {
				return err
			}

			appCore, err := props.core()

			if err != nil {
				return err
			}

			t, err := appCore.Targets().Get(id)

			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			printTargets(out, []*target.Target{t})

			if len(t.Notify) > 0 {
				fmt.Fprintf(out, "\nnotify: %s\n", strings.Join(t.Notify, ", "))
			}

			return nil
		},
	}

	newTarget := target.Target{}
	var disabled bool

	add := &cobra.Command{
		Use:   "add",
		Short: "Register a new target",
		RunE: func(cmd *cobra.Command, args []string) error {
			appCore, err := props.core()

			if err != nil {
				return err
			}

			t := newTarget
			t.ScanEnabled = !disabled

			if t.Scheme == "" {
				t.Scheme = protocol.SchemeForPort(t.Port)
			}

			added, err := appCore.Targets().Add(&t)

			if err != nil {
				return err
			}

			printTargets(cmd.OutOrStdout(), []*target.Target{added})

			return nil
		},
	}

	add.Flags().StringVar(&newTarget.Address, "address", "", "target address")
	add.Flags().IntVar(&newTarget.Port, "port", 5989, "target port")
	add.Flags().StringVar(&newTarget.Scheme, "scheme", "", "protocol scheme (default from port)")
	add.Flags().StringVar(&newTarget.Principal, "principal", "", "user name")
	add.Flags().StringVar(&newTarget.Credential, "credential", "", "password or community")
	add.Flags().StringVar(&newTarget.Namespace, "namespace", "", "namespace or database")
	add.Flags().StringVar(&newTarget.Company, "company", "", "owning company")
	add.Flags().StringVar(&newTarget.Product, "product", "", "product name")
	add.Flags().StringSliceVar(&newTarget.Notify, "notify", nil, "notification address, repeatable")
	add.Flags().BoolVar(&disabled, "disabled", false, "register without enabling probing")
	add.MarkFlagRequired("address")

	remove := &cobra.Command{
		Use:   "remove [id]",
		Short: "Unregister a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := singleID(args)

			if err != nil {
				return err
			}

			appCore, err := props.core()

			if err != nil {
				return err
			}

			return appCore.Targets().Remove(id)
		},
	}

	setEnabled := func(use, short string, enabled bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " [id]",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := singleID(args)

				if err != nil {
					return err
				}

				appCore, err := props.core()

				if err != nil {
					return err
				}

				updated, err := appCore.Targets().SetScanEnabled(id, enabled)

				if err != nil {
					return err
				}

				printTargets(cmd.OutOrStdout(), []*target.Target{updated})

				return nil
			},
		}
	}

	changes := target.Target{}

	update := &cobra.Command{
		Use:   "update [id]",
		Short: "Change fields of a registered target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := singleID(args)

			if err != nil {
				return err
			}

			appCore, err := props.core()

			if err != nil {
				return err
			}

			updated, err := appCore.Targets().Update(id, changes)

			if err != nil {
				return err
			}

			printTargets(cmd.OutOrStdout(), []*target.Target{updated})

			return nil
		},
	}

	update.Flags().StringVar(&changes.Address, "address", "", "target address")
	update.Flags().IntVar(&changes.Port, "port", 0, "target port")
	update.Flags().StringVar(&changes.Scheme, "scheme", "", "protocol scheme")
	update.Flags().StringVar(&changes.Principal, "principal", "", "user name")
	update.Flags().StringVar(&changes.Credential, "credential", "", "password or community")
	update.Flags().StringVar(&changes.Namespace, "namespace", "", "namespace or database")
	update.Flags().StringVar(&changes.Company, "company", "", "owning company")
	update.Flags().StringVar(&changes.Product, "product", "", "product name")
	update.Flags().StringSliceVar(&changes.Notify, "notify", nil, "notification address, repeatable")

	cmd.AddCommand(list)
	cmd.AddCommand(show)
	cmd.AddCommand(add)
	cmd.AddCommand(update)
	cmd.AddCommand(remove)
	cmd.AddCommand(setEnabled("enable", "Enable probing of a target", true))
	cmd.AddCommand(setEnabled("disable", "Disable probing of a target", false))

	return cmd
}
