package commands

import (
	"fmt"
	"os/exec"

	app_info "github.com/robgonnella/fleetprobe/internal/app-info"
	"github.com/robgonnella/fleetprobe/internal/protocol"
	"github.com/spf13/cobra"
)

func info() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print detailed app info",
		Run: func(cmd *cobra.Command, args []string) {
			// nmap backs the handshake sweep strategy
			nmapCmd := exec.Command("nmap", "--version")
			nmapInfo, err := nmapCmd.Output()

			if err != nil {
				nmapInfo = []byte("nmap not found: handshake strategy unavailable\n")
			}

			schemes := protocol.DefaultRegistry(protocol.WBEMOptions{}).Schemes()

			fmt.Fprintf(
				cmd.OutOrStdout(),
				"%s: %s\n\nschemes: %v\n\n%s",
				app_info.NAME,
				app_info.VERSION,
				schemes,
				nmapInfo,
			)
		},
	}

	return cmd
}
