// Package devices implements the subcommand listing capture devices.
package devices

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oliviamiller/audiostream/internal/audiocore/sources/malgo"
)

// Command returns the devices subcommand.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List available audio capture devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listDevices(cmd)
		},
	}
}

func listDevices(cmd *cobra.Command) error {
	devices, err := malgo.ListCaptureDevices()
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		cmd.Println("No capture devices found")
		return nil
	}

	cmd.Println("Available capture devices:")
	for _, d := range devices {
		marker := " "
		if d.IsDefault {
			marker = "*"
		}
		cmd.Println(fmt.Sprintf("%s %d: %s [%s]", marker, d.Index, d.Name, d.ID))
	}
	return nil
}
