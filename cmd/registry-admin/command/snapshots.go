package command

import (
	"github.com/spf13/cobra"
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Patient Snapshots",
	Long:  "The snapshots command is used to manage the latest-visit fields mirrored onto patient records",
}

func init() {
	rootCmd.AddCommand(snapshotsCmd)
}
