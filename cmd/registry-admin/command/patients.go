package command

import (
	"github.com/spf13/cobra"
)

var patientsCmd = &cobra.Command{
	Use:   "patients",
	Short: "Registry Patients",
	Long:  "The patients command is used to manage registered patients",
}

func init() {
	rootCmd.AddCommand(patientsCmd)
}
