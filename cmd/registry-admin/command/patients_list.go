package command

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/healthhive/registry/access"
	"github.com/healthhive/registry/patients"
	"github.com/healthhive/registry/store"
)

var patientsListBarangay string

var patientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List Registered Patients",
	Long:  "The list command is used to retrieve a list of all active patients",
	RunE:  func(cmd *cobra.Command, args []string) error { return Run(listPatients) },
}

func listPatients(service patients.Service) error {
	region := access.RegionFilter{All: true}
	if patientsListBarangay != "" {
		region = access.RegionFilter{Regions: []string{patientsListBarangay}}
	}

	page := store.DefaultPagination().WithLimit(1000)
	list, total, err := service.List(context.TODO(), &patients.Filter{
		Region: region,
	}, page)
	if err != nil {
		return err
	}

	for _, patient := range list {
		riskLevel := ""
		if patient.RiskLevel != nil {
			riskLevel = *patient.RiskLevel
		}

		fmt.Printf("%s %s %s %s\n", patient.PatientId, patient.FullName(), patient.Barangay, riskLevel)
	}
	fmt.Printf("Found %v of %v patients\n", len(list), total)

	return nil
}

func init() {
	patientsListCmd.Flags().StringVar(&patientsListBarangay, "barangay", "", "Limit the list to a single barangay")
	patientsCmd.AddCommand(patientsListCmd)
}
