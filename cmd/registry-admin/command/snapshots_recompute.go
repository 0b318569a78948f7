package command

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/healthhive/registry/access"
	"github.com/healthhive/registry/patients"
	"github.com/healthhive/registry/visits"
)

var snapshotsRecomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Recompute Patient Snapshots",
	Long:  "The recompute command rebuilds the mirrored latest-visit fields of every patient from the visit timeline",
	RunE:  func(cmd *cobra.Command, args []string) error { return Run(recomputeSnapshots) },
}

func recomputeSnapshots(patientsService patients.Service, visitsRepo visits.Repository) error {
	ctx := context.TODO()

	latest, err := visitsRepo.LatestPerPatient(ctx, access.RegionFilter{All: true})
	if err != nil {
		return err
	}

	updated := 0
	failed := 0
	for patientId, visit := range latest {
		if err := patientsService.UpdateSnapshot(ctx, patientId, snapshotFromVisit(visit)); err != nil {
			fmt.Printf("unable to update %s: %v\n", patientId, err)
			failed++
			continue
		}
		updated++
	}

	fmt.Printf("Updated %v patients, %v failed\n", updated, failed)
	return nil
}

func snapshotFromVisit(visit *visits.Visit) *patients.Snapshot {
	riskLevel := string(visit.RiskTier)
	flagged := visit.FlaggedForFollowUp

	snapshot := &patients.Snapshot{
		RiskLevel:          &riskLevel,
		FlaggedForFollowUp: &flagged,
	}
	if visit.CurrentMedications != nil {
		snapshot.CurrentMedications = visit.CurrentMedications
	}
	if visit.PreviousMedications != nil {
		snapshot.PreviousMedications = visit.PreviousMedications
	}
	if visit.MedicationsProvided != nil {
		snapshot.MedicationsProvided = visit.MedicationsProvided
	}
	if visit.MedicationsTaken != nil {
		snapshot.MedicationsTaken = visit.MedicationsTaken
	}

	return snapshot
}

func init() {
	snapshotsCmd.AddCommand(snapshotsRecomputeCmd)
}
