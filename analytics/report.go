package analytics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/tealeg/xlsx/v3"
)

const (
	reportSheetNameOverview      = "Overview"
	reportSheetNameDistributions = "Distributions"
)

// Report renders an overview plus distributions snapshot as an xlsx
// workbook for offline review by municipal health officers.
type Report struct {
	overview      *Overview
	distributions *Distributions
	generatedAt   time.Time
}

func NewReport(overview *Overview, distributions *Distributions, generatedAt time.Time) Report {
	return Report{
		overview:      overview,
		distributions: distributions,
		generatedAt:   generatedAt,
	}
}

func (r Report) Generate() (*xlsx.File, error) {
	report := xlsx.NewFile()

	components := []func(report *xlsx.File) error{
		r.addOverviewSheet,
		r.addDistributionsSheet,
	}
	for _, fn := range components {
		if err := fn(report); err != nil {
			return nil, err
		}
	}

	return report, nil
}

func (r Report) addOverviewSheet(report *xlsx.File) error {
	sh, err := report.AddSheet(reportSheetNameOverview)
	if err != nil {
		return err
	}

	sh.AddRow().AddCell().SetValue("Chronic Disease Registry Overview")
	currentRow := sh.AddRow()
	currentRow.AddCell().SetValue("Report Generated")
	currentRow.AddCell().SetValue(r.generatedAt.Format(time.RFC3339))
	sh.AddRow()

	rows := []struct {
		label string
		value string
	}{
		{"Total Patients", strconv.FormatInt(r.overview.TotalPatients, 10)},
		{"Active Cases", strconv.Itoa(r.overview.ActiveCases)},
		{"Hypertension Patients", strconv.FormatInt(r.overview.HTNPatients, 10)},
		{"Diabetes Patients", strconv.FormatInt(r.overview.DMPatients, 10)},
		{"Both Conditions", strconv.FormatInt(r.overview.BothConditions, 10)},
		{"Control Rate", fmt.Sprintf("%.1f%%", r.overview.ControlRate)},
		{"Controlled Patients", strconv.Itoa(r.overview.ControlledPatients)},
		{"Uncontrolled Patients", strconv.Itoa(r.overview.UncontrolledPatients)},
		{"Screenings This Month", strconv.FormatInt(r.overview.MonthlyScreenings, 10)},
		{"Overdue Follow-ups", strconv.Itoa(r.overview.OverdueFollowUps)},
		{"Data Completeness", fmt.Sprintf("%.1f%%", r.overview.DataCompleteness)},
	}
	for _, row := range rows {
		currentRow = sh.AddRow()
		currentRow.AddCell().SetValue(row.label)
		currentRow.AddCell().SetValue(row.value)
	}

	return nil
}

func (r Report) addDistributionsSheet(report *xlsx.File) error {
	sh, err := report.AddSheet(reportSheetNameDistributions)
	if err != nil {
		return err
	}

	components := []func(sh *xlsx.Sheet){
		r.addBMISection,
		r.addGlucoseSection,
		r.addScreeningsSection,
		r.addControlRatesSection,
	}
	for _, fn := range components {
		fn(sh)
	}

	return nil
}

func (r Report) addBMISection(sh *xlsx.Sheet) {
	sh.AddRow().AddCell().SetValue("BMI Distribution")
	for _, bucket := range r.distributions.BMI {
		currentRow := sh.AddRow()
		currentRow.AddCell().SetValue(bucket.Category)
		currentRow.AddCell().SetValue(strconv.Itoa(bucket.Count))
		currentRow.AddCell().SetValue(fmt.Sprintf("%.1f%%", bucket.Percent))
	}
	sh.AddRow()
}

func (r Report) addGlucoseSection(sh *xlsx.Sheet) {
	sh.AddRow().AddCell().SetValue("Fasting Glucose (mg/dL)")
	for _, bucket := range r.distributions.FastingGlucose {
		currentRow := sh.AddRow()
		currentRow.AddCell().SetValue(bucket.Range)
		currentRow.AddCell().SetValue(strconv.Itoa(bucket.Count))
	}
	sh.AddRow()

	sh.AddRow().AddCell().SetValue("Random Glucose (mg/dL)")
	for _, bucket := range r.distributions.RandomGlucose {
		currentRow := sh.AddRow()
		currentRow.AddCell().SetValue(bucket.Range)
		currentRow.AddCell().SetValue(strconv.Itoa(bucket.Count))
	}
	sh.AddRow()
}

func (r Report) addScreeningsSection(sh *xlsx.Sheet) {
	sh.AddRow().AddCell().SetValue("Monthly Screenings")
	for _, month := range r.distributions.MonthlyScreenings {
		currentRow := sh.AddRow()
		currentRow.AddCell().SetValue(month.Month)
		currentRow.AddCell().SetValue(strconv.Itoa(month.Screenings))
		currentRow.AddCell().SetValue(strconv.Itoa(month.Diagnoses))
	}
	sh.AddRow()
}

func (r Report) addControlRatesSection(sh *xlsx.Sheet) {
	sh.AddRow().AddCell().SetValue("Control Rates by Condition")
	for _, rate := range r.distributions.ControlRates {
		currentRow := sh.AddRow()
		currentRow.AddCell().SetValue(rate.Condition)
		currentRow.AddCell().SetValue(fmt.Sprintf("%d/%d", rate.Controlled, rate.Total))
		currentRow.AddCell().SetValue(fmt.Sprintf("%.1f%%", rate.Rate))
	}
}
