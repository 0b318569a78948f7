package analytics

import (
	"context"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/healthhive/registry/access"
	"github.com/healthhive/registry/clinical"
	"github.com/healthhive/registry/patients"
	"github.com/healthhive/registry/visits"
)

// Distributions builds the dashboard chart series. Every series is
// derived from one shared latest-visit snapshot so the response is
// internally consistent.
func (s *service) Distributions(ctx context.Context, caller access.Caller, months int) (*Distributions, error) {
	selector, err := patientScope(caller, nil)
	if err != nil {
		return nil, err
	}

	allPatients, err := s.repo.FindPatients(ctx, selector)
	if err != nil {
		return nil, err
	}

	patientIds := make([]string, 0, len(allPatients))
	byId := make(map[string]*patients.Patient, len(allPatients))
	for _, patient := range allPatients {
		if patient.PatientId == "" {
			continue
		}
		patientIds = append(patientIds, patient.PatientId)
		byId[patient.PatientId] = patient
	}

	latest, err := s.aggregator.LatestPerPatient(ctx, patientIds)
	if err != nil {
		return nil, err
	}

	allVisits := []*visits.Visit{}
	if len(patientIds) > 0 {
		allVisits, err = s.repo.FindVisits(ctx, bson.M{"patient_id": bson.M{"$in": patientIds}})
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	return &Distributions{
		BMI:               bmiDistribution(latest),
		FastingGlucose:    glucoseDistribution(latest, true),
		RandomGlucose:     glucoseDistribution(latest, false),
		MonthlyScreenings: monthlyScreenings(allVisits, months, now),
		ControlRates:      controlRates(latest, byId),
	}, nil
}

func bmiDistribution(latest map[string]*visits.Visit) []CategoryCount {
	counts := map[string]int{}
	total := 0
	for _, visit := range latest {
		bmi := visit.Vitals.Bmi
		if bmi == nil && visit.Vitals.Weight != nil && visit.Vitals.Height != nil && *visit.Vitals.Height != 0 {
			heightM := *visit.Vitals.Height / 100
			value := math.Round(*visit.Vitals.Weight/(heightM*heightM)*10) / 10
			bmi = &value
		}
		if bmi == nil {
			continue
		}
		counts[BMICategory(*bmi)]++
		total++
	}

	distribution := make([]CategoryCount, 0, len(BMICategories))
	for _, category := range BMICategories {
		distribution = append(distribution, CategoryCount{
			Category: category,
			Count:    counts[category],
			Percent:  percent(counts[category], total),
		})
	}
	return distribution
}

// glucoseDistribution buckets the generic glucose reading of each
// latest visit by its declared type.
func glucoseDistribution(latest map[string]*visits.Visit, fasting bool) []RangeCount {
	ranges := RandomGlucoseRanges
	if fasting {
		ranges = FastingGlucoseRanges
	}
	counts := make([]int, len(ranges))

	for _, visit := range latest {
		if visit.Vitals.Glucose == nil {
			continue
		}
		glucoseType := ""
		if visit.Vitals.GlucoseType != nil {
			glucoseType = strings.ToLower(*visit.Vitals.GlucoseType)
		}
		isFasting := strings.Contains(glucoseType, "fast")
		if isFasting != fasting {
			continue
		}
		if fasting {
			counts[fastingGlucoseRange(*visit.Vitals.Glucose)]++
		} else {
			counts[randomGlucoseRange(*visit.Vitals.Glucose)]++
		}
	}

	distribution := make([]RangeCount, 0, len(ranges))
	for i, label := range ranges {
		distribution = append(distribution, RangeCount{Range: label, Count: counts[i]})
	}
	return distribution
}

func monthlyScreenings(all []*visits.Visit, months int, now time.Time) []MonthlyActivity {
	order := make([]string, 0, months)
	buckets := map[string]*MonthlyActivity{}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := months - 1; i >= 0; i-- {
		label := monthStart.AddDate(0, 0, -i*30).Format("Jan")
		if _, ok := buckets[label]; !ok {
			order = append(order, label)
			buckets[label] = &MonthlyActivity{Month: label}
		}
	}

	for _, visit := range all {
		bucket, ok := buckets[visit.VisitDate.Format("Jan")]
		if !ok {
			continue
		}
		bucket.Screenings++
		if visit.Diagnosis != "" {
			bucket.Diagnoses++
		}
	}

	series := make([]MonthlyActivity, 0, len(order))
	for _, label := range order {
		series = append(series, *buckets[label])
	}
	return series
}

func controlRates(latest map[string]*visits.Visit, byId map[string]*patients.Patient) []ConditionControlRate {
	htn := ConditionControlRate{Condition: "HTN"}
	dm := ConditionControlRate{Condition: "DM"}

	for patientId, visit := range latest {
		patient, ok := byId[patientId]
		if !ok {
			continue
		}
		diagnosis := clinical.DiagnosisFromConditions(patient.Conditions)
		controlled := visit.ControlStatus == clinical.Controlled
		if diagnosis.HasHTN() {
			htn.Total++
			if controlled {
				htn.Controlled++
			}
		}
		if diagnosis.HasDM() {
			dm.Total++
			if controlled {
				dm.Controlled++
			}
		}
	}

	htn.Rate = percent(htn.Controlled, htn.Total)
	dm.Rate = percent(dm.Controlled, dm.Total)
	return []ConditionControlRate{htn, dm}
}
