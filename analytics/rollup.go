package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/healthhive/registry/clinical"
	"github.com/healthhive/registry/visits"
)

const (
	AdherenceGood     = "Good Adherence"
	AdherenceModerate = "Moderate Adherence"
	AdherencePoor     = "Poor Adherence"
)

// TrendBucket is one (year, month, control status) visit count.
type TrendBucket struct {
	Year          int
	Month         int
	ControlStatus clinical.ControlStatus
	Count         int
}

// LatestVisitPerPatient reduces a visit list to each patient's
// chronologically latest visit. Ties keep the first-seen record so the
// result is stable for a given input order.
func LatestVisitPerPatient(all []*visits.Visit) map[string]*visits.Visit {
	latest := map[string]*visits.Visit{}
	for _, visit := range all {
		if visit.PatientId == "" {
			continue
		}
		current, ok := latest[visit.PatientId]
		if !ok || visit.VisitDate.After(current.VisitDate) {
			latest[visit.PatientId] = visit
		}
	}
	return latest
}

// TrendBucketsFromVisits groups visits by (year, month, control
// status), keeping only the given diagnosis tags. Buckets are sorted
// chronologically.
func TrendBucketsFromVisits(all []*visits.Visit, diagnoses mapset.Set[string], since time.Time) []TrendBucket {
	type key struct {
		year   int
		month  int
		status clinical.ControlStatus
	}

	counts := map[key]int{}
	for _, visit := range all {
		if visit.VisitDate.Before(since) {
			continue
		}
		if !diagnoses.Contains(string(visit.Diagnosis)) {
			continue
		}
		k := key{
			year:   visit.VisitDate.Year(),
			month:  int(visit.VisitDate.Month()),
			status: visit.ControlStatus,
		}
		counts[k]++
	}

	buckets := make([]TrendBucket, 0, len(counts))
	for k, count := range counts {
		buckets = append(buckets, TrendBucket{
			Year:          k.year,
			Month:         k.month,
			ControlStatus: k.status,
			Count:         count,
		})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Year != buckets[j].Year {
			return buckets[i].Year < buckets[j].Year
		}
		if buckets[i].Month != buckets[j].Month {
			return buckets[i].Month < buckets[j].Month
		}
		return buckets[i].ControlStatus < buckets[j].ControlStatus
	})
	return buckets
}

// TrendPointsFromBuckets folds raw buckets into the monthly response
// series. Any status other than Controlled counts as uncontrolled.
func TrendPointsFromBuckets(buckets []TrendBucket) []TrendPoint {
	monthly := map[string]*TrendPoint{}
	order := []string{}
	for _, bucket := range buckets {
		monthKey := fmt.Sprintf("%d-%02d", bucket.Year, bucket.Month)
		point, ok := monthly[monthKey]
		if !ok {
			point = &TrendPoint{Month: monthKey}
			monthly[monthKey] = point
			order = append(order, monthKey)
		}
		if bucket.ControlStatus == clinical.Controlled {
			point.Controlled += bucket.Count
		} else {
			point.Uncontrolled += bucket.Count
		}
	}

	sort.Strings(order)
	points := make([]TrendPoint, 0, len(order))
	for _, monthKey := range order {
		point := monthly[monthKey]
		point.Total = point.Controlled + point.Uncontrolled
		points = append(points, *point)
	}
	return points
}

// DistinctPatients counts unique patient ids across a visit list.
func DistinctPatients(all []*visits.Visit) int {
	seen := mapset.NewSet[string]()
	for _, visit := range all {
		if visit.PatientId != "" {
			seen.Add(visit.PatientId)
		}
	}
	return seen.Cardinality()
}

// ClassifyAdherence is a proxy over visit recency and dispensing:
// Good needs a visit inside the last 90 days with medications handed
// out; Moderate a recent visit without; Poor no recent visit at all.
func ClassifyAdherence(latest *visits.Visit, now time.Time) string {
	if latest == nil {
		return AdherencePoor
	}
	if latest.VisitDate.Before(now.AddDate(0, 0, -90)) {
		return AdherencePoor
	}
	if len(latest.MedicationsDispensed) > 0 {
		return AdherenceGood
	}
	return AdherenceModerate
}

// BMI category cut points follow the Asia-Pacific classification used
// on the dashboard.
var BMICategories = []string{
	"Underweight (<18.5)",
	"Normal (18.5-22.9)",
	"Overweight (23-24.9)",
	"Obese I (25-29.9)",
	"Obese II (>=30)",
}

func BMICategory(value float64) string {
	switch {
	case value < 18.5:
		return BMICategories[0]
	case value < 23:
		return BMICategories[1]
	case value < 25:
		return BMICategories[2]
	case value < 30:
		return BMICategories[3]
	default:
		return BMICategories[4]
	}
}

var (
	FastingGlucoseRanges = []string{"<100", "100-125", "126-180", "181-250", ">250"}
	RandomGlucoseRanges  = []string{"<140", "140-199", "200-250", "251-350", ">350"}
)

func fastingGlucoseRange(value float64) int {
	switch {
	case value < 100:
		return 0
	case value <= 125:
		return 1
	case value <= 180:
		return 2
	case value <= 250:
		return 3
	default:
		return 4
	}
}

func randomGlucoseRange(value float64) int {
	switch {
	case value < 140:
		return 0
	case value <= 199:
		return 1
	case value <= 250:
		return 2
	case value <= 350:
		return 3
	default:
		return 4
	}
}

func percent(value, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(value)/float64(total)*1000) / 10
}
