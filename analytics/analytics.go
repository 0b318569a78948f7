package analytics

import (
	"context"

	"github.com/tealeg/xlsx/v3"

	"github.com/healthhive/registry/access"
)

// Overview is the municipality-wide chronic disease snapshot.
type Overview struct {
	TotalPatients        int64   `json:"total_patients"`
	ActiveCases          int     `json:"active_cases"`
	HTNPatients          int64   `json:"htn_patients"`
	DMPatients           int64   `json:"dm_patients"`
	BothConditions       int64   `json:"both_conditions"`
	ControlRate          float64 `json:"control_rate"`
	ControlledPatients   int     `json:"controlled_patients"`
	UncontrolledPatients int     `json:"uncontrolled_patients"`
	MonthlyScreenings    int64   `json:"monthly_screenings"`
	OverdueFollowUps     int     `json:"overdue_followups"`
	DataCompleteness     float64 `json:"data_completeness"`
}

// TrendPoint is one month's controlled/uncontrolled visit counts.
type TrendPoint struct {
	Month        string `json:"month"`
	Controlled   int    `json:"controlled"`
	Uncontrolled int    `json:"uncontrolled"`
	Total        int    `json:"total"`
}

type Trends struct {
	Condition string       `json:"condition"`
	Months    int          `json:"months"`
	Trends    []TrendPoint `json:"trends"`
}

type RetentionWindow struct {
	Retained int     `json:"retained"`
	Rate     float64 `json:"rate"`
}

// CohortRetention tracks how many patients enrolled in a historical
// month window remain in care. Retention counts visits inside trailing
// 6 and 12 month windows measured from now, not from each patient's
// enrollment date.
type CohortRetention struct {
	CohortSize   int                        `json:"cohort_size"`
	CohortPeriod string                     `json:"cohort_period,omitempty"`
	Retention    map[string]RetentionWindow `json:"retention"`
}

type RiskBucket struct {
	RiskLevel string `json:"risk_level"`
	Count     int    `json:"count"`
}

type RiskDistribution struct {
	Distribution []RiskBucket `json:"distribution"`
}

type AdherenceBucket struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent"`
}

// Adherence reports the Good/Moderate/Poor classification per
// condition group, derived from each patient's latest visit.
type Adherence struct {
	DM  []AdherenceBucket `json:"dm"`
	HTN []AdherenceBucket `json:"htn"`
}

// RegionSummary is one barangay's headline numbers for heat maps and
// priority ranking.
type RegionSummary struct {
	Barangay         string `json:"barangay"`
	Cluster          string `json:"cluster"`
	TotalPatients    int64  `json:"total_patients"`
	HTNPatients      int64  `json:"htn_patients"`
	DMPatients       int64  `json:"dm_patients"`
	HighRiskPatients int64  `json:"high_risk_patients"`
	Population       int    `json:"population"`
}

type CategoryCount struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent"`
}

type RangeCount struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

type MonthlyActivity struct {
	Month      string `json:"month"`
	Screenings int    `json:"screenings"`
	Diagnoses  int    `json:"diagnoses"`
}

type ConditionControlRate struct {
	Condition  string  `json:"condition"`
	Controlled int     `json:"controlled"`
	Total      int     `json:"total"`
	Rate       float64 `json:"rate"`
}

// Distributions consolidates the dashboard chart series over a single
// latest-visit snapshot.
type Distributions struct {
	BMI               []CategoryCount        `json:"bmi_distribution"`
	FastingGlucose    []RangeCount           `json:"fbg_distribution"`
	RandomGlucose     []RangeCount           `json:"rbg_distribution"`
	MonthlyScreenings []MonthlyActivity      `json:"monthly_screenings"`
	ControlRates      []ConditionControlRate `json:"control_rates"`
}

type Service interface {
	Overview(ctx context.Context, caller access.Caller, barangay *string) (*Overview, error)
	Trends(ctx context.Context, caller access.Caller, condition string, barangay *string, months int) (*Trends, error)
	CohortRetention(ctx context.Context, caller access.Caller, months int) (*CohortRetention, error)
	RiskDistribution(ctx context.Context, caller access.Caller, barangay *string) (*RiskDistribution, error)
	Adherence(ctx context.Context, caller access.Caller) (*Adherence, error)
	Distributions(ctx context.Context, caller access.Caller, months int) (*Distributions, error)
	RegionSummary(ctx context.Context, caller access.Caller) ([]*RegionSummary, error)
	ExportOverviewReport(ctx context.Context, caller access.Caller) (*xlsx.File, error)
}
