package stats

import (
	"encoding/json"

	"github.com/angelmondragon/promotion-manager/pkg/db/models"
	"github.com/google/uuid"
)

// Totals sums the counters of a set of mission records.
type Totals struct {
	Sales          int64 `json:"total_sales"`
	Approached     int64 `json:"total_people_approached"`
	Purchased      int64 `json:"total_people_purchased"`
	InitialStock   int64 `json:"total_initial_stock"`
	RemainingStock int64 `json:"total_remaining_stock"`
	MissionsCount  int   `json:"missions_count"`
}

func (t *Totals) add(r models.MissionRecord) {
	t.Sales += int64(r.ProductsSold)
	t.Approached += int64(r.PeopleApproached)
	t.Purchased += int64(r.PeoplePurchased)
	t.InitialStock += int64(r.InitialStock)
	t.RemainingStock += int64(r.RemainingStock)
	t.MissionsCount++
}

// Summary is a set of totals with the rates derived from them.
type Summary struct {
	Totals
	ConversionRate  float64 `json:"conversion_rate"`
	SalesPercentage float64 `json:"sales_percentage"`
}

func (t Totals) summary() Summary {
	return Summary{
		Totals:          t,
		ConversionRate:  ConversionRate(t.Purchased, t.Approached),
		SalesPercentage: SalesPercentage(t.Sales, t.InitialStock),
	}
}

// Summarize aggregates records into campaign-scope totals and rates.
func Summarize(records []models.MissionRecord) Summary {
	var t Totals
	for _, r := range records {
		t.add(r)
	}
	return t.summary()
}

// PromoterPerformance is the aggregate of one promoter's records.
type PromoterPerformance struct {
	PromoterID   *uuid.UUID `json:"promoter_id,omitempty"`
	PromoterName string     `json:"promoter_name"`
	Summary
}

// MarshalJSON writes the per-promoter field names, which differ from the
// campaign summary for the people counters.
func (p PromoterPerformance) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		PromoterID      *uuid.UUID `json:"promoter_id,omitempty"`
		PromoterName    string     `json:"promoter_name"`
		Sales           int64      `json:"total_sales"`
		Approached      int64      `json:"total_approached"`
		Purchased       int64      `json:"total_purchased"`
		InitialStock    int64      `json:"total_initial_stock"`
		RemainingStock  int64      `json:"total_remaining_stock"`
		MissionsCount   int        `json:"missions_count"`
		ConversionRate  float64    `json:"conversion_rate"`
		SalesPercentage float64    `json:"sales_percentage"`
	}{
		PromoterID:      p.PromoterID,
		PromoterName:    p.PromoterName,
		Sales:           p.Sales,
		Approached:      p.Approached,
		Purchased:       p.Purchased,
		InitialStock:    p.InitialStock,
		RemainingStock:  p.RemainingStock,
		MissionsCount:   p.MissionsCount,
		ConversionRate:  p.ConversionRate,
		SalesPercentage: p.SalesPercentage,
	})
}

// PromoterKey identifies the promoter a record belongs to: the promoter id
// when set, otherwise the recorded name.
func PromoterKey(r models.MissionRecord) string {
	if r.PromoterID != nil && *r.PromoterID != uuid.Nil {
		return r.PromoterID.String()
	}
	return "name:" + r.PromoterName
}

// PerformanceByPromoter groups records by PromoterKey and aggregates each group.
func PerformanceByPromoter(records []models.MissionRecord) map[string]PromoterPerformance {
	totals := make(map[string]*Totals)
	out := make(map[string]PromoterPerformance)

	for _, r := range records {
		key := PromoterKey(r)
		t, ok := totals[key]
		if !ok {
			t = &Totals{}
			totals[key] = t
			out[key] = PromoterPerformance{PromoterID: r.PromoterID, PromoterName: r.PromoterName}
		}
		t.add(r)
	}

	for key, t := range totals {
		perf := out[key]
		perf.Summary = t.summary()
		out[key] = perf
	}
	return out
}
