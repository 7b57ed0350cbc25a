package stats

import (
	"github.com/angelmondragon/promotion-manager/pkg/db/models"
	"github.com/shopspring/decimal"
)

const ratePlaces = 2

var hundred = decimal.NewFromInt(100)

// Rate returns 100*numerator/denominator rounded half away from zero to two
// decimals. A zero (or negative) denominator yields 0.
func Rate(numerator, denominator int64) float64 {
	if denominator <= 0 {
		return 0
	}
	return decimal.NewFromInt(numerator).
		Mul(hundred).
		Div(decimal.NewFromInt(denominator)).
		Round(ratePlaces).
		InexactFloat64()
}

// ConversionRate is the share of approached people who purchased.
func ConversionRate(purchased, approached int64) float64 {
	return Rate(purchased, approached)
}

// SalesPercentage is the share of initial stock that was sold.
func SalesPercentage(sold, initialStock int64) float64 {
	return Rate(sold, initialStock)
}

// RecordConversionRate applies ConversionRate to a single mission record.
func RecordConversionRate(r models.MissionRecord) float64 {
	return ConversionRate(int64(r.PeoplePurchased), int64(r.PeopleApproached))
}

// RecordSalesPercentage applies SalesPercentage to a single mission record.
func RecordSalesPercentage(r models.MissionRecord) float64 {
	return SalesPercentage(int64(r.ProductsSold), int64(r.InitialStock))
}
