package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestColorFallback(t *testing.T) {
	if ColorFor("Travel") != ColorFor(Others) {
		t.Fatalf("unknown category should use the Others colour")
	}
	if BadgeFor("") != "bg-gray-500" {
		t.Fatalf("empty category should use the fallback badge")
	}
	if ColorFor(Food) == ColorFor(Others) {
		t.Fatalf("Food must have a dedicated colour")
	}
}

func TestDisplayCategory(t *testing.T) {
	if DisplayCategory("Travel") != Others || DisplayCategory(Shopping) != Shopping {
		t.Fatalf("unexpected display mapping")
	}
}

func TestChartSlicesKeepLiteralNames(t *testing.T) {
	slices := ChartSlices([]CategoryAmount{{Name: "Travel", Amount: decimal.NewFromInt(4)}})
	if len(slices) != 1 || slices[0].Name != "Travel" || slices[0].Color != "#6b7280" {
		t.Fatalf("unexpected slices %+v", slices)
	}
}
