package pricing

import (
	"testing"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
)

func TestSummarizeActiveOnly(t *testing.T) {
	inactive := tier("200", "", "1")
	inactive.IsActive = false
	tiers := []models.PricingTier{
		tier("1", "10", "30"),
		tier("11", "50", "26"),
		tier("51", "", "35"),
		inactive,
	}

	summary := Summarize(dec("28"), tiers)
	if summary == nil {
		t.Fatal("expected a summary")
	}
	if !summary.MinPrice.Equal(dec("26")) || !summary.MaxPrice.Equal(dec("35")) {
		t.Fatalf("unexpected min/max %s/%s", summary.MinPrice, summary.MaxPrice)
	}
	if summary.TierCount != 3 {
		t.Fatalf("expected 3 active tiers, got %d", summary.TierCount)
	}
	if !summary.BasePrice.Equal(dec("28")) {
		t.Fatalf("expected base price echoed, got %s", summary.BasePrice)
	}
}

func TestSummarizeNoTiers(t *testing.T) {
	if Summarize(dec("10"), nil) != nil {
		t.Fatal("expected nil summary without tiers")
	}
	inactive := tier("1", "", "5")
	inactive.IsActive = false
	if Summarize(dec("10"), []models.PricingTier{inactive}) != nil {
		t.Fatal("expected nil summary with only inactive tiers")
	}
}

func TestDiscountPercent(t *testing.T) {
	cases := []struct {
		base, tier, want string
	}{
		{"30", "20", "33.33"},
		{"100", "75", "25"},
		{"0", "5", "0"},
		{"-1", "5", "0"},
		{"3", "2", "33.33"},
	}
	for _, tc := range cases {
		if got := DiscountPercent(dec(tc.base), dec(tc.tier)); !got.Equal(dec(tc.want)) {
			t.Fatalf("DiscountPercent(%s, %s) = %s, want %s", tc.base, tc.tier, got, tc.want)
		}
	}
}

func TestQuoteForTier(t *testing.T) {
	matched := tier("51", "", "20")
	q := QuoteFor(dec("30"), &matched, dec("75"))
	if !q.FromTier() {
		t.Fatal("expected tier-priced quote")
	}
	if !q.UnitPrice.Equal(dec("20")) || !q.Total.Equal(dec("1500")) {
		t.Fatalf("unexpected price/total %s/%s", q.UnitPrice, q.Total)
	}
	if q.DiscountAmount == nil || !q.DiscountAmount.Equal(dec("10")) {
		t.Fatalf("unexpected discount amount %v", q.DiscountAmount)
	}
	if q.CalculatedDiscountPercent == nil || !q.CalculatedDiscountPercent.Equal(dec("33.33")) {
		t.Fatalf("unexpected calculated discount %v", q.CalculatedDiscountPercent)
	}
}

func TestQuoteForTierAboveBasePrice(t *testing.T) {
	matched := tier("1", "", "40")
	q := QuoteFor(dec("30"), &matched, dec("2"))
	if q.DiscountAmount != nil || q.CalculatedDiscountPercent != nil {
		t.Fatal("expected no savings when tier price exceeds base price")
	}
	if !q.Total.Equal(dec("80")) {
		t.Fatalf("unexpected total %s", q.Total)
	}
}

func TestQuoteForBasePriceFallback(t *testing.T) {
	q := QuoteFor(dec("12.5"), nil, dec("3"))
	if q.FromTier() {
		t.Fatal("expected base price quote")
	}
	if !q.UnitPrice.Equal(dec("12.5")) || !q.Total.Equal(dec("37.5")) {
		t.Fatalf("unexpected price/total %s/%s", q.UnitPrice, q.Total)
	}
}
