package backlink

import (
	"fmt"
	"reflect"
	"testing"
	"time"
)

func fixedEstimator() *SyntheticEstimator {
	return &SyntheticEstimator{now: func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }}
}

func TestAnalyzeDomain_Deterministic(t *testing.T) {
	e := fixedEstimator()
	a := e.AnalyzeDomain("example.com")
	b := e.AnalyzeDomain("https://Example.com/path")

	if !reflect.DeepEqual(a, b) {
		t.Errorf("profiles differ for the same domain:\n%+v\n%+v", a, b)
	}
	if !a.Synthetic {
		t.Error("Synthetic = false")
	}
	if a.Domain != "example.com" {
		t.Errorf("Domain = %q", a.Domain)
	}
}

func TestAnalyzeDomain_Ranges(t *testing.T) {
	e := fixedEstimator()
	for _, domain := range []string{"example.com", "blog.example.co.uk", "a.io", "shop.test.org"} {
		p := e.AnalyzeDomain(domain)

		mult := len(domain)%10 + 1
		lo, hi := 50*mult, 2000*mult
		if isApex(domain) {
			lo, hi = lo*3, hi*3
		}
		if p.TotalBacklinks < lo || p.TotalBacklinks > hi {
			t.Errorf("%s: TotalBacklinks %d outside [%d,%d]", domain, p.TotalBacklinks, lo, hi)
		}
		if p.ReferringDomains < 20 || p.ReferringDomains > 1440 {
			t.Errorf("%s: ReferringDomains %d out of range", domain, p.ReferringDomains)
		}
		if len(p.TopReferrers) != 10 || len(p.AnchorTexts) != 10 {
			t.Errorf("%s: %d referrers, %d anchors", domain, len(p.TopReferrers), len(p.AnchorTexts))
		}
		if p.TopReferrers[0].Referrer != "blog0."+domain || p.TopReferrers[1].Referrer != "ref1."+domain {
			t.Errorf("%s: referrer names %v", domain, p.TopReferrers[:2])
		}
		if len(p.Growth.Months) != 12 {
			t.Errorf("%s: %d growth months", domain, len(p.Growth.Months))
		}
		for _, m := range p.Growth.Months {
			if m < -5 || m > 24 {
				t.Errorf("%s: growth month %d out of range", domain, m)
			}
		}
		if p.ToxicScore < 0 || p.ToxicScore > 100 {
			t.Errorf("%s: ToxicScore %v", domain, p.ToxicScore)
		}
	}
}

func TestCompareReferrers_SharedTen(t *testing.T) {
	var a, b []string
	for i := 0; i < 10; i++ {
		shared := fmt.Sprintf("shared%d.net", i)
		a = append(a, shared)
		b = append(b, shared)
	}
	for i := 0; i < 40; i++ {
		a = append(a, fmt.Sprintf("only-a%d.net", i))
		b = append(b, fmt.Sprintf("only-b%d.net", i))
	}

	gap := CompareReferrers("a.com", "b.com", a, b)

	if len(gap.Overlap) != 10 {
		t.Errorf("overlap = %d, want 10", len(gap.Overlap))
	}
	if len(gap.MissingForSource) != 40 || len(gap.MissingForTarget) != 40 {
		t.Errorf("missing source=%d target=%d, want 40 and 40", len(gap.MissingForSource), len(gap.MissingForTarget))
	}
	if gap.MissingForSource[0] != "only-b0.net" || gap.MissingForTarget[0] != "only-a0.net" {
		t.Errorf("unexpected ordering: %v / %v", gap.MissingForSource[:1], gap.MissingForTarget[:1])
	}
	if !gap.Synthetic {
		t.Error("Synthetic = false")
	}
}

func TestCompareReferrers_CapsAtFifty(t *testing.T) {
	var a []string
	for i := 0; i < 80; i++ {
		a = append(a, fmt.Sprintf("x%d.net", i))
	}
	gap := CompareReferrers("a.com", "b.com", a, nil)
	if len(gap.MissingForTarget) != 50 {
		t.Errorf("MissingForTarget = %d, want 50", len(gap.MissingForTarget))
	}
	if gap.MissingForSource == nil || gap.Overlap == nil {
		t.Error("empty lists should be non-nil")
	}
}

func TestCompareLinkGap(t *testing.T) {
	gap := fixedEstimator().CompareLinkGap("example.com", "other.org")
	if len(gap.MissingForSource) != 50 || len(gap.MissingForTarget) != 50 || len(gap.Overlap) != 0 {
		t.Errorf("gap sizes = %d/%d/%d", len(gap.MissingForSource), len(gap.MissingForTarget), len(gap.Overlap))
	}

	self := fixedEstimator().CompareLinkGap("example.com", "example.com")
	if len(self.Overlap) != 50 || len(self.MissingForSource) != 0 {
		t.Errorf("self gap = %d overlap, %d missing", len(self.Overlap), len(self.MissingForSource))
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, b, want int }{{25, 12, 2}, {-1, 12, -1}, {-24, 12, -2}, {0, 12, 0}}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
