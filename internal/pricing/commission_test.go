package pricing

import (
	"strings"
	"testing"
)

func TestCommission_ProtectionFloorBoundary(t *testing.T) {
	below := Commission(1000, 69.999, LeadInbound, true, JobCommercial)
	if !below.Floored || below.TorqBonusPct != 0 {
		t.Fatalf("expected bonuses held at 69.999 gpm, got %+v", below)
	}
	nearlyEqual(t, "below rate", below.RatePct, 4.5)

	at := Commission(1000, 70, LeadInbound, true, JobCommercial)
	if at.Floored {
		t.Fatalf("70 gpm must not trigger the floor, got %+v", at)
	}
	nearlyEqual(t, "at rate", at.RatePct, 5.5)
}

func TestCommission_FloorNeverTouchesBase(t *testing.T) {
	got := Commission(1000, -20, LeadOutbound, true, JobMarine)
	nearlyEqual(t, "rate", got.RatePct, 7)
	nearlyEqual(t, "total", got.Total, 70)
}

func TestCommission_FloorSkipsPPF(t *testing.T) {
	got := Commission(526, 43.83, LeadInbound, true, JobPPF)
	if got.Floored {
		t.Fatalf("ppf jobs are exempt from the floor, got %+v", got)
	}
	nearlyEqual(t, "torq bonus", got.TorqBonusPct, 1)
	nearlyEqual(t, "rate", got.RatePct, 5.5)
}

func TestCommission_GPMBonusBoundary(t *testing.T) {
	at := Commission(1000, 73.0, LeadInbound, false, JobCommercial)
	nearlyEqual(t, "gpm bonus at 73", at.GPMBonusPct, 0)

	above := Commission(1000, 73.0001, LeadInbound, false, JobCommercial)
	nearlyEqual(t, "gpm bonus above 73", above.GPMBonusPct, 2)
	nearlyEqual(t, "rate above 73", above.RatePct, 6.5)
}

func TestCommission_RateNeverExceedsCap(t *testing.T) {
	for _, gpm := range []float64{-50, 0, 69.9, 70, 73, 80, 99} {
		for _, torq := range []bool{false, true} {
			for _, jobType := range []JobType{JobCommercial, JobMarine, JobPPF} {
				in := Commission(2000, gpm, LeadInbound, torq, jobType)
				if in.RatePct > 7.5 {
					t.Fatalf("inbound rate %v over cap (gpm=%v torq=%v)", in.RatePct, gpm, torq)
				}
				out := Commission(2000, gpm, LeadOutbound, torq, jobType)
				if out.RatePct > 10 {
					t.Fatalf("outbound rate %v over cap (gpm=%v torq=%v)", out.RatePct, gpm, torq)
				}
			}
		}
	}
}

func TestCommission_OutboundAllBonuses(t *testing.T) {
	got := Commission(3423, 75, LeadOutbound, true, JobCommercial)

	nearlyEqual(t, "rate", got.RatePct, 10)
	nearlyEqual(t, "total", got.Total, 342.3)
	if !strings.HasPrefix(got.Label, "Outbound 10% on GP") {
		t.Fatalf("unexpected label %q", got.Label)
	}
}

func TestCommission_PreSoldIgnoresBonuses(t *testing.T) {
	for _, gpm := range []float64{10, 72, 90} {
		got := Commission(1000, gpm, LeadPreSold, true, JobCommercial)
		nearlyEqual(t, "total", got.Total, 50)
		if got.TorqBonusPct != 0 || got.GPMBonusPct != 0 || got.Floored {
			t.Fatalf("pre-sold must not carry bonuses: %+v", got)
		}
	}
}

func TestCommission_UnknownLeadPaysInbound(t *testing.T) {
	got := Commission(1000, 50, LeadType(""), false, JobCommercial)
	nearlyEqual(t, "rate", got.RatePct, 4.5)
}

func TestCommission_LabelMentionsHeldBonuses(t *testing.T) {
	got := Commission(1000, 65, LeadInbound, true, JobCommercial)
	if !strings.Contains(got.Label, "bonuses held") {
		t.Fatalf("expected floor note in label, got %q", got.Label)
	}
}
