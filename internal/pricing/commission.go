package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	preSoldPct = 5.0

	inboundBasePct  = 4.5
	inboundCapPct   = 7.5
	outboundBasePct = 7.0
	outboundCapPct  = 10.0

	torqBonusPct = 1.0
	gpmBonusPct  = 2.0

	// GPM must be strictly above this to earn the GPM bonus.
	gpmBonusThreshold = 73.0
	// Below this GPM, non-PPF jobs lose their bonuses. Exactly 70 keeps them.
	protectionFloorGPM = 70.0
)

// CommissionResult is the commission breakdown. Percentages are in percent
// points; Total is in dollars.
type CommissionResult struct {
	BasePct      float64
	TorqBonusPct float64
	GPMBonusPct  float64
	RatePct      float64
	Total        float64
	Floored      bool
	Capped       bool
	Label        string
}

// Commission computes the salesperson's cut of gross profit.
// Unknown lead types are paid as inbound.
func Commission(profit, gpmPercent float64, lead LeadType, torqCompleted bool, jobType JobType) CommissionResult {
	if lead == LeadPreSold {
		return CommissionResult{
			BasePct: preSoldPct,
			RatePct: preSoldPct,
			Total:   profit * preSoldPct / 100,
			Label:   "Pre-Sold 5% flat on GP",
		}
	}

	name, base, capPct := "Inbound", inboundBasePct, inboundCapPct
	if lead == LeadOutbound {
		name, base, capPct = "Outbound", outboundBasePct, outboundCapPct
	}

	res := CommissionResult{BasePct: base}
	if torqCompleted {
		res.TorqBonusPct = torqBonusPct
	}
	if gpmPercent > gpmBonusThreshold {
		res.GPMBonusPct = gpmBonusPct
	}
	if jobType != JobPPF && gpmPercent < protectionFloorGPM {
		res.Floored = true
		res.TorqBonusPct = 0
		res.GPMBonusPct = 0
	}

	sum := res.BasePct + res.TorqBonusPct + res.GPMBonusPct
	res.RatePct = math.Min(sum, capPct)
	res.Capped = sum > capPct
	res.Total = profit * (res.RatePct / 100)
	res.Label = commissionLabel(name, res)
	return res
}

func commissionLabel(name string, res CommissionResult) string {
	parts := []string{pct(res.BasePct) + " base"}
	if res.TorqBonusPct > 0 {
		parts = append(parts, pct(res.TorqBonusPct)+" Torq")
	}
	if res.GPMBonusPct > 0 {
		parts = append(parts, pct(res.GPMBonusPct)+" GPM")
	}
	detail := strings.Join(parts, " + ")
	if res.Capped {
		detail += ", capped"
	}
	if res.Floored {
		detail += ", bonuses held: GPM under 70%"
	}
	return fmt.Sprintf("%s %s on GP (%s)", name, pct(res.RatePct), detail)
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}
