// internal/tidescore/engine.go

// Package tidescore computes the TideScore, a 0-850 creditworthiness score,
// from a verified applicant record. Everything here is pure: no I/O, no
// shared state, and every input produces a well-formed Report.
package tidescore

import (
	"github.com/shopspring/decimal"
)

const (
	// MaxRawScore is the sum of all category maxima (50+120+170+110+200+90).
	MaxRawScore = 740
	// MaxScaledScore is the ceiling of the published score range.
	MaxScaledScore = 850
)

// Category names as they appear in a report breakdown.
const (
	CategoryPersonal        = "Personal & Employment"
	CategoryAirtime         = "Airtime & Data"
	CategoryBill            = "Bill Payments"
	CategoryP2P             = "P2P Transactions"
	CategoryBank            = "Bank Activity"
	CategoryGuarantors      = "Guarantors"
	CategoryTotalPenalties  = "Total Penalties"
	CategoryFinalRaw        = "Final Raw Score"
	CategoryRawPrePenalties = "Overall Raw Score (Pre-Penalties)"
)

// Breakdown is the per-category contribution to a score.
type Breakdown struct {
	Personal        int `json:"Personal & Employment"`
	Airtime         int `json:"Airtime & Data"`
	Bill            int `json:"Bill Payments"`
	P2P             int `json:"P2P Transactions"`
	Bank            int `json:"Bank Activity"`
	Guarantors      int `json:"Guarantors"`
	TotalPenalties  int `json:"Total Penalties"`
	FinalRaw        int `json:"Final Raw Score"`
	RawPrePenalties int `json:"Overall Raw Score (Pre-Penalties)"`
}

// Map returns the breakdown keyed by category name.
func (b Breakdown) Map() map[string]int {
	return map[string]int{
		CategoryPersonal:        b.Personal,
		CategoryAirtime:         b.Airtime,
		CategoryBill:            b.Bill,
		CategoryP2P:             b.P2P,
		CategoryBank:            b.Bank,
		CategoryGuarantors:      b.Guarantors,
		CategoryTotalPenalties:  b.TotalPenalties,
		CategoryFinalRaw:        b.FinalRaw,
		CategoryRawPrePenalties: b.RawPrePenalties,
	}
}

// Report is the result of scoring one applicant.
type Report struct {
	ScaledScore int       `json:"scaled_score"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Breakdown   Breakdown `json:"breakdown"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

// WithSuggestions returns a copy of r carrying the advisory messages for it.
func (r Report) WithSuggestions() Report {
	r.Suggestions = Suggest(r)
	return r
}

// Compute scores rec. It is safe to call concurrently.
func Compute(rec ApplicantRecord) Report {
	b := Breakdown{
		Personal:   personalScore(rec),
		Airtime:    airtimeScore(rec),
		Bill:       billScore(rec),
		P2P:        p2pScore(rec),
		Bank:       bankScore(rec),
		Guarantors: guarantorScore(rec),
	}
	b.RawPrePenalties = b.Personal + b.Airtime + b.Bill + b.P2P + b.Bank + b.Guarantors
	b.TotalPenalties = penalties(rec)

	b.FinalRaw = b.RawPrePenalties + b.TotalPenalties
	if b.FinalRaw < 0 {
		b.FinalRaw = 0
	}

	scaled := Scale(b.FinalRaw)
	return Report{
		ScaledScore: scaled,
		RiskLevel:   ClassifyRisk(scaled),
		Breakdown:   b,
	}
}

// Scale maps a raw score onto 0-850, rounding half to even.
// Raw values outside [0, MaxRawScore] are clamped first.
func Scale(raw int) int {
	if raw < 0 {
		raw = 0
	}
	if raw > MaxRawScore {
		raw = MaxRawScore
	}
	scaled := decimal.NewFromInt(int64(raw)).
		Mul(decimal.NewFromInt(MaxScaledScore)).
		Div(decimal.NewFromInt(MaxRawScore)).
		RoundBank(0)
	return int(scaled.IntPart())
}

func personalScore(rec ApplicantRecord) int {
	score := 0
	if rec.EmploymentVerified {
		switch rec.EmploymentStatus {
		case EmploymentFullTime:
			score += 20
		case EmploymentSelfEmployed:
			score += 15
		case EmploymentPartTime:
			score += 10
		case EmploymentStudent:
			score += 5
		}
	}

	if rec.ResidencyVerified {
		score += 10
	}

	switch rec.EducationLevel {
	case EducationHNDBSc, EducationMasters, EducationPhD:
		score += 10
	case EducationONDNCE, EducationSecondary:
		score += 5
	}
	return score
}

func airtimeScore(rec ApplicantRecord) int {
	if rec.AirtimeStatus.suppressesScore() {
		return 0
	}

	m1, m2, m3 := rec.AirtimeSpend[0], rec.AirtimeSpend[1], rec.AirtimeSpend[2]
	total := m1 + m2 + m3

	score := 0
	switch {
	case total >= 15000:
		score += 100
	case total >= 10000:
		score += 75
	case total >= 5000:
		score += 50
	case total >= 2000:
		score += 20
	}

	if m1 > 0 && m2 > 0 && m3 > 0 {
		score += 20
	}
	return score
}

func billScore(rec ApplicantRecord) int {
	if rec.BillStatus.suppressesScore() {
		return 0
	}

	verified := rec.Utilities.count()

	score := 0
	switch {
	case verified >= 4:
		score += 150
	case verified >= 3:
		score += 100
	case verified >= 2:
		score += 60
	case verified >= 1:
		score += 30
	}

	// Only an explicit Verified status earns the bonus; an unset status does not.
	if verified >= 2 && rec.BillStatus == StatusVerified {
		score += 20
	}
	return score
}

func p2pScore(rec ApplicantRecord) int {
	if rec.P2PStatus.suppressesScore() {
		return 0
	}

	score := 0
	switch n := rec.UniqueVerifiedP2P; {
	case n >= 5:
		score += 80
	case n >= 3:
		score += 50
	case n >= 1:
		score += 20
	}

	if rec.P2PTotalValue >= 50000 {
		score += 20
	}
	if rec.P2PConsistentAcrossMonths {
		score += 10
	}
	return score
}

func bankScore(rec ApplicantRecord) int {
	if rec.BankStatus.suppressesScore() {
		return 0
	}

	score := 0
	switch months := rec.ConsistentDepositMonths; {
	case months >= 5:
		score += 100
	case months >= 3:
		score += 60
	case months >= 1:
		score += 20
	}

	switch balance := rec.AvgMonthlyBalance; {
	case balance >= 10000:
		score += 50
	case balance >= 5000:
		score += 30
	case balance >= 1000:
		score += 10
	}

	if rec.NoNegativeFlags {
		score += 30
	}
	return score
}

func guarantorScore(rec ApplicantRecord) int {
	g1, g2 := rec.Guarantors[0], rec.Guarantors[1]

	score := 0
	switch {
	case g1.Verified && g2.Verified:
		score += 70
	case g1.Verified || g2.Verified:
		score += 30
	}

	for _, g := range rec.Guarantors {
		if g.Verified && strongRelationship(g.Relationship) {
			score += 10
		}
	}
	return score
}

func strongRelationship(rel string) bool {
	return rel == RelationshipFamilyMember || rel == RelationshipReligiousLeader
}

// penalties re-derives each gate on its own. An unset status counts as
// Unverified here even though it does not zero the category's sub-score.
func penalties(rec ApplicantRecord) int {
	penalised := func(s Status) bool {
		return s == StatusUnknown || s == StatusUnverified || s == StatusFraudulent
	}

	total := 0
	if penalised(rec.AirtimeStatus) {
		total -= 10
	}
	if penalised(rec.BillStatus) {
		total -= 15
	}
	if penalised(rec.P2PStatus) {
		total -= 20
	}
	if !rec.Guarantors[0].Verified && !rec.Guarantors[1].Verified {
		total -= 25
	}
	if penalised(rec.BankStatus) {
		total -= 30
	}
	return total
}
