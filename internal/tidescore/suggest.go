// internal/tidescore/suggest.go
package tidescore

// Advisory messages returned by Suggest.
const (
	SuggestEmployment = "Improve your employment verification - provide better employment proof documents"
	SuggestAirtime    = "Increase your airtime spending consistency across all 3 months"
	SuggestBills      = "Add more verified bill payments (electricity, DSTV, internet, etc.)"
	SuggestBank       = "Maintain higher average bank balance and consistent deposits"
	SuggestGuarantors = "Add more reliable guarantors with strong relationships"

	OverallVeryHigh = "Your score is very high risk. Focus on improving all areas above."
	OverallHigh     = "Medium risk score. Improve multiple areas for better rates."
	OverallMedium   = "Good score! Minor improvements can get you to excellent range."
	OverallLow      = "Excellent score! You qualify for our best rates!"
)

// Category thresholds below which a suggestion is produced.
const (
	personalSuggestBelow  = 25
	airtimeSuggestBelow   = 60
	billSuggestBelow      = 85
	bankSuggestBelow      = 100
	guarantorSuggestBelow = 45
)

// Suggest returns improvement advice for r: at most one message per weak
// category, in a fixed order, followed by exactly one overall message.
// P2P activity has no suggestion.
func Suggest(r Report) []string {
	b := r.Breakdown
	out := make([]string, 0, 6)

	if b.Personal < personalSuggestBelow {
		out = append(out, SuggestEmployment)
	}
	if b.Airtime < airtimeSuggestBelow {
		out = append(out, SuggestAirtime)
	}
	if b.Bill < billSuggestBelow {
		out = append(out, SuggestBills)
	}
	if b.Bank < bankSuggestBelow {
		out = append(out, SuggestBank)
	}
	if b.Guarantors < guarantorSuggestBelow {
		out = append(out, SuggestGuarantors)
	}

	switch ClassifyRisk(r.ScaledScore) {
	case RiskVeryHigh:
		out = append(out, OverallVeryHigh)
	case RiskHigh:
		out = append(out, OverallHigh)
	case RiskMedium:
		out = append(out, OverallMedium)
	default:
		out = append(out, OverallLow)
	}
	return out
}
