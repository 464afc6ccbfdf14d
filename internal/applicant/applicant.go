// internal/applicant/applicant.go

// Package applicant turns loosely typed application form fields into the
// canonical record the score engine consumes.
package applicant

import (
	"math"
	"regexp"
	"strings"

	"github.com/spf13/cast"

	"tidescore-workers/internal/tidescore"
)

// Field names accepted in applicant data and verification overlays.
const (
	KeyEmploymentVerified = "employment_verified"
	KeyEmploymentStatus   = "employment_status"
	KeyResidencyVerified  = "residency_verified"
	KeyEducationLevel     = "education_level"

	KeyAirtimeStatus  = "airtime_status"
	KeyAirtimeSpendM1 = "airtime_spend_m1"
	KeyAirtimeSpendM2 = "airtime_spend_m2"
	KeyAirtimeSpendM3 = "airtime_spend_m3"

	KeyBillStatus          = "bill_status"
	KeyElectricityVerified = "electricity_verified"
	KeyDSTVVerified        = "dstv_verified"
	KeyInternetVerified    = "internet_verified"
	KeyWaterVerified       = "water_verified"
	KeyRentVerified        = "rent_verified"

	KeyP2PStatus                 = "p2p_status"
	KeyUniqueVerifiedP2P         = "num_unique_verified_p2p"
	KeyP2PTotalValue             = "p2p_total_value"
	KeyP2PConsistentAcrossMonths = "p2p_consistent_across_months"

	KeyBankStatus              = "bank_status"
	KeyConsistentDepositMonths = "consistent_deposits_months"
	KeyAvgMonthlyBalance       = "avg_monthly_balance"
	KeyNoNegativeFlags         = "no_negative_flags"

	KeyG1Verified     = "g1_verified"
	KeyG1Relationship = "g1_relationship"
	KeyG2Verified     = "g2_verified"
	KeyG2Relationship = "g2_relationship"
)

type setter func(rec *tidescore.ApplicantRecord, v interface{}, conv FlagConvention)

var fields = map[string]setter{
	KeyEmploymentVerified: func(r *tidescore.ApplicantRecord, v interface{}, c FlagConvention) {
		r.EmploymentVerified = ParseFlag(v, c)
	},
	KeyEmploymentStatus: func(r *tidescore.ApplicantRecord, v interface{}, _ FlagConvention) {
		r.EmploymentStatus = parseText(v)
	},
	KeyResidencyVerified: func(r *tidescore.ApplicantRecord, v interface{}, c FlagConvention) {
		r.ResidencyVerified = ParseFlag(v, c)
	},
	KeyEducationLevel: func(r *tidescore.ApplicantRecord, v interface{}, _ FlagConvention) {
		r.EducationLevel = parseText(v)
	},

	KeyAirtimeStatus: func(r *tidescore.ApplicantRecord, v interface{}, _ FlagConvention) {
		r.AirtimeStatus = parseStatus(v)
	},
	KeyAirtimeSpendM1: func(r *tidescore.ApplicantRecord, v interface{}, _ FlagConvention) {
		r.AirtimeSpend[0] = ParseNumber(v)
	},
	KeyAirtimeSpendM2: func(r *tidescore.ApplicantRecord, v interface{}, _ FlagConvention) {
		r.AirtimeSpend[1] = ParseNumber(v)
	},
	KeyAirtimeSpendM3: func(r *tidescore.ApplicantRecord, v interface{}, _ FlagConvention) {
		r.AirtimeSpend[2] = ParseNumber(v)
	},

	KeyBillStatus: func(r *tidescore.ApplicantRecord, v interface{}, _ FlagConvention) {
		r.BillStatus = parseStatus(v)
	},
	KeyElectricityVerified: func(r *tidescore.ApplicantRecord, v interface{}, c FlagConvention) {
		r.Utilities.Electricity = ParseFlag(v, c)
	},
	KeyDSTVVerified: func(r *tidescore.ApplicantRecord, v interface{}, c FlagConvention) {
		r.Utilities.DSTV = ParseFlag(v, c)
	},
	KeyInternetVerified: func(r *tidescore.ApplicantRecord, v interface{}, c FlagConvention) {
		r.Utilities.Internet = ParseFlag(v, c)
	},
	KeyWaterVerified: func(r *tidescore.ApplicantRecord, v interface{}, c FlagConvention) {
		r.Utilities.Water = ParseFlag(v, c)
	},
	KeyRentVerified: func(r *tidescore.ApplicantRecord, v interface{}, c FlagConvention) {
		r.Utilities.Rent = ParseFlag(v, c)
	},

	KeyP2PStatus: func(r *tidescore.ApplicantRecord, v interface{}, _ FlagConvention) {
		r.P2PStatus = parseStatus(v)
	},
	KeyUniqueVerifiedP2P: func(r *tidescore.ApplicantRecord, v interface{}, _ FlagConvention) {
		r.UniqueVerifiedP2P = ParseCount(v)
	},
	KeyP2PTotalValue: func(r *tidescore.ApplicantRecord, v interface{}, _ FlagConvention) {
		r.P2PTotalValue = ParseNumber(v)
	},
	KeyP2PConsistentAcrossMonths: func(r *tidescore.ApplicantRecord, v interface{}, c FlagConvention) {
		r.P2PConsistentAcrossMonths = ParseFlag(v, c)
	},

	KeyBankStatus: func(r *tidescore.ApplicantRecord, v interface{}, _ FlagConvention) {
		r.BankStatus = parseStatus(v)
	},
	KeyConsistentDepositMonths: func(r *tidescore.ApplicantRecord, v interface{}, _ FlagConvention) {
		r.ConsistentDepositMonths = ParseCount(v)
	},
	KeyAvgMonthlyBalance: func(r *tidescore.ApplicantRecord, v interface{}, _ FlagConvention) {
		r.AvgMonthlyBalance = ParseNumber(v)
	},
	KeyNoNegativeFlags: func(r *tidescore.ApplicantRecord, v interface{}, c FlagConvention) {
		r.NoNegativeFlags = ParseFlag(v, c)
	},

	KeyG1Verified: func(r *tidescore.ApplicantRecord, v interface{}, c FlagConvention) {
		r.Guarantors[0].Verified = ParseFlag(v, c)
	},
	KeyG1Relationship: func(r *tidescore.ApplicantRecord, v interface{}, _ FlagConvention) {
		r.Guarantors[0].Relationship = parseText(v)
	},
	KeyG2Verified: func(r *tidescore.ApplicantRecord, v interface{}, c FlagConvention) {
		r.Guarantors[1].Verified = ParseFlag(v, c)
	},
	KeyG2Relationship: func(r *tidescore.ApplicantRecord, v interface{}, _ FlagConvention) {
		r.Guarantors[1].Relationship = parseText(v)
	},
}

// FromVariables builds a record from flat applicant fields. Unknown keys
// are ignored and missing keys leave the zero value.
func FromVariables(vars map[string]interface{}, conv FlagConvention) tidescore.ApplicantRecord {
	return ApplyVerification(tidescore.ApplicantRecord{}, vars, conv)
}

// ApplyVerification returns rec with every recognised overlay key applied
// on top. Fields the overlay does not mention keep rec's value.
func ApplyVerification(rec tidescore.ApplicantRecord, overlay map[string]interface{}, conv FlagConvention) tidescore.ApplicantRecord {
	for key, v := range overlay {
		if set, ok := fields[key]; ok {
			set(&rec, v, conv)
		}
	}
	return rec
}

// KnownField reports whether key is a field the adapter understands.
func KnownField(key string) bool {
	_, ok := fields[key]
	return ok
}

var (
	decimalPattern = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
	groupedPattern = regexp.MustCompile(`^\d{1,3}(,\d{3})+(\.\d+)?$`)
	integerPattern = regexp.MustCompile(`^(\d+|\d{1,3}(,\d{3})+)$`)
)

// ParseNumber coerces v into a non-negative finite amount. Strings are
// trimmed and may group digits in threes with commas. Anything that cannot
// be read as a plain decimal number yields 0.
func ParseNumber(v interface{}) float64 {
	switch val := v.(type) {
	case bool:
		return 0
	case string:
		s, ok := normalizeNumeric(val, decimalPattern, groupedPattern)
		if !ok {
			return 0
		}
		v = s
	}

	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// ParseCount coerces v into a non-negative whole count. Numbers truncate
// toward zero; strings must be whole numbers or they yield 0.
func ParseCount(v interface{}) int {
	if s, ok := v.(string); ok {
		n, ok := normalizeNumeric(s, integerPattern)
		if !ok {
			return 0
		}
		v = n
	}

	f := math.Trunc(ParseNumber(v))
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// normalizeNumeric trims s and strips its thousands separators when s
// matches one of patterns.
func normalizeNumeric(s string, patterns ...*regexp.Regexp) (string, bool) {
	s = strings.TrimSpace(s)
	for _, p := range patterns {
		if p.MatchString(s) {
			return strings.ReplaceAll(s, ",", ""), true
		}
	}
	return "", false
}

func parseText(v interface{}) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func parseStatus(v interface{}) tidescore.Status {
	return tidescore.Status(parseText(v))
}
