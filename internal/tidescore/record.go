// internal/tidescore/record.go
package tidescore

// Status is the verification state an admin assigns to a gateable category.
// The zero value means the status was never supplied.
type Status string

const (
	StatusUnknown    Status = ""
	StatusVerified   Status = "Verified"
	StatusUnverified Status = "Unverified"
	StatusFraudulent Status = "Fraudulent"
)

// suppressesScore reports whether a category's sub-score is forced to zero.
func (s Status) suppressesScore() bool {
	return s == StatusUnverified || s == StatusFraudulent
}

// Employment statuses recognised by the personal sub-score.
const (
	EmploymentFullTime     = "Employed (Full-time)"
	EmploymentSelfEmployed = "Self-Employed (Business Owner)"
	EmploymentPartTime     = "Employed (Part-time)"
	EmploymentStudent      = "Student"
)

// Education levels recognised by the personal sub-score.
const (
	EducationHNDBSc    = "HND/B.Sc"
	EducationMasters   = "Masters"
	EducationPhD       = "PhD"
	EducationONDNCE    = "OND/NCE"
	EducationSecondary = "Secondary School"
)

// Guarantor relationships that earn the relationship bonus.
const (
	RelationshipFamilyMember    = "Family Member"
	RelationshipReligiousLeader = "Religious Leader"
)

// Utilities holds the five individually verified bill types.
type Utilities struct {
	Electricity bool `json:"electricity_verified"`
	DSTV        bool `json:"dstv_verified"`
	Internet    bool `json:"internet_verified"`
	Water       bool `json:"water_verified"`
	Rent        bool `json:"rent_verified"`
}

func (u Utilities) count() int {
	n := 0
	for _, ok := range []bool{u.Electricity, u.DSTV, u.Internet, u.Water, u.Rent} {
		if ok {
			n++
		}
	}
	return n
}

// Guarantor is one of the two people vouching for the applicant.
type Guarantor struct {
	Verified     bool   `json:"verified"`
	Relationship string `json:"relationship"`
}

// ApplicantRecord is the canonical, already-coerced input to Compute.
// Callers translate form and session fields into it; see package applicant.
type ApplicantRecord struct {
	EmploymentVerified bool   `json:"employment_verified"`
	EmploymentStatus   string `json:"employment_status"`
	ResidencyVerified  bool   `json:"residency_verified"`
	EducationLevel     string `json:"education_level"`

	AirtimeStatus Status     `json:"airtime_status"`
	AirtimeSpend  [3]float64 `json:"airtime_spend"`

	BillStatus Status    `json:"bill_status"`
	Utilities  Utilities `json:"utilities"`

	P2PStatus                 Status  `json:"p2p_status"`
	UniqueVerifiedP2P         int     `json:"num_unique_verified_p2p"`
	P2PTotalValue             float64 `json:"p2p_total_value"`
	P2PConsistentAcrossMonths bool    `json:"p2p_consistent_across_months"`

	BankStatus              Status  `json:"bank_status"`
	ConsistentDepositMonths int     `json:"consistent_deposits_months"`
	AvgMonthlyBalance       float64 `json:"avg_monthly_balance"`
	NoNegativeFlags         bool    `json:"no_negative_flags"`

	Guarantors [2]Guarantor `json:"guarantors"`
}
