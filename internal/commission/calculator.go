package commission

import (
	"github.com/amoura-app/amoura-backend/pkg/enums"
	pkgerrors "github.com/amoura-app/amoura-backend/pkg/errors"
)

// Referral rates in whole percent of the booking's gross price.
const (
	ReferralRatePartner = 4
	ReferralRateSpecial = 2

	// MinReferredModels is the referral count threshold below which a
	// referrer earns nothing.
	MinReferredModels = 2
)

// Referrer carries the fields of a referring model that drive eligibility.
type Referrer struct {
	Type                enums.ModelType
	TotalReferredModels int
}

// Breakdown is the full commission split for one booking. All amounts are in
// the smallest currency unit; integer floor division, no rounding up.
type Breakdown struct {
	Price              int64 `json:"price"`
	PlatformCommission int64 `json:"platform_commission"`
	ModelNet           int64 `json:"model_net"`
	ReferrerEligible   bool  `json:"referrer_eligible"`
	ReferrerRate       int   `json:"referrer_rate"`
	ReferrerAmount     int64 `json:"referrer_amount"`
	PlatformNet        int64 `json:"platform_net"`
}

// Eligible reports whether the referrer qualifies for a referral cut.
func Eligible(referrer *Referrer) bool {
	if referrer == nil {
		return false
	}
	if referrer.Type != enums.ModelTypeSpecial && referrer.Type != enums.ModelTypePartner {
		return false
	}
	return referrer.TotalReferredModels >= MinReferredModels
}

// RateFor returns the referral rate in percent for a model type.
func RateFor(modelType enums.ModelType) int {
	switch modelType {
	case enums.ModelTypePartner:
		return ReferralRatePartner
	case enums.ModelTypeSpecial:
		return ReferralRateSpecial
	default:
		return 0
	}
}

// Compute derives the commission split for a booking. The referral amount is
// carved out of the platform's cut, never out of the model's net, and is
// clamped to the platform commission so the platform's share cannot go
// negative.
func Compute(price int64, serviceCommissionPercent int, referrer *Referrer) (Breakdown, error) {
	if price < 0 {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if serviceCommissionPercent < 0 || serviceCommissionPercent > 100 {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "commission percent must be between 0 and 100")
	}

	platformCommission := price * int64(serviceCommissionPercent) / 100
	modelNet := price - platformCommission

	breakdown := Breakdown{
		Price:              price,
		PlatformCommission: platformCommission,
		ModelNet:           modelNet,
		PlatformNet:        platformCommission,
	}

	// The rate follows the referrer's type alone; eligibility gates only
	// whether any amount is paid out.
	if referrer != nil {
		breakdown.ReferrerRate = RateFor(referrer.Type)
	}
	if !Eligible(referrer) {
		return breakdown, nil
	}

	rate := breakdown.ReferrerRate
	referrerAmount := price * int64(rate) / 100
	if referrerAmount > platformCommission {
		referrerAmount = platformCommission
	}

	breakdown.ReferrerEligible = true
	breakdown.ReferrerAmount = referrerAmount
	breakdown.PlatformNet = platformCommission - referrerAmount
	return breakdown, nil
}
