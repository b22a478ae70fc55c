package enums

import "fmt"

// TransactionKind identifies why money moved in a wallet's history.
type TransactionKind string

const (
	TransactionKindEarning            TransactionKind = "earning"
	TransactionKindReferralCommission TransactionKind = "referral_commission"
	TransactionKindPlatformCommission TransactionKind = "platform_commission"
	TransactionKindRefund             TransactionKind = "refund"
	TransactionKindRecharge           TransactionKind = "recharge"
	TransactionKindWithdrawal         TransactionKind = "withdrawal"
	TransactionKindSpend              TransactionKind = "spend"
)

var validTransactionKinds = []TransactionKind{
	TransactionKindEarning,
	TransactionKindReferralCommission,
	TransactionKindPlatformCommission,
	TransactionKindRefund,
	TransactionKindRecharge,
	TransactionKindWithdrawal,
	TransactionKindSpend,
}

// String implements fmt.Stringer.
func (t TransactionKind) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransactionKind.
func (t TransactionKind) IsValid() bool {
	for _, candidate := range validTransactionKinds {
		if candidate == t {
			return true
		}
	}
	return false
}

// SignedAmount applies the kind's ledger sign to an amount. Credits count
// positive toward the owning wallet, debits negative. Platform commission rows
// are bookkeeping facts with no wallet owner and contribute zero.
func (t TransactionKind) SignedAmount(amount int64) int64 {
	switch t {
	case TransactionKindEarning, TransactionKindReferralCommission,
		TransactionKindRefund, TransactionKindRecharge:
		return amount
	case TransactionKindWithdrawal, TransactionKindSpend:
		return -amount
	default:
		return 0
	}
}

// ParseTransactionKind converts raw input into a TransactionKind.
func ParseTransactionKind(value string) (TransactionKind, error) {
	for _, candidate := range validTransactionKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction kind %q", value)
}
