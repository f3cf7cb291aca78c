package enum

// PaymentMethod is the method used to settle a sale. Courtesy is special:
// a courtesy sale never produces a financial ledger entry.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCourtesy PaymentMethod = "courtesy"
)

// IsValid reports whether the method is one of the known payment methods.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentCourtesy:
		return true
	}
	return false
}
