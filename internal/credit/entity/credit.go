package entity

// Balance is the ledger view of one user.
type Balance struct {
	UserID         int64
	Credits        int64
	Mode           CreditMode
	CashbackPoints int64
}
