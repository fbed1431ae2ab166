package wallet

import "time"

type Kind string

const (
	KindTopup   Kind = "topup"
	KindPayment Kind = "payment"
	KindRefund  Kind = "refund"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Transaction is one immutable ledger row. Amount is signed whole Rupiah:
// positive for topup and refund, negative for payment.
type Transaction struct {
	ID            int        `db:"id" json:"id"`
	UserID        int        `db:"user_id" json:"user_id"`
	Kind          Kind       `db:"kind" json:"kind" swaggertype:"string" example:"topup"`
	Amount        int64      `db:"amount" json:"amount" example:"50000"`
	Status        Status     `db:"status" json:"status" swaggertype:"string" example:"pending"`
	BookingID     *int       `db:"booking_id" json:"booking_id,omitempty"`
	Description   string     `db:"description" json:"description"`
	Proof         string     `db:"proof" json:"proof,omitempty"`
	SenderName    string     `db:"sender_name" json:"sender_name,omitempty"`
	ApprovedBy    *int       `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt    *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	RejectionNote *string    `db:"rejection_note" json:"rejection_note,omitempty"`
	BalanceAfter  *int64     `db:"balance_after" json:"balance_after,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

type Balance struct {
	UserID       int   `json:"user_id"`
	MoneyBalance int64 `json:"money_balance" example:"70000"`
}

// Reconciliation compares the stored balance with the sum of the completed ledger.
type Reconciliation struct {
	UserID       int   `json:"user_id"`
	MoneyBalance int64 `json:"money_balance"`
	LedgerSum    int64 `json:"ledger_sum"`
	Consistent   bool  `json:"consistent"`
}

type TransactionFilter struct {
	Kind      Kind   `form:"kind" binding:"omitempty,oneof=topup payment refund"`
	Status    Status `form:"status" binding:"omitempty,oneof=pending completed failed"`
	BookingID *int   `form:"booking_id" binding:"omitempty,gt=0"`
	Limit     int    `form:"-"`
	Offset    int    `form:"-"`
}

type TopupRequest struct {
	Amount      int64  `json:"amount" binding:"required,gt=0" example:"50000"`
	Proof       string `json:"proof" binding:"required" example:"https://files.warnetbook.id/proof/123.jpg"`
	SenderName  string `json:"sender_name" binding:"max=255" example:"Budi Santoso"`
	Description string `json:"description" binding:"max=500"`
}

type RejectRequest struct {
	Note string `json:"note" binding:"required,max=1000" example:"transfer not received"`
}

type RefundRequest struct {
	UserID      int    `json:"user_id" binding:"required,gt=0"`
	BookingID   *int   `json:"booking_id" binding:"omitempty,gt=0"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Description string `json:"description" binding:"max=500"`
}
