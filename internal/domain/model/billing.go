package model

import "time"

// Enrollment binds a student to a group with a recurring payment period.
type Enrollment struct {
	Base
	UserID           int64      `gorm:"index" json:"user_id" binding:"required"`
	UserName         string     `gorm:"size:120" json:"user_name"`
	GroupID          int64      `gorm:"index" json:"group_id" binding:"required"`
	GroupName        string     `gorm:"size:120" json:"group_name"`
	Amount           float64    `gorm:"type:numeric(12,2)" json:"amount" binding:"gte=0"`
	Currency         string     `gorm:"size:8" json:"currency"`
	PeriodDays       int        `json:"period_days" binding:"gte=0"`
	StartedAt        *time.Time `json:"started_at"`
	LastPaymentAt    *time.Time `json:"last_payment_at"`
	NextPaymentDueAt *time.Time `gorm:"index" json:"next_payment_due_at"`
	IsActive         bool       `json:"is_active"`
	Notes            *string    `json:"notes"`

	DueStatus DueStatus `gorm:"-" json:"due_status"`
}

func (Enrollment) TableName() string { return "enrollments" }

const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

type Payment struct {
	Base
	EnrollmentID *int64     `gorm:"index" json:"enrollment_id"`
	UserID       int64      `gorm:"index" json:"user_id" binding:"required"`
	UserName     string     `gorm:"size:120" json:"user_name"`
	Amount       float64    `gorm:"type:numeric(12,2)" json:"amount" binding:"gt=0"`
	Currency     string     `gorm:"size:8" json:"currency"`
	Method       string     `gorm:"size:40" json:"method"`
	Status       string     `gorm:"size:20" json:"status" binding:"omitempty,oneof=pending paid refunded"`
	PaidAt       *time.Time `json:"paid_at"`
	Comment      *string    `json:"comment"`
}

func (Payment) TableName() string { return "payments" }

type DueStatus string

const (
	DueNone       DueStatus = "none"
	DueOverdue    DueStatus = "overdue"
	DueSoon       DueStatus = "due_soon"
	DueOnSchedule DueStatus = "on_schedule"
)

// ClassifyDue compares the next payment time with now. A payment due within
// window (inclusive) is due soon; anything already past is overdue.
func ClassifyDue(next *time.Time, now time.Time, window time.Duration) DueStatus {
	if next == nil || next.IsZero() {
		return DueNone
	}
	if next.Before(now) {
		return DueOverdue
	}
	if !next.After(now.Add(window)) {
		return DueSoon
	}
	return DueOnSchedule
}
