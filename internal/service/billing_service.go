package service

import (
	"context"
	"time"

	"go-studioadmin/internal/domain/model"
	"go-studioadmin/internal/logging"

	"go.uber.org/zap"
)

// applyPayment moves the enrollment's billing cycle forward when a linked
// payment is marked paid. Older payments never move the cycle back.
func (r *Resources) applyPayment(ctx context.Context, p *model.Payment) {
	if p.Status != model.PaymentPaid || p.EnrollmentID == nil || p.PaidAt == nil {
		return
	}
	e, err := r.Enrollments.DAO.FindByID(ctx, *p.EnrollmentID)
	if err != nil || e == nil {
		logging.FromContext(ctx).Warn("billing_enrollment_lookup_failed",
			zap.Int64("payment_id", p.ID), zap.Error(err))
		return
	}
	if !AdvanceEnrollment(e, *p.PaidAt) {
		return
	}
	err = r.DB.WithContext(ctx).Model(&model.Enrollment{}).Where("id = ?", e.ID).
		Updates(map[string]any{
			"last_payment_at":     e.LastPaymentAt,
			"next_payment_due_at": e.NextPaymentDueAt,
		}).Error
	if err != nil {
		logging.FromContext(ctx).Error("billing_enrollment_advance_failed",
			zap.Int64("enrollment_id", e.ID), zap.Error(err))
		return
	}
	r.Enrollments.Invalidate(ctx)
}

// AdvanceEnrollment records a payment made at paidAt. It reports false when
// the enrollment already has a later payment.
func AdvanceEnrollment(e *model.Enrollment, paidAt time.Time) bool {
	if e.LastPaymentAt != nil && !paidAt.After(*e.LastPaymentAt) {
		return false
	}
	paid := paidAt
	e.LastPaymentAt = &paid
	if e.PeriodDays > 0 {
		next := paidAt.AddDate(0, 0, e.PeriodDays)
		e.NextPaymentDueAt = &next
	}
	return true
}
