package adminclient

import (
	"time"

	"go-studioadmin/internal/domain/model"
)

// DueSoonWindow is how far ahead a payment counts as due soon.
const DueSoonWindow = 7 * 24 * time.Hour

func ClassifyDue(next *time.Time, now time.Time) model.DueStatus {
	return model.ClassifyDue(next, now, DueSoonWindow)
}

// OverdueEnrollments counts enrollments past their due date at now.
func OverdueEnrollments(col *Collection[model.Enrollment], now time.Time) int {
	n := 0
	for _, e := range col.Items() {
		if ClassifyDue(e.NextPaymentDueAt, now) == model.DueOverdue {
			n++
		}
	}
	return n
}
