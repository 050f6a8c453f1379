package service

import (
	"context"
	"testing"
	"time"

	"go-studioadmin/internal/domain/model"
	"go-studioadmin/internal/pkg/resource"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyDue(t *testing.T) {
	week := 7 * 24 * time.Hour
	at := func(d time.Duration) *time.Time { v := testNow.Add(d); return &v }
	tests := []struct {
		name string
		next *time.Time
		want model.DueStatus
	}{
		{"no date", nil, model.DueNone},
		{"three days ahead", at(3 * 24 * time.Hour), model.DueSoon},
		{"ten days ahead", at(10 * 24 * time.Hour), model.DueOnSchedule},
		{"yesterday", at(-24 * time.Hour), model.DueOverdue},
		{"exactly at window edge", at(week), model.DueSoon},
		{"right now", at(0), model.DueSoon},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, model.ClassifyDue(tt.next, testNow, week))
		})
	}
}

func TestAdvanceEnrollment(t *testing.T) {
	e := &model.Enrollment{PeriodDays: 30}
	paid := testNow
	require.True(t, AdvanceEnrollment(e, paid))
	assert.Equal(t, paid, *e.LastPaymentAt)
	assert.Equal(t, paid.AddDate(0, 0, 30), *e.NextPaymentDueAt)

	assert.False(t, AdvanceEnrollment(e, paid.Add(-time.Hour)), "older payment must not move the cycle back")
	assert.False(t, AdvanceEnrollment(e, paid))
	assert.Equal(t, paid.AddDate(0, 0, 30), *e.NextPaymentDueAt)
}

func TestEnrollments_DecorateDueStatus(t *testing.T) {
	ctx := context.Background()
	r := newTestResources(t)
	u := createUser(t, r, model.User{Name: "Оля"})
	g := createGroup(t, r, model.Group{Name: "Jazz Funk"})

	due := testNow.Add(3 * 24 * time.Hour)
	e, err := r.Enrollments.Create(ctx, &model.Enrollment{UserID: u.ID, GroupID: g.ID, Amount: 4500, NextPaymentDueAt: &due, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "Оля", e.UserName)
	assert.Equal(t, "Jazz Funk", e.GroupName)
	assert.Equal(t, "RUB", e.Currency)
	assert.Equal(t, 30, e.PeriodDays)
	assert.Equal(t, model.DueSoon, e.DueStatus)

	items, err := r.Enrollments.List(ctx, "jazz")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, model.DueSoon, items[0].DueStatus)

	_, err = r.Enrollments.Create(ctx, &model.Enrollment{UserID: u.ID, GroupID: 999})
	assert.ErrorIs(t, err, resource.ErrInvalid)
}

func TestPayments_PaidPaymentAdvancesEnrollment(t *testing.T) {
	ctx := context.Background()
	r := newTestResources(t)
	u := createUser(t, r, model.User{Name: "Оля"})
	g := createGroup(t, r, model.Group{Name: "Jazz Funk"})
	past := testNow.Add(-2 * 24 * time.Hour)
	e, err := r.Enrollments.Create(ctx, &model.Enrollment{UserID: u.ID, GroupID: g.ID, PeriodDays: 30, NextPaymentDueAt: &past, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, model.DueOverdue, e.DueStatus)

	p, err := r.Payments.Create(ctx, &model.Payment{EnrollmentID: &e.ID, UserID: u.ID, Amount: 4500, Status: model.PaymentPaid})
	require.NoError(t, err)
	require.NotNil(t, p.PaidAt)
	assert.Equal(t, "Оля", p.UserName)

	got, err := r.Enrollments.Get(ctx, e.ID)
	require.NoError(t, err)
	require.NotNil(t, got.NextPaymentDueAt)
	assert.True(t, got.NextPaymentDueAt.Equal(testNow.AddDate(0, 0, 30)))
	assert.Equal(t, model.DueOnSchedule, got.DueStatus)

	pending, err := r.Payments.Create(ctx, &model.Payment{UserID: u.ID, Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, pending.Status)
	assert.Nil(t, pending.PaidAt)

	list, err := r.Payments.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, pending.ID, list[0].ID, "payments list newest first")

	_, err = r.Payments.Create(ctx, &model.Payment{UserID: u.ID, Amount: 0})
	assert.Error(t, err)
}
