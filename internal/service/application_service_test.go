package service

import (
	"context"
	"testing"

	"go-studioadmin/internal/domain/model"
	"go-studioadmin/internal/pkg/resource"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroups_CreateKeepsExactFields(t *testing.T) {
	r := newTestResources(t)
	g := createGroup(t, r, model.Group{Name: "Hip-Hop Kids", Style: "Hip-Hop", Level: "Beginner", MaxStudents: 15})

	items, err := r.Groups.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, g.ID, items[0].ID)
	assert.NotZero(t, items[0].ID)
	assert.Equal(t, "Hip-Hop Kids", items[0].Name)
	assert.Equal(t, "Hip-Hop", items[0].Style)
	assert.Equal(t, "Beginner", items[0].Level)
	assert.Equal(t, 15, items[0].MaxStudents)
}

func TestGroups_RejectInvertedAgeRange(t *testing.T) {
	r := newTestResources(t)
	_, err := r.Groups.Create(context.Background(), &model.Group{Name: "Teens", AgeMin: intp(16), AgeMax: intp(12)})
	assert.ErrorIs(t, err, resource.ErrInvalid)
}

func TestMatchGroup(t *testing.T) {
	groups := []model.Group{
		{Base: model.Base{ID: 1}, Name: "Hip-Hop Kids", Style: "Hip-Hop", AgeMin: intp(6), AgeMax: intp(11), MaxStudents: 2, IsActive: true},
		{Base: model.Base{ID: 2}, Name: "Hip-Hop Teens", Style: "hip-hop", AgeMin: intp(12), AgeMax: intp(17), MaxStudents: 10, IsActive: true},
		{Base: model.Base{ID: 3}, Name: "Hip-Hop Kids B", Style: "Hip-Hop", AgeMin: intp(6), AgeMax: intp(11), MaxStudents: 0, IsActive: true},
		{Base: model.Base{ID: 4}, Name: "Jazz", Style: "Jazz", IsActive: true},
		{Base: model.Base{ID: 5}, Name: "Hip-Hop Closed", Style: "Hip-Hop", IsActive: false},
	}
	tests := []struct {
		name   string
		app    model.Application
		occ    map[int64]int
		wantID int64
	}{
		{"style and age", model.Application{Style: "hip-hop", Age: intp(14)}, nil, 2},
		{"ties go to lowest id", model.Application{Style: "Hip-Hop", Age: intp(8)}, nil, 1},
		{"lowest occupancy wins", model.Application{Style: "Hip-Hop", Age: intp(8)}, map[int64]int{1: 1}, 3},
		{"full group skipped", model.Application{Style: "Hip-Hop", Age: intp(8)}, map[int64]int{1: 2, 3: 5}, 3},
		{"other style", model.Application{Style: "Jazz", Age: intp(30)}, nil, 4},
		{"no style matches any active group", model.Application{Age: intp(30)}, nil, 4},
		{"no match", model.Application{Style: "Tango"}, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			occ := tt.occ
			if occ == nil {
				occ = map[int64]int{}
			}
			got := MatchGroup(&tt.app, groups, occ)
			if tt.wantID == 0 {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestApplicationService_AutoAssign(t *testing.T) {
	ctx := context.Background()
	r := newTestResources(t)
	svc := NewApplicationService(r)
	kids := createGroup(t, r, model.Group{Name: "Hip-Hop Kids", Style: "Hip-Hop", AgeMin: intp(6), AgeMax: intp(11), MaxStudents: 1, IsActive: true})

	a, err := r.Applications.Create(ctx, &model.Application{Name: "Маша", Phone: "+79990000001", Style: "hip-hop", Age: intp(8)})
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationNew, a.Status)

	got, err := svc.AutoAssign(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationAssigned, got.Status)
	require.NotNil(t, got.AssignedGroupID)
	assert.Equal(t, kids.ID, *got.AssignedGroupID)
	assert.Equal(t, "Hip-Hop Kids", *got.AssignedGroupName)

	again, err := svc.AutoAssign(ctx, a.ID)
	require.NoError(t, err, "re-assigning must not count the application against its own group")
	assert.Equal(t, kids.ID, *again.AssignedGroupID)

	b, err := r.Applications.Create(ctx, &model.Application{Name: "Петя", Phone: "+79990000002", Style: "Hip-Hop", Age: intp(9)})
	require.NoError(t, err)
	_, err = svc.AutoAssign(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNoMatchingGroup)
	assert.ErrorIs(t, err, resource.ErrConflict)

	_, err = svc.AutoAssign(ctx, 999)
	assert.ErrorIs(t, err, resource.ErrNotFound)
}

func TestApplicationService_AutoAssignAll(t *testing.T) {
	ctx := context.Background()
	r := newTestResources(t)
	svc := NewApplicationService(r)
	createGroup(t, r, model.Group{Name: "Hip-Hop Kids", Style: "Hip-Hop", MaxStudents: 2, IsActive: true})

	for _, n := range []string{"A", "B", "C"} {
		_, err := r.Applications.Create(ctx, &model.Application{Name: n, Phone: "1", Style: "Hip-Hop"})
		require.NoError(t, err)
	}
	_, err := r.Applications.Create(ctx, &model.Application{Name: "D", Phone: "1", Style: "Hip-Hop", Status: model.ApplicationRejected})
	require.NoError(t, err)

	n, err := svc.AutoAssignAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	occ, err := svc.Occupancy(ctx)
	require.NoError(t, err)
	assert.Len(t, occ, 1)
	for _, v := range occ {
		assert.Equal(t, 2, v)
	}

	n, err = svc.AutoAssignAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestApplicationService_SubmitTrial(t *testing.T) {
	ctx := context.Background()
	r := newTestResources(t)
	svc := NewApplicationService(r)

	_, err := svc.SubmitTrial(ctx, TrialRequest{Name: " ", Phone: "1"})
	assert.ErrorIs(t, err, resource.ErrInvalid)

	a, err := svc.SubmitTrial(ctx, TrialRequest{Name: " Аня ", Phone: "+7 999", Style: "Jazz", Comment: ""})
	require.NoError(t, err)
	assert.Equal(t, "Аня", a.Name)
	assert.Equal(t, "site", a.Source)
	assert.Equal(t, model.ApplicationNew, a.Status)
	assert.Nil(t, a.Comment, "blank comment is stored as NULL")
}
