package service

import (
	"context"
	"testing"
	"time"

	"go-studioadmin/internal/domain/model"
	"go-studioadmin/internal/pkg/cache"
	"go-studioadmin/internal/testutil"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestResources(t *testing.T) *Resources {
	t.Helper()
	return NewResources(testutil.DB(t), cache.NewMemory(time.Minute), Options{
		ListTTL: time.Minute,
		Now:     func() time.Time { return testNow },
	})
}

func createGroup(t *testing.T, r *Resources, g model.Group) *model.Group {
	t.Helper()
	out, err := r.Groups.Create(context.Background(), &g)
	require.NoError(t, err)
	return out
}

func createUser(t *testing.T, r *Resources, u model.User) *model.User {
	t.Helper()
	out, err := r.Users.Create(context.Background(), &u)
	require.NoError(t, err)
	return out
}

func intp(v int) *int { return &v }
