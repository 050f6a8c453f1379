package http

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"go-studioadmin/internal/adminclient"
	"go-studioadmin/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminClient(t *testing.T, env *studioEnv) *adminclient.Client {
	t.Helper()
	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)
	return adminclient.New(srv.URL, env.login(t), srv.Client())
}

func TestAdminClient_GroupLifecycle(t *testing.T) {
	env := newStudioEnv(t)
	ctx := context.Background()
	c := newAdminClient(t, env)

	groups := adminclient.NewCollection(adminclient.Groups(c), nil, func() model.Group {
		return model.Group{MaxStudents: 15, IsActive: true}
	})
	require.NoError(t, groups.Load(ctx))
	assert.Zero(t, groups.Len())

	groups.EditForm(func(g *model.Group) {
		g.Name, g.Style, g.Level = "Hip-Hop Kids", "Hip-Hop", "Beginner"
	})
	g, err := groups.Create(ctx)
	require.NoError(t, err)
	require.NotZero(t, g.ID)
	assert.Equal(t, 1, groups.Len())
	assert.Empty(t, groups.Form().Name)

	require.True(t, groups.Edit(g.ID, func(g *model.Group) { g.Level = "Intermediate" }))
	saved, err := groups.Save(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Intermediate", saved.Level)
	assert.Equal(t, "Hip-Hop Kids", saved.Name)

	rows, err := adminclient.Groups(c).List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Intermediate", rows[0].Level)

	groups.EditForm(func(g *model.Group) { g.Name = "" })
	_, err = groups.Create(ctx)
	var apiErr *adminclient.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 422, apiErr.Status)
	assert.Equal(t, 1, groups.Len())

	require.NoError(t, groups.Delete(ctx, g.ID))
	assert.Zero(t, groups.Len())
	rows, err = adminclient.Groups(c).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAdminClient_AutoAssign(t *testing.T) {
	env := newStudioEnv(t)
	ctx := context.Background()
	c := newAdminClient(t, env)

	groups := adminclient.NewCollection(adminclient.Groups(c), nil, func() model.Group { return model.Group{IsActive: true} })
	groups.EditForm(func(g *model.Group) {
		g.Name, g.Style, g.MaxStudents = "Hip-Hop Kids", "Hip-Hop", 15
	})
	g, err := groups.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, adminclient.SubmitTrial(ctx, c, map[string]any{
		"name": "Маша", "phone": "+79990000000", "style": "hip-hop", "age": 8,
	}))

	apps := adminclient.NewCollection(adminclient.Applications(c), nil, func() model.Application { return model.Application{} })
	require.NoError(t, apps.Load(ctx))
	require.Equal(t, 1, apps.Len())
	id := apps.Items()[0].ID

	app, err := adminclient.AutoAssign(ctx, apps, id)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationAssigned, app.Status)
	require.NotNil(t, app.AssignedGroupID)
	assert.Equal(t, g.ID, *app.AssignedGroupID)

	row, ok := apps.Row(id)
	require.True(t, ok)
	assert.Equal(t, model.ApplicationAssigned, row.Status)
	assert.Equal(t, adminclient.NoticeSuccess, apps.Notice().Kind)
}

func TestAdminClient_UserSaveKeepsLogin(t *testing.T) {
	env := newStudioEnv(t)
	ctx := context.Background()
	c := newAdminClient(t, env)

	users := adminclient.NewCollection(adminclient.Users(c), nil, func() model.User { return model.User{} })
	require.NoError(t, users.Load(ctx))
	var admin model.User
	for _, u := range users.Items() {
		if u.Email != nil && *u.Email == "admin@studio.test" {
			admin = u
		}
	}
	require.NotZero(t, admin.ID)
	require.NotNil(t, admin.LastLoginAt, "user list reflects the login that issued the token")

	require.True(t, users.Edit(admin.ID, func(u *model.User) { u.Name = "Главный администратор" }))
	saved, err := users.Save(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "Главный администратор", saved.Name)
	assert.Empty(t, saved.Password)

	token := env.login(t)
	assert.NotEmpty(t, token)
}
