package adminclient

import (
	"context"
	"fmt"
	"strconv"

	"go-studioadmin/internal/domain/model"
)

// AutoAssign asks the server to place one application into a group and
// replaces the row with the result.
func AutoAssign(ctx context.Context, col *Collection[model.Application], id int64) (model.Application, error) {
	client := col.Resource().Client
	return col.Apply(ctx, id, textAssigned, func(ctx context.Context) (model.Application, error) {
		res, err := Post[ItemResponse[model.Application]](ctx, client, "applications/"+strconv.FormatInt(id, 10)+"/auto-assign", nil)
		return res.Item, err
	})
}

// AutoAssignAll runs the bulk matcher and then reloads the whole list.
func AutoAssignAll(ctx context.Context, col *Collection[model.Application]) (int, error) {
	res, err := Post[AssignedResponse](ctx, col.Resource().Client, "applications/auto-assign-all", nil)
	if err != nil {
		col.setNotice(failure(err))
		return 0, err
	}
	if err := col.Load(ctx); err != nil {
		col.setNotice(failure(err))
		return res.Assigned, err
	}
	col.setNotice(success(fmt.Sprintf("%s: %d", textAssigned, res.Assigned)))
	return res.Assigned, nil
}

// ActiveGroups counts active groups, memoized on the list.
func ActiveGroups(col *Collection[model.Group]) (active, total int) {
	active = col.Count("active", func(g *model.Group) bool { return g.IsActive })
	return active, col.Len()
}
