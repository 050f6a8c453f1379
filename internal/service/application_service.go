package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go-studioadmin/internal/domain/model"
	"go-studioadmin/internal/pkg/resource"
)

var ErrNoMatchingGroup = fmt.Errorf("%w: no active group with free places matches the application", resource.ErrConflict)

// ApplicationService assigns trial applications to groups.
type ApplicationService struct {
	Apps   *resource.Service[model.Application, *model.Application]
	Groups *resource.Service[model.Group, *model.Group]

	// serializes occupancy reads with the assignment that follows
	mu sync.Mutex
}

func NewApplicationService(r *Resources) *ApplicationService {
	return &ApplicationService{Apps: r.Applications, Groups: r.Groups}
}

// MatchGroup picks the active group of the same style whose age range fits,
// that still has room, with the lowest occupancy (ties: lowest id).
// A group with max_students 0 has no capacity limit.
func MatchGroup(app *model.Application, groups []model.Group, occupancy map[int64]int) *model.Group {
	style := strings.ToLower(strings.TrimSpace(app.Style))
	var best *model.Group
	for i := range groups {
		g := &groups[i]
		if !g.IsActive {
			continue
		}
		if style != "" && strings.ToLower(strings.TrimSpace(g.Style)) != style {
			continue
		}
		if !g.AcceptsAge(app.Age) {
			continue
		}
		occ := occupancy[g.ID]
		if g.MaxStudents > 0 && occ >= g.MaxStudents {
			continue
		}
		if best == nil || occ < occupancy[best.ID] || (occ == occupancy[best.ID] && g.ID < best.ID) {
			best = g
		}
	}
	return best
}

// Occupancy counts assigned applications per group.
func (s *ApplicationService) Occupancy(ctx context.Context) (map[int64]int, error) {
	var rows []struct {
		GroupID int64
		N       int
	}
	err := s.Apps.DAO.DB.WithContext(ctx).Model(&model.Application{}).
		Select("assigned_group_id AS group_id, COUNT(*) AS n").
		Where("status = ? AND assigned_group_id IS NOT NULL", model.ApplicationAssigned).
		Group("assigned_group_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	occ := make(map[int64]int, len(rows))
	for _, r := range rows {
		occ[r.GroupID] = r.N
	}
	return occ, nil
}

// AutoAssign matches one application and stores the assignment.
func (s *ApplicationService) AutoAssign(ctx context.Context, id int64) (*model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, err := s.Apps.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	groups, err := s.Groups.DAO.List(ctx)
	if err != nil {
		return nil, err
	}
	occ, err := s.Occupancy(ctx)
	if err != nil {
		return nil, err
	}
	if app.Status == model.ApplicationAssigned && app.AssignedGroupID != nil {
		occ[*app.AssignedGroupID]--
	}
	g := MatchGroup(app, groups, occ)
	if g == nil {
		return nil, ErrNoMatchingGroup
	}
	return s.assign(ctx, app, g)
}

// AutoAssignAll assigns every new, unassigned application that has a match
// and returns how many were assigned.
func (s *ApplicationService) AutoAssignAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	apps, err := s.Apps.DAO.List(ctx)
	if err != nil {
		return 0, err
	}
	groups, err := s.Groups.DAO.List(ctx)
	if err != nil {
		return 0, err
	}
	occ, err := s.Occupancy(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for i := range apps {
		app := &apps[i]
		if app.Status != model.ApplicationNew || app.AssignedGroupID != nil {
			continue
		}
		g := MatchGroup(app, groups, occ)
		if g == nil {
			continue
		}
		if _, err := s.assign(ctx, app, g); err != nil {
			if errors.Is(err, resource.ErrInvalid) {
				continue
			}
			return n, err
		}
		occ[g.ID]++
		n++
	}
	return n, nil
}

func (s *ApplicationService) assign(ctx context.Context, app *model.Application, g *model.Group) (*model.Application, error) {
	next := *app
	gid, name := g.ID, g.Name
	next.AssignedGroupID = &gid
	next.AssignedGroupName = &name
	next.Status = model.ApplicationAssigned
	return s.Apps.Replace(ctx, app, &next)
}

// TrialRequest is the public trial-lesson form.
type TrialRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Age     *int   `json:"age"`
	Style   string `json:"style"`
	Comment string `json:"comment"`
}

// SubmitTrial stores a trial form as a new application from the site.
func (s *ApplicationService) SubmitTrial(ctx context.Context, req TrialRequest) (*model.Application, error) {
	name, phone := strings.TrimSpace(req.Name), strings.TrimSpace(req.Phone)
	if name == "" || phone == "" {
		return nil, resource.Invalidf("name and phone are required")
	}
	comment := req.Comment
	return s.Apps.Create(ctx, &model.Application{
		Name:    name,
		Phone:   phone,
		Age:     req.Age,
		Style:   strings.TrimSpace(req.Style),
		Comment: &comment,
		Source:  "site",
		Status:  model.ApplicationNew,
	})
}
