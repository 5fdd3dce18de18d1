package project

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/notification"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/project"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/user"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/clock"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/export"
)

func newID() string { return uuid.Must(uuid.NewV7()).String() }

type memProjects struct {
	rows        map[string]project.Project
	allocations *memAllocations
	updates     *memUpdates
}

func (m *memProjects) Create(_ context.Context, p project.Project) (project.Project, error) {
	for _, r := range m.rows {
		if r.Code == p.Code {
			return project.Project{}, project.ErrProjectCodeExists
		}
	}
	p.ID = newID()
	m.rows[p.ID] = p
	return p, nil
}

func (m *memProjects) GetByID(_ context.Context, id string) (project.Project, error) {
	p, ok := m.rows[id]
	if !ok {
		return project.Project{}, project.ErrProjectNotFound
	}
	return p, nil
}

func (m *memProjects) Update(_ context.Context, p project.Project) error {
	m.rows[p.ID] = p
	return nil
}

func (m *memProjects) Delete(_ context.Context, id string) error {
	if _, ok := m.rows[id]; !ok {
		return project.ErrProjectNotFound
	}
	for _, u := range m.updates.rows {
		if m.allocations.rows[u.AllocationID].ProjectID == id {
			return project.ErrProjectHasUpdates
		}
	}
	for aid, a := range m.allocations.rows {
		if a.ProjectID == id {
			delete(m.allocations.rows, aid)
		}
	}
	delete(m.rows, id)
	return nil
}

func (m *memProjects) List(context.Context, project.ProjectFilter) ([]project.Project, int64, error) {
	var out []project.Project
	for _, p := range m.rows {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

type memAllocations struct{ rows map[string]project.Allocation }

func (m *memAllocations) Create(_ context.Context, a project.Allocation) (project.Allocation, error) {
	for _, r := range m.rows {
		if r.ProjectID == a.ProjectID && r.UserID == a.UserID && r.IsActive {
			return project.Allocation{}, project.ErrAllocationExists
		}
	}
	a.ID = newID()
	m.rows[a.ID] = a
	return a, nil
}

func (m *memAllocations) GetByID(_ context.Context, id string) (project.Allocation, error) {
	a, ok := m.rows[id]
	if !ok {
		return project.Allocation{}, project.ErrAllocationNotFound
	}
	return a, nil
}

func (m *memAllocations) Update(_ context.Context, a project.Allocation) error {
	m.rows[a.ID] = a
	return nil
}

func (m *memAllocations) List(_ context.Context, f project.AllocationFilter) ([]project.Allocation, int64, error) {
	var out []project.Allocation
	for _, a := range m.rows {
		if f.UserID != nil && a.UserID != *f.UserID {
			continue
		}
		if f.ActiveOnly && !a.IsActive {
			continue
		}
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

type memUpdates struct {
	rows        map[string]project.DailyUpdate
	allocations *memAllocations
	projects    *memProjects
}

func (m *memUpdates) Create(_ context.Context, u project.DailyUpdate) (project.DailyUpdate, error) {
	for _, r := range m.rows {
		if r.AllocationID == u.AllocationID && r.Date.Equal(u.Date) {
			return project.DailyUpdate{}, project.ErrUpdateExists
		}
	}
	u.ID = newID()
	m.rows[u.ID] = u
	return u, nil
}

func (m *memUpdates) GetByID(_ context.Context, id string) (project.DailyUpdate, error) {
	u, ok := m.rows[id]
	if !ok {
		return project.DailyUpdate{}, project.ErrUpdateNotFound
	}
	return u, nil
}

func (m *memUpdates) Update(_ context.Context, u project.DailyUpdate) error {
	m.rows[u.ID] = u
	return nil
}

func (m *memUpdates) List(context.Context, project.DailyUpdateFilter) ([]project.DailyUpdate, int64, error) {
	var out []project.DailyUpdate
	for _, u := range m.rows {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (m *memUpdates) ReportRows(_ context.Context, from, to time.Time, projectID, userID *string) ([]project.ReportRow, error) {
	var out []project.ReportRow
	for _, u := range m.rows {
		if u.Date.Before(from) || u.Date.After(to) {
			continue
		}
		a := m.allocations.rows[u.AllocationID]
		p := m.projects.rows[a.ProjectID]
		if projectID != nil && p.ID != *projectID {
			continue
		}
		if userID != nil && a.UserID != *userID {
			continue
		}
		out = append(out, project.ReportRow{
			ProjectID: p.ID, ProjectName: p.Name, ProjectCode: p.Code,
			UserID: a.UserID, UserName: "Name of " + a.UserID, HoursAllocated: a.HoursAllocated,
			Date: u.Date, HoursWorked: u.HoursWorked, CompletionPercentage: u.CompletionPercentage,
		})
	}
	return out, nil
}

type fakeUsers struct {
	user.UserRepository
	inactive map[string]bool
}

func (f fakeUsers) GetByID(_ context.Context, id string) (user.User, error) {
	return user.User{ID: id, FullName: "Name of " + id, IsActive: !f.inactive[id]}, nil
}

type recordingNotifier struct {
	notification.Service
	events []string
}

func (n *recordingNotifier) Publish(_ string, name string, _ interface{}) {
	n.events = append(n.events, name)
}

type fixture struct {
	svc         project.ProjectService
	projects    *memProjects
	allocations *memAllocations
	updates     *memUpdates
	users       fakeUsers
	notifier    *recordingNotifier
}

func newFixture() *fixture {
	f := &fixture{
		projects:    &memProjects{rows: map[string]project.Project{}},
		allocations: &memAllocations{rows: map[string]project.Allocation{}},
		users:       fakeUsers{inactive: map[string]bool{}},
		notifier:    &recordingNotifier{},
	}
	f.updates = &memUpdates{rows: map[string]project.DailyUpdate{}, allocations: f.allocations, projects: f.projects}
	f.projects.allocations = f.allocations
	f.projects.updates = f.updates
	loc, _ := time.LoadLocation("Asia/Jakarta")
	// Monday 2024-06-10 10:00 in Jakarta
	clk := clock.NewFixed(time.Date(2024, 6, 10, 3, 0, 0, 0, time.UTC))
	f.svc = NewProjectService(f.projects, f.allocations, f.updates, f.users, f.notifier, clk, loc)
	return f
}

func (f *fixture) portal(t *testing.T) project.ProjectResponse {
	t.Helper()
	p, err := f.svc.CreateProject(context.Background(), project.CreateProjectRequest{Name: "Office Portal", Code: "prt"})
	require.NoError(t, err)
	return p
}

func TestCreateProject(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p := f.portal(t)
	assert.Equal(t, "PRT", p.Code)
	assert.Equal(t, project.StatusActive, p.Status)

	_, err := f.svc.CreateProject(ctx, project.CreateProjectRequest{Name: "Other", Code: "PRT"})
	assert.ErrorIs(t, err, project.ErrProjectCodeExists)

	start, end := "2024-06-30", "2024-06-01"
	_, err = f.svc.CreateProject(ctx, project.CreateProjectRequest{Name: "Bad", Code: "BAD", StartDate: &start, EndDate: &end})
	assert.Error(t, err)
}

func TestDeleteProject(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	idle := f.portal(t)
	_, err := f.svc.CreateAllocation(ctx, idle.ID, project.CreateAllocationRequest{UserID: newID(), Role: "Backend", HoursAllocated: 4})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteProject(ctx, idle.ID))
	_, err = f.svc.GetProject(ctx, idle.ID)
	assert.ErrorIs(t, err, project.ErrProjectNotFound)
	assert.Empty(t, f.allocations.rows)

	assert.ErrorIs(t, f.svc.DeleteProject(ctx, idle.ID), project.ErrProjectNotFound)

	busy, err := f.svc.CreateProject(ctx, project.CreateProjectRequest{Name: "Busy", Code: "BSY"})
	require.NoError(t, err)
	dev := newID()
	a, err := f.svc.CreateAllocation(ctx, busy.ID, project.CreateAllocationRequest{UserID: dev, Role: "Backend", HoursAllocated: 4})
	require.NoError(t, err)
	_, err = f.svc.SubmitDailyUpdate(ctx, dev, project.SubmitDailyUpdateRequest{
		AllocationID: a.ID, Date: "2024-06-10", HoursWorked: 2, Description: "schema", CompletionPercentage: 10,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteProject(ctx, busy.ID), project.ErrProjectHasUpdates)
	_, err = f.svc.GetProject(ctx, busy.ID)
	assert.NoError(t, err)
}

func TestAllocationRules(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.portal(t)
	dev := newID()

	a, err := f.svc.CreateAllocation(ctx, p.ID, project.CreateAllocationRequest{UserID: dev, Role: "Backend", HoursAllocated: 4})
	require.NoError(t, err)
	assert.True(t, a.IsActive)

	_, err = f.svc.CreateAllocation(ctx, p.ID, project.CreateAllocationRequest{UserID: dev, Role: "QA", HoursAllocated: 2})
	assert.ErrorIs(t, err, project.ErrAllocationExists)

	_, err = f.svc.DeactivateAllocation(ctx, a.ID)
	require.NoError(t, err)
	_, err = f.svc.DeactivateAllocation(ctx, a.ID)
	assert.ErrorIs(t, err, project.ErrAllocationInactive)

	again, err := f.svc.CreateAllocation(ctx, p.ID, project.CreateAllocationRequest{UserID: dev, Role: "QA", HoursAllocated: 2})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, again.ID)

	inactive := newID()
	f.users.inactive[inactive] = true
	_, err = f.svc.CreateAllocation(ctx, p.ID, project.CreateAllocationRequest{UserID: inactive, Role: "QA", HoursAllocated: 2})
	assert.ErrorIs(t, err, user.ErrUserInactive)

	_, err = f.svc.CreateAllocation(ctx, p.ID, project.CreateAllocationRequest{UserID: newID(), Role: "QA", HoursAllocated: 25})
	assert.Error(t, err)

	mine, err := f.svc.ListMyAllocations(ctx, dev)
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.TotalCount)
}

func TestSubmitDailyUpdate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.portal(t)
	dev := newID()
	a, err := f.svc.CreateAllocation(ctx, p.ID, project.CreateAllocationRequest{UserID: dev, Role: "Backend", HoursAllocated: 4})
	require.NoError(t, err)

	req := project.SubmitDailyUpdateRequest{
		AllocationID: a.ID, Date: "2024-06-10", HoursWorked: 3.5, Description: "report endpoint", CompletionPercentage: 40,
	}

	_, err = f.svc.SubmitDailyUpdate(ctx, newID(), req)
	assert.ErrorIs(t, err, project.ErrAllocationForbidden)

	got, err := f.svc.SubmitDailyUpdate(ctx, dev, req)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-10", got.Date)
	assert.Contains(t, f.notifier.events, notification.KindProject.EventName())

	_, err = f.svc.SubmitDailyUpdate(ctx, dev, req)
	assert.ErrorIs(t, err, project.ErrUpdateExists)

	future := req
	future.Date = "2024-06-11"
	_, err = f.svc.SubmitDailyUpdate(ctx, dev, future)
	assert.ErrorIs(t, err, project.ErrUpdateFutureDay)

	edited, err := f.svc.EditDailyUpdate(ctx, dev, got.ID, project.EditDailyUpdateRequest{HoursWorked: 4, Description: "report endpoint done", CompletionPercentage: 60})
	require.NoError(t, err)
	assert.Equal(t, 60, edited.CompletionPercentage)

	_, err = f.svc.EditDailyUpdate(ctx, newID(), got.ID, project.EditDailyUpdateRequest{HoursWorked: 4, Description: "x", CompletionPercentage: 60})
	assert.ErrorIs(t, err, project.ErrUpdateForbidden)
}

func TestSubmitDailyUpdateOnHoldProject(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.portal(t)
	dev := newID()
	a, err := f.svc.CreateAllocation(ctx, p.ID, project.CreateAllocationRequest{UserID: dev, Role: "Backend", HoursAllocated: 4})
	require.NoError(t, err)

	hold := project.StatusOnHold
	_, err = f.svc.UpdateProject(ctx, p.ID, project.UpdateProjectRequest{Status: &hold})
	require.NoError(t, err)

	_, err = f.svc.SubmitDailyUpdate(ctx, dev, project.SubmitDailyUpdateRequest{
		AllocationID: a.ID, Date: "2024-06-10", HoursWorked: 1, Description: "x", CompletionPercentage: 1,
	})
	assert.ErrorIs(t, err, project.ErrProjectNotActive)
}

func seedReport(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	p := f.portal(t)
	dev := newID()
	a, err := f.svc.CreateAllocation(ctx, p.ID, project.CreateAllocationRequest{UserID: dev, Role: "Backend", HoursAllocated: 4})
	require.NoError(t, err)
	for _, d := range []string{"2024-06-06", "2024-06-07"} {
		_, err := f.svc.SubmitDailyUpdate(ctx, dev, project.SubmitDailyUpdateRequest{
			AllocationID: a.ID, Date: d, HoursWorked: 3, Description: "work", CompletionPercentage: 50,
		})
		require.NoError(t, err)
	}
}

func TestProjectReport(t *testing.T) {
	f := newFixture()
	seedReport(t, f)

	r, err := f.svc.ProjectReport(context.Background(), project.ReportFilter{StartDate: "2024-06-01", EndDate: "2024-06-30"})
	require.NoError(t, err)
	require.Len(t, r.Projects, 1)
	assert.Equal(t, 6.0, r.Projects[0].HoursWorked)
	assert.Equal(t, 8.0, r.Projects[0].HoursBudgeted)
	assert.Equal(t, 75.0, r.Projects[0].Utilization)
	assert.Equal(t, "2024-06-01", r.StartDate)

	r, err = f.svc.ProjectReport(context.Background(), project.ReportFilter{StartDate: "2024-06-07", EndDate: "2024-06-30"})
	require.NoError(t, err)
	assert.Equal(t, 3.0, r.TotalHoursWorked)
}

func TestExportProjectReport(t *testing.T) {
	f := newFixture()
	seedReport(t, f)
	filter := project.ReportFilter{StartDate: "2024-06-01", EndDate: "2024-06-30"}

	var csvBuf bytes.Buffer
	ct, err := f.svc.ExportProjectReport(context.Background(), filter, "CSV", &csvBuf)
	require.NoError(t, err)
	assert.Equal(t, export.ContentTypeCSV, ct)
	sections := strings.Split(strings.TrimSpace(csvBuf.String()), "\n\n")
	require.Len(t, sections, 2)
	lines := strings.Split(sections[0], "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Project Code,Project,Member"))
	assert.True(t, strings.HasPrefix(lines[2], "PRT,Office Portal,Total,2,6,8,75,50"))
	userLines := strings.Split(sections[1], "\n")
	require.Len(t, userLines, 3)
	assert.Equal(t, "Users", userLines[0])
	assert.True(t, strings.HasPrefix(userLines[1], "User,Projects,Days Reported"))

	var xlsxBuf bytes.Buffer
	ct, err = f.svc.ExportProjectReport(context.Background(), filter, "", &xlsxBuf)
	require.NoError(t, err)
	assert.Equal(t, export.ContentTypeXLSX, ct)
	assert.NotZero(t, xlsxBuf.Len())

	_, err = f.svc.ExportProjectReport(context.Background(), filter, "pdf", &xlsxBuf)
	assert.ErrorIs(t, err, project.ErrUnsupportedFormat)
}
