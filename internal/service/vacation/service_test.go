package vacation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/notification"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/user"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/vacation"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/clock"
)

type noopTx struct{}

func (noopTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memVacations struct {
	seq  int
	rows map[string]vacation.VacationRequest
}

func (m *memVacations) Create(_ context.Context, v vacation.VacationRequest) (vacation.VacationRequest, error) {
	m.seq++
	v.ID = fmt.Sprintf("vac-%d", m.seq)
	m.rows[v.ID] = v
	return v, nil
}

func (m *memVacations) GetByID(_ context.Context, id string) (vacation.VacationRequest, error) {
	v, ok := m.rows[id]
	if !ok {
		return vacation.VacationRequest{}, vacation.ErrVacationNotFound
	}
	return v, nil
}

func (m *memVacations) UpdateStatus(_ context.Context, v vacation.VacationRequest, from vacation.Status) error {
	if m.rows[v.ID].Status != from {
		return vacation.ErrStatusConflict
	}
	m.rows[v.ID] = v
	return nil
}

func (m *memVacations) DeletePending(_ context.Context, id string) error {
	if m.rows[id].Status != vacation.StatusPending {
		return vacation.ErrVacationNotPending
	}
	delete(m.rows, id)
	return nil
}

func (m *memVacations) HasOverlap(_ context.Context, userID string, start, end time.Time) (bool, error) {
	for _, v := range m.rows {
		if v.UserID != userID || (v.Status != vacation.StatusPending && v.Status != vacation.StatusApproved) {
			continue
		}
		if vacation.Overlaps(start, end, v.StartDate, v.EndDate) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memVacations) GetResubmission(_ context.Context, originalID string) (*vacation.VacationRequest, error) {
	for _, v := range m.rows {
		if v.OriginalRequestID != nil && *v.OriginalRequestID == originalID {
			cp := v
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memVacations) List(_ context.Context, f vacation.VacationFilter) ([]vacation.VacationRequest, int64, error) {
	var out []vacation.VacationRequest
	for _, v := range m.rows {
		if f.UserID != nil && v.UserID != *f.UserID {
			continue
		}
		out = append(out, v)
	}
	return out, int64(len(out)), nil
}

func (m *memVacations) UsersOnLeave(context.Context, time.Time) ([]string, error) { return nil, nil }

type fakeUsers struct{ user.UserRepository }

func (fakeUsers) GetByID(_ context.Context, id string) (user.User, error) {
	return user.User{ID: id, FullName: "Name of " + id}, nil
}

type recordingNotifier struct {
	notification.Service
	admins []notification.Message
	users  []notification.Message
	events int
}

func (n *recordingNotifier) NotifyAdmins(_ context.Context, msg notification.Message) {
	n.admins = append(n.admins, msg)
}

func (n *recordingNotifier) NotifyUser(_ context.Context, _ string, msg notification.Message) error {
	n.users = append(n.users, msg)
	return nil
}

func (n *recordingNotifier) Publish(string, string, interface{}) { n.events++ }

func newService() (vacation.VacationService, *memVacations, *recordingNotifier) {
	repo := &memVacations{rows: map[string]vacation.VacationRequest{}}
	n := &recordingNotifier{}
	clk := clock.NewFixed(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	return NewVacationService(noopTx{}, repo, fakeUsers{}, n, clk), repo, n
}

func req(start, end string) vacation.CreateVacationRequest {
	return vacation.CreateVacationRequest{StartDate: start, EndDate: end, Reason: "Family trip"}
}

func TestCreateVacation(t *testing.T) {
	svc, _, n := newService()
	ctx := context.Background()

	resp, err := svc.CreateVacation(ctx, "u1", req("2024-06-10", "2024-06-14"))
	require.NoError(t, err)
	assert.Equal(t, vacation.StatusPending, resp.Status)
	assert.Equal(t, 5, resp.TotalDays)
	require.Len(t, n.admins, 1)
	assert.Equal(t, "2024-06-10 to 2024-06-14 (5 days)", n.admins[0].Summary)

	_, err = svc.CreateVacation(ctx, "u1", req("2024-06-14", "2024-06-20"))
	assert.ErrorIs(t, err, vacation.ErrVacationOverlap)

	// Another user is unaffected.
	_, err = svc.CreateVacation(ctx, "u2", req("2024-06-12", "2024-06-13"))
	assert.NoError(t, err)

	_, err = svc.CreateVacation(ctx, "u1", req("2024-06-20", "2024-06-19"))
	assert.Error(t, err)
}

func TestVacationLifecycle(t *testing.T) {
	svc, _, n := newService()
	ctx := context.Background()

	created, err := svc.CreateVacation(ctx, "u1", req("2024-06-10", "2024-06-14"))
	require.NoError(t, err)

	_, err = svc.RejectVacation(ctx, "admin", created.ID, vacation.RejectVacationRequest{})
	assert.Error(t, err, "rejection without reason must be refused")

	rejected, err := svc.RejectVacation(ctx, "admin", created.ID, vacation.RejectVacationRequest{Reason: "Quarter close"})
	require.NoError(t, err)
	assert.Equal(t, vacation.StatusRejected, rejected.Status)
	require.Len(t, n.users, 1)
	assert.Equal(t, "Quarter close", n.users[0].Reason)

	_, err = svc.ApproveVacation(ctx, "admin", created.ID)
	assert.ErrorIs(t, err, vacation.ErrVacationNotPending)

	_, err = svc.CancelVacation(ctx, "u1", false, created.ID)
	assert.ErrorIs(t, err, vacation.ErrVacationNotCancelable)

	// Rejected dates no longer block a new request.
	resub, err := svc.ResubmitVacation(ctx, "u1", created.ID, req("2024-06-17", "2024-06-18"))
	require.NoError(t, err)
	assert.Equal(t, vacation.StatusPending, resub.Status)
	require.NotNil(t, resub.OriginalRequestID)
	assert.Equal(t, created.ID, *resub.OriginalRequestID)

	_, err = svc.ResubmitVacation(ctx, "u1", created.ID, req("2024-07-01", "2024-07-02"))
	assert.ErrorIs(t, err, vacation.ErrAlreadyResubmitted)

	_, err = svc.ResubmitVacation(ctx, "u1", resub.ID, req("2024-07-01", "2024-07-02"))
	assert.ErrorIs(t, err, vacation.ErrVacationNotRejected)

	original, err := svc.GetVacation(ctx, "u1", false, created.ID)
	require.NoError(t, err)
	assert.Equal(t, vacation.StatusRejected, original.Status, "original stays immutable")
	assert.Equal(t, "2024-06-14", original.EndDate)

	approved, err := svc.ApproveVacation(ctx, "admin", resub.ID)
	require.NoError(t, err)
	assert.Equal(t, vacation.StatusApproved, approved.Status)

	history, err := svc.GetVacationHistory(ctx, "u1", false, resub.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, history.RootID)
	assert.Equal(t, resub.ID, history.LatestID)
	require.Len(t, history.Requests, 2)

	fromRoot, err := svc.GetVacationHistory(ctx, "admin", true, created.ID)
	require.NoError(t, err)
	assert.Equal(t, history, fromRoot)

	cancelled, err := svc.CancelVacation(ctx, "u1", false, resub.ID)
	require.NoError(t, err)
	assert.Equal(t, vacation.StatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
}

func TestResubmitRequiresOwner(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	created, err := svc.CreateVacation(ctx, "u1", req("2024-06-10", "2024-06-14"))
	require.NoError(t, err)
	_, err = svc.RejectVacation(ctx, "admin", created.ID, vacation.RejectVacationRequest{Reason: "No"})
	require.NoError(t, err)

	_, err = svc.ResubmitVacation(ctx, "u2", created.ID, req("2024-06-17", "2024-06-18"))
	assert.ErrorIs(t, err, vacation.ErrVacationAccessDenied)
}

func TestDeleteVacation(t *testing.T) {
	svc, repo, _ := newService()
	ctx := context.Background()

	created, err := svc.CreateVacation(ctx, "u1", req("2024-06-10", "2024-06-14"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteVacation(ctx, "u2", created.ID), vacation.ErrVacationAccessDenied)
	require.NoError(t, svc.DeleteVacation(ctx, "u1", created.ID))
	assert.Empty(t, repo.rows)

	created, err = svc.CreateVacation(ctx, "u1", req("2024-06-10", "2024-06-14"))
	require.NoError(t, err)
	_, err = svc.ApproveVacation(ctx, "admin", created.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.DeleteVacation(ctx, "u1", created.ID), vacation.ErrVacationNotPending)

	// Approved requests can still be cancelled.
	_, err = svc.CancelVacation(ctx, "admin", true, created.ID)
	assert.NoError(t, err)
}
