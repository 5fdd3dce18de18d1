package asset

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/asset"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/notification"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/user"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/clock"
)

type noopTx struct{}

func (noopTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newID() string { return uuid.Must(uuid.NewV7()).String() }

type memAssets struct{ rows map[string]asset.Asset }

func (m *memAssets) Create(_ context.Context, a asset.Asset) (asset.Asset, error) {
	for _, r := range m.rows {
		if a.SerialNumber != nil && r.SerialNumber != nil && *r.SerialNumber == *a.SerialNumber {
			return asset.Asset{}, asset.ErrSerialNumberExists
		}
	}
	a.ID = newID()
	m.rows[a.ID] = a
	return a, nil
}

func (m *memAssets) GetByID(_ context.Context, id string) (asset.Asset, error) {
	a, ok := m.rows[id]
	if !ok {
		return asset.Asset{}, asset.ErrAssetNotFound
	}
	return a, nil
}

func (m *memAssets) Update(_ context.Context, a asset.Asset) error {
	m.rows[a.ID] = a
	return nil
}

func (m *memAssets) Delete(_ context.Context, id string) error {
	delete(m.rows, id)
	return nil
}

func (m *memAssets) List(context.Context, asset.AssetFilter) ([]asset.Asset, int64, error) {
	var out []asset.Asset
	for _, a := range m.rows {
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

func (m *memAssets) SetStatus(_ context.Context, id string, from, to asset.Status) error {
	a := m.rows[id]
	if a.Status != from {
		return asset.ErrAssetNotAvailable
	}
	a.Status = to
	m.rows[id] = a
	return nil
}

type memAssignments struct{ rows map[string]asset.Assignment }

func (m *memAssignments) Create(_ context.Context, a asset.Assignment) (asset.Assignment, error) {
	a.ID = newID()
	m.rows[a.ID] = a
	return a, nil
}

func (m *memAssignments) GetByID(_ context.Context, id string) (asset.Assignment, error) {
	a, ok := m.rows[id]
	if !ok {
		return asset.Assignment{}, asset.ErrAssignmentNotFound
	}
	return a, nil
}

func (m *memAssignments) GetActiveByAsset(_ context.Context, assetID string) (*asset.Assignment, error) {
	for _, a := range m.rows {
		if a.AssetID == assetID && a.Status == asset.AssignmentActive {
			cp := a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memAssignments) MarkReturned(_ context.Context, a asset.Assignment) error {
	if m.rows[a.ID].Status != asset.AssignmentActive {
		return asset.ErrAssignmentNotActive
	}
	m.rows[a.ID] = a
	return nil
}

func (m *memAssignments) List(_ context.Context, f asset.AssignmentFilter) ([]asset.Assignment, int64, error) {
	var out []asset.Assignment
	for _, a := range m.rows {
		if f.UserID != nil && a.UserID != *f.UserID {
			continue
		}
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

type memRequests struct{ rows map[string]asset.Request }

func (m *memRequests) Create(_ context.Context, r asset.Request) (asset.Request, error) {
	r.ID = newID()
	m.rows[r.ID] = r
	return r, nil
}

func (m *memRequests) GetByID(_ context.Context, id string) (asset.Request, error) {
	r, ok := m.rows[id]
	if !ok {
		return asset.Request{}, asset.ErrRequestNotFound
	}
	return r, nil
}

func (m *memRequests) UpdateDecision(_ context.Context, r asset.Request, from asset.RequestStatus) error {
	if m.rows[r.ID].Status != from {
		return asset.ErrRequestNotPending
	}
	m.rows[r.ID] = r
	return nil
}

func (m *memRequests) List(context.Context, asset.RequestFilter) ([]asset.Request, int64, error) {
	var out []asset.Request
	for _, r := range m.rows {
		out = append(out, r)
	}
	return out, int64(len(out)), nil
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
	admins []notification.Message
	users  []notification.Message
	events []string
}

func (n *recordingNotifier) NotifyAdmins(_ context.Context, msg notification.Message) {
	n.admins = append(n.admins, msg)
}

func (n *recordingNotifier) NotifyUser(_ context.Context, _ string, msg notification.Message) error {
	n.users = append(n.users, msg)
	return nil
}

func (n *recordingNotifier) Publish(_ string, name string, _ interface{}) {
	n.events = append(n.events, name)
}

type fixture struct {
	svc         asset.AssetService
	assets      *memAssets
	assignments *memAssignments
	requests    *memRequests
	users       fakeUsers
	notifier    *recordingNotifier
}

func newFixture() *fixture {
	f := &fixture{
		assets:      &memAssets{rows: map[string]asset.Asset{}},
		assignments: &memAssignments{rows: map[string]asset.Assignment{}},
		requests:    &memRequests{rows: map[string]asset.Request{}},
		users:       fakeUsers{inactive: map[string]bool{}},
		notifier:    &recordingNotifier{},
	}
	loc, _ := time.LoadLocation("Asia/Jakarta")
	clk := clock.NewFixed(time.Date(2024, 6, 10, 20, 0, 0, 0, time.UTC))
	f.svc = NewAssetService(noopTx{}, f.assets, f.assignments, f.requests, f.users, f.notifier, clk, loc)
	return f
}

func (f *fixture) laptop(t *testing.T) asset.AssetResponse {
	t.Helper()
	serial := "SN-" + newID()[:8]
	a, err := f.svc.CreateAsset(context.Background(), asset.CreateAssetRequest{
		Name: "ThinkPad X1", Category: "Laptop", SerialNumber: &serial,
	})
	require.NoError(t, err)
	return a
}

func TestCreateAsset(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.laptop(t)
	assert.Equal(t, asset.StatusAvailable, a.Status)

	_, err := f.svc.CreateAsset(ctx, asset.CreateAssetRequest{Name: "Dup", Category: "Laptop", SerialNumber: a.SerialNumber})
	assert.ErrorIs(t, err, asset.ErrSerialNumberExists)

	_, err = f.svc.CreateAsset(ctx, asset.CreateAssetRequest{Name: " ", Category: "Laptop"})
	assert.Error(t, err)
}

func TestAssignAndReturn(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	admin, employee := newID(), newID()
	a := f.laptop(t)

	got, err := f.svc.AssignAsset(ctx, admin, asset.AssignAssetRequest{AssetID: a.ID, UserID: employee})
	require.NoError(t, err)
	assert.Equal(t, asset.AssignmentActive, got.Status)
	// 20:00 UTC is already the next day in Jakarta
	assert.Equal(t, "2024-06-11", got.IssueDate)
	assert.Equal(t, asset.StatusAssigned, f.assets.rows[a.ID].Status)
	assert.Contains(t, f.notifier.events, notification.KindAssignment.EventName())

	_, err = f.svc.AssignAsset(ctx, admin, asset.AssignAssetRequest{AssetID: a.ID, UserID: newID()})
	assert.ErrorIs(t, err, asset.ErrAssetNotAvailable)

	assert.ErrorIs(t, f.svc.DeleteAsset(ctx, a.ID), asset.ErrAssetHasActiveAssignment)

	_, err = f.svc.ReturnAsset(ctx, newID(), false, got.ID, asset.ReturnAssetRequest{Condition: "Good"})
	assert.ErrorIs(t, err, asset.ErrAssignmentForbidden)

	_, err = f.svc.ReturnAsset(ctx, employee, false, got.ID, asset.ReturnAssetRequest{})
	assert.Error(t, err)

	returned, err := f.svc.ReturnAsset(ctx, employee, false, got.ID, asset.ReturnAssetRequest{Condition: "Good"})
	require.NoError(t, err)
	assert.Equal(t, asset.AssignmentReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate)
	assert.Equal(t, asset.StatusAvailable, f.assets.rows[a.ID].Status)

	_, err = f.svc.ReturnAsset(ctx, admin, true, got.ID, asset.ReturnAssetRequest{Condition: "Good"})
	assert.ErrorIs(t, err, asset.ErrAssignmentNotActive)

	require.NoError(t, f.svc.DeleteAsset(ctx, a.ID))
	_, err = f.svc.GetAsset(ctx, a.ID)
	assert.ErrorIs(t, err, asset.ErrAssetNotFound)
}

func TestAssignInactiveUser(t *testing.T) {
	f := newFixture()
	a := f.laptop(t)
	employee := newID()
	f.users.inactive[employee] = true

	_, err := f.svc.AssignAsset(context.Background(), newID(), asset.AssignAssetRequest{AssetID: a.ID, UserID: employee})
	assert.ErrorIs(t, err, asset.ErrUserNotEligible)
	assert.Equal(t, asset.StatusAvailable, f.assets.rows[a.ID].Status)
}

func TestUpdateAssetStatusRules(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.laptop(t)

	assigned := asset.StatusAssigned
	_, err := f.svc.UpdateAsset(ctx, a.ID, asset.UpdateAssetRequest{Status: &assigned})
	assert.ErrorIs(t, err, asset.ErrInvalidStatusChange)

	maintenance := asset.StatusMaintenance
	updated, err := f.svc.UpdateAsset(ctx, a.ID, asset.UpdateAssetRequest{Status: &maintenance})
	require.NoError(t, err)
	assert.Equal(t, asset.StatusMaintenance, updated.Status)

	_, err = f.svc.AssignAsset(ctx, newID(), asset.AssignAssetRequest{AssetID: a.ID, UserID: newID()})
	assert.ErrorIs(t, err, asset.ErrAssetNotAvailable)
}

func TestRequestLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	admin, employee := newID(), newID()

	r, err := f.svc.CreateRequest(ctx, employee, asset.CreateRequestRequest{Category: "Laptop", Reason: "old one broke"})
	require.NoError(t, err)
	assert.Equal(t, asset.UrgencyMedium, r.Urgency)
	assert.Equal(t, asset.RequestPending, r.Status)
	require.Len(t, f.notifier.admins, 1)
	assert.Equal(t, notification.OutcomeSubmitted, f.notifier.admins[0].Outcome)

	_, err = f.svc.GetRequest(ctx, newID(), false, r.ID)
	assert.ErrorIs(t, err, asset.ErrRequestAccessDenied)

	approved, err := f.svc.ApproveRequest(ctx, admin, r.ID, asset.ApproveRequestRequest{})
	require.NoError(t, err)
	assert.Equal(t, asset.RequestApproved, approved.Status)
	require.Len(t, f.notifier.users, 1)
	assert.Equal(t, notification.OutcomeApproved, f.notifier.users[0].Outcome)

	_, err = f.svc.ApproveRequest(ctx, admin, r.ID, asset.ApproveRequestRequest{})
	assert.ErrorIs(t, err, asset.ErrRequestNotPending)

	a := f.laptop(t)
	fulfilled, err := f.svc.FulfillRequest(ctx, admin, r.ID, asset.FulfillRequestRequest{AssetID: a.ID})
	require.NoError(t, err)
	assert.Equal(t, asset.RequestFulfilled, fulfilled.Status)
	require.NotNil(t, fulfilled.AssignedAssetID)
	assert.Equal(t, a.ID, *fulfilled.AssignedAssetID)
	assert.Equal(t, asset.StatusAssigned, f.assets.rows[a.ID].Status)

	mine, err := f.svc.ListMyAssignments(ctx, employee, asset.AssignmentFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.TotalCount)
}

func TestApproveWithAssetFulfilsAtOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	admin, employee := newID(), newID()
	a := f.laptop(t)

	r, err := f.svc.CreateRequest(ctx, employee, asset.CreateRequestRequest{Category: "laptop", Reason: "new hire", Urgency: asset.UrgencyHigh})
	require.NoError(t, err)

	got, err := f.svc.ApproveRequest(ctx, admin, r.ID, asset.ApproveRequestRequest{AssetID: &a.ID})
	require.NoError(t, err)
	assert.Equal(t, asset.RequestFulfilled, got.Status)
	assert.Equal(t, asset.StatusAssigned, f.assets.rows[a.ID].Status)

	require.Len(t, f.notifier.users, 1)
	details := f.notifier.users[0].Details
	assert.Equal(t, "Assigned asset", details[len(details)-1].Label)
}

func TestApproveWithMismatchedCategory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.laptop(t)

	r, err := f.svc.CreateRequest(ctx, newID(), asset.CreateRequestRequest{Category: "Monitor", Reason: "second screen"})
	require.NoError(t, err)

	_, err = f.svc.ApproveRequest(ctx, newID(), r.ID, asset.ApproveRequestRequest{AssetID: &a.ID})
	assert.ErrorIs(t, err, asset.ErrCategoryMismatch)
	assert.Equal(t, asset.StatusAvailable, f.assets.rows[a.ID].Status)
	assert.Empty(t, f.notifier.users)
}

func TestFulfillRequiresApproval(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.laptop(t)

	r, err := f.svc.CreateRequest(ctx, newID(), asset.CreateRequestRequest{Category: "Laptop", Reason: "x"})
	require.NoError(t, err)

	_, err = f.svc.FulfillRequest(ctx, newID(), r.ID, asset.FulfillRequestRequest{AssetID: a.ID})
	assert.ErrorIs(t, err, asset.ErrRequestNotApproved)
}

func TestRejectRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	r, err := f.svc.CreateRequest(ctx, newID(), asset.CreateRequestRequest{Category: "Laptop", Reason: "x"})
	require.NoError(t, err)

	_, err = f.svc.RejectRequest(ctx, newID(), r.ID, asset.RejectRequestRequest{Reason: "  "})
	assert.Error(t, err)

	got, err := f.svc.RejectRequest(ctx, newID(), r.ID, asset.RejectRequestRequest{Reason: "budget freeze"})
	require.NoError(t, err)
	assert.Equal(t, asset.RequestRejected, got.Status)
	require.Len(t, f.notifier.users, 1)
	assert.Equal(t, "budget freeze", f.notifier.users[0].Reason)
	assert.Contains(t, f.notifier.events, notification.KindAssetRequest.EventName())
}
