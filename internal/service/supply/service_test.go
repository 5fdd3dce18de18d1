package supply

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/notification"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/supply"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/user"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/clock"
)

// snapshotTx restores the in-memory tables when fn fails, like a rollback.
type snapshotTx struct {
	supplies *memSupplies
	requests *memRequests
}

func (t snapshotTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	supplies := map[string]supply.Supply{}
	for k, v := range t.supplies.rows {
		supplies[k] = v
	}
	requests := map[string]supply.Request{}
	for k, v := range t.requests.rows {
		requests[k] = v
	}
	if err := fn(ctx); err != nil {
		t.supplies.rows = supplies
		t.requests.rows = requests
		return err
	}
	return nil
}

func newID() string { return uuid.Must(uuid.NewV7()).String() }

type memSupplies struct{ rows map[string]supply.Supply }

func (m *memSupplies) Create(_ context.Context, s supply.Supply) (supply.Supply, error) {
	for _, r := range m.rows {
		if r.Name == s.Name {
			return supply.Supply{}, supply.ErrSupplyNameExists
		}
	}
	s.ID = newID()
	m.rows[s.ID] = s
	return s, nil
}

func (m *memSupplies) GetByID(_ context.Context, id string) (supply.Supply, error) {
	s, ok := m.rows[id]
	if !ok {
		return supply.Supply{}, supply.ErrSupplyNotFound
	}
	return s, nil
}

func (m *memSupplies) Update(_ context.Context, s supply.Supply) error {
	m.rows[s.ID] = s
	return nil
}

func (m *memSupplies) Delete(_ context.Context, id string) error {
	delete(m.rows, id)
	return nil
}

func (m *memSupplies) List(context.Context, supply.SupplyFilter) ([]supply.Supply, int64, error) {
	var out []supply.Supply
	for _, s := range m.rows {
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

func (m *memSupplies) ListLowStock(context.Context) ([]supply.Supply, error) {
	var out []supply.Supply
	for _, s := range m.rows {
		if s.LowStock() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSupplies) Decrement(_ context.Context, id string, qty int) (int, error) {
	s, ok := m.rows[id]
	if !ok {
		return 0, supply.ErrSupplyNotFound
	}
	if s.Quantity < qty {
		return 0, supply.ErrInsufficientStock
	}
	s.Quantity -= qty
	m.rows[id] = s
	return s.Quantity, nil
}

type memRequests struct{ rows map[string]supply.Request }

func (m *memRequests) Create(_ context.Context, r supply.Request) (supply.Request, error) {
	r.ID = newID()
	m.rows[r.ID] = r
	return r, nil
}

func (m *memRequests) GetByID(_ context.Context, id string) (supply.Request, error) {
	r, ok := m.rows[id]
	if !ok {
		return supply.Request{}, supply.ErrRequestNotFound
	}
	return r, nil
}

func (m *memRequests) UpdateDecision(_ context.Context, r supply.Request, from supply.RequestStatus) error {
	if m.rows[r.ID].Status != from {
		return supply.ErrRequestNotPending
	}
	m.rows[r.ID] = r
	return nil
}

func (m *memRequests) List(_ context.Context, f supply.RequestFilter) ([]supply.Request, int64, error) {
	var out []supply.Request
	for _, r := range m.rows {
		if f.UserID != nil && r.UserID != *f.UserID {
			continue
		}
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

type fakeUsers struct{ user.UserRepository }

func (fakeUsers) GetByID(_ context.Context, id string) (user.User, error) {
	return user.User{ID: id, FullName: "Name of " + id, IsActive: true}, nil
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
	svc      supply.SupplyService
	supplies *memSupplies
	requests *memRequests
	notifier *recordingNotifier
}

func newFixture() *fixture {
	f := &fixture{
		supplies: &memSupplies{rows: map[string]supply.Supply{}},
		requests: &memRequests{rows: map[string]supply.Request{}},
		notifier: &recordingNotifier{},
	}
	clk := clock.NewFixed(time.Date(2024, 6, 10, 3, 0, 0, 0, time.UTC))
	tx := snapshotTx{supplies: f.supplies, requests: f.requests}
	f.svc = NewSupplyService(tx, f.supplies, f.requests, fakeUsers{}, f.notifier, clk)
	return f
}

func (f *fixture) paper(t *testing.T, qty int) supply.SupplyResponse {
	t.Helper()
	s, err := f.svc.CreateSupply(context.Background(), supply.CreateSupplyRequest{
		Name: "A4 Paper", Category: "Stationery", Unit: "ream", Quantity: qty, MinimumStock: 5,
	})
	require.NoError(t, err)
	return s
}

func TestCreateSupply(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	s := f.paper(t, 20)
	assert.False(t, s.LowStock)

	_, err := f.svc.CreateSupply(ctx, supply.CreateSupplyRequest{Name: "A4 Paper", Category: "Stationery"})
	assert.ErrorIs(t, err, supply.ErrSupplyNameExists)

	pens, err := f.svc.CreateSupply(ctx, supply.CreateSupplyRequest{Name: "Pens", Category: "Stationery", Quantity: 2, MinimumStock: 10})
	require.NoError(t, err)
	assert.Equal(t, "pcs", pens.Unit)

	low, err := f.svc.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Pens", low[0].Name)

	_, err = f.svc.CreateSupply(ctx, supply.CreateSupplyRequest{Name: "Ink", Category: "Stationery", Quantity: -1})
	assert.Error(t, err)
}

func TestSupplyRequestFlow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	employee, admin := newID(), newID()
	s := f.paper(t, 10)

	r, err := f.svc.CreateRequest(ctx, employee, supply.CreateRequestRequest{SupplyID: s.ID, Quantity: 4, Reason: "printing contracts"})
	require.NoError(t, err)
	assert.Equal(t, supply.RequestPending, r.Status)
	assert.Equal(t, supply.UrgencyMedium, r.Urgency)
	require.Len(t, f.notifier.admins, 1)
	assert.Equal(t, "4 ream of A4 Paper", f.notifier.admins[0].Summary)

	_, err = f.svc.FulfillRequest(ctx, admin, r.ID)
	assert.ErrorIs(t, err, supply.ErrRequestNotApproved)

	approved, err := f.svc.ApproveRequest(ctx, admin, r.ID)
	require.NoError(t, err)
	assert.Equal(t, supply.RequestApproved, approved.Status)
	require.Len(t, f.notifier.users, 1)

	fulfilled, err := f.svc.FulfillRequest(ctx, admin, r.ID)
	require.NoError(t, err)
	assert.Equal(t, supply.RequestFulfilled, fulfilled.Status)
	assert.NotNil(t, fulfilled.FulfilledAt)
	assert.Equal(t, 6, f.supplies.rows[s.ID].Quantity)

	_, err = f.svc.FulfillRequest(ctx, admin, r.ID)
	assert.ErrorIs(t, err, supply.ErrRequestNotApproved)
	assert.Equal(t, 6, f.supplies.rows[s.ID].Quantity)

	mine, err := f.svc.ListMyRequests(ctx, employee, supply.RequestFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.TotalCount)
	assert.Contains(t, f.notifier.events, notification.KindSupplyRequest.EventName())
}

func TestFulfillInsufficientStockRollsBack(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	admin := newID()
	s := f.paper(t, 3)

	r, err := f.svc.CreateRequest(ctx, newID(), supply.CreateRequestRequest{SupplyID: s.ID, Quantity: 5, Reason: "event"})
	require.NoError(t, err)
	_, err = f.svc.ApproveRequest(ctx, admin, r.ID)
	require.NoError(t, err)

	_, err = f.svc.FulfillRequest(ctx, admin, r.ID)
	assert.ErrorIs(t, err, supply.ErrInsufficientStock)
	assert.Equal(t, supply.RequestApproved, f.requests.rows[r.ID].Status)
	assert.Equal(t, 3, f.supplies.rows[s.ID].Quantity)
}

func TestRejectSupplyRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	s := f.paper(t, 10)

	r, err := f.svc.CreateRequest(ctx, newID(), supply.CreateRequestRequest{SupplyID: s.ID, Quantity: 1, Reason: "x"})
	require.NoError(t, err)

	_, err = f.svc.RejectRequest(ctx, newID(), r.ID, supply.RejectRequestRequest{Reason: ""})
	assert.Error(t, err)

	got, err := f.svc.RejectRequest(ctx, newID(), r.ID, supply.RejectRequestRequest{Reason: "use the shared printer"})
	require.NoError(t, err)
	assert.Equal(t, supply.RequestRejected, got.Status)
	require.Len(t, f.notifier.users, 1)
	assert.Equal(t, "use the shared printer", f.notifier.users[0].Reason)

	_, err = f.svc.ApproveRequest(ctx, newID(), r.ID)
	assert.ErrorIs(t, err, supply.ErrRequestNotPending)
}

func TestCreateRequestUnknownSupply(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateRequest(context.Background(), newID(), supply.CreateRequestRequest{SupplyID: newID(), Quantity: 1, Reason: "x"})
	assert.ErrorIs(t, err, supply.ErrSupplyNotFound)
}

func TestGetRequestOwnership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := newID()
	s := f.paper(t, 10)

	r, err := f.svc.CreateRequest(ctx, owner, supply.CreateRequestRequest{SupplyID: s.ID, Quantity: 1, Reason: "x"})
	require.NoError(t, err)

	_, err = f.svc.GetRequest(ctx, newID(), false, r.ID)
	assert.ErrorIs(t, err, supply.ErrRequestForbidden)
	_, err = f.svc.GetRequest(ctx, owner, false, r.ID)
	assert.NoError(t, err)
	_, err = f.svc.GetRequest(ctx, newID(), true, r.ID)
	assert.NoError(t, err)
}
