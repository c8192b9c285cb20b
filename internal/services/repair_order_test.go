package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shoptrack/apiserver/internal/store"
	"github.com/shoptrack/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderRepo struct {
	orders  []types.RepairOrder
	nextID  int
	failing bool
}

func (f *fakeOrderRepo) Create(_ context.Context, order types.RepairOrder) (types.RepairOrder, error) {
	if f.failing {
		return types.RepairOrder{}, errors.New("store unavailable")
	}
	f.nextID++
	order.ID = f.nextID
	f.orders = append(f.orders, order)
	return order, nil
}

func (f *fakeOrderRepo) ListAll(_ context.Context) ([]types.RepairOrder, error) {
	if f.failing {
		return nil, errors.New("store unavailable")
	}
	listed := make([]types.RepairOrder, 0, len(f.orders))
	for i := len(f.orders) - 1; i >= 0; i-- {
		listed = append(listed, f.orders[i])
	}
	return listed, nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id int, status string) error {
	if f.failing {
		return errors.New("store unavailable")
	}
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].Status = status
			return nil
		}
	}
	return store.ErrNotFound
}

type countingNotifier struct {
	calls   int
	lastID  int
	actions []string
}

func (n *countingNotifier) OrderChanged(_ context.Context, orderID int, action string) {
	n.calls++
	n.lastID = orderID
	n.actions = append(n.actions, action)
}

func TestCreateNotifiesOnce(t *testing.T) {
	repo := &fakeOrderRepo{}
	notifier := &countingNotifier{}
	svc := NewRepairOrderService(repo, notifier)

	created, err := svc.Create(context.Background(), types.RepairOrder{RO: "1042", Status: "new"})
	require.NoError(t, err)

	assert.Equal(t, 1, created.ID)
	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, created.ID, notifier.lastID)
	assert.Equal(t, []string{"created"}, notifier.actions)
}

func TestCreateFailureDoesNotNotify(t *testing.T) {
	repo := &fakeOrderRepo{failing: true}
	notifier := &countingNotifier{}
	svc := NewRepairOrderService(repo, notifier)

	_, err := svc.Create(context.Background(), types.RepairOrder{RO: "1042"})
	require.Error(t, err)
	assert.Equal(t, 0, notifier.calls)
}

func TestUpdateStatusNotifies(t *testing.T) {
	repo := &fakeOrderRepo{}
	notifier := &countingNotifier{}
	svc := NewRepairOrderService(repo, notifier)

	created, err := svc.Create(context.Background(), types.RepairOrder{RO: "1042", Status: "new"})
	require.NoError(t, err)
	require.NoError(t, svc.UpdateStatus(context.Background(), created.ID, "in progress"))

	assert.Equal(t, 2, notifier.calls)
	assert.Equal(t, []string{"created", "status"}, notifier.actions)
}

func TestUpdateStatusUnknownOrderDoesNotNotify(t *testing.T) {
	repo := &fakeOrderRepo{}
	notifier := &countingNotifier{}
	svc := NewRepairOrderService(repo, notifier)

	err := svc.UpdateStatus(context.Background(), 999, "done")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, 0, notifier.calls)
}

func TestListAllNewestFirst(t *testing.T) {
	repo := &fakeOrderRepo{}
	notifier := &countingNotifier{}
	svc := NewRepairOrderService(repo, notifier)

	for _, ro := range []string{"1001", "1002", "1003"} {
		_, err := svc.Create(context.Background(), types.RepairOrder{RO: ro})
		require.NoError(t, err)
	}

	listed, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "1003", listed[0].RO)
	assert.Equal(t, "1001", listed[2].RO)
}
