package services

import (
	"context"

	"github.com/shoptrack/apiserver/types"
)

// RepairOrderRepository defines persistence operations for repair orders.
type RepairOrderRepository interface {
	Create(ctx context.Context, order types.RepairOrder) (types.RepairOrder, error)
	ListAll(ctx context.Context) ([]types.RepairOrder, error)
	UpdateStatus(ctx context.Context, id int, status string) error
}

// ChangeNotifier receives a signal after every committed mutation of the
// order board. Implementations swallow their own failures; the write has
// already happened and must look successful to the caller.
type ChangeNotifier interface {
	OrderChanged(ctx context.Context, orderID int, action string)
}

// RepairOrderService encapsulates repair-order use-cases and triggers the
// live-update notification after each write.
type RepairOrderService struct {
	repo     RepairOrderRepository
	notifier ChangeNotifier
}

func NewRepairOrderService(repo RepairOrderRepository, notifier ChangeNotifier) *RepairOrderService {
	return &RepairOrderService{repo: repo, notifier: notifier}
}

func (s *RepairOrderService) Create(ctx context.Context, order types.RepairOrder) (types.RepairOrder, error) {
	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return types.RepairOrder{}, err
	}
	s.notifier.OrderChanged(ctx, created.ID, "created")
	return created, nil
}

func (s *RepairOrderService) ListAll(ctx context.Context) ([]types.RepairOrder, error) {
	return s.repo.ListAll(ctx)
}

func (s *RepairOrderService) UpdateStatus(ctx context.Context, id int, status string) error {
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.notifier.OrderChanged(ctx, id, "status")
	return nil
}
