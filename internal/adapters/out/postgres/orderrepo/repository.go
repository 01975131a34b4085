package orderrepo

import (
	"context"
	"errors"
	"fmt"

	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/ports"
	"patternfactory/internal/pkg/errs"

	"gorm.io/gorm"
)

var _ ports.OrderRepository = &GormOrderRepository{}

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(aggregate *order.Order)
}

// NewGormOrderRepository creates a repository on db, which may be a
// transaction handle. tracker may be nil.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts a new order and its pending transitions.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", ports.ErrOrderAlreadyExists, dto.ID)
		}
		return err
	}
	if err := r.appendHistory(ctx, aggregate); err != nil {
		return err
	}

	r.track(aggregate)
	return nil
}

// Update writes the order only if the row still carries the version and
// state the aggregate was loaded with.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND version = ? AND state = ?", dto.ID, aggregate.Version(), string(aggregate.BaseState())).
		Select("*").
		Omit("id", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return r.conflict(ctx, aggregate)
	}
	if err := r.appendHistory(ctx, aggregate); err != nil {
		return err
	}

	r.track(aggregate)
	return nil
}

// conflict explains why a conditional update matched no row.
func (r *GormOrderRepository) conflict(ctx context.Context, aggregate *order.Order) error {
	var current OrderDTO
	err := r.db.WithContext(ctx).Select("id", "state", "version").First(&current, "id = ?", aggregate.ID().String()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewObjectNotFoundError("order", aggregate.ID().String())
	}
	if err != nil {
		return err
	}
	return errs.NewVersionIsInvalidErrorWithCause("order", current.Version,
		fmt.Errorf("%s holds %s at version %d, write was based on %s at version %d",
			current.ID, current.State, current.Version, aggregate.BaseState(), aggregate.Version()))
}

func (r *GormOrderRepository) appendHistory(ctx context.Context, aggregate *order.Order) error {
	changes := aggregate.Changes()
	if len(changes) == 0 {
		return nil
	}

	rows := make([]TransitionDTO, 0, len(changes))
	for _, t := range changes {
		rows = append(rows, transitionFromDomain(t))
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.OrderID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// ListByState retrieves orders stored in any of states, ordered by ID.
func (r *GormOrderRepository) ListByState(ctx context.Context, states ...order.State) ([]*order.Order, error) {
	if len(states) == 0 {
		return nil, nil
	}

	raw := make([]string, 0, len(states))
	for _, s := range states {
		raw = append(raw, string(s))
	}

	var dtos []OrderDTO
	if err := r.db.WithContext(ctx).Where("state IN ?", raw).Order("id").Find(&dtos).Error; err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, nil
}

// History retrieves the transitions of an order in the order they were written.
func (r *GormOrderRepository) History(ctx context.Context, id kernel.OrderID) ([]order.Transition, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var exists int64
	if err := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ?", id.String()).Count(&exists).Error; err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}

	var dtos []TransitionDTO
	if err := r.db.WithContext(ctx).Where("order_id = ?", id.String()).Order("seq").Find(&dtos).Error; err != nil {
		return nil, err
	}

	history := make([]order.Transition, 0, len(dtos))
	for _, dto := range dtos {
		t, err := transitionToDomain(dto)
		if err != nil {
			return nil, err
		}
		history = append(history, t)
	}
	return history, nil
}

func (r *GormOrderRepository) track(aggregate *order.Order) {
	if r.tracker != nil {
		r.tracker.TrackAggregate(aggregate)
	}
}
