package policy

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-HotelService/internal/domain"
	"github.com/m04kA/SMC-HotelService/pkg/dbmetrics"
	"github.com/m04kA/SMC-HotelService/pkg/psqlbuilder"
)

// Repository репозиторий политик отмены
// Поиск применимой политики идет по иерархии: тип номера → отель →
// платформенный дефолт; сама иерархия реализована в сервисе возвратов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория политик
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByRoomType получает активную политику конкретного типа номера
func (r *Repository) GetByRoomType(ctx context.Context, roomTypeID int64) (*domain.CancellationPolicy, error) {
	return r.getOne(ctx, squirrel.Eq{"room_type_id": roomTypeID, "active": true})
}

// GetByHotel получает активную политику уровня отеля (room_type_id IS NULL)
func (r *Repository) GetByHotel(ctx context.Context, hotelID int64) (*domain.CancellationPolicy, error) {
	return r.getOne(ctx, squirrel.Eq{"hotel_id": hotelID, "room_type_id": nil, "active": true})
}

// GetDefault получает платформенную политику по умолчанию
// (hotel_id IS NULL, is_default = true); не больше одной на платформу
func (r *Repository) GetDefault(ctx context.Context) (*domain.CancellationPolicy, error) {
	return r.getOne(ctx, squirrel.Eq{"hotel_id": nil, "is_default": true, "active": true})
}

func (r *Repository) getOne(ctx context.Context, where squirrel.Eq) (*domain.CancellationPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"hotel_id",
		"room_type_id",
		"is_default",
		"is_refundable",
		"active",
		"created_at",
		"updated_at",
	).
		From("cancellation_policies").
		Where(where).
		OrderBy("id ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getOne - build select query: %v", ErrBuildQuery, err)
	}

	var p domain.CancellationPolicy
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&p.ID,
		&p.HotelID,
		&p.RoomTypeID,
		&p.IsDefault,
		&p.IsRefundable,
		&p.Active,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getOne - scan policy: %v", ErrScanRow, err)
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	tiers, err := r.loadTiers(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Tiers = tiers

	return &p, nil
}

func (r *Repository) loadTiers(ctx context.Context, policyID int64) ([]domain.PolicyTier, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("hours_before_check_in", "refund_percent").
		From("cancellation_policy_tiers").
		Where(squirrel.Eq{"policy_id": policyID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: loadTiers - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: loadTiers - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	// Тарифы в хранилище не упорядочены; сортировка по убыванию порога
	// выполняется в domain.SelectTier при вычислении возврата
	tiers := make([]domain.PolicyTier, 0)
	for rows.Next() {
		var tier domain.PolicyTier
		if err := rows.Scan(&tier.HoursBeforeCheckIn, &tier.RefundPercent); err != nil {
			return nil, fmt.Errorf("%w: loadTiers - scan tier: %v", ErrScanRow, err)
		}
		tiers = append(tiers, tier)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loadTiers - rows error: %v", ErrScanRow, err)
	}

	return tiers, nil
}
