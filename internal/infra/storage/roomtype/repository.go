package roomtype

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-HotelService/internal/domain"
	"github.com/m04kA/SMC-HotelService/pkg/dbmetrics"
	"github.com/m04kA/SMC-HotelService/pkg/psqlbuilder"
)

// Repository репозиторий типов номеров
// Связи отель ↔ тип номера выражены внешними ключами и явными lookup
// методами, никаких обратных указателей в структурах
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория типов номеров
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает тип номера по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.RoomType, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectRoomTypes().
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var rt domain.RoomType
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&rt.ID,
		&rt.HotelID,
		&rt.Name,
		&rt.BaseRate,
		&rt.MaxGuests,
		&rt.Active,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrRoomTypeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan room type: %v", ErrScanRow, err)
	}

	rt.CreatedAt = createdAt.Time
	rt.UpdatedAt = updatedAt.Time

	return &rt, nil
}

// GetByHotelID получает все активные типы номеров отеля
func (r *Repository) GetByHotelID(ctx context.Context, hotelID int64) ([]*domain.RoomType, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectRoomTypes().
		Where(squirrel.Eq{"hotel_id": hotelID, "active": true}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByHotelID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByHotelID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	roomTypes := make([]*domain.RoomType, 0)
	for rows.Next() {
		var rt domain.RoomType
		var createdAt, updatedAt sql.NullTime

		if err := rows.Scan(
			&rt.ID,
			&rt.HotelID,
			&rt.Name,
			&rt.BaseRate,
			&rt.MaxGuests,
			&rt.Active,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: GetByHotelID - scan room type: %v", ErrScanRow, err)
		}

		rt.CreatedAt = createdAt.Time
		rt.UpdatedAt = updatedAt.Time
		roomTypes = append(roomTypes, &rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByHotelID - rows error: %v", ErrScanRow, err)
	}

	return roomTypes, nil
}

func selectRoomTypes() squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"id",
		"hotel_id",
		"name",
		"base_rate",
		"max_guests",
		"active",
		"created_at",
		"updated_at",
	).From("room_types")
}
