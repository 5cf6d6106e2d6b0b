package hold

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-HotelService/internal/domain"
	"github.com/m04kA/SMC-HotelService/pkg/dbmetrics"
	"github.com/m04kA/SMC-HotelService/pkg/psqlbuilder"
)

// Repository репозиторий холдов (временных резерваций инвентаря)
// Ключом служит непрозрачный токен, выданный клиенту
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория холдов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новый холд вместе с его позициями
func (r *Repository) Create(ctx context.Context, h *domain.Hold) (*domain.Hold, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("holds").
		Columns(
			"token",
			"hotel_id",
			"check_in",
			"check_out",
			"extension_count",
			"status",
			"expires_at",
		).
		Values(
			h.Token,
			h.HotelID,
			h.CheckInDate,
			h.CheckOutDate,
			h.ExtensionCount,
			h.Status,
			h.ExpiresAt,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	h.CreatedAt = createdAt.Time
	h.UpdatedAt = updatedAt.Time

	for _, item := range h.Items {
		itemQuery, itemArgs, err := psqlbuilder.Insert("hold_items").
			Columns(
				"hold_token",
				"room_type_id",
				"quantity",
				"adults",
				"children",
				"meal_plan",
			).
			Values(
				h.Token,
				item.RoomTypeID,
				item.Quantity,
				item.Adults,
				item.Children,
				item.MealPlan,
			).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("%w: Create - build item insert: %v", ErrBuildQuery, err)
		}

		if _, err := executor.ExecContext(ctx, itemQuery, itemArgs...); err != nil {
			return nil, fmt.Errorf("%w: Create - execute item insert: %v", ErrExecQuery, err)
		}
	}

	return h, nil
}

// GetByToken получает холд по токену
func (r *Repository) GetByToken(ctx context.Context, token string) (*domain.Hold, error) {
	return r.getByToken(ctx, token, false)
}

// GetByTokenForUpdate получает холд по токену с блокировкой строки
// Должен вызываться внутри транзакции; переходы статуса холда
// сериализуются на этом row lock
func (r *Repository) GetByTokenForUpdate(ctx context.Context, token string) (*domain.Hold, error) {
	return r.getByToken(ctx, token, true)
}

func (r *Repository) getByToken(ctx context.Context, token string, forUpdate bool) (*domain.Hold, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := selectHolds().Where(squirrel.Eq{"token": token})
	if forUpdate && dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getByToken - build select query: %v", ErrBuildQuery, err)
	}

	h, err := scanHold(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, h.Token)
	if err != nil {
		return nil, err
	}
	h.Items = items

	return h, nil
}

// UpdateStatus обновляет статус холда
func (r *Repository) UpdateStatus(ctx context.Context, token string, status domain.HoldStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("holds").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"token": token}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrHoldNotFound
	}

	return nil
}

// Extend сдвигает expires_at и инкрементирует счетчик продлений
// Инвентарь не трогается, юниты уже удерживаются
func (r *Repository) Extend(ctx context.Context, token string, expiresAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("holds").
		Set("expires_at", expiresAt).
		Set("extension_count", squirrel.Expr("extension_count + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"token": token, "status": domain.HoldStatusActive}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Extend - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Extend - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Extend - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrHoldNotFound
	}

	return nil
}

// ListExpired получает пачку просроченных активных холдов для sweep'а
// Внутри транзакции блокирует строки с SKIP LOCKED, чтобы параллельные
// sweep'ы не мешали друг другу и ленивым проверкам
func (r *Repository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*domain.Hold, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := selectHolds().
		Where(squirrel.Eq{"status": domain.HoldStatusActive}).
		Where(squirrel.Lt{"expires_at": now}).
		OrderBy("expires_at ASC").
		Limit(uint64(limit))

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE SKIP LOCKED")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListExpired - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListExpired - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	holds := make([]*domain.Hold, 0)
	for rows.Next() {
		h, err := scanHoldFromRows(rows)
		if err != nil {
			return nil, err
		}
		holds = append(holds, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListExpired - rows error: %v", ErrScanRow, err)
	}

	for _, h := range holds {
		items, err := r.loadItems(ctx, h.Token)
		if err != nil {
			return nil, err
		}
		h.Items = items
	}

	return holds, nil
}

func (r *Repository) loadItems(ctx context.Context, token string) ([]domain.HoldItem, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"room_type_id",
		"quantity",
		"adults",
		"children",
		"meal_plan",
	).
		From("hold_items").
		Where(squirrel.Eq{"hold_token": token}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: loadItems - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: loadItems - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	items := make([]domain.HoldItem, 0)
	for rows.Next() {
		var item domain.HoldItem
		if err := rows.Scan(
			&item.RoomTypeID,
			&item.Quantity,
			&item.Adults,
			&item.Children,
			&item.MealPlan,
		); err != nil {
			return nil, fmt.Errorf("%w: loadItems - scan item: %v", ErrScanRow, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loadItems - rows error: %v", ErrScanRow, err)
	}

	return items, nil
}

func selectHolds() squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"token",
		"hotel_id",
		"check_in",
		"check_out",
		"extension_count",
		"status",
		"expires_at",
		"created_at",
		"updated_at",
	).From("holds")
}

func scanHold(row *sql.Row) (*domain.Hold, error) {
	var h domain.Hold
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&h.Token,
		&h.HotelID,
		&h.CheckInDate,
		&h.CheckOutDate,
		&h.ExtensionCount,
		&h.Status,
		&h.ExpiresAt,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrHoldNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scanHold - scan hold: %v", ErrScanRow, err)
	}

	h.CreatedAt = createdAt.Time
	h.UpdatedAt = updatedAt.Time

	return &h, nil
}

func scanHoldFromRows(rows *sql.Rows) (*domain.Hold, error) {
	var h domain.Hold
	var createdAt, updatedAt sql.NullTime

	err := rows.Scan(
		&h.Token,
		&h.HotelID,
		&h.CheckInDate,
		&h.CheckOutDate,
		&h.ExtensionCount,
		&h.Status,
		&h.ExpiresAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: scanHoldFromRows - scan hold: %v", ErrScanRow, err)
	}

	h.CreatedAt = createdAt.Time
	h.UpdatedAt = updatedAt.Time

	return &h, nil
}
