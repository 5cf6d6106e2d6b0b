package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-HotelService/internal/domain"
	"github.com/m04kA/SMC-HotelService/pkg/dbmetrics"
	"github.com/m04kA/SMC-HotelService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-HotelService/pkg/types"
)

// Repository репозиторий леджера инвентаря
// Все изменения счетчиков выполняются условными UPDATE, так что инвариант
// available + held + booked <= total проверяется на стороне БД; две
// конкурентные резервации последнего юнита не могут пройти обе
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория инвентаря
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get получает запись инвентаря по ключу (room_type_id, date)
func (r *Repository) Get(ctx context.Context, roomTypeID int64, date types.DateString) (*domain.InventoryRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectRecords().
		Where(squirrel.Eq{"room_type_id": roomTypeID, "date": date}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanRecord(executor.QueryRowContext(ctx, query, args...))
}

// GetRange получает записи инвентаря за диапазон дат [from, to)
// Используется калькулятором цен для rate override и операторскими выборками
func (r *Repository) GetRange(ctx context.Context, roomTypeID int64, from, to types.DateString) ([]*domain.InventoryRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectRecords().
		Where(squirrel.Eq{"room_type_id": roomTypeID}).
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.Lt{"date": to}).
		OrderBy("date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetRange - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	records := make([]*domain.InventoryRecord, 0)
	for rows.Next() {
		rec, err := scanRecordFromRows(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetRange - rows error: %v", ErrScanRow, err)
	}

	return records, nil
}

// ReserveNight атомарно переводит qty юнитов из available в held на одну дату
// Проверка и декремент выполняются одним условным UPDATE: при конкуренции
// за последний юнит пройдет только один вызов
func (r *Repository) ReserveNight(ctx context.Context, roomTypeID int64, date types.DateString, qty int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("room_inventory").
		Set("available_units", squirrel.Expr("available_units - ?", qty)).
		Set("held_units", squirrel.Expr("held_units + ?", qty)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"room_type_id": roomTypeID, "date": date, "active": true}).
		Where(squirrel.GtOrEq{"available_units": qty}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReserveNight - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: ReserveNight - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: ReserveNight - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		// Различаем отсутствие записи и нехватку юнитов, чтобы отдать
		// пользователю конкретное сообщение
		rec, getErr := r.Get(ctx, roomTypeID, date)
		if getErr != nil {
			if errors.Is(getErr, ErrRecordNotFound) {
				return fmt.Errorf("%w: no inventory for room_type=%d on %s", ErrRecordNotFound, roomTypeID, date)
			}
			return getErr
		}
		return &CapacityError{
			RoomTypeID: roomTypeID,
			Date:       date,
			Requested:  qty,
			Available:  rec.AvailableUnits,
		}
	}

	return nil
}

// ReleaseHeld переводит qty юнитов из held обратно в available
// При рассогласовании счетчиков возврат ограничивается сверху (clamp),
// запись чинится и возвращается ErrReleaseClamped для warning-лога
func (r *Repository) ReleaseHeld(ctx context.Context, roomTypeID int64, date types.DateString, qty int) error {
	return r.releaseUnits(ctx, roomTypeID, date, qty, "held_units", "ReleaseHeld")
}

// ReleaseBooked переводит qty юнитов из booked обратно в available
// Используется при отмене бронирования
func (r *Repository) ReleaseBooked(ctx context.Context, roomTypeID int64, date types.DateString, qty int) error {
	return r.releaseUnits(ctx, roomTypeID, date, qty, "booked_units", "ReleaseBooked")
}

func (r *Repository) releaseUnits(ctx context.Context, roomTypeID int64, date types.DateString, qty int, column, op string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("room_inventory").
		Set("available_units", squirrel.Expr("available_units + ?", qty)).
		Set(column, squirrel.Expr(column+" - ?", qty)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"room_type_id": roomTypeID, "date": date}).
		Where(squirrel.GtOrEq{column: qty}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected > 0 {
		return nil
	}

	// Счетчик меньше qty, чинимся: обнуляем столбец и поднимаем available
	// до total за вычетом остальных занятых юнитов
	clampQuery, clampArgs, err := psqlbuilder.Update("room_inventory").
		Set("available_units", squirrel.Expr("LEAST(available_units + "+column+", total_units)")).
		Set(column, 0).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"room_type_id": roomTypeID, "date": date}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build clamp query: %v", ErrBuildQuery, op, err)
	}

	clampResult, err := executor.ExecContext(ctx, clampQuery, clampArgs...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute clamp: %v", ErrExecQuery, op, err)
	}

	clampRows, err := clampResult.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get clamp rows affected: %v", ErrExecQuery, op, err)
	}
	if clampRows == 0 {
		return fmt.Errorf("%w: %s - room_type=%d date=%s", ErrRecordNotFound, op, roomTypeID, date)
	}

	return fmt.Errorf("%w: %s - room_type=%d date=%s qty=%d", ErrReleaseClamped, op, roomTypeID, date, qty)
}

// ConsumeHeld переводит qty юнитов из held в booked при конвертации холда
// в бронирование
func (r *Repository) ConsumeHeld(ctx context.Context, roomTypeID int64, date types.DateString, qty int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("room_inventory").
		Set("held_units", squirrel.Expr("held_units - ?", qty)).
		Set("booked_units", squirrel.Expr("booked_units + ?", qty)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"room_type_id": roomTypeID, "date": date}).
		Where(squirrel.GtOrEq{"held_units": qty}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ConsumeHeld - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: ConsumeHeld - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: ConsumeHeld - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: room_type=%d date=%s qty=%d", ErrInsufficientHeld, roomTypeID, date, qty)
	}

	return nil
}

// SyncTotal задает новый total_units на дату, пересчитывая available
// Отклоняет уменьшение ниже уже занятых (held + booked) юнитов с
// ErrCapacityConflict вместо тихого овербукинга. Создает запись, если
// инвентарь на дату еще не инициализирован
func (r *Repository) SyncTotal(ctx context.Context, roomTypeID int64, date types.DateString, newTotal int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("room_inventory").
		Set("total_units", newTotal).
		Set("available_units", squirrel.Expr("? - held_units - booked_units", newTotal)).
		Set("active", newTotal > 0).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"room_type_id": roomTypeID, "date": date}).
		Where(squirrel.LtOrEq{"held_units + booked_units": newTotal}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SyncTotal - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SyncTotal - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SyncTotal - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected > 0 {
		return nil
	}

	rec, err := r.Get(ctx, roomTypeID, date)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return r.insertRecord(ctx, roomTypeID, date, newTotal)
		}
		return err
	}

	return &ConflictError{
		RoomTypeID: roomTypeID,
		Date:       date,
		NewTotal:   newTotal,
		Committed:  rec.CommittedUnits(),
	}
}

// SetRateOverride задает (или снимает, при nil) ценовой override на дату
func (r *Repository) SetRateOverride(ctx context.Context, roomTypeID int64, date types.DateString, rate *float64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("room_inventory").
		Set("rate_override", rate).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"room_type_id": roomTypeID, "date": date}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetRateOverride - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetRateOverride - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetRateOverride - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: room_type=%d date=%s", ErrRecordNotFound, roomTypeID, date)
	}

	return nil
}

func (r *Repository) insertRecord(ctx context.Context, roomTypeID int64, date types.DateString, total int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("room_inventory").
		Columns(
			"room_type_id",
			"date",
			"total_units",
			"available_units",
			"held_units",
			"booked_units",
			"active",
		).
		Values(roomTypeID, date, total, total, 0, 0, total > 0).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertRecord - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: insertRecord - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

func selectRecords() squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"room_type_id",
		"date",
		"total_units",
		"available_units",
		"held_units",
		"booked_units",
		"rate_override",
		"active",
		"created_at",
		"updated_at",
	).From("room_inventory")
}

func (r *Repository) scanRecord(row *sql.Row) (*domain.InventoryRecord, error) {
	var rec domain.InventoryRecord
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&rec.RoomTypeID,
		&rec.Date,
		&rec.TotalUnits,
		&rec.AvailableUnits,
		&rec.HeldUnits,
		&rec.BookedUnits,
		&rec.RateOverride,
		&rec.Active,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scanRecord - scan record: %v", ErrScanRow, err)
	}

	rec.CreatedAt = createdAt.Time
	rec.UpdatedAt = updatedAt.Time

	return &rec, nil
}

func scanRecordFromRows(rows *sql.Rows) (*domain.InventoryRecord, error) {
	var rec domain.InventoryRecord
	var createdAt, updatedAt sql.NullTime

	err := rows.Scan(
		&rec.RoomTypeID,
		&rec.Date,
		&rec.TotalUnits,
		&rec.AvailableUnits,
		&rec.HeldUnits,
		&rec.BookedUnits,
		&rec.RateOverride,
		&rec.Active,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: scanRecordFromRows - scan record: %v", ErrScanRow, err)
	}

	rec.CreatedAt = createdAt.Time
	rec.UpdatedAt = updatedAt.Time

	return &rec, nil
}
