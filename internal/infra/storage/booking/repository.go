package booking

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

// Repository репозиторий бронирований
// Бронирование физически не удаляется, жизненный цикл ведется через статус
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет бронирование вместе с позициями и снапшотом тарифов
// политики отмены. Должен вызываться в той же транзакции, что и перевод
// холда в consumed, иначе возможен инвентарь без бронирования
func (r *Repository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	refundStatus, refundAmount, refundTxID, refundProcessedAt := refundColumns(b.Refund)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"code",
			"hotel_id",
			"hold_token",
			"guest_name",
			"guest_email",
			"guest_phone",
			"guest_address",
			"check_in",
			"check_out",
			"status",
			"payment_status",
			"amount",
			"payment_tx_id",
			"policy_id",
			"policy_refundable",
			"refund_status",
			"refund_amount",
			"refund_tx_id",
			"refund_processed_at",
		).
		Values(
			b.Code,
			b.HotelID,
			b.HoldToken,
			b.Guest.Name,
			b.Guest.Email,
			b.Guest.Phone,
			b.Guest.Address,
			b.CheckInDate,
			b.CheckOutDate,
			b.Status,
			b.PaymentStatus,
			b.Amount,
			b.PaymentTxID,
			b.PolicyID,
			b.PolicyRefundable,
			refundStatus,
			refundAmount,
			refundTxID,
			refundProcessedAt,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&b.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	for _, item := range b.Items {
		itemQuery, itemArgs, err := psqlbuilder.Insert("booking_items").
			Columns(
				"booking_id",
				"room_type_id",
				"room_type_name",
				"quantity",
				"unit_price",
				"subtotal",
				"adults",
				"children",
				"meal_plan",
			).
			Values(
				b.ID,
				item.RoomTypeID,
				item.RoomTypeName,
				item.Quantity,
				item.UnitPrice,
				item.Subtotal,
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

	// Замораживаем тарифы политики отмены: последующие правки политики
	// не должны менять условия возврата по этому бронированию
	for _, tier := range b.PolicyTiers {
		tierQuery, tierArgs, err := psqlbuilder.Insert("booking_policy_tiers").
			Columns("booking_id", "hours_before_check_in", "refund_percent").
			Values(b.ID, tier.HoursBeforeCheckIn, tier.RefundPercent).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("%w: Create - build tier insert: %v", ErrBuildQuery, err)
		}
		if _, err := executor.ExecContext(ctx, tierQuery, tierArgs...); err != nil {
			return nil, fmt.Errorf("%w: Create - execute tier insert: %v", ErrExecQuery, err)
		}
	}

	return b, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.get(ctx, squirrel.Eq{"id": id}, false)
}

// GetByIDForUpdate получает бронирование по ID с блокировкой строки
// Конкурентные переходы статуса (cancel против check-in) сериализуются
// на этом row lock; проигравший увидит уже измененный статус
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.get(ctx, squirrel.Eq{"id": id}, true)
}

// GetByCode получает бронирование по коду резервации
func (r *Repository) GetByCode(ctx context.Context, code string) (*domain.Booking, error) {
	return r.get(ctx, squirrel.Eq{"code": code}, false)
}

func (r *Repository) get(ctx context.Context, where squirrel.Eq, forUpdate bool) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := selectBookings().Where(where)
	if forUpdate && dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: get - build select query: %v", ErrBuildQuery, err)
	}

	b, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.Items = items

	tiers, err := r.loadPolicyTiers(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.PolicyTiers = tiers

	return b, nil
}

// UpdateStatus обновляет статус бронирования
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	return r.exec(ctx, "UpdateStatus", psqlbuilder.Update("bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// SetCheckedIn фиксирует фактическое время заезда
func (r *Repository) SetCheckedIn(ctx context.Context, id int64, at time.Time) error {
	return r.exec(ctx, "SetCheckedIn", psqlbuilder.Update("bookings").
		Set("status", domain.StatusCheckedIn).
		Set("checked_in_at", at).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// SetCheckedOut фиксирует фактическое время выезда
func (r *Repository) SetCheckedOut(ctx context.Context, id int64, at time.Time) error {
	return r.exec(ctx, "SetCheckedOut", psqlbuilder.Update("bookings").
		Set("status", domain.StatusCheckedOut).
		Set("checked_out_at", at).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// Cancel отменяет бронирование с указанием причины
func (r *Repository) Cancel(ctx context.Context, id int64, reason string, at time.Time) error {
	return r.exec(ctx, "Cancel", psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", at).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// SetRefund записывает состояние возвратного суб-рекорда
func (r *Repository) SetRefund(ctx context.Context, id int64, refund *domain.Refund) error {
	refundStatus, refundAmount, refundTxID, refundProcessedAt := refundColumns(refund)

	return r.exec(ctx, "SetRefund", psqlbuilder.Update("bookings").
		Set("refund_status", refundStatus).
		Set("refund_amount", refundAmount).
		Set("refund_tx_id", refundTxID).
		Set("refund_processed_at", refundProcessedAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

func (r *Repository) exec(ctx context.Context, op string, builder squirrel.UpdateBuilder) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
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
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

func (r *Repository) loadItems(ctx context.Context, bookingID int64) ([]domain.BookingItem, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"room_type_id",
		"room_type_name",
		"quantity",
		"unit_price",
		"subtotal",
		"adults",
		"children",
		"meal_plan",
	).
		From("booking_items").
		Where(squirrel.Eq{"booking_id": bookingID}).
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

	items := make([]domain.BookingItem, 0)
	for rows.Next() {
		var item domain.BookingItem
		if err := rows.Scan(
			&item.RoomTypeID,
			&item.RoomTypeName,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
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

func (r *Repository) loadPolicyTiers(ctx context.Context, bookingID int64) ([]domain.PolicyTier, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("hours_before_check_in", "refund_percent").
		From("booking_policy_tiers").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("hours_before_check_in DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: loadPolicyTiers - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: loadPolicyTiers - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	tiers := make([]domain.PolicyTier, 0)
	for rows.Next() {
		var tier domain.PolicyTier
		if err := rows.Scan(&tier.HoursBeforeCheckIn, &tier.RefundPercent); err != nil {
			return nil, fmt.Errorf("%w: loadPolicyTiers - scan tier: %v", ErrScanRow, err)
		}
		tiers = append(tiers, tier)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loadPolicyTiers - rows error: %v", ErrScanRow, err)
	}

	return tiers, nil
}

func selectBookings() squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"id",
		"code",
		"hotel_id",
		"hold_token",
		"guest_name",
		"guest_email",
		"guest_phone",
		"guest_address",
		"check_in",
		"check_out",
		"checked_in_at",
		"checked_out_at",
		"status",
		"payment_status",
		"amount",
		"payment_tx_id",
		"policy_id",
		"policy_refundable",
		"refund_status",
		"refund_amount",
		"refund_tx_id",
		"refund_processed_at",
		"cancellation_reason",
		"cancelled_at",
		"created_at",
		"updated_at",
	).From("bookings")
}

func scanBooking(row *sql.Row) (*domain.Booking, error) {
	var b domain.Booking
	var createdAt, updatedAt sql.NullTime
	var refundStatus sql.NullString
	var refundAmount sql.NullFloat64
	var refundTxID *string
	var refundProcessedAt *time.Time

	err := row.Scan(
		&b.ID,
		&b.Code,
		&b.HotelID,
		&b.HoldToken,
		&b.Guest.Name,
		&b.Guest.Email,
		&b.Guest.Phone,
		&b.Guest.Address,
		&b.CheckInDate,
		&b.CheckOutDate,
		&b.CheckedInAt,
		&b.CheckedOutAt,
		&b.Status,
		&b.PaymentStatus,
		&b.Amount,
		&b.PaymentTxID,
		&b.PolicyID,
		&b.PolicyRefundable,
		&refundStatus,
		&refundAmount,
		&refundTxID,
		&refundProcessedAt,
		&b.CancellationReason,
		&b.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scanBooking - scan booking: %v", ErrScanRow, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	if refundStatus.Valid {
		b.Refund = &domain.Refund{
			Status:      domain.RefundStatus(refundStatus.String),
			Amount:      refundAmount.Float64,
			TxID:        refundTxID,
			ProcessedAt: refundProcessedAt,
		}
	}

	return &b, nil
}

func refundColumns(refund *domain.Refund) (interface{}, interface{}, *string, *time.Time) {
	if refund == nil {
		return nil, nil, nil, nil
	}
	return string(refund.Status), refund.Amount, refund.TxID, refund.ProcessedAt
}
