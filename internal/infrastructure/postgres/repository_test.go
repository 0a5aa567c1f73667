package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/agrimarket-api/internal/domain"
	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepo_DecrementStock(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	q := regexp.QuoteMeta("WHERE id = $1 AND quantity >= $2")

	mock.ExpectExec(q).WithArgs(int64(1), 2).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.DecrementStock(context.Background(), 1, 2))

	mock.ExpectExec(q).WithArgs(int64(1), 9).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.DecrementStock(context.Background(), 1, 9), domain.ErrInsufficientStock)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepo_DeleteReferencedByOrders(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = $1")).
		WithArgs(int64(4)).
		WillReturnError(&pgconn.PgError{Code: "23503"})
	assert.ErrorIs(t, repo.Delete(context.Background(), 4), domain.ErrConflict)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), 5), domain.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepo_GetManyForUpdateLocksInIDOrder(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	now := time.Now()
	cols := []string{"id", "seller_id", "name", "description", "price", "quantity", "image_url", "created_at", "updated_at"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE")).
		WithArgs([]int64{2, 5, 9}).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(2), int64(1), "Café", "", decimal.RequireFromString("10.00"), 4, "", now, now).
			AddRow(int64(5), int64(1), "Miel", "", decimal.RequireFromString("8.50"), 0, "", now, now))

	got, err := repo.GetManyForUpdate(context.Background(), []int64{2, 5, 9})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Café", got[2].Name)
	assert.Equal(t, 4, got[2].Quantity)
	assert.Equal(t, "8.50", got[5].Price.StringFixed(2))
	assert.NotContains(t, got, int64(9), "los ids inexistentes no aparecen")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepo_ListByUserForUpdate(t *testing.T) {
	mock := newMock(t)
	repo := NewCartRepository(mock)
	now := time.Now()

	mock.ExpectQuery(`FROM cart_items WHERE user_id = \$1\s+ORDER BY product_id\s+FOR UPDATE`).
		WithArgs(int64(10)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "product_id", "quantity", "added_at", "updated_at"}).
			AddRow(int64(7), int64(10), int64(2), 3, now, now).
			AddRow(int64(6), int64(10), int64(5), 1, now, now))

	items, err := repo.ListByUserForUpdate(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].ProductID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, int64(5), items[1].ProductID)
	assert.Nil(t, items[0].Product)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepo_AddOrIncrement(t *testing.T) {
	mock := newMock(t)
	repo := NewCartRepository(mock)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (user_id, product_id)")).
		WithArgs(int64(10), int64(3), 2).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "product_id", "quantity", "added_at", "updated_at"}).
			AddRow(int64(1), int64(10), int64(3), 5, now, now))

	item, err := repo.AddOrIncrement(context.Background(), 10, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), item.ID)
	assert.Equal(t, 5, item.Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepo_QuantityOutOfRange(t *testing.T) {
	mock := newMock(t)
	repo := NewCartRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (user_id, product_id)")).
		WithArgs(int64(10), int64(3), 2147483647).
		WillReturnError(&pgconn.PgError{Code: "22003"})
	_, err := repo.AddOrIncrement(context.Background(), 10, 3, 2147483647)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	mock.ExpectQuery(regexp.QuoteMeta("SET quantity = GREATEST(quantity + $2, 1)")).
		WithArgs(int64(1), 1).
		WillReturnError(&pgconn.PgError{Code: "23514"})
	_, err = repo.AdjustQuantity(context.Background(), 1, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepo_DeleteMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewCartRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cart_items WHERE id = $1")).
		WithArgs(int64(99)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), 99), domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_UpdateStatusIsOptimistic(t *testing.T) {
	mock := newMock(t)
	repo := NewOrderRepository(mock)
	q := regexp.QuoteMeta("UPDATE orders SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2")

	mock.ExpectExec(q).WithArgs(int64(8), "Pending", "Approved", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.UpdateStatus(context.Background(), 8, entity.OrderStatusPending, entity.OrderStatusApproved, time.Now()))

	mock.ExpectExec(q).WithArgs(int64(8), "Pending", "Approved", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.UpdateStatus(context.Background(), 8, entity.OrderStatusPending, entity.OrderStatusApproved, time.Now()), domain.ErrConflict)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByLogin(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()
	cols := []string{"id", "username", "email", "password_hash", "role", "name", "delivery_address", "location",
		"background", "profile_image_url", "background_image_url", "created_at", "updated_at"}

	mock.ExpectQuery(regexp.QuoteMeta("WHERE username = $1 OR lower(email) = lower($1)")).
		WithArgs("ana").
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(2), "ana", "ana@example.com", "hash", "buyer", "Ana", "Calle 1", "", "", "", "", now, now))

	u, err := repo.GetByLogin(context.Background(), "ana")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, entity.RoleBuyer, u.Role)
	assert.True(t, u.HasDeliveryAddress())

	mock.ExpectQuery(regexp.QuoteMeta("WHERE username = $1 OR lower(email) = lower($1)")).
		WithArgs("nadie").
		WillReturnRows(pgxmock.NewRows(cols))
	u, err = repo.GetByLogin(context.Background(), "nadie")
	require.NoError(t, err)
	assert.Nil(t, u)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_CreateDuplicate(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	err := repo.Create(context.Background(), &entity.User{Username: "ana", Email: "ana@example.com", Role: entity.RoleBuyer})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}
