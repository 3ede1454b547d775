package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/storefront-api/internal/repository"
	"github.com/iliyamo/storefront-api/internal/service"
)

func newCartService(t *testing.T) (*service.CartService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := service.NewCartService(repository.NewCartRepo(db), repository.NewProductRepo(db))
	return svc, mock
}

var cartItemCols = []string{"id", "cart_id", "product_id", "variant_id", "quantity", "created_at", "updated_at"}

func TestAddItemAdditiveUpsert(t *testing.T) {
	svc, mock := newCartService(t)

	mock.ExpectQuery("SELECT stock_qty, name FROM products WHERE id=").
		WithArgs(uint64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"stock_qty", "name"}).AddRow(10, "Widget"))
	mock.ExpectQuery("SELECT quantity FROM cart_items").
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(2))
	mock.ExpectExec("INSERT INTO cart_items").
		WithArgs(uint64(1), uint64(10), uint64(0), uint32(3)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, svc.AddItem(context.Background(), 1, 10, 0, 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddItemStockBoundCountsExisting(t *testing.T) {
	svc, mock := newCartService(t)

	mock.ExpectQuery("SELECT stock_qty, name FROM products WHERE id=").
		WillReturnRows(sqlmock.NewRows([]string{"stock_qty", "name"}).AddRow(5, "Widget"))
	mock.ExpectQuery("SELECT quantity FROM cart_items").
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(3))

	err := svc.AddItem(context.Background(), 1, 10, 0, 3)
	var svcErr *service.Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, service.KindBadRequest, svcErr.Kind)
	assert.Contains(t, svcErr.Message, "available 5, requested 6")
	// No insert expectation: a rejected add must write nothing.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddItemZeroQuantity(t *testing.T) {
	svc, mock := newCartService(t)

	err := svc.AddItem(context.Background(), 1, 10, 0, 0)
	assertKind(t, err, service.KindValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, mock := newCartService(t)

	mock.ExpectQuery("SELECT stock_qty, name FROM products WHERE id=").
		WillReturnRows(sqlmock.NewRows([]string{"stock_qty", "name"}))

	err := svc.AddItem(context.Background(), 1, 99, 0, 1)
	assertKind(t, err, service.KindNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddItemVariantStockWins(t *testing.T) {
	svc, mock := newCartService(t)

	mock.ExpectQuery("FROM product_variants pv").
		WithArgs(uint64(4), uint64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"stock_qty", "name"}).AddRow(2, "Widget"))
	mock.ExpectQuery("SELECT quantity FROM cart_items").
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}))

	err := svc.AddItem(context.Background(), 1, 10, 4, 3)
	assertKind(t, err, service.KindBadRequest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateItemQuantityAbsoluteCheck(t *testing.T) {
	svc, mock := newCartService(t)
	now := time.Now()

	mock.ExpectQuery("FROM cart_items WHERE id=").
		WillReturnRows(sqlmock.NewRows(cartItemCols).AddRow(7, 1, 10, 0, 2, now, now))
	mock.ExpectQuery("SELECT stock_qty, name FROM products WHERE id=").
		WillReturnRows(sqlmock.NewRows([]string{"stock_qty", "name"}).AddRow(5, "Widget"))
	mock.ExpectExec("UPDATE cart_items SET quantity=").
		WithArgs(uint32(4), uint64(7), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.UpdateItemQuantity(context.Background(), 7, 1, 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateItemQuantityOverStock(t *testing.T) {
	svc, mock := newCartService(t)
	now := time.Now()

	mock.ExpectQuery("FROM cart_items WHERE id=").
		WillReturnRows(sqlmock.NewRows(cartItemCols).AddRow(7, 1, 10, 0, 2, now, now))
	mock.ExpectQuery("SELECT stock_qty, name FROM products WHERE id=").
		WillReturnRows(sqlmock.NewRows([]string{"stock_qty", "name"}).AddRow(5, "Widget"))

	err := svc.UpdateItemQuantity(context.Background(), 7, 1, 6)
	assertKind(t, err, service.KindBadRequest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveItemMissing(t *testing.T) {
	svc, mock := newCartService(t)

	mock.ExpectExec("DELETE FROM cart_items WHERE id=").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.RemoveItem(context.Background(), 99, 1)
	assertKind(t, err, service.KindNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMergeMovesItemsAndDeletesGuestCart(t *testing.T) {
	svc, mock := newCartService(t)
	now := time.Now()

	mock.ExpectQuery("FROM cart_items WHERE cart_id=").
		WillReturnRows(sqlmock.NewRows(cartItemCols).
			AddRow(1, 5, 10, 0, 2, now, now).
			AddRow(2, 5, 11, 3, 1, now, now))
	mock.ExpectExec("INSERT INTO cart_items").
		WithArgs(uint64(9), uint64(10), uint64(0), uint32(2)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO cart_items").
		WithArgs(uint64(9), uint64(11), uint64(3), uint32(1)).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM cart_items WHERE cart_id=").
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM carts WHERE id=").
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	moved, err := svc.Merge(context.Background(), 5, 9)
	require.NoError(t, err)
	assert.Equal(t, 2, moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMergeEmptyGuestCart(t *testing.T) {
	svc, mock := newCartService(t)

	mock.ExpectQuery("FROM cart_items WHERE cart_id=").
		WillReturnRows(sqlmock.NewRows(cartItemCols))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM cart_items WHERE cart_id=").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM carts WHERE id=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	moved, err := svc.Merge(context.Background(), 5, 9)
	require.NoError(t, err)
	assert.Equal(t, 0, moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestViewDerivesTotals(t *testing.T) {
	svc, mock := newCartService(t)
	now := time.Now()

	mock.ExpectQuery("FROM carts WHERE id=").
		WillReturnRows(sqlmock.NewRows([]string{"id", "store_id", "user_id", "session_token", "created_at", "updated_at"}).
			AddRow(3, 1, nil, "guest-token", now, now))
	mock.ExpectQuery("FROM cart_items ci").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "product_id", "variant_id", "name", "slug", "url", "variant_name", "price", "quantity",
		}).
			AddRow(1, 10, 0, "Widget", "widget", "https://img.example/w.png", nil, 500, 2).
			AddRow(2, 11, 4, "Gadget", "gadget", nil, "Large", 750, 1))

	view, err := svc.View(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, uint64(1000), view.Items[0].Subtotal)
	assert.Nil(t, view.Items[0].VariantID)
	require.NotNil(t, view.Items[1].VariantID)
	assert.Equal(t, uint64(4), *view.Items[1].VariantID)
	assert.Equal(t, uint64(1750), view.Total)
	assert.Equal(t, uint32(3), view.ItemCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
