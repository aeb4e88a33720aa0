package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/azaliaz/bookstore/internal/domain/consts"
	"github.com/azaliaz/bookstore/internal/domain/models"
	"github.com/azaliaz/bookstore/internal/logger"
	storerrors "github.com/azaliaz/bookstore/internal/storage/errors"
)

// PlaceOrder turns the user's cart into an order. Reading the cart, writing
// the order with its items and clearing the ordered lines happen in one
// transaction; on any failure nothing is written.
func (dbs *DBStorage) PlaceOrder(ctx context.Context, userID int64) (int64, error) {
	log := logger.Get()
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	tx, err := dbs.pool.Begin(ctx)
	if err != nil {
		log.Error().Err(err).Msg("begin order transaction failed")
		return 0, fmt.Errorf("%w: begin: %w", storerrors.ErrOrderFailed, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lines, err := lockCartLines(ctx, tx, userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("read cart failed")
		return 0, fmt.Errorf("%w: read cart: %w", storerrors.ErrOrderFailed, err)
	}
	if len(lines) == 0 {
		return 0, storerrors.ErrEmptyCart
	}
	total := orderTotal(lines)

	var orderID int64
	if err := tx.QueryRow(ctx,
		`INSERT INTO orders (user_id, total) VALUES ($1, $2) RETURNING id`, userID, total).Scan(&orderID); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("insert order failed")
		return 0, fmt.Errorf("%w: insert order: %w", storerrors.ErrOrderFailed, err)
	}
	if dbs.afterOrderInsert != nil {
		if err := dbs.afterOrderInsert(ctx, orderID); err != nil {
			return 0, fmt.Errorf("%w: %w", storerrors.ErrOrderFailed, err)
		}
	}

	batch := &pgx.Batch{}
	bookIDs := make([]int64, 0, len(lines))
	for _, l := range lines {
		batch.Queue(`INSERT INTO order_items (order_id, book_id, quantity, price) VALUES ($1, $2, $3, $4)`,
			orderID, l.bookID, l.quantity, l.price)
		bookIDs = append(bookIDs, l.bookID)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		log.Error().Err(err).Int64("order_id", orderID).Msg("insert order items failed")
		return 0, fmt.Errorf("%w: insert items: %w", storerrors.ErrOrderFailed, err)
	}

	// Only the lines that went into the order are removed; a line added
	// concurrently after the read survives for the next order.
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND book_id = ANY($2)`, userID, bookIDs); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("clear cart failed")
		return 0, fmt.Errorf("%w: clear cart: %w", storerrors.ErrOrderFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error().Err(err).Int64("order_id", orderID).Msg("commit order failed")
		return 0, fmt.Errorf("%w: commit: %w", storerrors.ErrOrderFailed, err)
	}
	log.Info().Int64("order_id", orderID).Int64("user_id", userID).Str("total", total.String()).Msg("order placed")
	return orderID, nil
}

func lockCartLines(ctx context.Context, tx pgx.Tx, userID int64) ([]orderLine, error) {
	rows, err := tx.Query(ctx,
		`SELECT ci.book_id, ci.quantity, b.price
		FROM cart_items ci
		JOIN books b ON b.id = ci.book_id
		WHERE ci.user_id = $1
		ORDER BY ci.book_id
		FOR UPDATE OF ci`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []orderLine
	for rows.Next() {
		var l orderLine
		if err := rows.Scan(&l.bookID, &l.quantity, &l.price); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (dbs *DBStorage) GetOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	log := logger.Get()
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	rows, err := dbs.pool.Query(ctx,
		`SELECT id, user_id, total, created_at FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get orders")
		return nil, fmt.Errorf("select orders: %w", err)
	}
	orders := make([]models.Order, 0)
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Total, &o.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}

	for i := range orders {
		items, err := dbs.orderItems(ctx, orders[i].ID)
		if err != nil {
			log.Error().Err(err).Int64("order_id", orders[i].ID).Msg("failed to get order items")
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (dbs *DBStorage) orderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	rows, err := dbs.pool.Query(ctx,
		`SELECT COALESCE(oi.book_id, 0), COALESCE(b.title, ''), COALESCE(b.author, ''), oi.price, b.photo_base64, oi.quantity
		FROM order_items oi
		LEFT JOIN books b ON b.id = oi.book_id
		WHERE oi.order_id = $1
		ORDER BY oi.id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	items := make([]models.OrderItem, 0)
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.BookID, &it.Title, &it.Author, &it.Price, &it.PhotoBase64, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	return items, nil
}
