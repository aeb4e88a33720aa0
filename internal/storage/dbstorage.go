package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/azaliaz/bookstore/internal/domain/consts"
	"github.com/azaliaz/bookstore/internal/domain/models"
	"github.com/azaliaz/bookstore/internal/logger"
	storerrors "github.com/azaliaz/bookstore/internal/storage/errors"
)

const bookColumns = `id, title, author, description, price, stock, photo_base64`

type DBStorage struct {
	pool *pgxpool.Pool

	// afterOrderInsert runs inside the order transaction right after the
	// order row is written. Nil outside tests.
	afterOrderInsert func(ctx context.Context, orderID int64) error
}

func NewDB(ctx context.Context, addr string, maxConns int32) (*DBStorage, error) {
	config, err := pgxpool.ParseConfig(addr)
	if err != nil {
		return nil, err
	}
	if maxConns > 0 {
		config.MaxConns = maxConns
	}
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &DBStorage{pool: pool}, nil
}

func (dbs *DBStorage) Close() {
	dbs.pool.Close()
}

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func (dbs *DBStorage) SaveUser(ctx context.Context, user models.User) (int64, error) {
	log := logger.Get()
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	var id int64
	err := dbs.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password) VALUES ($1, $2, $3) RETURNING id`,
		user.Name, user.Email, user.Pass).Scan(&id)
	if err != nil {
		if pgErrCode(err) == pgerrcode.UniqueViolation {
			return 0, storerrors.ErrUserExists
		}
		log.Error().Err(err).Msg("failed to insert user")
		return 0, fmt.Errorf("insert user: %w", err)
	}
	log.Debug().Int64("id", id).Msg("user saved")
	return id, nil
}

func (dbs *DBStorage) UserByEmail(ctx context.Context, email string) (models.User, error) {
	log := logger.Get()
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	var usr models.User
	row := dbs.pool.QueryRow(ctx, `SELECT id, name, email, password FROM users WHERE email = $1`, email)
	if err := row.Scan(&usr.ID, &usr.Name, &usr.Email, &usr.Pass); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storerrors.ErrUserNoExist
		}
		log.Error().Err(err).Msg("failed scan db data")
		return models.User{}, fmt.Errorf("select user: %w", err)
	}
	return usr, nil
}

func scanBook(row pgx.Row) (models.Book, error) {
	var book models.Book
	err := row.Scan(&book.ID, &book.Title, &book.Author, &book.Description, &book.Price, &book.Stock, &book.PhotoBase64)
	return book, err
}

func (dbs *DBStorage) SaveBook(ctx context.Context, book models.Book) (int64, error) {
	log := logger.Get()
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	var id int64
	err := dbs.pool.QueryRow(ctx,
		`INSERT INTO books (title, author, description, price, stock, photo_base64)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		book.Title, book.Author, book.Description, book.Price, book.Stock, book.PhotoBase64).Scan(&id)
	if err != nil {
		log.Error().Err(err).Msg("save book failed")
		return 0, fmt.Errorf("insert book: %w", err)
	}
	return id, nil
}

func (dbs *DBStorage) GetBooks(ctx context.Context) ([]models.Book, error) {
	log := logger.Get()
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	rows, err := dbs.pool.Query(ctx, `SELECT `+bookColumns+` FROM books ORDER BY id`)
	if err != nil {
		log.Error().Err(err).Msg("failed get all books from db")
		return nil, fmt.Errorf("select books: %w", err)
	}
	defer rows.Close()

	books := make([]models.Book, 0)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			log.Error().Err(err).Msg("failed to scan data from db")
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select books: %w", err)
	}
	return books, nil
}

func (dbs *DBStorage) GetBook(ctx context.Context, id int64) (models.Book, error) {
	log := logger.Get()
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	book, err := scanBook(dbs.pool.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Book{}, storerrors.ErrBookNoExist
		}
		log.Error().Err(err).Msg("failed to scan data from db")
		return models.Book{}, fmt.Errorf("select book: %w", err)
	}
	return book, nil
}

func (dbs *DBStorage) UpdateBook(ctx context.Context, book models.Book) error {
	log := logger.Get()
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	res, err := dbs.pool.Exec(ctx,
		`UPDATE books SET title = $1, author = $2, description = $3, price = $4, stock = $5, photo_base64 = $6
		WHERE id = $7`,
		book.Title, book.Author, book.Description, book.Price, book.Stock, book.PhotoBase64, book.ID)
	if err != nil {
		log.Error().Err(err).Int64("id", book.ID).Msg("failed to update book")
		return fmt.Errorf("update book: %w", err)
	}
	if res.RowsAffected() == 0 {
		return storerrors.ErrBookNoExist
	}
	return nil
}

func (dbs *DBStorage) DeleteBook(ctx context.Context, id int64) error {
	log := logger.Get()
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	res, err := dbs.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to delete book")
		return fmt.Errorf("delete book: %w", err)
	}
	if res.RowsAffected() == 0 {
		log.Debug().Int64("id", id).Msg("book already absent")
		return nil
	}
	log.Info().Int64("id", id).Msg("book deleted successfully")
	return nil
}

func (dbs *DBStorage) AddToCart(ctx context.Context, userID, bookID int64, quantity int) error {
	log := logger.Get()
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	_, err := dbs.pool.Exec(ctx,
		`INSERT INTO cart_items (user_id, book_id, quantity) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, book_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		userID, bookID, quantity)
	if err != nil {
		switch pgErrCode(err) {
		case pgerrcode.ForeignKeyViolation:
			return storerrors.ErrReferenceNoExist
		case pgerrcode.NumericValueOutOfRange:
			return storerrors.ErrQuantityOverflow
		}
		log.Error().Err(err).Msg("failed to add book to cart")
		return fmt.Errorf("upsert cart item: %w", err)
	}
	return nil
}

func (dbs *DBStorage) GetCart(ctx context.Context, userID int64) ([]models.CartLine, error) {
	log := logger.Get()
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	rows, err := dbs.pool.Query(ctx,
		`SELECT ci.quantity, b.id, b.title, b.author, b.description, b.price, b.stock, b.photo_base64
		FROM cart_items ci
		JOIN books b ON b.id = ci.book_id
		WHERE ci.user_id = $1
		ORDER BY b.id`, userID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get cart items")
		return nil, fmt.Errorf("select cart: %w", err)
	}
	defer rows.Close()

	lines := make([]models.CartLine, 0)
	for rows.Next() {
		var l models.CartLine
		if err := rows.Scan(&l.Quantity, &l.ID, &l.Title, &l.Author, &l.Description, &l.Price, &l.Stock, &l.PhotoBase64); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select cart: %w", err)
	}
	return lines, nil
}

func (dbs *DBStorage) RemoveFromCart(ctx context.Context, userID, bookID int64) error {
	log := logger.Get()
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	if _, err := dbs.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND book_id = $2`, userID, bookID); err != nil {
		log.Error().Err(err).Msg("failed to remove book from cart")
		return fmt.Errorf("delete cart item: %w", err)
	}
	return nil
}

func (dbs *DBStorage) ClearCart(ctx context.Context, userID int64) error {
	log := logger.Get()
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	if _, err := dbs.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("failed to clear cart")
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func Migrations(dbDsn string, migrationsPath string) error {
	log := logger.Get()
	migratePath := fmt.Sprintf("file://%s", migrationsPath)
	m, err := migrate.New(migratePath, dbDsn)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("no migrations apply")
			return nil
		}
		return err
	}
	log.Info().Msg("all migrations apply")
	return nil
}
