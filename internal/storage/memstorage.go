package storage

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/azaliaz/bookstore/internal/domain/models"
	"github.com/azaliaz/bookstore/internal/logger"
	storerrors "github.com/azaliaz/bookstore/internal/storage/errors"
)

type cartKey struct {
	userID int64
	bookID int64
}

type memOrder struct {
	order models.Order
	lines []orderLine
}

// MemStorage keeps everything in process memory. It mirrors the schema rules
// of the database: unique emails, cart rows cascading with their book, order
// lines surviving a book delete.
type MemStorage struct {
	mu sync.RWMutex

	usersStor map[int64]models.User
	bookStor  map[int64]models.Book
	cartStor  map[cartKey]int
	orderStor []memOrder

	nextUserID  int64
	nextBookID  int64
	nextOrderID int64

	now              func() time.Time
	afterOrderInsert func(ctx context.Context, orderID int64) error
}

func New() *MemStorage {
	return &MemStorage{
		usersStor: make(map[int64]models.User),
		bookStor:  make(map[int64]models.Book),
		cartStor:  make(map[cartKey]int),
		now:       time.Now,
	}
}

func (ms *MemStorage) SaveUser(_ context.Context, user models.User) (int64, error) {
	log := logger.Get()
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, err := ms.findUser(user.Email); err == nil {
		return 0, storerrors.ErrUserExists
	}
	ms.nextUserID++
	user.ID = ms.nextUserID
	ms.usersStor[user.ID] = user
	log.Debug().Int64("id", user.ID).Msg("user saved")
	return user.ID, nil
}

func (ms *MemStorage) UserByEmail(_ context.Context, email string) (models.User, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.findUser(email)
}

func (ms *MemStorage) findUser(email string) (models.User, error) {
	for _, user := range ms.usersStor {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, storerrors.ErrUserNoExist
}

func (ms *MemStorage) SaveBook(_ context.Context, book models.Book) (int64, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.nextBookID++
	book.ID = ms.nextBookID
	ms.bookStor[book.ID] = book
	return book.ID, nil
}

func (ms *MemStorage) GetBooks(_ context.Context) ([]models.Book, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	books := make([]models.Book, 0, len(ms.bookStor))
	for _, book := range ms.bookStor {
		books = append(books, book)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books, nil
}

func (ms *MemStorage) GetBook(_ context.Context, id int64) (models.Book, error) {
	log := logger.Get()
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	book, ok := ms.bookStor[id]
	if !ok {
		log.Debug().Int64("id", id).Msg("book not found")
		return models.Book{}, storerrors.ErrBookNoExist
	}
	return book, nil
}

func (ms *MemStorage) UpdateBook(_ context.Context, book models.Book) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.bookStor[book.ID]; !ok {
		return storerrors.ErrBookNoExist
	}
	ms.bookStor[book.ID] = book
	return nil
}

func (ms *MemStorage) DeleteBook(_ context.Context, id int64) error {
	log := logger.Get()
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.bookStor[id]; !ok {
		return nil
	}
	delete(ms.bookStor, id)
	for key := range ms.cartStor {
		if key.bookID == id {
			delete(ms.cartStor, key)
		}
	}
	log.Info().Int64("id", id).Msg("book deleted successfully")
	return nil
}

func (ms *MemStorage) AddToCart(_ context.Context, userID, bookID int64, quantity int) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	_, userOK := ms.usersStor[userID]
	_, bookOK := ms.bookStor[bookID]
	if !userOK || !bookOK {
		return storerrors.ErrReferenceNoExist
	}
	key := cartKey{userID: userID, bookID: bookID}
	if int64(ms.cartStor[key])+int64(quantity) > math.MaxInt32 {
		return storerrors.ErrQuantityOverflow
	}
	ms.cartStor[key] += quantity
	return nil
}

func (ms *MemStorage) GetCart(_ context.Context, userID int64) ([]models.CartLine, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	lines := make([]models.CartLine, 0)
	for key, qty := range ms.cartStor {
		if key.userID != userID {
			continue
		}
		lines = append(lines, models.CartLine{Quantity: qty, Book: ms.bookStor[key.bookID]})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines, nil
}

func (ms *MemStorage) RemoveFromCart(_ context.Context, userID, bookID int64) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.cartStor, cartKey{userID: userID, bookID: bookID})
	return nil
}

func (ms *MemStorage) ClearCart(_ context.Context, userID int64) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for key := range ms.cartStor {
		if key.userID == userID {
			delete(ms.cartStor, key)
		}
	}
	return nil
}

// PlaceOrder builds the order aside and publishes it together with the cart
// clearing only when every step succeeded.
func (ms *MemStorage) PlaceOrder(ctx context.Context, userID int64) (int64, error) {
	log := logger.Get()
	ms.mu.Lock()
	defer ms.mu.Unlock()

	var lines []orderLine
	for key, qty := range ms.cartStor {
		if key.userID != userID {
			continue
		}
		lines = append(lines, orderLine{bookID: key.bookID, quantity: qty, price: ms.bookStor[key.bookID].Price})
	}
	if len(lines) == 0 {
		return 0, storerrors.ErrEmptyCart
	}
	slices.SortFunc(lines, func(a, b orderLine) int { return cmp.Compare(a.bookID, b.bookID) })

	orderID := ms.nextOrderID + 1
	pending := memOrder{
		order: models.Order{
			ID:        orderID,
			UserID:    userID,
			Total:     orderTotal(lines),
			CreatedAt: ms.now().UTC(),
		},
		lines: lines,
	}
	if ms.afterOrderInsert != nil {
		if err := ms.afterOrderInsert(ctx, orderID); err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("order rolled back")
			return 0, fmt.Errorf("%w: %w", storerrors.ErrOrderFailed, err)
		}
	}

	ms.nextOrderID = orderID
	ms.orderStor = append(ms.orderStor, pending)
	for _, l := range lines {
		delete(ms.cartStor, cartKey{userID: userID, bookID: l.bookID})
	}
	log.Info().Int64("order_id", orderID).Int64("user_id", userID).Msg("order placed")
	return orderID, nil
}

func (ms *MemStorage) GetOrders(_ context.Context, userID int64) ([]models.Order, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	orders := make([]models.Order, 0)
	for i := len(ms.orderStor) - 1; i >= 0; i-- {
		stored := ms.orderStor[i]
		if stored.order.UserID != userID {
			continue
		}
		o := stored.order
		o.Items = make([]models.OrderItem, 0, len(stored.lines))
		for _, l := range stored.lines {
			item := models.OrderItem{Price: l.price, Quantity: l.quantity}
			if book, ok := ms.bookStor[l.bookID]; ok {
				item.BookID = book.ID
				item.Title = book.Title
				item.Author = book.Author
				item.PhotoBase64 = book.PhotoBase64
			}
			o.Items = append(o.Items, item)
		}
		orders = append(orders, o)
	}
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}
