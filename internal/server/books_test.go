package server_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/azaliaz/bookstore/internal/domain/models"
	storerrors "github.com/azaliaz/bookstore/internal/storage/errors"
)

const bookBody = `{"title":"Dune","author":"Herbert","description":"sand","price":12.5,"stock":3,"photo_base64":"aGk="}`

func TestAddBook(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		_, mockStorage, router := newMockServer(t)
		mockStorage.EXPECT().SaveBook(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, b models.Book) (int64, error) {
				assert.Zero(t, b.ID)
				assert.Equal(t, "Dune", b.Title)
				assert.Equal(t, "Herbert", b.Author)
				assert.Equal(t, "sand", b.Description)
				assert.True(t, b.Price.Equal(decimal.RequireFromString("12.5")))
				assert.Equal(t, 3, b.Stock)
				if assert.NotNil(t, b.PhotoBase64) {
					assert.Equal(t, "aGk=", *b.PhotoBase64)
				}
				return 11, nil
			})

		w := doJSON(router, http.MethodPost, "/api/books", bookBody)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"message":"Book added","id":11}`, w.Body.String())
	})

	t.Run("price as string is accepted", func(t *testing.T) {
		_, mockStorage, router := newMockServer(t)
		mockStorage.EXPECT().SaveBook(gomock.Any(), gomock.Any()).Return(int64(1), nil)

		w := doJSON(router, http.MethodPost, "/api/books", `{"title":"T","author":"A","price":"9.99"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("stock as string is accepted", func(t *testing.T) {
		_, mockStorage, router := newMockServer(t)
		mockStorage.EXPECT().SaveBook(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, b models.Book) (int64, error) {
				assert.Equal(t, 3, b.Stock)
				return 1, nil
			})

		w := doJSON(router, http.MethodPost, "/api/books", `{"title":"T","author":"A","price":"1","stock":"3"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("negative stock", func(t *testing.T) {
		_, _, router := newMockServer(t)

		w := doJSON(router, http.MethodPost, "/api/books", `{"title":"T","author":"A","price":1,"stock":"-2"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("negative price", func(t *testing.T) {
		_, _, router := newMockServer(t)

		w := doJSON(router, http.MethodPost, "/api/books", `{"title":"T","author":"A","price":-1}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing title", func(t *testing.T) {
		_, _, router := newMockServer(t)

		w := doJSON(router, http.MethodPost, "/api/books", `{"author":"A","price":1}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("save fails", func(t *testing.T) {
		_, mockStorage, router := newMockServer(t)
		mockStorage.EXPECT().SaveBook(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("save failed"))

		w := doJSON(router, http.MethodPost, "/api/books", bookBody)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Error adding book"}`, w.Body.String())
	})
}

func TestAllBooks(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		_, mockStorage, router := newMockServer(t)
		books := []models.Book{{ID: 1, Title: "Book1"}, {ID: 2, Title: "Book2"}}
		mockStorage.EXPECT().GetBooks(gomock.Any()).Return(books, nil)

		w := doJSON(router, http.MethodGet, "/api/books", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Book1")
		assert.Contains(t, w.Body.String(), "Book2")
	})

	t.Run("empty catalog is an empty list", func(t *testing.T) {
		_, mockStorage, router := newMockServer(t)
		mockStorage.EXPECT().GetBooks(gomock.Any()).Return([]models.Book{}, nil)

		w := doJSON(router, http.MethodGet, "/api/books", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("internal error", func(t *testing.T) {
		_, mockStorage, router := newMockServer(t)
		mockStorage.EXPECT().GetBooks(gomock.Any()).Return(nil, errors.New("db error"))

		w := doJSON(router, http.MethodGet, "/api/books", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "db error")
	})
}

func TestBookInfo(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		_, mockStorage, router := newMockServer(t)
		mockStorage.EXPECT().GetBook(gomock.Any(), int64(123)).
			Return(models.Book{ID: 123, Title: "Book1", Price: decimal.RequireFromString("10.00")}, nil)

		w := doJSON(router, http.MethodGet, "/api/books/123", "")

		assert.Equal(t, http.StatusOK, w.Code)
		book := decode[map[string]any](t, w)
		assert.Equal(t, "Book1", book["title"])
		assert.Equal(t, "10", book["price"])
		assert.Nil(t, book["photo_base64"])
	})

	t.Run("not found", func(t *testing.T) {
		_, mockStorage, router := newMockServer(t)
		mockStorage.EXPECT().GetBook(gomock.Any(), int64(123)).Return(models.Book{}, storerrors.ErrBookNoExist)

		w := doJSON(router, http.MethodGet, "/api/books/123", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Book not found"}`, w.Body.String())
	})

	t.Run("bad id", func(t *testing.T) {
		_, _, router := newMockServer(t)

		w := doJSON(router, http.MethodGet, "/api/books/abc", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateBook(t *testing.T) {
	t.Run("success replaces all fields", func(t *testing.T) {
		_, mockStorage, router := newMockServer(t)
		mockStorage.EXPECT().UpdateBook(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, b models.Book) error {
				assert.Equal(t, int64(5), b.ID)
				assert.Equal(t, "Dune", b.Title)
				assert.Equal(t, 3, b.Stock)
				return nil
			})

		w := doJSON(router, http.MethodPut, "/api/books/5", bookBody)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Book updated"}`, w.Body.String())
	})

	t.Run("missing book", func(t *testing.T) {
		_, mockStorage, router := newMockServer(t)
		mockStorage.EXPECT().UpdateBook(gomock.Any(), gomock.Any()).Return(storerrors.ErrBookNoExist)

		w := doJSON(router, http.MethodPut, "/api/books/5", bookBody)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		_, mockStorage, router := newMockServer(t)
		mockStorage.EXPECT().UpdateBook(gomock.Any(), gomock.Any()).Return(errors.New("boom"))

		w := doJSON(router, http.MethodPut, "/api/books/5", bookBody)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRemoveBook(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		_, mockStorage, router := newMockServer(t)
		mockStorage.EXPECT().DeleteBook(gomock.Any(), int64(9)).Return(nil).Times(1)

		w := doJSON(router, http.MethodDelete, "/api/books/9", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Book deleted"}`, w.Body.String())
	})

	t.Run("internal error", func(t *testing.T) {
		_, mockStorage, router := newMockServer(t)
		mockStorage.EXPECT().DeleteBook(gomock.Any(), int64(9)).Return(errors.New("some error"))

		w := doJSON(router, http.MethodDelete, "/api/books/9", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Error deleting book"}`, w.Body.String())
	})
}
