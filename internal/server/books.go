package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azaliaz/bookstore/internal/logger"
	storerrors "github.com/azaliaz/bookstore/internal/storage/errors"
)

func (s *Server) AddBook(ctx *gin.Context) {
	log := logger.Get()
	var req bookRequest
	if err := s.bind(ctx, &req); err != nil {
		log.Error().Err(err).Msg("unmarshal body failed")
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "incorrectly entered data"})
		return
	}

	id, err := s.Storage.SaveBook(ctx.Request.Context(), req.book(0))
	if err != nil {
		log.Error().Err(err).Msg("save book failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding book"})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"message": "Book added", "id": id})
}

func (s *Server) AllBooks(ctx *gin.Context) {
	log := logger.Get()
	books, err := s.Storage.GetBooks(ctx.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("get books failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching books"})
		return
	}
	ctx.JSON(http.StatusOK, books)
}

func (s *Server) BookInfo(ctx *gin.Context) {
	log := logger.Get()
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	book, err := s.Storage.GetBook(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storerrors.ErrBookNoExist) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		log.Error().Err(err).Int64("id", id).Msg("get book failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching book"})
		return
	}
	ctx.JSON(http.StatusOK, book)
}

// UpdateBook replaces every field of the book.
func (s *Server) UpdateBook(ctx *gin.Context) {
	log := logger.Get()
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req bookRequest
	if err := s.bind(ctx, &req); err != nil {
		log.Error().Err(err).Msg("unmarshal body failed")
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "incorrectly entered data"})
		return
	}

	if err := s.Storage.UpdateBook(ctx.Request.Context(), req.book(id)); err != nil {
		if errors.Is(err, storerrors.ErrBookNoExist) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		log.Error().Err(err).Int64("id", id).Msg("update book failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating book"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Book updated"})
}

func (s *Server) RemoveBook(ctx *gin.Context) {
	log := logger.Get()
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	if err := s.Storage.DeleteBook(ctx.Request.Context(), id); err != nil {
		log.Error().Err(err).Int64("id", id).Msg("failed to delete book")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting book"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Book deleted"})
}
