package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azaliaz/bookstore/internal/logger"
	storerrors "github.com/azaliaz/bookstore/internal/storage/errors"
)

func (s *Server) AddToCart(ctx *gin.Context) {
	log := logger.Get()
	var req cartRequest
	if err := s.bind(ctx, &req); err != nil {
		log.Error().Err(err).Msg("invalid input data")
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing userId or bookId"})
		return
	}

	err := s.Storage.AddToCart(ctx.Request.Context(), int64(req.UserID), int64(req.BookID), req.quantity())
	if err != nil {
		if errors.Is(err, storerrors.ErrReferenceNoExist) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User or book not found"})
			return
		}
		if errors.Is(err, storerrors.ErrQuantityOverflow) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Quantity too large"})
			return
		}
		log.Error().Err(err).Msg("failed to add book to cart")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding book to cart"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Book added to cart"})
}

func (s *Server) CartItems(ctx *gin.Context) {
	log := logger.Get()
	userID, ok := idParam(ctx, "userId")
	if !ok {
		return
	}
	lines, err := s.Storage.GetCart(ctx.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get cart items")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching cart"})
		return
	}
	ctx.JSON(http.StatusOK, lines)
}

func (s *Server) RemoveFromCart(ctx *gin.Context) {
	log := logger.Get()
	var req cartLineRequest
	if err := s.bind(ctx, &req); err != nil {
		log.Error().Err(err).Msg("invalid input data")
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing userId or bookId"})
		return
	}
	if err := s.Storage.RemoveFromCart(ctx.Request.Context(), int64(req.UserID), int64(req.BookID)); err != nil {
		log.Error().Err(err).Msg("failed to remove book from cart")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error removing book from cart"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Book removed from cart"})
}

func (s *Server) ClearCart(ctx *gin.Context) {
	log := logger.Get()
	userID, ok := idParam(ctx, "userId")
	if !ok {
		return
	}
	if err := s.Storage.ClearCart(ctx.Request.Context(), userID); err != nil {
		log.Error().Err(err).Msg("failed to clear cart")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error clearing cart"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
