package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azaliaz/bookstore/internal/logger"
	storerrors "github.com/azaliaz/bookstore/internal/storage/errors"
)

func (s *Server) PlaceOrder(ctx *gin.Context) {
	log := logger.Get()
	var req orderRequest
	if err := s.bind(ctx, &req); err != nil {
		log.Error().Err(err).Msg("invalid input data")
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing userId"})
		return
	}

	orderID, err := s.Storage.PlaceOrder(ctx.Request.Context(), int64(req.UserID))
	if err != nil {
		if errors.Is(err, storerrors.ErrEmptyCart) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			return
		}
		log.Error().Err(err).Int64("user_id", int64(req.UserID)).Msg("place order failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error placing order"})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"message": "Order placed", "orderId": orderID})
}

func (s *Server) Orders(ctx *gin.Context) {
	log := logger.Get()
	userID, ok := idParam(ctx, "userId")
	if !ok {
		return
	}
	orders, err := s.Storage.GetOrders(ctx.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("get orders failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching orders"})
		return
	}
	ctx.JSON(http.StatusOK, orders)
}
