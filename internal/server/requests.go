package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/azaliaz/bookstore/internal/domain/consts"
	"github.com/azaliaz/bookstore/internal/domain/models"
)

// number is an integer body field that also accepts its decimal string
// form, so "7" and 7 decode the same.
type number int64

func (n *number) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %s", data)
	}
	*n = number(v)
	return nil
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type bookRequest struct {
	Title       string          `json:"title" validate:"required"`
	Author      string          `json:"author" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Stock       number          `json:"stock" validate:"gte=0,lte=2147483647"`
	PhotoBase64 *string         `json:"photo_base64"`
}

func (r bookRequest) book(id int64) models.Book {
	return models.Book{
		ID:          id,
		Title:       r.Title,
		Author:      r.Author,
		Description: r.Description,
		Price:       r.Price,
		Stock:       int(r.Stock),
		PhotoBase64: r.PhotoBase64,
	}
}

type cartRequest struct {
	UserID   number  `json:"userId" validate:"required,gt=0"`
	BookID   number  `json:"bookId" validate:"required,gt=0"`
	Quantity *number `json:"quantity" validate:"omitempty,gt=0,lte=2147483647"`
}

func (r cartRequest) quantity() int {
	if r.Quantity == nil {
		return consts.DefaultCartQuantity
	}
	return int(*r.Quantity)
}

type cartLineRequest struct {
	UserID number `json:"userId" validate:"required,gt=0"`
	BookID number `json:"bookId" validate:"required,gt=0"`
}

type orderRequest struct {
	UserID number `json:"userId" validate:"required,gt=0"`
}

// bind decodes the JSON body into req and runs its validate tags.
func (s *Server) bind(ctx *gin.Context, req any) error {
	if err := ctx.ShouldBindJSON(req); err != nil {
		return err
	}
	return s.valid.Struct(req)
}

// idParam parses a positive numeric path parameter, answering 400 itself
// when it is malformed.
func idParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
