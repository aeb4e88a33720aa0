package consts

import "time"

const (
	DBCtxTimeout = 5 * time.Second

	// DefaultCartQuantity is used when an add-to-cart request omits quantity.
	DefaultCartQuantity = 1
)
