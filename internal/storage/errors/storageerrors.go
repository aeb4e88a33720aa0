package storerrors

import "errors"

var (
	ErrUserExists  = errors.New("user already exists")
	ErrUserNoExist = errors.New("user does not exists")

	ErrBookNoExist      = errors.New("book does not exists")
	ErrReferenceNoExist = errors.New("user or book does not exists")
	ErrQuantityOverflow = errors.New("cart quantity out of range")

	ErrEmptyCart   = errors.New("cart is empty")
	ErrOrderFailed = errors.New("order placement failed")
)
