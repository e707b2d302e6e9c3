package services

import "errors"

// Validation errors.
var (
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrLinePriceTooLarge  = errors.New("line price must not exceed 9999.99")
	ErrOrderTotalTooLarge = errors.New("order total must not exceed 999999.99")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrStatusRegression   = errors.New("order status cannot move backwards")
	ErrNotDeliveryCrew    = errors.New("assigned user is not in the delivery crew")
	ErrEmptyUpdate        = errors.New("no update fields provided")
)

// Lookup errors.
var (
	ErrMenuItemNotFound = errors.New("menu item not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrGroupNotFound    = errors.New("group not found")
)

// Checkout outcomes that do not create an order.
var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrCartChanged   = errors.New("cart changed during checkout")
	ErrStaffCheckout = errors.New("restaurant staff cannot place orders")
)

var ErrCrewAssignmentForbidden = errors.New("only managers can assign the delivery crew")
