package handler

const (
	errInternalServer     = "Internal server error"
	errInvalidCredentials = "Invalid email or password"
	errEmailTaken         = "Email is already registered"
	errUserNotFound       = "User not found"
	errSelfDeactivation   = "You cannot deactivate your own account"
	errAccessDenied       = "Access denied"
	errAlreadyInCart      = "Course is already in the cart"
	errAlreadyPurchased   = "Course has already been purchased"
	errCartItemNotFound   = "Cart item not found"
	errPaymentUpstream    = "Payment provider unavailable"
	errPaymentNotFound    = "Payment intent not found"
)
