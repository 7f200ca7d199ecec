package domain

import "errors"

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInternalServer = errors.New("internal server error")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Lookup errors
var (
	ErrBookNotFound   = errors.New("book not found")
	ErrMemberNotFound = errors.New("member not found")
	ErrAuthorNotFound = errors.New("author not found")
	ErrLoanNotFound   = errors.New("loan not found")
)

// Eligibility errors - borrowing rejections, checked in order.
// The first failed check is the reported reason.
var (
	ErrMemberNotActive     = errors.New("member does not have an active membership")
	ErrNoCopiesAvailable   = errors.New("no copies available for borrowing")
	ErrDuplicateLoan       = errors.New("member already has an active loan for this book")
	ErrBorrowLimitReached  = errors.New("member has reached the maximum number of borrowed books")
	ErrFineCeilingExceeded = errors.New("member has outstanding fines above the allowed ceiling")
)

// Lifecycle errors
var (
	ErrLoanNotActive    = errors.New("loan is not currently active")
	ErrAlreadyReturned  = errors.New("loan has already been returned")
	ErrInvalidExtension = errors.New("extension days outside the allowed range")
)

// Inventory errors. These should be unreachable given the upstream
// eligibility checks; observing one means a race or a bug.
var (
	ErrInsufficientCopies = errors.New("available copies cannot go below zero")
	ErrOverCapacity       = errors.New("available copies cannot exceed total copies")
)
