// Package errors defines the business error taxonomy surfaced by the
// money-movement services. Every orchestrator operation returns either a
// success payload or one of these values; callers can rely on errors.Is.
package errors

// DomainError is a recoverable business failure with a stable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string { return e.Message }

var (
	ErrWalletNotFound = &DomainError{
		Code:    "WALLET_NOT_FOUND",
		Message: "wallet not found",
	}
	ErrUserNotFound = &DomainError{
		Code:    "USER_NOT_FOUND",
		Message: "user not found",
	}
	ErrInsufficientBalance = &DomainError{
		Code:    "INSUFFICIENT_BALANCE",
		Message: "insufficient balance",
	}
	ErrInvalidAmount = &DomainError{
		Code:    "INVALID_AMOUNT",
		Message: "invalid amount",
	}
	// ErrInvalidOtp covers every OTP rejection: wrong code, wrong purpose,
	// expired, or already used. The reasons are deliberately not
	// distinguishable to avoid enabling enumeration.
	ErrInvalidOtp = &DomainError{
		Code:    "INVALID_OTP",
		Message: "invalid or expired OTP",
	}
	ErrInvalidCurrency = &DomainError{
		Code:    "INVALID_CURRENCY",
		Message: "invalid currency code",
	}
	ErrInvalidIdentifier = &DomainError{
		Code:    "INVALID_IDENTIFIER",
		Message: "invalid phone or email identifier",
	}
	ErrDuplicateCurrency = &DomainError{
		Code:    "DUPLICATE_CURRENCY",
		Message: "wallet for this currency already exists",
	}
	ErrReceiverWalletMissing = &DomainError{
		Code:    "RECEIVER_WALLET_MISSING",
		Message: "receiver has no wallet in this currency",
	}
	ErrSameCurrencyExchange = &DomainError{
		Code:    "SAME_CURRENCY_EXCHANGE",
		Message: "cannot exchange between the same currency",
	}
	ErrCrossUserExchange = &DomainError{
		Code:    "CROSS_USER_EXCHANGE",
		Message: "wallets must belong to the same user",
	}
	ErrRateUnavailable = &DomainError{
		Code:    "RATE_UNAVAILABLE",
		Message: "exchange rate unavailable",
	}
	ErrBillerUnavailable = &DomainError{
		Code:    "BILLER_UNAVAILABLE",
		Message: "biller is not available",
	}
	ErrAlreadyProcessed = &DomainError{
		Code:    "ALREADY_PROCESSED",
		Message: "request has already been processed",
	}
	ErrRequestNotFound = &DomainError{
		Code:    "REQUEST_NOT_FOUND",
		Message: "money request not found",
	}
	ErrBankAccountNotFound = &DomainError{
		Code:    "BANK_ACCOUNT_NOT_FOUND",
		Message: "bank account not found",
	}
	ErrSelfOperation = &DomainError{
		Code:    "SELF_OPERATION",
		Message: "operation cannot target the initiating user",
	}
	ErrUnauthorized = &DomainError{
		Code:    "UNAUTHORIZED",
		Message: "operation not permitted for this user",
	}
	ErrUserSuspended = &DomainError{
		Code:    "USER_SUSPENDED",
		Message: "user account is suspended",
	}
)

// ErrConflict reports that an operation repeatedly lost a concurrency
// conflict (serialization failure or deadlock) and may succeed if retried.
// It is distinct from the business failures above.
var ErrConflict = &DomainError{
	Code:    "CONFLICT",
	Message: "operation conflicted with concurrent activity, retry",
}
