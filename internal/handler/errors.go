package handler

import "fmt"

// Kind classifies a PaymentError the way the platform reacts to it.
type Kind string

const (
	// KindAsyncProcessInterrupted aborts the pay step; the transaction is failed.
	KindAsyncProcessInterrupted Kind = "ASYNC_PROCESS_INTERRUPTED"
	// KindAsyncFinalizeInterrupted aborts finalization; the transaction is failed.
	KindAsyncFinalizeInterrupted Kind = "ASYNC_FINALIZE_INTERRUPTED"
	// KindCustomerCanceled means the shopper cancelled on the payment page.
	KindCustomerCanceled Kind = "CUSTOMER_CANCELED"
)

// Messages of errors raised by the handler itself.
const (
	MessageGatewayNotDetermined = "Payment gateway could not be determined."
	MessageOrderMismatch        = "Transaction ID does not match the order number."
	MessageCanceled             = "Canceled at payment page"
)

// PaymentError is returned by Pay and Finalize. Message is the message of the
// underlying error when there is one.
type PaymentError struct {
	Kind          Kind
	TransactionID string
	Message       string
	Err           error
}

func (e *PaymentError) Error() string {
	return e.Message
}

func (e *PaymentError) Unwrap() error { return e.Err }

// String includes the kind and transaction, for logs.
func (e *PaymentError) String() string {
	return fmt.Sprintf("%s: transaction %s: %s", e.Kind, e.TransactionID, e.Message)
}
