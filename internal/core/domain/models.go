package domain

import (
	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a single balance movement.
type TransactionType string

const (
	Credit TransactionType = "credit"
	Debit  TransactionType = "debit"
)

// Valid reports whether t is one of the recognized transaction types.
func (t TransactionType) Valid() bool {
	return t == Credit || t == Debit
}

// Transaction is one credit or debit applied to a running balance.
// Amount is never negative once validated.
type Transaction struct {
	Type   TransactionType
	Amount decimal.Decimal
}

// BalanceRequest holds the starting balance and the transactions to apply, in order.
type BalanceRequest struct {
	InitialBalance decimal.Decimal
	Transactions   []Transaction
}

// BalanceResult is the outcome of applying every transaction of a request.
type BalanceResult struct {
	FinalBalance decimal.Decimal
	Status       Status
}
