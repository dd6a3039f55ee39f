// Package balance applies ordered credits and debits to a starting balance
// using exact base-10 arithmetic.
package balance

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ibrahimkeyboad/gobalance/internal/core/domain"
)

// ErrCalculation wraps every failure raised while computing a balance.
var ErrCalculation = errors.New("balance calculation failed")

// Calculate applies req.Transactions to req.InitialBalance in input order.
// Credits add, debits subtract; overdrawing is a valid outcome, not an error.
// The request must already be validated.
func Calculate(req domain.BalanceRequest) (result domain.BalanceResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = domain.BalanceResult{}
			err = fmt.Errorf("%w: %v", ErrCalculation, r)
		}
	}()

	running := req.InitialBalance
	for i, tx := range req.Transactions {
		running, err = apply(running, tx)
		if err != nil {
			return domain.BalanceResult{}, fmt.Errorf("%w: transaction %d: %w", ErrCalculation, i, err)
		}
	}

	return domain.BalanceResult{
		FinalBalance: running,
		Status:       domain.StatusOf(running),
	}, nil
}

func apply(running decimal.Decimal, tx domain.Transaction) (decimal.Decimal, error) {
	switch tx.Type {
	case domain.Credit:
		return running.Add(tx.Amount), nil
	case domain.Debit:
		return running.Sub(tx.Amount), nil
	default:
		return running, fmt.Errorf("unknown transaction type %q", tx.Type)
	}
}
