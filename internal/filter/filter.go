// Package filter provides pure predicates over individual ledger
// transactions. Filters carry no state and must be side-effect free: the
// stream applies them once per transaction per fetch and assumes applying a
// filter twice yields the same result.
package filter

import (
	transactionv1 "github.com/aptos-labs/aptos-protos/go/aptos/transaction/v1"
)

// Filter decides whether a transaction is delivered downstream.
type Filter interface {
	Include(txn *transactionv1.Transaction) bool
}

// Func adapts a plain function to a Filter.
type Func func(txn *transactionv1.Transaction) bool

func (f Func) Include(txn *transactionv1.Transaction) bool { return f(txn) }

// AllowAll keeps every transaction. The zero value is ready to use.
type AllowAll struct{}

func (AllowAll) Include(*transactionv1.Transaction) bool { return true }

// SuccessOnly keeps transactions whose execution succeeded.
func SuccessOnly() Filter {
	return Func(func(txn *transactionv1.Transaction) bool {
		info := txn.GetInfo()
		return info != nil && info.GetSuccess()
	})
}

// TxnTypes keeps transactions whose type is in the given set.
func TxnTypes(types ...transactionv1.Transaction_TransactionType) Filter {
	set := make(map[transactionv1.Transaction_TransactionType]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return Func(func(txn *transactionv1.Transaction) bool {
		_, ok := set[txn.GetType()]
		return ok
	})
}

// All combines filters conjunctively; a transaction is kept only when every
// filter keeps it. With no filters it behaves like AllowAll.
func All(filters ...Filter) Filter {
	return Func(func(txn *transactionv1.Transaction) bool {
		for _, f := range filters {
			if !f.Include(txn) {
				return false
			}
		}
		return true
	})
}
