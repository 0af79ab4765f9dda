// Package domain defines the ledger value types: amounts, transactions and client accounts.
package domain

import (
	"strings"

	"github.com/pkg/errors"
)

// ClientID identifies a client account.
type ClientID uint16

// TxID identifies a transaction. It is not a sort key, arrival order is.
type TxID uint32

// ErrUnknownKind is returned by ParseKind for unrecognised kind tokens.
var ErrUnknownKind = errors.New("unknown transaction kind")

// Kind is the type of a transaction record.
type Kind int

const (
	KindDeposit Kind = iota
	KindWithdraw
	KindDispute
	KindResolve
	KindChargeback
)

// kind string constants to avoid magic strings
const (
	kindStringDeposit    = "deposit"
	kindStringWithdraw   = "withdraw"
	kindStringWithdrawal = "withdrawal"
	kindStringDispute    = "dispute"
	kindStringResolve    = "resolve"
	kindStringChargeback = "chargeback"
)

// String returns the wire token of the kind.
func (k Kind) String() string {
	switch k {
	case KindDeposit:
		return kindStringDeposit
	case KindWithdraw:
		return kindStringWithdraw
	case KindDispute:
		return kindStringDispute
	case KindResolve:
		return kindStringResolve
	case KindChargeback:
		return kindStringChargeback
	default:
		return "unknown"
	}
}

// HasAmount reports whether records of this kind carry an amount.
func (k Kind) HasAmount() bool {
	return k == KindDeposit || k == KindWithdraw
}

// ParseKind parses a kind token ignoring case and surrounding whitespace.
// Both "withdraw" and "withdrawal" map to KindWithdraw.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case kindStringDeposit:
		return KindDeposit, nil
	case kindStringWithdraw, kindStringWithdrawal:
		return KindWithdraw, nil
	case kindStringDispute:
		return KindDispute, nil
	case kindStringResolve:
		return KindResolve, nil
	case kindStringChargeback:
		return KindChargeback, nil
	}
	return 0, errors.Wrapf(ErrUnknownKind, "%q", s)
}

// Transaction is a decoded transaction record. The set of implementations is closed:
// Deposit, Withdraw, Dispute, Resolve and Chargeback.
type Transaction interface {
	Kind() Kind
	ClientID() ClientID
	TxID() TxID
	isTransaction()
}

// Deposit credits the available balance.
type Deposit struct {
	Client ClientID
	Tx     TxID
	Amount Amount
}

// Withdraw debits the available balance when funds suffice.
type Withdraw struct {
	Client ClientID
	Tx     TxID
	Amount Amount
}

// Dispute moves the funds of a prior deposit from available to held.
type Dispute struct {
	Client ClientID
	Tx     TxID
}

// Resolve releases the held funds of a disputed deposit.
type Resolve struct {
	Client ClientID
	Tx     TxID
}

// Chargeback reverses a disputed deposit and locks the account.
type Chargeback struct {
	Client ClientID
	Tx     TxID
}

func (Deposit) Kind() Kind { return KindDeposit }
func (t Deposit) ClientID() ClientID { return t.Client }
func (t Deposit) TxID() TxID { return t.Tx }
func (Deposit) isTransaction() {}

func (Withdraw) Kind() Kind { return KindWithdraw }
func (t Withdraw) ClientID() ClientID { return t.Client }
func (t Withdraw) TxID() TxID { return t.Tx }
func (Withdraw) isTransaction() {}

func (Dispute) Kind() Kind { return KindDispute }
func (t Dispute) ClientID() ClientID { return t.Client }
func (t Dispute) TxID() TxID { return t.Tx }
func (Dispute) isTransaction() {}

func (Resolve) Kind() Kind { return KindResolve }
func (t Resolve) ClientID() ClientID { return t.Client }
func (t Resolve) TxID() TxID { return t.Tx }
func (Resolve) isTransaction() {}

func (Chargeback) Kind() Kind { return KindChargeback }
func (t Chargeback) ClientID() ClientID { return t.Client }
func (t Chargeback) TxID() TxID { return t.Tx }
func (Chargeback) isTransaction() {}

// NewTransaction builds the variant for kind. amount is ignored for kinds without one.
func NewTransaction(kind Kind, client ClientID, tx TxID, amount Amount) (Transaction, error) {
	switch kind {
	case KindDeposit:
		return Deposit{Client: client, Tx: tx, Amount: amount}, nil
	case KindWithdraw:
		return Withdraw{Client: client, Tx: tx, Amount: amount}, nil
	case KindDispute:
		return Dispute{Client: client, Tx: tx}, nil
	case KindResolve:
		return Resolve{Client: client, Tx: tx}, nil
	case KindChargeback:
		return Chargeback{Client: client, Tx: tx}, nil
	}
	return nil, errors.Wrapf(ErrUnknownKind, "kind %d", int(kind))
}
