package domain

// DisputeStatus is the dispute state of a single deposit.
type DisputeStatus int

const (
	// DisputeNone deposit is not under dispute and may be disputed.
	DisputeNone DisputeStatus = iota
	// DisputeOpen deposit funds are held pending resolve or chargeback.
	DisputeOpen
	// DisputeChargedBack deposit was reversed. Terminal.
	DisputeChargedBack
)

// String returns the string representation of the status.
func (s DisputeStatus) String() string {
	switch s {
	case DisputeNone:
		return "none"
	case DisputeOpen:
		return "disputed"
	case DisputeChargedBack:
		return "charged_back"
	default:
		return "unknown"
	}
}

// DepositEntry is an applied deposit retained so later disputes can reference it.
type DepositEntry struct {
	Tx     TxID
	Client ClientID
	Amount Amount
	Status DisputeStatus
}

// Account holds the balances of a single client and the deposits it received.
// Total is always available + held and is never stored.
type Account struct {
	client    ClientID
	available Amount
	held      Amount
	locked    bool
	deposits  map[TxID]*DepositEntry
}

// NewAccount creates an empty, unlocked account.
func NewAccount(client ClientID) *Account {
	return &Account{
		client:    client,
		available: ZeroAmount(),
		held:      ZeroAmount(),
		deposits:  make(map[TxID]*DepositEntry),
	}
}

// Client returns the owner of the account.
func (a *Account) Client() ClientID { return a.client }

// Available returns funds the client may withdraw.
func (a *Account) Available() Amount { return a.available }

// Held returns funds frozen by open disputes.
func (a *Account) Held() Amount { return a.held }

// Total returns available + held.
func (a *Account) Total() Amount { return a.available.Add(a.held) }

// Locked reports whether a chargeback froze the account.
func (a *Account) Locked() bool { return a.locked }

// LookupDeposit returns a copy of the retained deposit with the given id.
func (a *Account) LookupDeposit(tx TxID) (DepositEntry, bool) {
	entry, ok := a.deposits[tx]
	if !ok {
		return DepositEntry{}, false
	}
	return *entry, true
}

// Apply runs tx through the account state machine and reports whether it changed
// the account. Records that fail validation (locked account, unknown or foreign
// deposit, wrong dispute status, insufficient funds) leave the account untouched.
func (a *Account) Apply(tx Transaction) bool {
	if a.locked || tx.ClientID() != a.client {
		return false
	}

	switch t := tx.(type) {
	case Deposit:
		return a.deposit(t)
	case Withdraw:
		return a.withdraw(t)
	case Dispute:
		return a.dispute(t)
	case Resolve:
		return a.resolve(t)
	case Chargeback:
		return a.chargeback(t)
	}
	return false
}

// Snapshot returns the current balances.
func (a *Account) Snapshot() Snapshot {
	return Snapshot{
		Client:    a.client,
		Available: a.available,
		Held:      a.held,
		Total:     a.Total(),
		Locked:    a.locked,
	}
}

func (a *Account) deposit(t Deposit) bool {
	if _, exists := a.deposits[t.Tx]; exists {
		return false
	}

	a.available = a.available.Add(t.Amount)
	a.deposits[t.Tx] = &DepositEntry{
		Tx:     t.Tx,
		Client: t.Client,
		Amount: t.Amount,
		Status: DisputeNone,
	}
	return true
}

func (a *Account) withdraw(t Withdraw) bool {
	if !a.available.GreaterThanOrEqual(t.Amount) {
		return false
	}

	a.available = a.available.Sub(t.Amount)
	return true
}

func (a *Account) dispute(t Dispute) bool {
	entry := a.referencedDeposit(t.Client, t.Tx, DisputeNone)
	if entry == nil {
		return false
	}

	a.available = a.available.Sub(entry.Amount)
	a.held = a.held.Add(entry.Amount)
	entry.Status = DisputeOpen
	return true
}

func (a *Account) resolve(t Resolve) bool {
	entry := a.referencedDeposit(t.Client, t.Tx, DisputeOpen)
	if entry == nil {
		return false
	}

	a.available = a.available.Add(entry.Amount)
	a.held = a.held.Sub(entry.Amount)
	entry.Status = DisputeNone
	return true
}

func (a *Account) chargeback(t Chargeback) bool {
	entry := a.referencedDeposit(t.Client, t.Tx, DisputeOpen)
	if entry == nil {
		return false
	}

	a.held = a.held.Sub(entry.Amount)
	entry.Status = DisputeChargedBack
	a.locked = true
	return true
}

// referencedDeposit returns the deposit a partner record points at, or nil when the
// entry is missing, belongs to another client, or is not in the wanted status.
func (a *Account) referencedDeposit(client ClientID, tx TxID, want DisputeStatus) *DepositEntry {
	entry, ok := a.deposits[tx]
	if !ok || entry.Client != client || entry.Status != want {
		return nil
	}
	return entry
}
