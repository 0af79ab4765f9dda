package domain

// Snapshot is the final state of a client account.
type Snapshot struct {
	Client    ClientID
	Available Amount
	Held      Amount
	Total     Amount
	Locked    bool
}
