package domain

// Principal identifies an account taking part in the marketplace: a supplier,
// a buyer, a bidder, an oracle operator, or a configured fee collector.
// Principals are opaque Stacks-style addresses; the registries never parse
// them, they only compare them.
type Principal string

// BurnAddress is the designated null principal. Configuration setters reject
// it so protocol fees can never be routed to an unspendable account.
const BurnAddress Principal = "SP000000000000000000002Q6VF78"

func (p Principal) IsBurn() bool { return p == BurnAddress }

func (p Principal) IsZero() bool { return p == "" }

func (p Principal) String() string { return string(p) }
