package tally

import "github.com/xraph/tally/id"

// ID is the primary identifier type for all Tally entities.
type ID = id.ID

// AccountID identifies a balance-holding account.
type AccountID = id.AccountID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
