package sqlite

import (
	"encoding/json"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/tally/account"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/journal"
	"github.com/xraph/tally/store"
	"github.com/xraph/tally/types"
)

// ==================== Meta model ====================

// metaModel is a single-row table; metaRowID is its fixed key.
const metaRowID = 1

type metaModel struct {
	grove.BaseModel `grove:"table:tally_meta"`

	ID          int       `grove:"id,pk"`
	Admin       string    `grove:"admin"`
	Paused      bool      `grove:"paused"`
	TotalSupply int64     `grove:"total_supply"`
	UpdatedAt   time.Time `grove:"updated_at"`
}

func toMetaModel(m *store.Meta) *metaModel {
	return &metaModel{
		ID:          metaRowID,
		Admin:       m.Admin.String(),
		Paused:      m.Paused,
		TotalSupply: int64(m.TotalSupply.Uint64()),
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromMetaModel(m *metaModel) (*store.Meta, error) {
	admin, err := id.ParseAccountID(m.Admin)
	if err != nil {
		return nil, err
	}
	return &store.Meta{
		Admin:       admin,
		Paused:      m.Paused,
		TotalSupply: types.Amount(m.TotalSupply),
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

// ==================== Account model ====================

type accountModel struct {
	grove.BaseModel `grove:"table:tally_accounts"`

	ID        string    `grove:"id,pk"`
	Balance   int64     `grove:"balance"`
	Staked    int64     `grove:"staked"`
	HasAccess bool      `grove:"has_access"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toAccountModel(a *account.Account) *accountModel {
	return &accountModel{
		ID:        a.ID.String(),
		Balance:   int64(a.Balance.Uint64()),
		Staked:    int64(a.Staked.Uint64()),
		HasAccess: a.HasAccess,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func fromAccountModel(m *accountModel) (*account.Account, error) {
	accountID, err := id.ParseAccountID(m.ID)
	if err != nil {
		return nil, err
	}
	return &account.Account{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:        accountID,
		Balance:   types.Amount(m.Balance),
		Staked:    types.Amount(m.Staked),
		HasAccess: m.HasAccess,
	}, nil
}

// ==================== Journal model ====================

type journalModel struct {
	grove.BaseModel `grove:"table:tally_journal"`

	ID        string    `grove:"id,pk"`
	Op        string    `grove:"op"`
	Caller    string    `grove:"caller"`
	Target    string    `grove:"target"`
	Amount    int64     `grove:"amount"`
	Paused    bool      `grove:"paused"`
	Timestamp time.Time `grove:"timestamp"`
	Metadata  string    `grove:"metadata"`
}

func toJournalModel(e *journal.Entry) *journalModel {
	target := ""
	if !e.Target.IsNil() {
		target = e.Target.String()
	}
	metadata := "{}"
	if len(e.Metadata) > 0 {
		if raw, err := json.Marshal(e.Metadata); err == nil {
			metadata = string(raw)
		}
	}
	return &journalModel{
		ID:        e.ID.String(),
		Op:        string(e.Op),
		Caller:    e.Caller.String(),
		Target:    target,
		Amount:    int64(e.Amount.Uint64()),
		Paused:    e.Paused,
		Timestamp: e.Timestamp,
		Metadata:  metadata,
	}
}

func fromJournalModel(m *journalModel) (*journal.Entry, error) {
	entryID, err := id.ParseJournalID(m.ID)
	if err != nil {
		return nil, err
	}
	caller, err := id.ParseAccountID(m.Caller)
	if err != nil {
		return nil, err
	}

	var target id.AccountID
	if m.Target != "" {
		target, err = id.ParseAccountID(m.Target)
		if err != nil {
			return nil, err
		}
	}

	var metadata map[string]string
	if m.Metadata != "" && m.Metadata != "{}" {
		_ = json.Unmarshal([]byte(m.Metadata), &metadata) //nolint:errcheck // best-effort
	}

	return &journal.Entry{
		ID:        entryID,
		Op:        journal.Op(m.Op),
		Caller:    caller,
		Target:    target,
		Amount:    types.Amount(m.Amount),
		Paused:    m.Paused,
		Timestamp: m.Timestamp,
		Metadata:  metadata,
	}, nil
}
