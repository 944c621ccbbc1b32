// Package mongo provides a Store implementation backed by MongoDB via
// the Grove ORM.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/tally"
	"github.com/xraph/tally/account"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/journal"
	tallystore "github.com/xraph/tally/store"
)

// Collection name constants.
const (
	colMeta     = "tally_meta"
	colAccounts = "tally_accounts"
	colJournal  = "tally_journal"
)

// compile-time interface check
var _ tallystore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all tally collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("tally/mongo: %w: %s indexes: %w", tally.ErrMigrationFailed, col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if s.db == nil {
		return tally.ErrStoreNotReady
	}
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Meta Store ====================

func (s *Store) LoadMeta(ctx context.Context) (*tallystore.Meta, error) {
	var m metaModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": metaDocID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, tally.ErrNotFound
		}
		return nil, fmt.Errorf("tally/mongo: load meta: %w", err)
	}
	return fromMetaModel(&m)
}

func (s *Store) SaveMeta(ctx context.Context, meta *tallystore.Meta) error {
	m := toMetaModel(meta)
	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":          m.ID,
			"admin":        m.Admin,
			"paused":       m.Paused,
			"total_supply": m.TotalSupply,
			"updated_at":   m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tally/mongo: save meta: %w", err)
	}
	return nil
}

// ==================== Account Store ====================

func (s *Store) GetAccount(ctx context.Context, accountID id.AccountID) (*account.Account, error) {
	var m accountModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": accountID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, tally.ErrAccountNotFound
		}
		return nil, fmt.Errorf("tally/mongo: get account: %w", err)
	}
	return fromAccountModel(&m)
}

func (s *Store) UpsertAccounts(ctx context.Context, accounts []*account.Account) error {
	for _, a := range accounts {
		m := toAccountModel(a)
		_, err := s.mdb.NewUpdate(m).
			Filter(bson.M{"_id": m.ID}).
			SetUpdate(bson.M{"$set": bson.M{
				"_id":        m.ID,
				"balance":    m.Balance,
				"staked":     m.Staked,
				"has_access": m.HasAccess,
				"created_at": m.CreatedAt,
				"updated_at": m.UpdatedAt,
			}}).
			Upsert().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("tally/mongo: upsert account: %w", err)
		}
	}
	return nil
}

func (s *Store) ListAccounts(ctx context.Context, opts account.ListOpts) ([]*account.Account, error) {
	var models []accountModel

	q := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "_id", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("tally/mongo: list accounts: %w", err)
	}

	result := make([]*account.Account, len(models))
	for i := range models {
		a, err := fromAccountModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = a
	}
	return result, nil
}

func (s *Store) CountAccounts(ctx context.Context) (int64, error) {
	total, err := s.mdb.Collection(colAccounts).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("tally/mongo: count accounts: %w", err)
	}
	return total, nil
}

// ==================== Journal Store ====================

func (s *Store) AppendEntries(ctx context.Context, entries []*journal.Entry) error {
	for _, e := range entries {
		m := toJournalModel(e)
		_, err := s.mdb.NewInsert(m).Exec(ctx)
		if err != nil {
			// Skip duplicates so a retried batch is idempotent
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return fmt.Errorf("tally/mongo: append entry: %w", err)
		}
	}
	return nil
}

func (s *Store) QueryJournal(ctx context.Context, opts journal.QueryOpts) ([]*journal.Entry, error) {
	var models []journalModel

	filter := bson.M{}
	if !opts.Account.IsNil() {
		filter["$or"] = bson.A{
			bson.M{"caller": opts.Account.String()},
			bson.M{"target": opts.Account.String()},
		}
	}
	if opts.Op != "" {
		filter["op"] = string(opts.Op)
	}
	if !opts.Start.IsZero() {
		if _, ok := filter["timestamp"]; !ok {
			filter["timestamp"] = bson.M{}
		}
		if ts, ok := filter["timestamp"].(bson.M); ok {
			ts["$gte"] = opts.Start
		}
	}
	if !opts.End.IsZero() {
		if _, ok := filter["timestamp"]; !ok {
			filter["timestamp"] = bson.M{}
		}
		if ts, ok := filter["timestamp"].(bson.M); ok {
			ts["$lt"] = opts.End
		}
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "timestamp", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("tally/mongo: query journal: %w", err)
	}

	result := make([]*journal.Entry, len(models))
	for i := range models {
		e, err := fromJournalModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = e
	}
	return result, nil
}

func (s *Store) PurgeJournal(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.mdb.NewDelete((*journalModel)(nil)).
		Filter(bson.M{"timestamp": bson.M{"$lt": before}}).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("tally/mongo: purge journal: %w", err)
	}
	return res.DeletedCount(), nil
}

// ==================== Helpers ====================

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all tally collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colMeta: {},
		colAccounts: {
			{Keys: bson.D{{Key: "has_access", Value: 1}}},
		},
		colJournal: {
			{Keys: bson.D{{Key: "caller", Value: 1}, {Key: "timestamp", Value: 1}}},
			{Keys: bson.D{{Key: "target", Value: 1}, {Key: "timestamp", Value: 1}}},
			{Keys: bson.D{{Key: "op", Value: 1}, {Key: "timestamp", Value: 1}}},
			{Keys: bson.D{{Key: "timestamp", Value: 1}}},
		},
	}
}
