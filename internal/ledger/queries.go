package ledger

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"ledger_service/internal/domain"
	"ledger_service/internal/store"
	"ledger_service/internal/utils"
)

// listingTTL bounds how long a cached per-user listing may be served
const listingTTL = 60 * time.Second

// Queries serves the read side of the ledger, caching per-user listings in Redis
type Queries struct {
	accounts     *store.AccountRepository
	transactions *store.TransactionRepository
	rdb          *redis.Client
}

// NewQueries creates Queries. rdb may be nil.
func NewQueries(accounts *store.AccountRepository, transactions *store.TransactionRepository, rdb *redis.Client) *Queries {
	return &Queries{accounts: accounts, transactions: transactions, rdb: rdb}
}

// AccountsForUser lists the user's accounts
func (q *Queries) AccountsForUser(ctx context.Context, userID uint) ([]domain.Account, error) {
	return cached(ctx, q.rdb, AccountsCacheKey(userID), func() ([]domain.Account, error) {
		return q.accounts.ListByUser(ctx, userID)
	})
}

// AllAccounts lists every account
func (q *Queries) AllAccounts(ctx context.Context) ([]domain.Account, error) {
	return q.accounts.List(ctx)
}

// TransactionsForUser lists the user's transactions, newest first
func (q *Queries) TransactionsForUser(ctx context.Context, userID uint) ([]domain.Transaction, error) {
	return cached(ctx, q.rdb, TransactionsCacheKey(userID), func() ([]domain.Transaction, error) {
		return q.transactions.ListByUser(ctx, userID)
	})
}

// AllTransactions lists every transaction, newest first
func (q *Queries) AllTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return q.transactions.List(ctx)
}

// cached serves key from Redis, falling back to load and filling the cache.
// Redis errors degrade to a direct load.
func cached[T any](ctx context.Context, rdb *redis.Client, key string, load func() ([]T, error)) ([]T, error) {
	var hit []T
	found, err := utils.GetCache(ctx, rdb, key, &hit)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Cache read failed")
	}
	if found {
		return hit, nil
	}
	rows, err := load()
	if err != nil {
		return nil, err
	}
	if err := utils.SetCache(ctx, rdb, key, rows, listingTTL); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
	return rows, nil
}
