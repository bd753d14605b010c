package cache

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/buildmind/sitetrack/internal/domain/notification"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/errors"
	"github.com/buildmind/sitetrack/pkg/types/common"
)

// RedisLedger implements notification.Ledger on a Redis hash per tracked
// item. The hash key is the item ID, the field is type:recipient, so Clear
// for an item is a single DEL.
type RedisLedger struct {
	client *redis.Client
	prefix string
	logger logging.Logger
}

// NewRedisLedger builds a ledger under the given key prefix.
func NewRedisLedger(client *redis.Client, prefix string, logger logging.Logger) *RedisLedger {
	if prefix == "" {
		prefix = "sitetrack"
	}
	return &RedisLedger{client: client, prefix: prefix, logger: logger.Named("dispatch_ledger")}
}

func (l *RedisLedger) key(relatedID common.ID) string {
	return l.prefix + ":ledger:" + string(relatedID)
}

func ledgerField(typ notification.Type, recipient common.UserID) string {
	return string(typ) + ":" + string(recipient)
}

func (l *RedisLedger) Get(ctx context.Context, relatedID common.ID, typ notification.Type, recipient common.UserID) (*notification.LedgerEntry, error) {
	raw, err := l.client.HGet(ctx, l.key(relatedID), ledgerField(typ, recipient)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeCacheError, "ledger read failed")
	}

	var entry notification.LedgerEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, errors.Wrap(err, errors.CodeSerialization, "ledger entry decode failed")
	}
	return &entry, nil
}

func (l *RedisLedger) Put(ctx context.Context, entry *notification.LedgerEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "ledger entry encode failed")
	}
	if err := l.client.HSet(ctx, l.key(entry.RelatedID), ledgerField(entry.Type, entry.RecipientID), raw).Err(); err != nil {
		return errors.Wrap(err, errors.CodeCacheError, "ledger write failed")
	}
	return nil
}

func (l *RedisLedger) Clear(ctx context.Context, relatedID common.ID) error {
	if err := l.client.Del(ctx, l.key(relatedID)).Err(); err != nil {
		return errors.Wrap(err, errors.CodeCacheError, "ledger clear failed")
	}
	return nil
}
