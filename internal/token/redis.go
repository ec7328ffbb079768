package token

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/sentinel"
)

const (
	ownerKeyPrefix = "hunt:token:owner:"
	uriKeyPrefix   = "hunt:token:uri:"
)

// RedisLedger is a Redis-backed ownership ledger for deployments where
// multiple instances must share token state. Mint uses SETNX for the
// mint-once guarantee; Transfer uses WATCH so the owner check and the swap
// commit atomically.
type RedisLedger struct {
	client     *redis.Client
	collection Collection
}

// NewRedisLedger constructs a Redis-backed ledger.
func NewRedisLedger(client *redis.Client, collection Collection) *RedisLedger {
	return &RedisLedger{client: client, collection: collection}
}

// Collection returns the collection identity tokens are minted into.
func (l *RedisLedger) Collection() Collection {
	return l.collection
}

func ownerKey(tokenID id.TreasureID) string {
	return ownerKeyPrefix + strconv.FormatInt(int64(tokenID), 10)
}

func uriKey(tokenID id.TreasureID) string {
	return uriKeyPrefix + strconv.FormatInt(int64(tokenID), 10)
}

func (l *RedisLedger) Mint(ctx context.Context, owner id.Address, tokenID id.TreasureID) error {
	set, err := l.client.SetNX(ctx, ownerKey(tokenID), owner.String(), 0).Result()
	if err != nil {
		return fmt.Errorf("mint token %d: %w", tokenID, err)
	}
	if !set {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

func (l *RedisLedger) Transfer(ctx context.Context, from, to id.Address, tokenID id.TreasureID) error {
	key := ownerKey(tokenID)
	err := l.client.Watch(ctx, func(tx *redis.Tx) error {
		owner, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return err
		}
		if owner != from.String() {
			return sentinel.ErrInvalidState
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, to.String(), 0)
			return nil
		})
		return err
	}, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrInvalidState) {
			return err
		}
		return fmt.Errorf("transfer token %d: %w", tokenID, err)
	}
	return nil
}

func (l *RedisLedger) SetURI(ctx context.Context, tokenID id.TreasureID, uri string) error {
	exists, err := l.client.Exists(ctx, ownerKey(tokenID)).Result()
	if err != nil {
		return fmt.Errorf("set token uri %d: %w", tokenID, err)
	}
	if exists == 0 {
		return sentinel.ErrNotFound
	}
	if err := l.client.Set(ctx, uriKey(tokenID), uri, 0).Err(); err != nil {
		return fmt.Errorf("set token uri %d: %w", tokenID, err)
	}
	return nil
}

// URI returns the metadata URI for a token.
func (l *RedisLedger) URI(ctx context.Context, tokenID id.TreasureID) (string, error) {
	exists, err := l.client.Exists(ctx, ownerKey(tokenID)).Result()
	if err != nil {
		return "", fmt.Errorf("token uri %d: %w", tokenID, err)
	}
	if exists == 0 {
		return "", sentinel.ErrNotFound
	}
	uri, err := l.client.Get(ctx, uriKey(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("token uri %d: %w", tokenID, err)
	}
	return uri, nil
}

func (l *RedisLedger) OwnerOf(ctx context.Context, tokenID id.TreasureID) (id.Address, error) {
	owner, err := l.client.Get(ctx, ownerKey(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("owner of token %d: %w", tokenID, err)
	}
	return id.Address(owner), nil
}
