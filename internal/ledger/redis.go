package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	id "raffle/pkg/domain"
	"raffle/pkg/requestcontext"
)

const (
	balancesKey  = "ledger:balances"
	assetsPrefix = "ledger:assets:"
	slotKey      = "ledger:slot"

	replyInsufficient = "INSUFFICIENT"
	replyOverflow     = "overflow"
)

// transferScript moves ARGV[3] units from field ARGV[1] to field ARGV[2] of
// hash KEYS[1], refusing to overdraw. Amounts stay decimal strings so values
// beyond double precision compare and increment exactly. The destination is
// credited first so an overflow error leaves both fields untouched.
var transferScript = redis.NewScript(`
local bal = redis.call('HGET', KEYS[1], ARGV[1]) or '0'
local amt = ARGV[3]
if #bal < #amt or (#bal == #amt and bal < amt) then
	return redis.error_reply('INSUFFICIENT')
end
if ARGV[1] ~= ARGV[2] then
	redis.call('HINCRBY', KEYS[1], ARGV[2], amt)
	redis.call('HINCRBY', KEYS[1], ARGV[1], '-' .. amt)
end
return 1
`)

// Redis is a Ledger and Clock backed by Redis hashes. Transfers run as Lua
// scripts so each one is atomic on the server.
//
// Amounts are stored with HINCRBY and are therefore limited to int64.
type Redis struct {
	client     redis.UniversalClient
	minBalance uint64
}

func NewRedis(client redis.UniversalClient, minBalance uint64) *Redis {
	return &Redis{client: client, minBalance: minBalance}
}

// Credit adds native funds to an account.
func (r *Redis) Credit(ctx context.Context, account Account, amount uint64) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if err := r.client.HIncrBy(ctx, balancesKey, string(account), int64(amount)).Err(); err != nil {
		return fmt.Errorf("credit %s: %w", account, err)
	}
	return nil
}

// Mint creates amount units of asset held by owner.
func (r *Redis) Mint(ctx context.Context, asset id.AssetID, owner Account, amount uint64) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if err := r.client.HIncrBy(ctx, assetKey(asset), string(owner), int64(amount)).Err(); err != nil {
		return fmt.Errorf("mint %s: %w", asset, err)
	}
	return nil
}

// AssetBalance returns how many units of asset the account holds.
func (r *Redis) AssetBalance(ctx context.Context, asset id.AssetID, account Account) (uint64, error) {
	return r.hgetUint(ctx, assetKey(asset), string(account))
}

func (r *Redis) TransferNative(ctx context.Context, from, to Account, amount uint64) error {
	if err := validateTransfer(from, to, amount); err != nil {
		return err
	}
	return r.transfer(ctx, balancesKey, from, to, amount, ErrInsufficientFunds)
}

func (r *Redis) Balance(ctx context.Context, account Account) (uint64, error) {
	return r.hgetUint(ctx, balancesKey, string(account))
}

func (r *Redis) MinimumBalance(context.Context) uint64 {
	return r.minBalance
}

func (r *Redis) TransferAsset(ctx context.Context, asset id.AssetID, from, to Account, amount uint64) error {
	if err := validateTransfer(from, to, amount); err != nil {
		return err
	}
	return r.transfer(ctx, assetKey(asset), from, to, amount, ErrInsufficientAsset)
}

// Now returns the request-scoped time so all checks in one request agree.
func (r *Redis) Now(ctx context.Context) time.Time {
	return requestcontext.Now(ctx)
}

// Slot advances and returns the shared slot counter.
func (r *Redis) Slot(ctx context.Context) (uint64, error) {
	n, err := r.client.Incr(ctx, slotKey).Uint64()
	if err != nil {
		return 0, fmt.Errorf("advance slot: %w", err)
	}
	return n, nil
}

func (r *Redis) transfer(ctx context.Context, key string, from, to Account, amount uint64, insufficient error) error {
	err := transferScript.Run(ctx, r.client, []string{key},
		string(from), string(to), strconv.FormatUint(amount, 10)).Err()
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), replyInsufficient) {
		return insufficient
	}
	if strings.Contains(err.Error(), replyOverflow) {
		return ErrBalanceOverflow
	}
	return fmt.Errorf("transfer on %s: %w", key, err)
}

func (r *Redis) hgetUint(ctx context.Context, key, field string) (uint64, error) {
	v, err := r.client.HGet(ctx, key, field).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s/%s: %w", key, field, err)
	}
	return v, nil
}

func assetKey(asset id.AssetID) string {
	return assetsPrefix + asset.String()
}
