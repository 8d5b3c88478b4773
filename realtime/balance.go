// Package realtime pushes account balance changes to connected
// storefront sessions. The client never writes the balance; each push
// simply overwrites the displayed value.
package realtime

import (
	"context"
	"strconv"

	"github.com/go-redis/redis/v8"
)

const (
	balanceKeyPrefix     = "balance:"
	balanceChannelPrefix = "balance-updates:"
)

// DefaultBalance is reported for accounts with no stored balance yet.
const DefaultBalance int64 = 500

// Feed reads and publishes balances through Redis.
type Feed struct {
	rdb *redis.Client
}

func NewFeed(rdb *redis.Client) *Feed {
	return &Feed{rdb: rdb}
}

// Current returns the stored balance for userID, or DefaultBalance when
// none exists.
func (f *Feed) Current(ctx context.Context, userID string) (int64, error) {
	val, err := f.rdb.Get(ctx, balanceKeyPrefix+userID).Result()
	if err == redis.Nil {
		return DefaultBalance, nil
	}
	if err != nil {
		return 0, err
	}
	balance, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return DefaultBalance, nil
	}
	return balance, nil
}

// Set stores a new balance and notifies every open subscription for the
// user.
func (f *Feed) Set(ctx context.Context, userID string, balance int64) error {
	if err := f.rdb.Set(ctx, balanceKeyPrefix+userID, balance, 0).Err(); err != nil {
		return err
	}
	return f.rdb.Publish(ctx, balanceChannelPrefix+userID, balance).Err()
}

// Subscription is a live balance feed for one user. Callers must Close
// it on teardown so a torn-down view cannot race late updates.
type Subscription struct {
	// C delivers the current balance first, then every pushed update.
	// It is closed after Close.
	C <-chan int64

	pubsub *redis.PubSub
}

// Close cancels the subscription and releases the underlying channel.
func (s *Subscription) Close() error {
	return s.pubsub.Close()
}

// Subscribe opens a push feed for userID. The current balance is
// delivered immediately so subscribers render without waiting for the
// first update.
func (f *Feed) Subscribe(ctx context.Context, userID string) (*Subscription, error) {
	current, err := f.Current(ctx, userID)
	if err != nil {
		return nil, err
	}

	pubsub := f.rdb.Subscribe(ctx, balanceChannelPrefix+userID)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	out := make(chan int64, 1)
	out <- current

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			balance, err := strconv.ParseInt(msg.Payload, 10, 64)
			if err != nil {
				continue
			}
			select {
			case out <- balance:
			default:
				// Drop when the reader lags; only the latest value matters.
				select {
				case <-out:
				default:
				}
				out <- balance
			}
		}
	}()

	return &Subscription{C: out, pubsub: pubsub}, nil
}
