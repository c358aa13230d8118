package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/oyaguma3/nib-server-poc/pkg/apperr"
	"github.com/oyaguma3/nib-server-poc/pkg/model"
	"github.com/oyaguma3/nib-server-poc/pkg/valkey"
	"github.com/redis/go-redis/v9"
)

// SubscriberStore は加入者テーブルへのアクセスを提供する。
type SubscriberStore struct {
	vc *ValkeyClient
}

// NewSubscriberStore は新しいSubscriberStoreを生成する。
func NewSubscriberStore(vc *ValkeyClient) *SubscriberStore {
	return &SubscriberStore{vc: vc}
}

// Fetch は nib:general と全ての sub:{IMSI} を読み込む。
// 加入者はIMSI順に並べて返す。
func (s *SubscriberStore) Fetch(ctx context.Context) (*model.NetworkConfig, error) {
	rdb := s.vc.Client()

	general, err := rdb.HGetAll(ctx, KeyGeneral).Result()
	if err != nil {
		return nil, valkeyError("HGETALL", KeyGeneral, err)
	}

	keys, err := s.scanSubscriberKeys(ctx)
	if err != nil {
		return nil, err
	}

	cfg := &model.NetworkConfig{
		CountryCode: strings.TrimSpace(general[FieldCountryCode]),
		Regexp:      strings.TrimSpace(general[FieldRegexp]),
	}
	if len(keys) == 0 {
		return cfg, nil
	}

	pipe := rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.HGetAll(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, valkeyError("HGETALL", KeyPrefixSubscriber+"*", err)
	}

	for i, key := range keys {
		fields := cmds[i].Val()
		if len(fields) == 0 {
			continue // SCAN後に削除された
		}
		var rec subscriberRecord
		if err := MapToStruct(fields, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		cfg.Subscribers = append(cfg.Subscribers, rec.toModel(strings.TrimPrefix(key, KeyPrefixSubscriber)))
	}
	return cfg, nil
}

func (s *SubscriberStore) scanSubscriberKeys(ctx context.Context) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := s.vc.Client().Scan(ctx, cursor, KeyPrefixSubscriber+"*", scanCount).Result()
		if err != nil {
			return nil, valkeyError("SCAN", KeyPrefixSubscriber+"*", err)
		}
		keys = append(keys, batch...)
		if next == 0 {
			break
		}
		cursor = next
	}
	sort.Strings(keys)
	return keys, nil
}

// UpdateSQN は加入者のSQNを更新する。
func (s *SubscriberStore) UpdateSQN(ctx context.Context, imsi, sqn string) error {
	key := subscriberKey(imsi)
	if err := s.vc.Client().HSet(ctx, key, FieldSQN, sqn).Err(); err != nil {
		return valkeyError("HSET", key, err)
	}
	return nil
}

// valkeyError はコマンドの失敗を接続エラーかコマンドエラーに分類して包む。
func valkeyError(op, key string, err error) error {
	return apperr.NewValkeyError(op, key, valkey.Classify(err))
}
