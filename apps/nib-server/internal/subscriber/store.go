package subscriber

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/oyaguma3/nib-server-poc/pkg/logging"
	"github.com/oyaguma3/nib-server-poc/pkg/model"
)

// Store は現在のTableとSQNの最新値を保持する。
// SQNは読み込み元より新しい値をメモリに持ち、再読み込みでも巻き戻さない。
type Store struct {
	src    Source
	writer SQNWriter
	logger *slog.Logger

	mu    sync.RWMutex
	table *Table
	sqns  map[string]string
}

// NewStore は新しいStoreを生成する。初期状態は未設定モード。
func NewStore(src Source, writer SQNWriter, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	empty, _ := Build(&model.NetworkConfig{})
	return &Store{
		src:    src,
		writer: writer,
		logger: logger,
		table:  empty,
		sqns:   make(map[string]string),
	}
}

// Load は読み込み元から設定を読み直して新しいTableに置き換える。
// 失敗した場合は現在のTableを維持してエラーを返す。
// 置き換え前のTableを返す。
func (s *Store) Load(ctx context.Context) (prev, next *Table, err error) {
	cfg, err := s.src.Fetch(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch subscribers: %w", err)
	}
	t, err := Build(cfg)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev = s.table
	s.table = t

	// テーブルから消えた加入者のSQNは捨てる
	for imsi := range s.sqns {
		if !t.Known(imsi) {
			delete(s.sqns, imsi)
		}
	}
	return prev, t, nil
}

// Table は現在のTableを返す。
func (s *Store) Table() *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// SQN は加入者の現在のSQNを返す。未設定ならmodel.DefaultSQN。
func (s *Store) SQN(imsi string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.sqns[imsi]; ok {
		return v
	}
	if sub, ok := s.table.byIMSI[imsi]; ok && sub.SQN != "" {
		return sub.SQN
	}
	return model.DefaultSQN
}

// SetSQN はSQNを更新し、読み込み元へ書き戻す。
// 書き戻しに失敗してもメモリ上の値は更新したままにする。
func (s *Store) SetSQN(ctx context.Context, imsi, sqn string) error {
	s.mu.Lock()
	s.sqns[imsi] = sqn
	s.mu.Unlock()

	if s.writer == nil {
		return nil
	}
	if err := s.writer.UpdateSQN(ctx, imsi, sqn); err != nil {
		s.logger.Warn("failed to persist SQN",
			logging.WithEventID("SQN_PERSIST_ERR"),
			logging.WithError(err),
		)
		return err
	}
	return nil
}
