package challenge

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/authc"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/sqn"
	"github.com/oyaguma3/nib-server-poc/pkg/apperr"
	"github.com/oyaguma3/nib-server-poc/pkg/logging"
	"github.com/oyaguma3/nib-server-poc/pkg/model"
)

// randLen はチャレンジ乱数のバイト長（128bit）
const randLen = 16

// SQNStore は加入者のSQNの参照と更新を定義する。
type SQNStore interface {
	SQN(imsi string) string
	SetSQN(ctx context.Context, imsi, sqn string) error
}

// Challenger はIMSIごとのチャレンジ状態を保持して認証を進める。
// 認証計算の呼び出し中はロックを保持しない。
type Challenger struct {
	auth       authc.Authenticator
	sqns       SQNStore
	logger     *slog.Logger
	fields     *logging.Fields
	maxRetries int
	random     io.Reader

	mu       sync.Mutex
	sessions map[string]*session
}

// Option はChallengerのオプション
type Option func(*Challenger)

// WithRandom はチャレンジ乱数の生成元を差し替える。
func WithRandom(r io.Reader) Option {
	return func(c *Challenger) { c.random = r }
}

// WithFields はログフィールド生成器を設定する。
func WithFields(f *logging.Fields) Option {
	return func(c *Challenger) { c.fields = f }
}

// New は新しいChallengerを生成する。
// maxRetriesは応答不一致・再同期による再チャレンジの連続上限。
func New(auth authc.Authenticator, sqns SQNStore, maxRetries int, logger *slog.Logger, opts ...Option) *Challenger {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Challenger{
		auth:       auth,
		sqns:       sqns,
		logger:     logger,
		fields:     logging.NewFields(nil),
		maxRetries: maxRetries,
		random:     rand.Reader,
		sessions:   make(map[string]*session),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// State はIMSIの現在の状態を返す。
func (c *Challenger) State(imsi string) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.sessions[imsi]; ok {
		return s.state
	}
	return StateIdle
}

// Forget はIMSIのチャレンジ状態を破棄する。
func (c *Challenger) Forget(imsi string) {
	c.mu.Lock()
	delete(c.sessions, imsi)
	c.mu.Unlock()
}

// Step は入力に従って認証を1段階進める。
func (c *Challenger) Step(ctx context.Context, sub *model.Subscriber, in Input) Result {
	sess := c.load(sub.IMSI)

	switch in := in.(type) {
	case Start:
		sess.retries = 0
		return c.issue(ctx, sub, sess)

	case Response:
		if sess.expected != "" && strings.EqualFold(strings.TrimSpace(in.Value), sess.expected) {
			if c.advance(sub.IMSI, sess, EventResponseOK) == nil {
				c.logger.Info("authentication accepted",
					logging.WithEventID("AUTH_OK"),
					c.fields.IMSI(sub.IMSI),
				)
				return Result{Outcome: OutcomeAccepted}
			}
		}
		c.logger.Info("authentication response mismatch",
			logging.WithEventID("AUTH_MISMATCH"),
			c.fields.IMSI(sub.IMSI),
			logging.WithRetryCount(sess.retries),
		)
		return c.retry(ctx, sub, sess)

	case Resync:
		return c.resync(ctx, sub, sess, in)

	case Aborted:
		_ = c.advance(sub.IMSI, sess, EventAbort)
		c.logger.Info("authentication aborted by engine",
			logging.WithEventID("AUTH_ABORTED"),
			c.fields.IMSI(sub.IMSI),
			"reason", in.Reason,
		)
		return rejected("", nil)
	}

	return rejected(ReasonFailure, fmt.Errorf("unknown input %T", in))
}

// retry は再チャレンジの上限を確認してから新しいチャレンジを発行する。
func (c *Challenger) retry(ctx context.Context, sub *model.Subscriber, sess *session) Result {
	if sess.retries >= c.maxRetries {
		_ = c.advance(sub.IMSI, sess, EventRetryLimit)
		c.logger.Warn("authentication retry limit reached",
			logging.WithEventID("AUTH_RETRY_LIMIT"),
			c.fields.IMSI(sub.IMSI),
			logging.WithRetryCount(sess.retries),
		)
		return rejected(ReasonUnacceptable, apperr.ErrAuthRetryLimit)
	}
	sess.retries++
	return c.issue(ctx, sub, sess)
}

// resync は端末のAUTSからSQNを求め直し、新しいチャレンジを発行する。
func (c *Challenger) resync(ctx context.Context, sub *model.Subscriber, sess *session, in Resync) Result {
	if !sub.HasKey() {
		return c.noKey(sub, sess)
	}
	if err := c.advance(sub.IMSI, sess, EventSyncFailure); err != nil {
		return c.fail(sub, sess, err)
	}

	randHex := in.RAND
	if randHex == "" {
		randHex = sess.rand
	}
	if !sub.Is3G() || in.AUTS == "" || randHex == "" {
		return c.fail(sub, sess, ErrResyncUnresolved)
	}

	resp, err := c.auth.Authenticate(ctx, &authc.Request{
		Protocol: authc.ProtocolMilenage,
		Ki:       sub.Ki,
		OP:       sub.OP,
		RAND:     randHex,
		AUTS:     in.AUTS,
	})
	if err != nil {
		return c.fail(sub, sess, err)
	}
	peer, err := sqn.ParseHex(resp.SQN)
	if err != nil || resp.SQN == "" {
		return c.fail(sub, sess, fmt.Errorf("%w: sqn %q", ErrResyncUnresolved, resp.SQN))
	}

	// 保存できないと再起動後に端末より古いSQNで再チャレンジしてしまう
	next := sqn.FormatHex(sqn.Resync(peer))
	if err := c.sqns.SetSQN(ctx, sub.IMSI, next); err != nil {
		return c.fail(sub, sess, fmt.Errorf("persist resynchronized SQN: %w", err))
	}
	c.logger.Info("sequence number resynchronized",
		logging.WithEventID("AUTH_RESYNC"),
		c.fields.IMSI(sub.IMSI),
	)

	return c.retry(ctx, sub, sess)
}

// issue は新しいチャレンジを発行する。
func (c *Challenger) issue(ctx context.Context, sub *model.Subscriber, sess *session) Result {
	if !sub.HasKey() {
		return c.noKey(sub, sess)
	}

	buf := make([]byte, randLen)
	if _, err := io.ReadFull(c.random, buf); err != nil {
		return c.fail(sub, sess, fmt.Errorf("generate rand: %w", err))
	}
	randHex := strings.ToUpper(hex.EncodeToString(buf))

	req := &authc.Request{Ki: sub.Ki, RAND: randHex}
	current := ""
	if sub.Is3G() {
		current = c.sqns.SQN(sub.IMSI)
		req.Protocol = authc.ProtocolMilenage
		req.OP = sub.OP
		req.SQN = current
	} else {
		req.Protocol = authc.ProtocolComp128
	}

	resp, err := c.auth.Authenticate(ctx, req)
	if err != nil {
		return c.fail(sub, sess, err)
	}

	sess.protocol = req.Protocol
	sess.rand = randHex
	autn := ""
	if sub.Is3G() {
		sess.expected = strings.ToUpper(resp.XRES)
		autn = resp.AUTN

		next, err := sqn.NextHex(current)
		if err != nil {
			return c.fail(sub, sess, err)
		}
		if err := c.sqns.SetSQN(ctx, sub.IMSI, next); err != nil {
			// メモリ上の値は進んでいるのでチャレンジは続ける
			c.logger.Warn("failed to save SQN after challenge",
				logging.WithEventID("AUTH_SQN_SAVE_ERR"),
				c.fields.IMSI(sub.IMSI),
				logging.WithError(err),
			)
		}
	} else {
		sess.expected = strings.ToUpper(resp.SRES)
	}

	if err := c.advance(sub.IMSI, sess, EventChallengeIssued); err != nil {
		return c.fail(sub, sess, err)
	}
	c.logger.Info("authentication challenge issued",
		logging.WithEventID("AUTH_CHALLENGE"),
		c.fields.IMSI(sub.IMSI),
		"protocol", req.Protocol,
		logging.WithRetryCount(sess.retries),
	)
	return pending(randHex, autn)
}

func (c *Challenger) noKey(sub *model.Subscriber, sess *session) Result {
	_ = c.advance(sub.IMSI, sess, EventNoKey)
	c.logger.Error("subscriber has no key material",
		logging.WithEventID("AUTH_NO_KEY"),
		c.fields.IMSI(sub.IMSI),
	)
	return rejected(ReasonUnacceptable, apperr.ErrNoKeyMaterial)
}

func (c *Challenger) fail(sub *model.Subscriber, sess *session, err error) Result {
	_ = c.advance(sub.IMSI, sess, EventBackendError)
	c.logger.Error("authentication backend failed",
		logging.WithEventID("AUTH_BACKEND_ERR"),
		c.fields.IMSI(sub.IMSI),
		logging.WithError(err),
	)
	return rejected(ReasonFailure, fmt.Errorf("%w: %w", apperr.ErrAuthFailed, err))
}

// load はIMSIのセッションのコピーを返す。
func (c *Challenger) load(imsi string) *session {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.sessions[imsi]; ok {
		cp := *s
		return &cp
	}
	return &session{state: StateIdle}
}

// advance は遷移を検証してセッションを保存する。終了状態のセッションは破棄する。
func (c *Challenger) advance(imsi string, sess *session, ev Event) error {
	next, err := ValidateTransition(sess.state, ev)
	if err != nil {
		c.logger.Warn("invalid challenge transition",
			logging.WithEventID("AUTH_STATE_ERR"),
			c.fields.IMSI(imsi),
			"state", string(sess.state),
			"event", string(ev),
		)
		c.Forget(imsi)
		return err
	}
	sess.state = next

	c.mu.Lock()
	defer c.mu.Unlock()
	if IsTerminal(next) {
		delete(c.sessions, imsi)
		return nil
	}
	cp := *sess
	c.sessions[imsi] = &cp
	return nil
}
