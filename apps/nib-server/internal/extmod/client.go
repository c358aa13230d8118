package extmod

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oyaguma3/nib-server-poc/pkg/logging"
)

// センチネルエラー
var (
	// ErrClosed は接続が閉じられた後に操作した場合のエラー
	ErrClosed = errors.New("engine link closed")
	// ErrInstallRejected はエンジンがハンドラー登録を拒否した場合のエラー
	ErrInstallRejected = errors.New("handler install rejected")
)

// maxLineSize は1行の最大長（SMSのRPDU等を含むため大きめ）
const maxLineSize = 1 << 20

// Handler はエンジンから届いたメッセージを処理する。
// mのRetValueとパラメータを書き換えて応答に反映し、処理済みならtrueを返す。
type Handler func(ctx context.Context, m *Message) bool

// Client はエンジンとの接続を扱う。
// 受信は1つのgoroutineで行い、届いたメッセージはハンドラーごとにgoroutineで処理する。
type Client struct {
	r      io.Reader
	w      io.Writer
	closer io.Closer
	logger *slog.Logger

	writeMu sync.Mutex

	mu       sync.Mutex
	handlers map[string]Handler
	pending  map[string]chan *Message
	installs map[string]chan bool

	done      chan struct{}
	closeOnce sync.Once

	// Dispatchの応答待ち上限（0なら無制限）
	dispatchTimeout time.Duration

	newID func() string
	now   func() time.Time
}

// Option はClientのオプション
type Option func(*Client)

// WithDispatchTimeout はDispatchが応答を待つ上限を設定する。
// 上限を過ぎた場合はcontext.DeadlineExceededを返す。
func WithDispatchTimeout(d time.Duration) Option {
	return func(c *Client) { c.dispatchTimeout = d }
}

// New はReadWriteCloser上のClientを生成する。
func New(rwc io.ReadWriteCloser, logger *slog.Logger, opts ...Option) *Client {
	return newClient(rwc, rwc, rwc, logger, opts...)
}

// NewStdio はstdin/stdoutでエンジンと接続するClientを生成する。
func NewStdio(logger *slog.Logger, opts ...Option) *Client {
	return newClient(os.Stdin, os.Stdout, os.Stdin, logger, opts...)
}

// Dial はTCPでエンジンのextmodule待ち受けに接続し、roleを宣言する。
func Dial(ctx context.Context, addr, role string, logger *slog.Logger, opts ...Option) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial engine %s: %w", addr, err)
	}

	c := New(conn, logger, opts...)
	if err := c.writeLine(kwConnect + ":" + Escape(role, 0)); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return c, nil
}

func newClient(r io.Reader, w io.Writer, closer io.Closer, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		r:        r,
		w:        w,
		closer:   closer,
		logger:   logger,
		handlers: make(map[string]Handler),
		pending:  make(map[string]chan *Message),
		installs: make(map[string]chan bool),
		done:     make(chan struct{}),
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run は受信ループを実行する。接続が切れるかctxが終了するまで戻らない。
func (c *Client) Run(ctx context.Context) error {
	defer c.shutdown()

	lines := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(c.r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			errCh <- err
			return
		}
		errCh <- io.EOF
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read engine link: %w", err)
		case line := <-lines:
			c.handleLine(ctx, strings.TrimRight(line, "\r"))
		}
	}
}

func (c *Client) handleLine(ctx context.Context, line string) {
	if line == "" {
		return
	}

	f, err := parseLine(line)
	if err != nil {
		c.logger.Warn("unparsable engine line",
			logging.WithEventID("ENGINE_LINE_ERR"),
			logging.WithError(err),
		)
		return
	}

	switch f.kind {
	case frameMessage:
		c.mu.Lock()
		h, ok := c.handlers[f.msg.Name]
		c.mu.Unlock()
		if !ok {
			// 登録していない名前は未処理で返す
			_ = c.reply(f.msg, false)
			return
		}
		go c.invoke(ctx, h, f.msg)

	case frameReply:
		c.mu.Lock()
		ch, ok := c.pending[f.msg.ID]
		delete(c.pending, f.msg.ID)
		c.mu.Unlock()
		if ok {
			ch <- f.msg
		}

	case frameInstall:
		c.mu.Lock()
		ch, ok := c.installs[f.name]
		delete(c.installs, f.name)
		c.mu.Unlock()
		if ok {
			ch <- f.success
		}

	case frameSetLocal:
		if !f.success {
			c.logger.Warn("engine rejected setlocal",
				logging.WithEventID("ENGINE_SETLOCAL_ERR"),
				"name", f.name,
			)
		}

	case frameError:
		c.logger.Warn("engine reported protocol error",
			logging.WithEventID("ENGINE_PROTO_ERR"),
			"line", f.text,
		)
	}
}

// invoke はハンドラーを実行して応答を返す。パニックは未処理として扱う。
func (c *Client) invoke(ctx context.Context, h Handler, m *Message) {
	processed := false
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("handler panic recovered",
				logging.WithEventID("HANDLER_PANIC"),
				"message", m.Name,
				slog.Any(logging.FieldError, r),
			)
			processed = false
		}
		if err := c.reply(m, processed); err != nil {
			c.logger.Warn("failed to reply to engine",
				logging.WithEventID("ENGINE_REPLY_ERR"),
				"message", m.Name,
				logging.WithError(err),
			)
		}
	}()
	processed = h(ctx, m)
}

func (c *Client) reply(m *Message, processed bool) error {
	m.Processed = processed
	return c.writeLine(encodeReply(m))
}

// Install はメッセージ名にハンドラーを登録する。
// filterを指定した場合はそのパラメータ値が一致するメッセージだけが届く。
// Runが動作している必要がある。
func (c *Client) Install(ctx context.Context, priority int, name string, h Handler, filter ...string) error {
	ack := make(chan bool, 1)

	c.mu.Lock()
	c.handlers[name] = h
	c.installs[name] = ack
	c.mu.Unlock()

	line := kwInstallIn + ":" + strconv.Itoa(priority) + ":" + Escape(name, 0)
	if len(filter) >= 2 {
		line += ":" + Escape(filter[0], 0) + ":" + Escape(filter[1], 0)
	}
	if err := c.writeLine(line); err != nil {
		return err
	}

	select {
	case ok := <-ack:
		if !ok {
			c.mu.Lock()
			delete(c.handlers, name)
			c.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrInstallRejected, name)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrClosed
	}
}

// Dispatch はメッセージをエンジンへ送出し、応答を待つ。
// 応答のProcessed, RetValue, パラメータを含むMessageを返す。
func (c *Client) Dispatch(ctx context.Context, m *Message) (*Message, error) {
	if c.dispatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.dispatchTimeout)
		defer cancel()
	}

	m.ID = c.newID()
	m.Time = c.now().Unix()
	ch := make(chan *Message, 1)

	c.mu.Lock()
	c.pending[m.ID] = ch
	c.mu.Unlock()

	cleanup := func() {
		c.mu.Lock()
		delete(c.pending, m.ID)
		c.mu.Unlock()
	}

	if err := c.writeLine(encodeMessage(m)); err != nil {
		cleanup()
		return nil, err
	}

	select {
	case r := <-ch:
		return r, nil
	case <-ctx.Done():
		cleanup()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.logger.Warn("engine did not answer in time",
				logging.WithEventID("ENGINE_DISPATCH_TIMEOUT"),
				"message", m.Name,
			)
		}
		return nil, ctx.Err()
	case <-c.done:
		cleanup()
		return nil, ErrClosed
	}
}

// Enqueue はメッセージを応答なしでエンジンのキューに投入する。
func (c *Client) Enqueue(m *Message) error {
	m.ID = ""
	m.Time = c.now().Unix()
	return c.writeLine(encodeMessage(m))
}

// Output はエンジンのログに文字列を出力する。
func (c *Client) Output(text string) error {
	for _, l := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if err := c.writeLine(kwOutput + ":" + l); err != nil {
			return err
		}
	}
	return nil
}

// SetLocal はextmoduleのローカル設定を変更する（応答は待たない）。
func (c *Client) SetLocal(name, value string) error {
	return c.writeLine(kwSetLocalIn + ":" + Escape(name, 0) + ":" + Escape(value, 0))
}

// Done は受信ループ終了時に閉じられるチャネルを返す。
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close は接続を閉じる。
func (c *Client) Close() error {
	c.shutdown()
	return c.closer.Close()
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Client) writeLine(line string) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if _, err := io.WriteString(c.w, line+"\n"); err != nil {
		return fmt.Errorf("write engine link: %w", err)
	}
	return nil
}
