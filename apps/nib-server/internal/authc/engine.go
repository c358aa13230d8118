package authc

import (
	"context"
	"strings"

	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/extmod"
	"github.com/oyaguma3/nib-server-poc/pkg/apperr"
)

// MessageGSMAuth はエンジンの認証計算メッセージ名
const MessageGSMAuth = "gsm.auth"

// Dispatcher はエンジンへメッセージを送出して応答を待つ。
type Dispatcher interface {
	Dispatch(ctx context.Context, m *extmod.Message) (*extmod.Message, error)
}

// EngineBackend はエンジンのgsm.authモジュールで認証計算を行う。
type EngineBackend struct {
	d Dispatcher
}

// NewEngineBackend は新しいEngineBackendを生成する。
func NewEngineBackend(d Dispatcher) *EngineBackend {
	return &EngineBackend{d: d}
}

// Authenticate はgsm.authを送出し、応答パラメータを読み取る。
func (b *EngineBackend) Authenticate(ctx context.Context, req *Request) (*Response, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	m := extmod.NewMessage(MessageGSMAuth,
		"protocol", req.Protocol,
		"ki", req.Ki,
		"rand", req.RAND,
	)
	if req.OP != "" {
		m.Set("op", req.OP)
	}
	if req.IsResync() {
		m.Set("auts", req.AUTS)
	} else if req.SQN != "" {
		m.Set("sqn", req.SQN)
	}

	reply, err := b.d.Dispatch(ctx, m)
	if err != nil {
		return nil, apperr.NewDispatchError(MessageGSMAuth, "", err)
	}
	if !reply.Processed {
		return nil, apperr.NewDispatchError(MessageGSMAuth, reply.Get("error"), nil)
	}

	resp := &Response{
		XRES: strings.ToUpper(reply.Get("xres")),
		AUTN: strings.ToUpper(reply.Get("autn")),
		SRES: strings.ToUpper(reply.Get("sres")),
		SQN:  strings.ToUpper(reply.Get("sqn")),
	}
	if err := checkResponse(req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// checkResponse は要求種別に応じた必須フィールドを確認する。
func checkResponse(req *Request, resp *Response) error {
	switch {
	case req.IsResync():
		if resp.SQN == "" {
			return ErrInvalidResponse
		}
	case req.Protocol == ProtocolMilenage:
		if resp.XRES == "" || resp.AUTN == "" {
			return ErrInvalidResponse
		}
	default:
		if resp.SRES == "" {
			return ErrInvalidResponse
		}
	}
	return nil
}
