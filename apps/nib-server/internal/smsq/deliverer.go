package smsq

import (
	"context"
	"strings"

	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/extmod"
	"github.com/oyaguma3/nib-server-poc/pkg/apperr"
)

// MessageExecute は端末着SMSの配信に使うメッセージ名
const MessageExecute = "msg.execute"

// Deliverer はSMSを1回配信する。
type Deliverer interface {
	Deliver(ctx context.Context, e *Entry) error
}

// Dispatcher はエンジンへメッセージを送出して応答を待つ。
type Dispatcher interface {
	Dispatch(ctx context.Context, m *extmod.Message) (*extmod.Message, error)
}

// EngineDeliverer はエンジンへmsg.executeを送出して配信する。
type EngineDeliverer struct {
	d Dispatcher
}

// NewEngineDeliverer は新しいEngineDelivererを生成する。
func NewEngineDeliverer(d Dispatcher) *EngineDeliverer {
	return &EngineDeliverer{d: d}
}

// Deliver はDelivererインターフェースを実装する。
func (d *EngineDeliverer) Deliver(ctx context.Context, e *Entry) error {
	m, err := ExecuteMessage(e)
	if err != nil {
		return err
	}
	reply, err := d.d.Dispatch(ctx, m)
	if err != nil {
		return apperr.NewDispatchError(MessageExecute, "", err)
	}
	if !reply.Processed {
		return apperr.NewDispatchError(MessageExecute, reply.Get("error"), nil)
	}
	return nil
}

// ExecuteMessage はEntryから端末着のmsg.executeを組み立てる。
func ExecuteMessage(e *Entry) (*extmod.Message, error) {
	if e.ToIMSI == "" {
		return nil, ErrNoDestination
	}
	if e.Text == "" && e.RPDU == "" {
		return nil, ErrEmptyBody
	}

	m := extmod.NewMessage(MessageExecute,
		"caller", e.SMSC,
		"called", e.ToMSISDN,
	)
	if after, ok := strings.CutPrefix(e.FromMSISDN, "+"); ok {
		m.Set("sms.caller", after)
		m.Set("sms.caller.nature", "international")
	} else {
		m.Set("sms.caller", e.FromMSISDN)
	}
	if e.Text != "" {
		m.Set("text", e.Text)
	} else {
		m.Set("rpdu", e.RPDU)
	}
	m.Set("callto", "ybts/IMSI"+e.ToIMSI)
	return m, nil
}
