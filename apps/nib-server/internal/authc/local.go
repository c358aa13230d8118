package authc

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/milenage"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/sqn"
	"github.com/oyaguma3/nib-server-poc/pkg/apperr"
)

// LocalBackend はプロセス内でMilenage計算を行う。comp128は扱わない。
type LocalBackend struct {
	calc *milenage.Calculator
}

// NewLocalBackend は新しいLocalBackendを生成する。
func NewLocalBackend(calc *milenage.Calculator) *LocalBackend {
	return &LocalBackend{calc: calc}
}

// Authenticate はMilenageでXRES/AUTNを計算する。AUTS指定時は端末側SQNを返す。
func (b *LocalBackend) Authenticate(_ context.Context, req *Request) (*Response, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.Protocol != ProtocolMilenage {
		return nil, ErrUnsupportedProtocol
	}

	ki, err := decodeHex("ki", req.Ki)
	if err != nil {
		return nil, err
	}
	op, err := decodeHex("op", req.OP)
	if err != nil {
		return nil, err
	}
	randVal, err := decodeHex("rand", req.RAND)
	if err != nil {
		return nil, err
	}

	if req.IsResync() {
		auts, err := decodeHex("auts", req.AUTS)
		if err != nil {
			return nil, err
		}
		peer, err := b.calc.ExtractSQN(ki, op, randVal, auts)
		if err != nil {
			return nil, fmt.Errorf("resync: %w", err)
		}
		return &Response{SQN: strings.ToUpper(sqn.FormatHex(peer))}, nil
	}

	seq, err := sqn.ParseHex(req.SQN)
	if err != nil {
		return nil, err
	}
	v, err := b.calc.Compute(ki, op, randVal, seq)
	if err != nil {
		return nil, err
	}

	return &Response{
		XRES: strings.ToUpper(hex.EncodeToString(v.XRES)),
		AUTN: strings.ToUpper(hex.EncodeToString(v.AUTN)),
	}, nil
}

func decodeHex(field, s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, apperr.NewValidationError(field, "must be a hex string", apperr.ErrInvalidHex)
	}
	return b, nil
}
