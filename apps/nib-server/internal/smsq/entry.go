// Package smsq は配信待ちSMSのキューとアイドル処理のスケジューラを提供する。
package smsq

import (
	"time"

	"github.com/google/uuid"
	"github.com/oyaguma3/nib-server-poc/pkg/model"
)

// SystemIMSI はネットワーク自身が送信元となるSMSの送信元IMSI
const SystemIMSI = "nib_smsc"

// Entry は配信待ちSMSの1件。
type Entry struct {
	ID         string
	FromIMSI   string // 送信元IMSI（システム送信はSystemIMSI）
	FromMSISDN string
	SMSC       string // 配信時のcallerに使うSMSC番号
	ToMSISDN   string
	ToIMSI     string
	Text       string
	RPDU       string // Textが空のときに使う生のRPDU
	NextTry    time.Time
	Attempts   int // 残りの再試行回数
	CreatedAt  time.Time
}

// NewEntry は即時配信可能なEntryを生成する。
func NewEntry(fromIMSI, fromMSISDN, smsc, toMSISDN, toIMSI, text string, attempts int, now time.Time) *Entry {
	return &Entry{
		ID:         uuid.NewString(),
		FromIMSI:   fromIMSI,
		FromMSISDN: fromMSISDN,
		SMSC:       smsc,
		ToMSISDN:   toMSISDN,
		ToIMSI:     toIMSI,
		Text:       text,
		NextTry:    now,
		Attempts:   attempts,
		CreatedAt:  now,
	}
}

// Due は配信時刻に達しているかどうかを返す。
func (e *Entry) Due(now time.Time) bool {
	return !now.Before(e.NextTry)
}

// View は一覧表示用のビューを返す。
func (e *Entry) View() model.PendingSMS {
	return model.PendingSMS{
		ID:         e.ID,
		FromIMSI:   e.FromIMSI,
		FromMSISDN: e.FromMSISDN,
		ToIMSI:     e.ToIMSI,
		ToMSISDN:   e.ToMSISDN,
		Attempts:   e.Attempts,
		NextTry:    e.NextTry.UTC().Format(time.RFC3339),
	}
}
