// Package events は加入者・SMSのイベントをメッセージブローカーへ通知する。
package events

import (
	"context"
	"time"
)

// ルーティングキー
const (
	TypeRegistered   = "subscriber.registered"
	TypeUnregistered = "subscriber.unregistered"
	TypeRejected     = "subscriber.rejected"
	TypeSMSDelivered = "sms.delivered"
	TypeSMSDropped   = "sms.dropped"
)

// Event は通知するイベント
type Event struct {
	Type   string    `json:"type"`
	IMSI   string    `json:"imsi,omitempty"`
	MSISDN string    `json:"msisdn,omitempty"`
	SMSID  string    `json:"sms_id,omitempty"`
	Reason string    `json:"reason,omitempty"`
	Count  int       `json:"count,omitempty"`
	Time   time.Time `json:"time"`
}

// Publisher はイベントを通知する。
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop は何もしないPublisher
type Nop struct{}

// Publish はPublisherインターフェースを実装する。
func (Nop) Publish(context.Context, Event) error { return nil }

// Close はPublisherインターフェースを実装する。
func (Nop) Close() error { return nil }
