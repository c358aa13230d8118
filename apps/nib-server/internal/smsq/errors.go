package smsq

import "errors"

var (
	// ErrEmptyBody は本文もRPDUもないSMSのエラー
	ErrEmptyBody = errors.New("sms has neither text nor rpdu")
	// ErrNoDestination は配信先IMSIが未設定のエラー
	ErrNoDestination = errors.New("sms has no destination imsi")
)
