package model

// Registration は現在登録中の（IMSI, MSISDN）ペアを表す。
type Registration struct {
	MSISDN string `json:"msisdn"`
	IMSI   string `json:"imsi"`
}

// Rejection は受け入れを拒否されたIMSIと拒否回数を表す。
type Rejection struct {
	IMSI  string `json:"imsi"`
	Count int    `json:"count"`
}

// PendingSMS は配信待ちSMSの一覧表示用ビュー。
type PendingSMS struct {
	ID         string `json:"id"`
	FromIMSI   string `json:"from_imsi"`
	FromMSISDN string `json:"from_msisdn"`
	ToIMSI     string `json:"to_imsi"`
	ToMSISDN   string `json:"to_msisdn"`
	Attempts   int    `json:"attempts"`
	NextTry    string `json:"next_try"` // RFC3339形式
}
