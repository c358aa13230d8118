// Package ledger は登録中の加入者（番号とIMSIの対応）と拒否カウンタを保持する。
package ledger

import (
	"sort"
	"sync"

	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/msisdn"
	"github.com/oyaguma3/nib-server-poc/pkg/model"
)

// Ledger は現在登録中の番号→IMSIの対応表。
// 番号は正規形（"+"付き）で保持し、1番号1IMSI・1IMSI1番号を保証する。
type Ledger struct {
	mu       sync.RWMutex
	byNumber map[string]string
	byIMSI   map[string]string
}

// New は空のLedgerを生成する。
func New() *Ledger {
	return &Ledger{
		byNumber: make(map[string]string),
		byIMSI:   make(map[string]string),
	}
}

// Register は番号とIMSIを対応付ける。
// 同じIMSIが別の番号で登録済みなら古い対応を外す。
// 番号が他のIMSIに使われている場合はその対応を置き換える。
// 登録した正規形の番号を返す。
func (l *Ledger) Register(number, imsi string) string {
	n := msisdn.Canonical(number)
	if n == "" || imsi == "" {
		return ""
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if old, ok := l.byIMSI[imsi]; ok && old != n {
		delete(l.byNumber, old)
	}
	if prev, ok := l.byNumber[n]; ok && prev != imsi {
		delete(l.byIMSI, prev)
	}
	l.byNumber[n] = imsi
	l.byIMSI[imsi] = n
	return n
}

// Unregister は番号の登録を外し、外したIMSIを返す。
func (l *Ledger) Unregister(number string) (string, bool) {
	n := msisdn.Canonical(number)

	l.mu.Lock()
	defer l.mu.Unlock()

	imsi, ok := l.byNumber[n]
	if !ok {
		return "", false
	}
	delete(l.byNumber, n)
	delete(l.byIMSI, imsi)
	return imsi, true
}

// RemoveIMSI はIMSIの登録を外し、外した番号を返す。
func (l *Ledger) RemoveIMSI(imsi string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, ok := l.byIMSI[imsi]
	if !ok {
		return "", false
	}
	delete(l.byIMSI, imsi)
	delete(l.byNumber, n)
	return n, true
}

// LookupByIMSI はIMSIの登録番号を返す。
func (l *Ledger) LookupByIMSI(imsi string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n, ok := l.byIMSI[imsi]
	return n, ok
}

// LookupByNumber は番号に対応するIMSIを返す。
// 正規形の完全一致を優先し、なければ末尾一致で探す。
// 末尾一致が複数ある場合は一致桁数の長いもの、同じなら番号の辞書順で先のものを選ぶ。
func (l *Ledger) LookupByNumber(number string) (string, bool) {
	n := msisdn.Canonical(number)
	if n == "" {
		return "", false
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if imsi, ok := l.byNumber[n]; ok {
		return imsi, true
	}

	best, bestLen := "", 0
	for reg := range l.byNumber {
		m := msisdn.MatchLength(reg, n)
		if m == 0 {
			continue
		}
		if m > bestLen || (m == bestLen && reg < best) {
			best, bestLen = reg, m
		}
	}
	if bestLen == 0 {
		return "", false
	}
	return l.byNumber[best], true
}

// Available は番号が未登録かどうかを返す（正規形の完全一致で判定）。
func (l *Ledger) Available(number string) bool {
	n := msisdn.Canonical(number)
	if n == "" {
		return false
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	_, used := l.byNumber[n]
	return !used
}

// Retain はkeepがfalseを返した登録を外し、外した登録を返す。
func (l *Ledger) Retain(keep func(number, imsi string) bool) []model.Registration {
	l.mu.Lock()
	defer l.mu.Unlock()

	var removed []model.Registration
	for n, imsi := range l.byNumber {
		if keep(n, imsi) {
			continue
		}
		delete(l.byNumber, n)
		delete(l.byIMSI, imsi)
		removed = append(removed, model.Registration{MSISDN: n, IMSI: imsi})
	}
	sortRegistrations(removed)
	return removed
}

// Entries は登録一覧を番号順で返す。
func (l *Ledger) Entries() []model.Registration {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.Registration, 0, len(l.byNumber))
	for n, imsi := range l.byNumber {
		out = append(out, model.Registration{MSISDN: n, IMSI: imsi})
	}
	sortRegistrations(out)
	return out
}

// Len は登録数を返す。
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.byNumber)
}

func sortRegistrations(r []model.Registration) {
	sort.Slice(r, func(i, j int) bool { return r[i].MSISDN < r[j].MSISDN })
}
