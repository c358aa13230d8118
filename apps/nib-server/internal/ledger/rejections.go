package ledger

import (
	"sort"
	"sync"

	"github.com/oyaguma3/nib-server-poc/pkg/model"
)

// Rejections は受け入れを拒否したIMSIごとの回数を数える（診断用）。
type Rejections struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewRejections は空のRejectionsを生成する。
func NewRejections() *Rejections {
	return &Rejections{counts: make(map[string]int)}
}

// Add はIMSIの拒否回数を1増やし、増加後の回数を返す。
func (r *Rejections) Add(imsi string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[imsi]++
	return r.counts[imsi]
}

// Count はIMSIの拒否回数を返す。
func (r *Rejections) Count(imsi string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[imsi]
}

// Entries は拒否一覧をIMSI順で返す。
func (r *Rejections) Entries() []model.Rejection {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Rejection, 0, len(r.counts))
	for imsi, c := range r.counts {
		out = append(out, model.Rejection{IMSI: imsi, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IMSI < out[j].IMSI })
	return out
}
