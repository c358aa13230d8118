package store

import (
	"github.com/alicebob/miniredis/v2"
	"github.com/oyaguma3/nib-server-poc/pkg/model"
)

// seedSubscriber は管理側が書き込む形式で sub:{IMSI} Hashを用意する。
// 空のフィールドは書き込まない。
func seedSubscriber(mr *miniredis.Miniredis, sub *model.Subscriber) {
	active := "off"
	if sub.Active {
		active = "on"
	}
	fields := []string{"active", active}
	for _, kv := range [][2]string{
		{"msisdn", sub.MSISDN},
		{"ki", sub.Ki},
		{"op", sub.OP},
		{"imsi_type", sub.IMSIType},
		{"short_number", sub.ShortNumber},
		{"sqn", sub.SQN},
	} {
		if kv[1] != "" {
			fields = append(fields, kv[0], kv[1])
		}
	}
	mr.HSet(subscriberKey(sub.IMSI), fields...)
}
