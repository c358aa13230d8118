// Package chatbot は自動応答番号宛てSMSへの簡易応答を生成する。
package chatbot

import (
	"strings"
	"sync"
)

// rule はキーワードと応答候補の組
type rule struct {
	keywords []string
	replies  []string
}

var rules = []rule{
	{
		keywords: []string{"hello", "hi", "hey"},
		replies: []string{
			"Hello. How are you today?",
			"Hi there. What would you like to talk about?",
		},
	},
	{
		keywords: []string{"help", "number"},
		replies: []string{
			"Your number was sent to you when you registered. Dial 333 to join the conference.",
		},
	},
	{
		keywords: []string{"i am", "i'm"},
		replies: []string{
			"How long have you been %s?",
			"Why do you say you are %s?",
		},
	},
	{
		keywords: []string{"because"},
		replies: []string{
			"Is that the real reason?",
			"What other reasons come to mind?",
		},
	},
	{
		keywords: []string{"bye", "goodbye"},
		replies: []string{
			"Goodbye. Thank you for talking to me.",
		},
	},
}

var fallback = []string{
	"Please tell me more.",
	"I see. Go on.",
	"How does that make you feel?",
	"Why do you say that?",
}

// maxReply はSMS1通に収める応答の最大文字数
const maxReply = 160

// Bot は送信元ごとに会話の順番を覚える応答器。
type Bot struct {
	mu    sync.Mutex
	turns map[string]int
}

// New は新しいBotを生成する。
func New() *Bot {
	return &Bot{turns: make(map[string]int)}
}

// Reply はfromからのtextに対する応答を返す。
func (b *Bot) Reply(text, from string) string {
	b.mu.Lock()
	turn := b.turns[from]
	b.turns[from] = turn + 1
	b.mu.Unlock()

	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return "You did not say anything."
	}

	for _, r := range rules {
		for _, kw := range r.keywords {
			idx := keywordIndex(lower, kw)
			if idx < 0 {
				continue
			}
			reply := r.replies[turn%len(r.replies)]
			if strings.Contains(reply, "%s") {
				rest := strings.Trim(lower[idx+len(kw):], " .!?")
				if rest == "" {
					rest = "like that"
				}
				reply = strings.Replace(reply, "%s", reflect(rest), 1)
			}
			return truncate(reply)
		}
	}
	return fallback[turn%len(fallback)]
}

// Forget は送信元の会話状態を破棄する。
func (b *Bot) Forget(from string) {
	b.mu.Lock()
	delete(b.turns, from)
	b.mu.Unlock()
}

// keywordIndex は単語境界で一致したキーワードの位置を返す。
func keywordIndex(s, kw string) int {
	for off := 0; ; {
		i := strings.Index(s[off:], kw)
		if i < 0 {
			return -1
		}
		i += off
		end := i + len(kw)
		if (i == 0 || !isLetter(s[i-1])) && (end == len(s) || !isLetter(s[end])) {
			return i
		}
		off = i + 1
	}
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z'
}

var reflections = map[string]string{
	"i":    "you",
	"me":   "you",
	"my":   "your",
	"am":   "are",
	"you":  "I",
	"your": "my",
}

// reflect は一人称と二人称を入れ替える。
func reflect(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if r, ok := reflections[w]; ok {
			words[i] = r
		}
	}
	return strings.Join(words, " ")
}

func truncate(s string) string {
	if len(s) <= maxReply {
		return s
	}
	return s[:maxReply]
}
