package challenge

// State はIMSIごとの認証チャレンジの状態
type State string

// 認証チャレンジ状態の定数
const (
	StateIdle            State = "IDLE"             // チャレンジなし
	StateChallenged      State = "CHALLENGED"       // チャレンジ送信済み
	StateResyncRequested State = "RESYNC_REQUESTED" // 再同期処理中
	StateAccepted        State = "ACCEPTED"         // 認証成功（終了状態）
	StateRejected        State = "REJECTED"         // 認証失敗（終了状態）
)

// Event は状態遷移イベント
type Event string

// 状態遷移イベントの定数
const (
	EventChallengeIssued Event = "CHALLENGE_ISSUED" // 新しいチャレンジを発行
	EventResponseOK      Event = "RESPONSE_OK"      // 応答が期待値と一致
	EventSyncFailure     Event = "SYNC_FAILURE"     // 端末からAUTSを受信
	EventRetryLimit      Event = "RETRY_LIMIT"      // 再チャレンジ回数上限
	EventNoKey           Event = "NO_KEY"           // 認証鍵が未設定
	EventBackendError    Event = "BACKEND_ERROR"    // 認証計算の失敗
	EventAbort           Event = "ABORT"            // エンジンがエラーを通知
)

// transitionTable は状態遷移テーブル
var transitionTable = map[State]map[Event]State{
	StateIdle: {
		EventChallengeIssued: StateChallenged,
		EventSyncFailure:     StateResyncRequested, // 再起動後のAUTSも受け付ける
		EventRetryLimit:      StateRejected,
		EventNoKey:           StateRejected,
		EventBackendError:    StateRejected,
		EventAbort:           StateRejected,
	},
	StateChallenged: {
		EventChallengeIssued: StateChallenged, // 不一致時の再チャレンジ
		EventResponseOK:      StateAccepted,
		EventSyncFailure:     StateResyncRequested,
		EventRetryLimit:      StateRejected,
		EventNoKey:           StateRejected,
		EventBackendError:    StateRejected,
		EventAbort:           StateRejected,
	},
	StateResyncRequested: {
		EventChallengeIssued: StateChallenged,
		EventRetryLimit:      StateRejected,
		EventNoKey:           StateRejected,
		EventBackendError:    StateRejected,
		EventAbort:           StateRejected,
	},
}

// ValidateTransition は現在の状態とイベントから次の状態を返す。
// 無効な遷移の場合はErrInvalidStateを返す。
func ValidateTransition(current State, event Event) (State, error) {
	if IsTerminal(current) {
		return "", ErrInvalidState
	}

	events, ok := transitionTable[current]
	if !ok {
		return "", ErrInvalidState
	}

	next, ok := events[event]
	if !ok {
		return "", ErrInvalidState
	}
	return next, nil
}

// IsTerminal は終了状態（ACCEPTED/REJECTED）かどうかを判定する。
func IsTerminal(state State) bool {
	return state == StateAccepted || state == StateRejected
}
