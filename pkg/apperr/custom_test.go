package apperr

import (
	"errors"
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	t.Run("メッセージ形式", func(t *testing.T) {
		err := NewValidationError("imsi", "must be 14-15 digits", ErrInvalidIMSI)
		got := err.Error()
		if !strings.Contains(got, "field=imsi") {
			t.Errorf("error message should contain 'field=imsi': %s", got)
		}
		if !strings.Contains(got, "message=must be 14-15 digits") {
			t.Errorf("error message should contain message: %s", got)
		}
	})

	t.Run("センチネルでの判定", func(t *testing.T) {
		err := NewValidationError("msisdn", "already used by 001990010001015", ErrDuplicateMSISDN)
		if !errors.Is(err, ErrDuplicateMSISDN) {
			t.Error("errors.Is should find the sentinel cause")
		}
		if errors.Is(err, ErrInvalidIMSI) {
			t.Error("errors.Is should not match an unrelated sentinel")
		}
	})

	t.Run("causeなし", func(t *testing.T) {
		err := NewValidationError("ki", "invalid hex", nil)
		if err.Unwrap() != nil {
			t.Error("Unwrap should return nil when no cause")
		}
	})
}

func TestValkeyError(t *testing.T) {
	t.Run("causeなし", func(t *testing.T) {
		err := NewValkeyError("HGETALL", "sub:001990010001014", nil)
		got := err.Error()
		if !strings.Contains(got, "operation=HGETALL") || !strings.Contains(got, "key=sub:001990010001014") {
			t.Errorf("unexpected message: %s", got)
		}
	})

	t.Run("causeあり", func(t *testing.T) {
		cause := errors.New("connection lost")
		err := NewValkeyError("HSET", "sub:001990010001014", cause)
		if !strings.Contains(err.Error(), "cause=connection lost") {
			t.Errorf("error message should contain cause: %s", err.Error())
		}
		if err.Unwrap() != cause {
			t.Error("Unwrap should return the cause")
		}
	})

	t.Run("センチネルのラップ", func(t *testing.T) {
		err := NewValkeyError("PING", "", ErrValkeyConnection)
		if !errors.Is(err, ErrValkeyConnection) {
			t.Error("errors.Is should find wrapped sentinel error")
		}
	})
}

func TestDispatchError(t *testing.T) {
	tests := []struct {
		name   string
		err    *DispatchError
		substr string
	}{
		{"cause", NewDispatchError("gsm.auth", "", errors.New("broken pipe")), "cause=broken pipe"},
		{"reason", NewDispatchError("msg.execute", "offline", nil), "reason=offline"},
		{"未処理", NewDispatchError("msg.execute", "", nil), "not processed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.err.Error(), tt.substr) {
				t.Errorf("Error() = %q, want substring %q", tt.err.Error(), tt.substr)
			}
		})
	}

	// causeがない場合はErrEngineDispatchとして判定できる
	if !errors.Is(NewDispatchError("msg.execute", "", nil), ErrEngineDispatch) {
		t.Error("errors.Is(ErrEngineDispatch) = false, want true")
	}
}
