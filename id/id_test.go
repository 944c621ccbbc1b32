package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/tally/id"
)

func TestNew(t *testing.T) {
	t.Run("AccountID", func(t *testing.T) {
		got := id.NewAccountID()
		if got.IsNil() {
			t.Fatal("NewAccountID returned the nil ID")
		}
		if got.Prefix() != id.PrefixAccount {
			t.Errorf("prefix: got %q, want %q", got.Prefix(), id.PrefixAccount)
		}
		if !strings.HasPrefix(got.String(), "acct_") {
			t.Errorf("string: got %q, want acct_ prefix", got.String())
		}
	})

	t.Run("JournalID", func(t *testing.T) {
		got := id.NewJournalID()
		if got.Prefix() != id.PrefixJournal {
			t.Errorf("prefix: got %q, want %q", got.Prefix(), id.PrefixJournal)
		}
	})

	t.Run("Unique", func(t *testing.T) {
		a, b := id.NewAccountID(), id.NewAccountID()
		if a == b {
			t.Error("two generated IDs should differ")
		}
	})
}

func TestParse(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		original := id.NewAccountID()
		parsed, err := id.Parse(original.String())
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if parsed != original {
			t.Errorf("got %v, want %v", parsed, original)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if _, err := id.Parse(""); err == nil {
			t.Error("parsing an empty string should fail")
		}
	})

	t.Run("Garbage", func(t *testing.T) {
		if _, err := id.Parse("not-a-typeid"); err == nil {
			t.Error("parsing garbage should fail")
		}
	})
}

func TestParseWithPrefix(t *testing.T) {
	t.Run("Matching", func(t *testing.T) {
		original := id.NewAccountID()
		parsed, err := id.ParseAccountID(original.String())
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if parsed != original {
			t.Errorf("got %v, want %v", parsed, original)
		}
	})

	t.Run("CrossPrefix", func(t *testing.T) {
		jrnl := id.NewJournalID()
		if _, err := id.ParseAccountID(jrnl.String()); err == nil {
			t.Error("parsing a journal ID as an account ID should fail")
		}
	})
}

func TestBurnAddress(t *testing.T) {
	burn := id.BurnAddress()
	if !burn.IsBurn() {
		t.Error("BurnAddress should report IsBurn")
	}
	if burn.IsNil() {
		t.Error("burn address is not the nil ID")
	}
	if burn.Prefix() != id.PrefixAccount {
		t.Errorf("prefix: got %q, want %q", burn.Prefix(), id.PrefixAccount)
	}
	if id.NewAccountID().IsBurn() {
		t.Error("generated IDs should not be the burn address")
	}
	if id.BurnAddress() != burn {
		t.Error("BurnAddress should be stable")
	}
}

func TestNil(t *testing.T) {
	if !id.Nil.IsNil() {
		t.Error("Nil should report IsNil")
	}
	if id.Nil.String() != "" {
		t.Errorf("Nil string: got %q, want empty", id.Nil.String())
	}
	if id.NewAccountID().IsNil() {
		t.Error("generated IDs should not be nil")
	}
}

func TestTextMarshaling(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		original := id.NewAccountID()
		data, err := original.MarshalText()
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}

		var decoded id.ID
		if err := decoded.UnmarshalText(data); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if decoded != original {
			t.Errorf("got %v, want %v", decoded, original)
		}
	})

	t.Run("NilRoundTrip", func(t *testing.T) {
		data, err := id.Nil.MarshalText()
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		var decoded id.ID
		if err := decoded.UnmarshalText(data); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if !decoded.IsNil() {
			t.Errorf("got %v, want nil ID", decoded)
		}
	})
}
