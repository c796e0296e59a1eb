package types

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewUID(t *testing.T) {
	a := NewUID()
	b := NewUID()

	if a == b {
		t.Fatalf("NewUID returned the same value twice: %s", a)
	}
	for _, uid := range []string{a, b} {
		if !strings.HasPrefix(uid, UUIDDerivedRoot+".") {
			t.Errorf("UID %s does not start with %s", uid, UUIDDerivedRoot)
		}
		if len(uid) > 64 {
			t.Errorf("UID %s exceeds 64 characters", uid)
		}
	}
}

func TestUIDFromUUID(t *testing.T) {
	id := uuid.MustParse("00000000-0000-0000-0000-00000000002a")
	if got := UIDFromUUID(id); got != "2.25.42" {
		t.Errorf("UIDFromUUID = %s, want 2.25.42", got)
	}
}

func TestUIDFromName(t *testing.T) {
	if UIDFromName("series-1") != UIDFromName("series-1") {
		t.Error("UIDFromName is not stable")
	}
	if UIDFromName("series-1") == UIDFromName("series-2") {
		t.Error("UIDFromName collides for different names")
	}
}
