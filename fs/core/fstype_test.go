package core_test

import (
	"testing"

	"github.com/jmgilman/storage/fs/core"
)

func TestFSType_String(t *testing.T) {
	for typ, want := range map[core.FSType]string{
		core.FSTypeUnknown: "unknown",
		core.FSTypeLocal:   "local",
		core.FSTypeMemory:  "memory",
		core.FSTypeRemote:  "remote",
		core.FSType(42):    "unknown",
	} {
		if got := typ.String(); got != want {
			t.Errorf("FSType(%d).String() = %q, want %q", int(typ), got, want)
		}
	}
}
