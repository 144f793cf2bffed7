package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/danmuck/boltwire/internal/testutil/testlog"
)

func TestCatalogIsConsistent(t *testing.T) {
	testlog.Start(t)
	seen := map[byte]string{}
	for i, spec := range All() {
		if spec.Type != MessageType(i) {
			t.Fatalf("%s stored at index %d", spec.Name, i)
		}
		if prev, dup := seen[spec.Signature]; dup {
			t.Fatalf("signature %#x shared by %s and %s", spec.Signature, prev, spec.Name)
		}
		seen[spec.Signature] = spec.Name
		if spec.Arity < 0 || spec.Arity > 15 {
			t.Fatalf("%s arity=%d", spec.Name, spec.Arity)
		}
		byName, ok := ByName(spec.Name)
		if !ok || byName != spec {
			t.Fatalf("ByName(%s)=%+v", spec.Name, byName)
		}
	}
}

func TestRouteContract(t *testing.T) {
	testlog.Start(t)
	spec, ok := Lookup(MsgRoute)
	if !ok {
		t.Fatalf("route missing")
	}
	if spec.Signature != 0x66 || spec.Arity != 3 || spec.Name != "ROUTE" {
		t.Fatalf("route spec=%+v", spec)
	}
}

func TestValidate(t *testing.T) {
	testlog.Start(t)
	if err := Validate(MsgRoute, Version{Major: 4, Minor: 4}); err != nil {
		t.Fatalf("route on 4.4: %v", err)
	}
	if err := Validate(MsgRun, Version{Major: 3}); err != nil {
		t.Fatalf("run on 3.0: %v", err)
	}

	err := Validate(MsgLogon, Version{Major: 5, Minor: 0})
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.MessageType != MsgLogon || !strings.Contains(verr.Reason, "5.1") {
		t.Fatalf("unexpected validation error %+v", verr)
	}

	err = Validate(MessageType(99), Version{Major: 5, Minor: 4})
	if !errors.As(err, &verr) || verr.Reason != "unknown message_type" {
		t.Fatalf("expected unknown message_type, got %v", err)
	}
	if !strings.Contains(err.Error(), "MessageType(99)") {
		t.Fatalf("error text=%q", err.Error())
	}
}

func TestVersionOrdering(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		a, b Version
		want bool
	}{
		{Version{5, 4}, Version{5, 4}, true},
		{Version{5, 0}, Version{4, 4}, true},
		{Version{4, 4}, Version{5, 0}, false},
		{Version{4, 2}, Version{4, 3}, false},
	}
	for _, tc := range cases {
		if got := tc.a.AtLeast(tc.b); got != tc.want {
			t.Fatalf("%s.AtLeast(%s)=%v", tc.a, tc.b, got)
		}
	}
}

func TestParseVersion(t *testing.T) {
	testlog.Start(t)
	v, err := ParseVersion(" 4.3 ")
	if err != nil || v != (Version{Major: 4, Minor: 3}) {
		t.Fatalf("parse=%v err=%v", v, err)
	}
	for _, bad := range []string{"", "5", "0.1", "a.b", "5.x", "300.1"} {
		if _, err := ParseVersion(bad); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
}
