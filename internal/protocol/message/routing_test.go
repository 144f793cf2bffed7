package message

import (
	"errors"
	"testing"
)

func TestParseRoutingContext(t *testing.T) {
	ctx, err := ParseRoutingContext("neo4j://db.example:7687?region=eu&policy=fast%20lane")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ctx.Len() != 3 {
		t.Fatalf("len=%d pairs=%v", ctx.Len(), ctx.Pairs())
	}
	if v, _ := ctx.Get("policy"); v != "fast lane" {
		t.Fatalf("policy=%q", v)
	}
	if v, _ := ctx.Get(AddressKey); v != "db.example:7687" {
		t.Fatalf("address=%q", v)
	}
	if !ctx.ServerRoutingEnabled() {
		t.Fatalf("routing uri should enable server routing")
	}
}

func TestParseRoutingContextDirectURI(t *testing.T) {
	for _, raw := range []string{"bolt://db:7687", "bolt+s://db:7687"} {
		ctx, err := ParseRoutingContext(raw)
		if err != nil {
			t.Fatalf("%s: %v", raw, err)
		}
		if ctx.Len() != 0 || ctx.ServerRoutingEnabled() {
			t.Fatalf("%s: direct uri produced routing %v", raw, ctx.Pairs())
		}
	}
}

func TestParseRoutingContextRejects(t *testing.T) {
	bad := []string{
		"neo4j://host?region=",
		"neo4j://host?=eu",
		"neo4j://host?region",
		"neo4j://host?address=other",
		"neo4j://host?a=1&a=2",
		"neo4j://host?a=%zz",
		"bolt://host?region=eu",
	}
	for _, raw := range bad {
		if _, err := ParseRoutingContext(raw); !errors.Is(err, ErrInvalidRoutingContext) {
			t.Fatalf("%s: expected ErrInvalidRoutingContext, got %v", raw, err)
		}
	}
}

func TestRoutingContextPairsIsCopy(t *testing.T) {
	ctx := NewRoutingContext(map[string]string{"k": "v"})
	pairs := ctx.Pairs()
	pairs["k"] = "changed"
	if v, _ := ctx.Get("k"); v != "v" {
		t.Fatalf("context mutated through Pairs: %q", v)
	}
	if EmptyRoutingContext.Len() != 0 || EmptyRoutingContext.ServerRoutingEnabled() {
		t.Fatalf("empty context not empty")
	}
}

func TestBookmarksSkipEmpty(t *testing.T) {
	bms := Bookmarks("a", "", "b")
	if len(bms) != 2 || bms[0].Value() != "a" || bms[1].Value() != "b" {
		t.Fatalf("bookmarks=%v", bms)
	}
	if NewBookmark("x").Value() != "x" {
		t.Fatalf("bookmark value")
	}
}
