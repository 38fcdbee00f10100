package store

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/openexch/matchcore/pkg/model"
)

func TestStoreAddGetRemove(t *testing.T) {
	s := NewStore()

	o := model.NewOrder("o-1", "ABC", model.BUY, model.LIMIT, model.GTC,
		decimal.NewFromInt(100), decimal.NewFromInt(10))
	s.Add(o)

	got, err := s.Get("o-1")
	if err != nil || got.ID != "o-1" {
		t.Fatalf("expected to find o-1, got %v err=%v", got, err)
	}

	if _, ok := s.Any(); !ok {
		t.Fatal("Any should find the tracked order")
	}

	if err := s.Remove("o-1"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := s.Get("o-1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
	if err := s.Remove("o-1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on double remove, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d", s.Len())
	}
}
