package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/gccn-chatbot/session-service/internal/core/domain"
)

func exchange(i int) []domain.Turn {
	return []domain.Turn{
		{Role: domain.RoleUser, Text: fmt.Sprintf("q%d", i)},
		{Role: domain.RoleAssistant, Text: fmt.Sprintf("a%d", i)},
	}
}

func TestHistoryRepository_GetMissingUser(t *testing.T) {
	repo := NewHistoryRepository()

	turns, err := repo.Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if turns == nil || len(turns) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", turns)
	}
}

func TestHistoryRepository_AppendPreservesOrder(t *testing.T) {
	repo := NewHistoryRepository()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := repo.Append(ctx, "u1", exchange(i)...); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	turns, _ := repo.Get(ctx, "u1")
	if len(turns) != 10 {
		t.Fatalf("expected 10 turns, got %d", len(turns))
	}
	for i := 0; i < 5; i++ {
		if turns[2*i].Text != fmt.Sprintf("q%d", i) || turns[2*i+1].Text != fmt.Sprintf("a%d", i) {
			t.Fatalf("exchange %d out of order: %+v %+v", i, turns[2*i], turns[2*i+1])
		}
	}
}

func TestHistoryRepository_GetReturnsCopy(t *testing.T) {
	repo := NewHistoryRepository()
	ctx := context.Background()
	_ = repo.Append(ctx, "u1", exchange(0)...)

	turns, _ := repo.Get(ctx, "u1")
	turns[0].Text = "mutated"

	again, _ := repo.Get(ctx, "u1")
	if again[0].Text != "q0" {
		t.Fatalf("stored history was mutated through Get result")
	}
}

func TestHistoryRepository_ClearIsIdempotentAndScoped(t *testing.T) {
	repo := NewHistoryRepository()
	ctx := context.Background()
	_ = repo.Append(ctx, "u1", exchange(0)...)
	_ = repo.Append(ctx, "u2", exchange(0)...)

	for i := 0; i < 2; i++ {
		if err := repo.Clear(ctx, "u1"); err != nil {
			t.Fatalf("clear %d: %v", i, err)
		}
	}
	if err := repo.Clear(ctx, "never-existed"); err != nil {
		t.Fatalf("clear missing: %v", err)
	}

	if turns, _ := repo.Get(ctx, "u1"); len(turns) != 0 {
		t.Fatalf("expected u1 empty, got %d", len(turns))
	}
	if turns, _ := repo.Get(ctx, "u2"); len(turns) != 2 {
		t.Fatalf("expected u2 untouched, got %d", len(turns))
	}

	// A cleared user starts a fresh record.
	_ = repo.Append(ctx, "u1", exchange(7)...)
	if turns, _ := repo.Get(ctx, "u1"); len(turns) != 2 || turns[0].Text != "q7" {
		t.Fatalf("unexpected history after clear and append: %+v", turns)
	}
}

func TestHistoryRepository_ConcurrentAppendsDoNotInterleave(t *testing.T) {
	repo := NewHistoryRepository()
	ctx := context.Background()

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = repo.Append(ctx, "u1", exchange(i)...)
		}(i)
	}
	wg.Wait()

	turns, _ := repo.Get(ctx, "u1")
	if len(turns) != 2*n {
		t.Fatalf("expected %d turns, got %d", 2*n, len(turns))
	}
	for i := 0; i < len(turns); i += 2 {
		var q, a int
		if _, err := fmt.Sscanf(turns[i].Text, "q%d", &q); err != nil {
			t.Fatalf("turn %d is not a question: %q", i, turns[i].Text)
		}
		if _, err := fmt.Sscanf(turns[i+1].Text, "a%d", &a); err != nil || a != q {
			t.Fatalf("turn %d does not answer q%d: %q", i+1, q, turns[i+1].Text)
		}
	}
}

func TestHistoryRepository_ConcurrentClearAndAppend(t *testing.T) {
	repo := NewHistoryRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = repo.Append(ctx, "u1", exchange(i)...)
		}(i)
		go func() {
			defer wg.Done()
			_ = repo.Clear(ctx, "u1")
		}()
	}
	wg.Wait()

	turns, _ := repo.Get(ctx, "u1")
	if len(turns)%2 != 0 {
		t.Fatalf("expected whole exchanges only, got %d turns", len(turns))
	}
}
