package cache

import (
	"errors"
	"testing"

	"chatexport/internal/model"
)

func countingLoader(calls *int) LoaderFunc {
	return func(key string) (*model.Conversation, error) {
		*calls++
		conv := model.NewConversationWithTitle("loaded " + key)
		conv.ID = key
		return conv, nil
	}
}

func TestLoadCachesOnRepeatKey(t *testing.T) {
	c := New()
	calls := 0
	loader := countingLoader(&calls)

	first, err := c.Load("conv_a", loader)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := c.Load("conv_a", loader)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}
	if first != second {
		t.Error("repeat load should return the held entry")
	}
}

func TestLoadReplacesOnNewKey(t *testing.T) {
	c := New()
	calls := 0
	loader := countingLoader(&calls)

	a, _ := c.Load("conv_a", loader)
	b, _ := c.Load("conv_b", loader)

	if calls != 2 {
		t.Errorf("loader called %d times, want 2", calls)
	}
	if a.ID != "conv_a" || b.ID != "conv_b" {
		t.Errorf("got IDs %q and %q", a.ID, b.ID)
	}

	// conv_a was evicted; loading it again hits the loader.
	c.Load("conv_a", loader)
	if calls != 3 {
		t.Errorf("loader called %d times, want 3", calls)
	}
}

func TestLoadErrorKeepsEntry(t *testing.T) {
	c := New()
	calls := 0
	c.Load("conv_a", countingLoader(&calls))

	wantErr := errors.New("store unavailable")
	_, err := c.Load("conv_b", func(string) (*model.Conversation, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Load error = %v, want %v", err, wantErr)
	}

	// The failed load must not evict conv_a.
	c.Load("conv_a", countingLoader(&calls))
	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}
}

func TestInvalidate(t *testing.T) {
	c := New()
	calls := 0
	loader := countingLoader(&calls)

	c.Load("conv_a", loader)
	c.Invalidate("conv_a")
	c.Load("conv_a", loader)

	if calls != 2 {
		t.Errorf("loader called %d times, want 2", calls)
	}
}

func TestInvalidateOtherKeyIsNoop(t *testing.T) {
	c := New()
	calls := 0
	loader := countingLoader(&calls)

	c.Load("conv_a", loader)
	c.Invalidate("conv_b")
	c.Load("conv_a", loader)

	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}
}

func TestClear(t *testing.T) {
	c := New()
	calls := 0
	loader := countingLoader(&calls)

	c.Load("conv_a", loader)
	c.Clear()
	c.Load("conv_a", loader)

	if calls != 2 {
		t.Errorf("loader called %d times, want 2", calls)
	}
}
