package codegen

import (
	"errors"
	"testing"

	"github.com/xplshn/gbfc/pkg/token"
)

func TestEmitterGotoEmitsMinimalMotion(t *testing.T) {
	e := NewEmitter()
	e.Goto(3)
	e.Inc()
	e.Goto(1)
	e.Output()
	e.Goto(1)

	if got, want := e.String(), ">>>+<<."; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if e.Cursor() != 1 {
		t.Errorf("cursor = %d, want 1", e.Cursor())
	}
}

func TestEmitterLoopBalanced(t *testing.T) {
	e := NewEmitter()
	e.Goto(2)
	err := e.Loop(func() error {
		e.Dec()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := e.String(), ">>[-]"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEmitterLoopPanicsOnCursorMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for a body that strands the cursor")
		}
	}()
	e := NewEmitter()
	e.Loop(func() error {
		e.Goto(1)
		return nil
	})
}

func TestEmitterLoopPropagatesBodyError(t *testing.T) {
	e := NewEmitter()
	wantErr := errors.New("boom")
	if err := e.Loop(func() error { return wantErr }); !errors.Is(err, wantErr) {
		t.Errorf("got %v, want %v", err, wantErr)
	}
}

func TestTempAllocatorStackDiscipline(t *testing.T) {
	ta := NewTempAllocator(64, 68)

	a, err := ta.Acquire(token.Token{})
	if err != nil || a != 64 {
		t.Fatalf("first acquire = %d, %v; want 64, nil", a, err)
	}
	b, _ := ta.Acquire(token.Token{})
	if b != 65 {
		t.Fatalf("second acquire = %d, want 65", b)
	}
	if ta.Live() != 2 {
		t.Errorf("Live() = %d, want 2", ta.Live())
	}

	ta.Release(b)
	c, _ := ta.Acquire(token.Token{})
	if c != 65 {
		t.Errorf("reacquire = %d, want 65", c)
	}
}

func TestTempAllocatorExhaustion(t *testing.T) {
	ta := NewTempAllocator(0, 2)
	ta.Acquire(token.Token{})
	ta.Acquire(token.Token{})
	_, err := ta.Acquire(token.Token{})
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != TempSpaceExhausted {
		t.Fatalf("got %v, want TempSpaceExhausted", err)
	}
}

func TestTempAllocatorPanicsOnNonLIFORelease(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-order release")
		}
	}()
	ta := NewTempAllocator(0, 8)
	a, _ := ta.Acquire(token.Token{})
	ta.Acquire(token.Token{})
	ta.Release(a)
}

func TestSymbolTable(t *testing.T) {
	s := NewSymbolTable(64)

	x, err := s.Declare("x", false, token.Token{})
	if err != nil || x.Addr != 0 {
		t.Fatalf("declare x: addr %d, err %v", x.Addr, err)
	}
	y, err := s.Declare("y", true, token.Token{})
	if err != nil || y.Addr != 1 {
		t.Fatalf("declare y: addr %d, err %v", y.Addr, err)
	}

	if _, err := s.Declare("x", true, token.Token{}); err == nil {
		t.Error("redeclaring x should fail")
	}

	if _, err := s.Resolve("x", token.Token{}); err != nil {
		t.Errorf("resolve x: %v", err)
	}
	if _, err := s.Resolve("ghost", token.Token{}); err == nil {
		t.Error("resolving an unknown name should fail")
	}

	if _, err := s.Assign("y", token.Token{}); err != nil {
		t.Errorf("assign y: %v", err)
	}
	var cerr *Error
	if _, err := s.Assign("x", token.Token{}); !errors.As(err, &cerr) || cerr.Kind != ImmutableAssignment {
		t.Errorf("assign x: got %v, want ImmutableAssignment", err)
	}

	unread := s.Unread()
	if len(unread) != 1 || unread[0].Name != "y" {
		t.Errorf("Unread() = %v, want just y", unread)
	}
}

func TestSymbolTableRunsIntoTempRegion(t *testing.T) {
	s := NewSymbolTable(1)
	if _, err := s.Declare("a", false, token.Token{}); err != nil {
		t.Fatal(err)
	}
	_, err := s.Declare("b", false, token.Token{})
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != TempSpaceExhausted {
		t.Fatalf("got %v, want TempSpaceExhausted", err)
	}
}
