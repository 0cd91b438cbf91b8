package codegen

import (
	"fmt"

	"github.com/xplshn/gbfc/pkg/token"
)

// TempAllocator hands out scratch cells from the temp region of the tape,
// disjoint from variable addresses. It is a stack, not a pool: expression
// evaluation is post-order, so intermediate values nest, and LIFO release
// guarantees no two live temps ever share a cell.
type TempAllocator struct {
	base  int
	limit int
	next  int
}

func NewTempAllocator(base, limit int) *TempAllocator {
	return &TempAllocator{base: base, limit: limit, next: base}
}

// Acquire reserves the next free temp cell. The cell may hold a stale value
// from an earlier expression; callers zero it before use.
func (t *TempAllocator) Acquire(tok token.Token) (int, error) {
	if t.next >= t.limit {
		return 0, &Error{Kind: TempSpaceExhausted, Value: int64(t.next), Tok: tok}
	}
	addr := t.next
	t.next++
	return addr, nil
}

// Release frees a temp cell. Releases must mirror acquisition order; a
// non-LIFO release is a generator bug.
func (t *TempAllocator) Release(addr int) {
	if addr != t.next-1 {
		panic(fmt.Sprintf("codegen: temp cell %d released out of order (stack top is %d)", addr, t.next-1))
	}
	t.next--
}

// Live returns the number of temps currently held.
func (t *TempAllocator) Live() int { return t.next - t.base }
