package mir

import (
	"rcgen/internal/layout"
	"rcgen/internal/symbols"
)

// StmtKind enumerates statement kinds.
type StmtKind uint8

const (
	// StmtLet binds the result of an expression and continues.
	StmtLet StmtKind = iota
	// StmtRet returns a symbol.
	StmtRet
	// StmtSwitch branches on an integer or boolean symbol.
	StmtSwitch
	// StmtRefcounting is an abstract refcount instruction awaiting expansion.
	StmtRefcounting
	// StmtJoin declares a join point, then continues with its remainder.
	StmtJoin
	// StmtJump transfers control to an enclosing join point.
	StmtJump
)

func (k StmtKind) String() string {
	switch k {
	case StmtLet:
		return "let"
	case StmtRet:
		return "ret"
	case StmtSwitch:
		return "switch"
	case StmtRefcounting:
		return "refcounting"
	case StmtJoin:
		return "join"
	case StmtJump:
		return "jump"
	default:
		return "stmt?"
	}
}

// Stmt is one node of a statement chain. Let, Refcounting and Join carry the
// continuation; Ret, Switch and Jump end a chain.
type Stmt struct {
	Kind StmtKind

	Let         LetStmt
	Ret         RetStmt
	Switch      SwitchStmt
	Refcounting RefcountingStmt
	Join        JoinStmt
	Jump        JumpStmt
}

// LetStmt represents `let Sym: Layout = Expr; Next`.
type LetStmt struct {
	Sym    symbols.Symbol
	Expr   Expr
	Layout layout.LayoutID
	Next   *Stmt
}

// RetStmt represents `ret Sym`.
type RetStmt struct {
	Sym symbols.Symbol
}

// Branch is one arm of a switch.
type Branch struct {
	Value uint64
	Body  *Stmt
}

// SwitchStmt represents a multi-way branch.
type SwitchStmt struct {
	Cond       symbols.Symbol
	CondLayout layout.LayoutID
	Branches   []Branch
	Default    *Stmt
	RetLayout  layout.LayoutID
}

// RefcountingStmt represents an abstract refcount modification.
type RefcountingStmt struct {
	Modify ModifyRc
	Next   *Stmt
}

// JoinStmt declares join point ID with Params and Body, then runs Remainder.
type JoinStmt struct {
	ID        JoinPointID
	Params    []Param
	Body      *Stmt
	Remainder *Stmt
}

// JumpStmt represents a jump to join point ID.
type JumpStmt struct {
	ID   JoinPointID
	Args []symbols.Symbol
}

// ModifyKind distinguishes refcount modifications.
type ModifyKind uint8

const (
	// ModifyInc extends Amount additional references.
	ModifyInc ModifyKind = iota
	// ModifyDec ends one reference, releasing children and freeing at zero.
	ModifyDec
	// ModifyDecRef ends one reference and never releases.
	ModifyDecRef
)

func (k ModifyKind) String() string {
	switch k {
	case ModifyInc:
		return "inc"
	case ModifyDec:
		return "dec"
	case ModifyDecRef:
		return "decref"
	default:
		return "modify?"
	}
}

// ModifyRc is an abstract refcount instruction on Sym.
type ModifyRc struct {
	Kind   ModifyKind
	Sym    symbols.Symbol
	Amount uint64 // ModifyInc only
}

// Inc returns an increment of sym by amount.
func Inc(sym symbols.Symbol, amount uint64) ModifyRc {
	return ModifyRc{Kind: ModifyInc, Sym: sym, Amount: amount}
}

// Dec returns a decrement of sym.
func Dec(sym symbols.Symbol) ModifyRc {
	return ModifyRc{Kind: ModifyDec, Sym: sym}
}

// DecRef returns a non-releasing decrement of sym.
func DecRef(sym symbols.Symbol) ModifyRc {
	return ModifyRc{Kind: ModifyDecRef, Sym: sym}
}

// NewLet returns a Let statement.
func NewLet(sym symbols.Symbol, expr Expr, l layout.LayoutID, next *Stmt) *Stmt {
	return &Stmt{Kind: StmtLet, Let: LetStmt{Sym: sym, Expr: expr, Layout: l, Next: next}}
}

// NewRet returns a Ret statement.
func NewRet(sym symbols.Symbol) *Stmt {
	return &Stmt{Kind: StmtRet, Ret: RetStmt{Sym: sym}}
}

// NewRefcounting returns an abstract refcount statement.
func NewRefcounting(m ModifyRc, next *Stmt) *Stmt {
	return &Stmt{Kind: StmtRefcounting, Refcounting: RefcountingStmt{Modify: m, Next: next}}
}

// NewJump returns a Jump statement.
func NewJump(id JoinPointID, args ...symbols.Symbol) *Stmt {
	return &Stmt{Kind: StmtJump, Jump: JumpStmt{ID: id, Args: args}}
}

// Successors returns the statements control may reach next, in program order.
func (s *Stmt) Successors() []*Stmt {
	if s == nil {
		return nil
	}
	switch s.Kind {
	case StmtLet:
		return []*Stmt{s.Let.Next}
	case StmtRefcounting:
		return []*Stmt{s.Refcounting.Next}
	case StmtSwitch:
		out := make([]*Stmt, 0, len(s.Switch.Branches)+1)
		for _, b := range s.Switch.Branches {
			out = append(out, b.Body)
		}
		return append(out, s.Switch.Default)
	case StmtJoin:
		return []*Stmt{s.Join.Body, s.Join.Remainder}
	default:
		return nil
	}
}
