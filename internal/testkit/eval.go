package testkit

import (
	"fmt"

	"rcgen/internal/mir"
	"rcgen/internal/symbols"
)

// ValueKind distinguishes evaluator values.
type ValueKind uint8

const (
	ValUnit ValueKind = iota
	ValInt
	ValBool
	ValPtr
	ValStruct
)

// Value is a runtime value of the evaluator.
type Value struct {
	Kind   ValueKind
	Int    int64
	Bool   bool
	Ptr    uint64
	Fields []Value
}

// Int returns an integer value.
func Int(v int64) Value { return Value{Kind: ValInt, Int: v} }

// Ptr returns a pointer value.
func Ptr(p uint64) Value { return Value{Kind: ValPtr, Ptr: p} }

// Str returns a string value with the given data pointer and length word.
// A negative length marks a small string.
func Str(data uint64, length int64) Value {
	return Value{Kind: ValStruct, Fields: []Value{Ptr(data), Int(length)}}
}

// PrimCall records one low-level count primitive invocation.
type PrimCall struct {
	Op   mir.LowLevel
	Args []Value
}

// Machine evaluates procedures of a unit and records every count primitive
// they invoke. RefCountGetPtr of a value with data pointer p yields p-8.
type Machine struct {
	Unit  *mir.Unit
	Calls []PrimCall
	Steps int

	// MaxSteps bounds evaluation; 0 means 10000.
	MaxSteps int
}

// NewMachine returns a machine over u.
func NewMachine(u *mir.Unit) *Machine {
	return &Machine{Unit: u}
}

type frame struct {
	vars  map[symbols.Symbol]Value
	joins map[mir.JoinPointID]*mir.JoinStmt
}

// Call runs the procedure named name with args.
func (m *Machine) Call(name symbols.Symbol, args ...Value) (Value, error) {
	p, ok := m.Unit.ProcByName(name)
	if !ok {
		return Value{}, fmt.Errorf("no proc %s", m.Unit.SymbolName(name))
	}
	if len(p.Args) != len(args) {
		return Value{}, fmt.Errorf("proc %s: %d args, want %d", m.Unit.SymbolName(name), len(args), len(p.Args))
	}
	f := &frame{
		vars:  make(map[symbols.Symbol]Value, 16),
		joins: make(map[mir.JoinPointID]*mir.JoinStmt),
	}
	for i, a := range p.Args {
		f.vars[a.Sym] = args[i]
	}
	return m.run(f, p.Body)
}

func (m *Machine) run(f *frame, s *mir.Stmt) (Value, error) {
	limit := m.MaxSteps
	if limit == 0 {
		limit = 10000
	}
	for s != nil {
		if m.Steps++; m.Steps > limit {
			return Value{}, fmt.Errorf("step limit %d exceeded", limit)
		}
		switch s.Kind {
		case mir.StmtLet:
			v, err := m.expr(f, &s.Let.Expr)
			if err != nil {
				return Value{}, err
			}
			f.vars[s.Let.Sym] = v
			s = s.Let.Next
		case mir.StmtRet:
			return m.lookup(f, s.Ret.Sym)
		case mir.StmtSwitch:
			cond, err := m.lookup(f, s.Switch.Cond)
			if err != nil {
				return Value{}, err
			}
			var key uint64
			switch cond.Kind {
			case ValBool:
				if cond.Bool {
					key = 1
				}
			case ValInt:
				key = uint64(cond.Int)
			default:
				return Value{}, fmt.Errorf("switch on non-scalar %s", m.Unit.SymbolName(s.Switch.Cond))
			}
			next := s.Switch.Default
			for _, b := range s.Switch.Branches {
				if b.Value == key {
					next = b.Body
					break
				}
			}
			s = next
		case mir.StmtJoin:
			f.joins[s.Join.ID] = &s.Join
			s = s.Join.Remainder
		case mir.StmtJump:
			j, ok := f.joins[s.Jump.ID]
			if !ok {
				return Value{}, fmt.Errorf("jump to unknown jp%d", s.Jump.ID)
			}
			for i, a := range s.Jump.Args {
				v, err := m.lookup(f, a)
				if err != nil {
					return Value{}, err
				}
				f.vars[j.Params[i].Sym] = v
			}
			s = j.Body
		case mir.StmtRefcounting:
			return Value{}, fmt.Errorf("unexpanded %s %s", s.Refcounting.Modify.Kind, m.Unit.SymbolName(s.Refcounting.Modify.Sym))
		default:
			return Value{}, fmt.Errorf("unknown statement kind %d", s.Kind)
		}
	}
	return Value{}, fmt.Errorf("fell off the end of a statement chain")
}

func (m *Machine) lookup(f *frame, s symbols.Symbol) (Value, error) {
	v, ok := f.vars[s]
	if !ok {
		return Value{}, fmt.Errorf("unbound %s", m.Unit.SymbolName(s))
	}
	return v, nil
}

func (m *Machine) args(f *frame, syms []symbols.Symbol) ([]Value, error) {
	out := make([]Value, len(syms))
	for i, s := range syms {
		v, err := m.lookup(f, s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *Machine) expr(f *frame, e *mir.Expr) (Value, error) {
	switch e.Kind {
	case mir.ExprLiteral:
		switch e.Literal.Kind {
		case mir.LiteralBool:
			return Value{Kind: ValBool, Bool: e.Literal.Bool}, nil
		case mir.LiteralInt:
			return Int(e.Literal.Int), nil
		default:
			return Value{}, fmt.Errorf("string literals are not supported")
		}
	case mir.ExprStruct:
		fields, err := m.args(f, e.Struct)
		if err != nil {
			return Value{}, err
		}
		if len(fields) == 0 {
			return Value{Kind: ValUnit}, nil
		}
		return Value{Kind: ValStruct, Fields: fields}, nil
	case mir.ExprStructAtIndex:
		v, err := m.lookup(f, e.StructAtIndex.Structure)
		if err != nil {
			return Value{}, err
		}
		if v.Kind != ValStruct || int(e.StructAtIndex.Index) >= len(v.Fields) {
			return Value{}, fmt.Errorf("field %d of non-struct %s", e.StructAtIndex.Index, m.Unit.SymbolName(e.StructAtIndex.Structure))
		}
		return v.Fields[e.StructAtIndex.Index], nil
	case mir.ExprCall:
		args, err := m.args(f, e.Call.Args)
		if err != nil {
			return Value{}, err
		}
		if e.Call.Kind == mir.CallByName {
			return m.Call(e.Call.Name, args...)
		}
		return m.lowLevel(e.Call.Op, args)
	}
	return Value{}, fmt.Errorf("unknown expression kind %d", e.Kind)
}

func (m *Machine) lowLevel(op mir.LowLevel, args []Value) (Value, error) {
	switch op {
	case mir.NumGte:
		return Value{Kind: ValBool, Bool: args[0].Int >= args[1].Int}, nil
	case mir.RefCountGetPtr:
		v := args[0]
		if v.Kind != ValStruct || len(v.Fields) == 0 || v.Fields[0].Kind != ValPtr {
			return Value{}, fmt.Errorf("RefCountGetPtr of a value without a data pointer")
		}
		return Ptr(v.Fields[0].Ptr - 8), nil
	case mir.RefCountInc, mir.RefCountDec, mir.RefCountDecRef:
		m.Calls = append(m.Calls, PrimCall{Op: op, Args: args})
		return Value{Kind: ValUnit}, nil
	}
	return Value{}, fmt.Errorf("unsupported lowlevel %s", op)
}
