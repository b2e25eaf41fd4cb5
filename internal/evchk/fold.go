package evchk

import "github.com/kayagokalp/filament/internal/ast"

// AddOffset folds a nat-expression addition onto an existing offset,
// applying the peephole rules from spec §4.1:
//
//	Concrete(a) + Concrete(b)        => Concrete(a+b)
//	Concrete(a) + (Concrete(b) + x)  => Concrete(a+b) + x   (left-absorb)
//
// and otherwise builds a plain + node. Addition is commutative here, so
// the constant (if any) is always normalized to the left before
// left-absorbing.
func AddOffset(base ast.ParamExpr, add ast.ParamExpr) ast.ParamExpr {
	return addExpr(base, add)
}

func addExpr(a, b ast.ParamExpr) ast.ParamExpr {
	if an, ok := asNat(a); ok {
		if bn, ok := asNat(b); ok {
			return &ast.PNat{Value: an + bn}
		}
		if bb, ok := b.(*ast.PBinOp); ok && bb.Op == "+" {
			if ln, ok := asNat(bb.L); ok {
				return addExpr(&ast.PNat{Value: an + ln}, bb.R)
			}
			if rn, ok := asNat(bb.R); ok {
				return addExpr(&ast.PNat{Value: an + rn}, bb.L)
			}
		}
		return &ast.PBinOp{Op: "+", L: a, R: b}
	}
	if _, ok := asNat(b); ok {
		return addExpr(b, a)
	}
	return &ast.PBinOp{Op: "+", L: a, R: b}
}

func asNat(e ast.ParamExpr) (int, bool) {
	if n, ok := e.(*ast.PNat); ok {
		return n.Value, true
	}
	return 0, false
}

// MaxSums folds a max of two canonical event sums: if both share no
// event (pure constants) the larger wins outright; if both anchor the
// same event, the larger offset wins (max(G+1, G+3) = G+3, a sound
// strengthening of the peephole rule since the same event's value is
// shared). Otherwise the max stays symbolic.
func MaxSums(a, b EventSum) *Canon {
	if a.IsConcrete() && b.IsConcrete() {
		an, aok := asNat(a.Offset)
		bn, bok := asNat(b.Offset)
		if aok && bok {
			if an >= bn {
				return &Canon{Sum: &a}
			}
			return &Canon{Sum: &b}
		}
	}
	if a.Event == b.Event {
		an, aok := asNat(a.Offset)
		bn, bok := asNat(b.Offset)
		if aok && bok {
			if an >= bn {
				return &Canon{Sum: &a}
			}
			return &Canon{Sum: &b}
		}
	}
	return &Canon{Max: &[2]EventSum{a, b}}
}

// IsZero reports whether a ParamExpr is the literal constant 0.
func IsZero(e ast.ParamExpr) bool {
	n, ok := asNat(e)
	return ok && n == 0
}
