package diag

// Kind is one of the error taxonomies from the error-handling design
// (spec §7). These are tags, not Go types, so a single Report can be
// filtered/grouped by Kind without a type switch.
type Kind string

const (
	// KindMalformed covers structural violations caught without solver
	// help: guard without @exact, FSM trigger wider than one cycle,
	// missing assignment, multiple drivers, constant-as-destination,
	// user-declared ordering constraints.
	KindMalformed Kind = "malformed"

	// KindUndefined covers references to an unbound instance, invocation,
	// parameter, event, or component.
	KindUndefined Kind = "undefined"

	// KindAlreadyBound covers redeclaration of an invocation name.
	KindAlreadyBound Kind = "already_bound"

	// KindTypeError covers event-type-checker rejections.
	KindTypeError Kind = "type_error"

	// KindProofFailed covers an SMT "sat" result; Report.Data carries the
	// counterexample binding under the "model" key.
	KindProofFailed Kind = "proof_failed"

	// KindInternal covers invariant violations (dangling foreign key,
	// unpatched placeholder owner) that should never occur on
	// well-formed input and are not user-actionable.
	KindInternal Kind = "internal"
)

// Error code families, mirroring one family per pass (teacher pattern:
// PAR###/LDR###/MOD### in internal/errors/codes.go).
const (
	// EvChk (event type-checker)
	EVC001 = "EVC001" // ill-typed time expression (event + event, etc.)
	EVC002 = "EVC002" // max() applied to non-canonicalizable operands

	// Lower (AST -> IR)
	LOW001 = "LOW001" // unbound component/instance/port reference
	LOW002 = "LOW002" // missing non-defaulted parameter or event argument
	LOW003 = "LOW003" // default parameters/events not contiguous at the tail
	LOW004 = "LOW004" // redeclared invocation name
	LOW005 = "LOW005" // invoke ports/events length mismatch vs signature

	// IvChk (interval checker)
	IVC001 = "IVC001" // within(src) does not contain within(dst)
	IVC002 = "IVC002" // exact mismatch across an unguarded connect
	IVC003 = "IVC003" // guard without @exact guarantee
	IVC004 = "IVC004" // guard availability has a gap or differing event
	IVC005 = "IVC005" // FSM trigger wider than one cycle
	IVC006 = "IVC006" // event interface delay violated at an invoke
	IVC007 = "IVC007" // disjointness violated for a shared instance
	IVC008 = "IVC008" // user component declares an ordering constraint
	IVC009 = "IVC009" // unassigned input port(s) at end of component
	IVC010 = "IVC010" // SMT solver returned sat (proof failed)

	// Mono (monomorphizer)
	MONO001 = "MONO001" // parametric recursion cycle detected
	MONO002 = "MONO002" // structural invariant violated in specialized output

	// Internal (cross-cutting)
	INT001 = "INT001" // internal failure: solver-process error, or a non-diagnostic error during lowering
	INT002 = "INT002" // unpatched placeholder owner at finalize time
)
