// Package ast defines the node shapes an external parser hands to
// internal/cst: a minimal statement/expression tree for the embedded DSL.
// No lexer or parser lives in this module (spec.md §1 scopes parsing out);
// this package only fixes the contract the CST builder consumes.
//
// Grounded on funxy's internal/ast Node/Statement/Expression interface
// triad (ast_core.go) and its per-node Token/Accept(Visitor) shape, trimmed
// to the statement and expression forms spec.md §3/§4.6 names — no
// generics, traits, pattern matching, modules, or async, since those are
// funxy language features with no counterpart in this DSL.
package ast

// Pos is a source location, carried on every node for diagnostics.
type Pos struct {
	Line   int
	Column int
}

// Node is the base interface every AST node implements.
type Node interface {
	Position() Pos
}

// Statement is a Node that stands on its own inside a block.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that yields a value when evaluated.
type Expression interface {
	Node
	expressionNode()
}

// Block is an ordered statement list, the body of a compound statement.
type Block struct {
	Pos   Pos
	Stmts []Statement
}

// Program is the root node: begin-block statements, main statements, and
// end-block statements, plus any func/subr definitions (spec.md §4.6: func/
// subr/begin/end are only valid at top level).
type Program struct {
	Pos      Pos
	Begin    *Block
	Main     *Block
	End      *Block
	Funcs    []*FuncDef
	Subrs    []*SubrDef
}

func (p *Program) Position() Pos { return p.Pos }

// --- expressions -----------------------------------------------------------

// IdentKind distinguishes what an Identifier's name resolves to, so the
// evaluator can dispatch without a run-time name lookup (spec invariant:
// "names are never looked up at run time" — the *kind* is fixed at CST
// build time, and for locals the build pass also resolves a frame index).
type IdentKind int

const (
	IdentContextVar IdentKind = iota // NR, NF, FNR, FILENAME, ...
	IdentFuncParam                   // resolved to a local slot by the CST builder
)

// Literal is a scalar constant: int, float, string, or bool.
type Literal struct {
	Pos Pos
	Tag string // "int", "float", "string", "bool"
	I   int64
	F   float64
	S   string
	B   bool
}

func (l *Literal) Position() Pos  { return l.Pos }
func (l *Literal) expressionNode() {}

// ContextVar references a read-only pipeline context variable (NR, NF,
// FNR, FILENAME, ...), resolved by name at CST-build time against a fixed
// table (internal/cst), never by run-time lookup.
type ContextVar struct {
	Pos  Pos
	Name string
}

func (c *ContextVar) Position() Pos  { return c.Pos }
func (c *ContextVar) expressionNode() {}

// FieldRef is $name.
type FieldRef struct {
	Pos  Pos
	Name string
}

func (f *FieldRef) Position() Pos  { return f.Pos }
func (f *FieldRef) expressionNode() {}

// IndirectFieldRef is $[expr]: the field name is computed at run time.
type IndirectFieldRef struct {
	Pos  Pos
	Name Expression
}

func (f *IndirectFieldRef) Position() Pos  { return f.Pos }
func (f *IndirectFieldRef) expressionNode() {}

// FullRecordRef is the bare $* expression.
type FullRecordRef struct{ Pos Pos }

func (f *FullRecordRef) Position() Pos  { return f.Pos }
func (f *FullRecordRef) expressionNode() {}

// OosvarRef is @name[k1][k2]... ; Keys may be empty for a bare @name.
type OosvarRef struct {
	Pos  Pos
	Name string
	Keys []Expression
}

func (o *OosvarRef) Position() Pos  { return o.Pos }
func (o *OosvarRef) expressionNode() {}

// FullOosvarRef is the bare @* expression.
type FullOosvarRef struct{ Pos Pos }

func (o *FullOosvarRef) Position() Pos  { return o.Pos }
func (o *FullOosvarRef) expressionNode() {}

// LocalRef references a local variable, resolved at CST-build time to a
// fixed frame-relative slot index. Keys addresses into a map-kind local;
// empty Keys means the whole slot.
type LocalRef struct {
	Pos       Pos
	Name      string // retained for diagnostics only
	SlotIndex int
	Keys      []Expression
}

func (l *LocalRef) Position() Pos  { return l.Pos }
func (l *LocalRef) expressionNode() {}

// EnvRef is ENV["VAR"].
type EnvRef struct {
	Pos  Pos
	Name Expression
}

func (e *EnvRef) Position() Pos  { return e.Pos }
func (e *EnvRef) expressionNode() {}

// BinaryExpr covers arithmetic, comparison, bitwise, and logical binary
// operators. Op is one of: + - * / // % < <= == != >= > & | ^ && ||.
type BinaryExpr struct {
	Pos         Pos
	Op          string
	Left, Right Expression
}

func (b *BinaryExpr) Position() Pos  { return b.Pos }
func (b *BinaryExpr) expressionNode() {}

// UnaryExpr covers unary minus and logical not.
type UnaryExpr struct {
	Pos     Pos
	Op      string // "-" or "!"
	Operand Expression
}

func (u *UnaryExpr) Position() Pos  { return u.Pos }
func (u *UnaryExpr) expressionNode() {}

// TernaryExpr is cond ? then : else.
type TernaryExpr struct {
	Pos              Pos
	Cond, Then, Else Expression
}

func (t *TernaryExpr) Position() Pos  { return t.Pos }
func (t *TernaryExpr) expressionNode() {}

// CallExpr is a function call used as an expression (func, not subr).
type CallExpr struct {
	Pos  Pos
	Name string
	Args []Expression
}

func (c *CallExpr) Position() Pos  { return c.Pos }
func (c *CallExpr) expressionNode() {}

// --- statements --------------------------------------------------------------

// AssignKind distinguishes the LHS forms of an assignment statement.
type AssignKind int

const (
	AssignField          AssignKind = iota // $x = expr
	AssignIndirectField                    // $[expr] = expr
	AssignOosvar                           // @a[...] = expr
	AssignOosvarFromOos                    // @a[...] = @b[...]
	AssignOosvarFromFull                    // @... = $*
	AssignFullFromOosvar                    // $* = @...
	AssignLocalScalar                      // local x = expr / x = expr
	AssignLocalMap                         // x[k1][k2] = expr
	AssignEnv                              // ENV["VAR"] = expr
)

// AssignStatement covers every assignment form named in spec.md §4.6.1.
type AssignStatement struct {
	Pos  Pos
	Kind AssignKind

	FieldName    string     // AssignField
	FieldNameExp Expression // AssignIndirectField

	OosvarName     string       // AssignOosvar / AssignOosvarFromOos / AssignOosvarFromFull
	OosvarKeys     []Expression // AssignOosvar / AssignOosvarFromOos / AssignOosvarFromFull
	SrcOosvarName  string       // AssignOosvarFromOos
	SrcOosvarKeys  []Expression // AssignOosvarFromOos
	DstOosvarKeys  []Expression // AssignFullFromOosvar reads FROM this path

	LocalSlot int          // AssignLocalScalar / AssignLocalMap
	LocalName string       // diagnostics only
	LocalKeys []Expression // AssignLocalMap
	DeclMask  int          // type mask for a `local`/typed declaration; -1 if not a declaration

	EnvName Expression // AssignEnv

	RHS Expression
}

func (a *AssignStatement) Position() Pos  { return a.Pos }
func (a *AssignStatement) statementNode() {}

// MapDeclStatement is `map x` declaring an empty map-kind local slot.
type MapDeclStatement struct {
	Pos       Pos
	LocalSlot int
	LocalName string
}

func (m *MapDeclStatement) Position() Pos  { return m.Pos }
func (m *MapDeclStatement) statementNode() {}

// ExprStatement is a bare expression used as a statement, or (for a filter
// program) the required final bare-boolean expression.
type ExprStatement struct {
	Pos  Pos
	Expr Expression
}

func (e *ExprStatement) Position() Pos  { return e.Pos }
func (e *ExprStatement) statementNode() {}

// IfStatement is if/elif*/else.
type IfStatement struct {
	Pos     Pos
	Conds   []Expression // one per if/elif branch
	Blocks  []*Block     // one per if/elif branch, same length as Conds
	ElseBlk *Block        // nil if no else
}

func (i *IfStatement) Position() Pos  { return i.Pos }
func (i *IfStatement) statementNode() {}

// WhileStatement is while(cond){body}.
type WhileStatement struct {
	Pos  Pos
	Cond Expression
	Body *Block
}

func (w *WhileStatement) Position() Pos  { return w.Pos }
func (w *WhileStatement) statementNode() {}

// DoWhileStatement is do{body}while(cond).
type DoWhileStatement struct {
	Pos  Pos
	Body *Block
	Cond Expression
}

func (d *DoWhileStatement) Position() Pos  { return d.Pos }
func (d *DoWhileStatement) statementNode() {}

// ForSrecStatement is for(k in $*) or for(k,v in $*).
type ForSrecStatement struct {
	Pos        Pos
	KeySlot    int
	ValSlot    int // -1 if keyless form (for (k in $*))
	KeyName    string
	ValName    string
	Body       *Block
}

func (f *ForSrecStatement) Position() Pos  { return f.Pos }
func (f *ForSrecStatement) statementNode() {}

// ForOosvarStatement is for ((k1,...,kn), v in @a[...]) or its keyless form.
type ForOosvarStatement struct {
	Pos        Pos
	OosvarName string
	BaseKeys   []Expression
	KeySlots   []int // n key-variable slots, outermost first
	KeyNames   []string
	ValSlot    int // -1 for keyless form
	ValName    string
	Body       *Block
}

func (f *ForOosvarStatement) Position() Pos  { return f.Pos }
func (f *ForOosvarStatement) statementNode() {}

// ForLocalMapStatement is the local-map analog of ForOosvarStatement.
type ForLocalMapStatement struct {
	Pos         Pos
	MapSlot     int
	MapName     string
	BaseKeys    []Expression
	KeySlots    []int
	KeyNames    []string
	ValSlot     int
	ValName     string
	Body        *Block
}

func (f *ForLocalMapStatement) Position() Pos  { return f.Pos }
func (f *ForLocalMapStatement) statementNode() {}

// TripleForStatement is for(init; cond; update){body}; init/update run as
// statement lists in the current scope (no new sub-frame), per spec.md
// §4.6.2.
type TripleForStatement struct {
	Pos    Pos
	Init   []Statement
	Cond   Expression
	Update []Statement
	Body   *Block
}

func (f *TripleForStatement) Position() Pos  { return f.Pos }
func (f *TripleForStatement) statementNode() {}

// BreakStatement / ContinueStatement are loop control, valid only inside a
// loop (enforced at CST-build time).
type BreakStatement struct{ Pos Pos }

func (b *BreakStatement) Position() Pos  { return b.Pos }
func (b *BreakStatement) statementNode() {}

type ContinueStatement struct{ Pos Pos }

func (c *ContinueStatement) Position() Pos  { return c.Pos }
func (c *ContinueStatement) statementNode() {}

// ReturnStatement is `return` (void, valid only in a subr) or `return
// expr` (valid only in a func).
type ReturnStatement struct {
	Pos   Pos
	Value Expression // nil for the void form
}

func (r *ReturnStatement) Position() Pos  { return r.Pos }
func (r *ReturnStatement) statementNode() {}

// FuncDef / SubrDef are top-level definitions. Params are frame slot
// indices 0..N-1 of the callee's own frame (the caller evaluates argument
// expressions in its own scope, then the CST-level call site places them).
type FuncDef struct {
	Pos       Pos
	Name      string
	ParamMask []int // type mask per parameter
	FrameSize int
	Body      *Block
}

func (f *FuncDef) Position() Pos { return f.Pos }

type SubrDef struct {
	Pos       Pos
	Name      string
	ParamMask []int
	FrameSize int
	Body      *Block
}

func (s *SubrDef) Position() Pos { return s.Pos }

// CallStatement invokes a subroutine for effect (no return value).
type CallStatement struct {
	Pos  Pos
	Name string
	Args []Expression
}

func (c *CallStatement) Position() Pos  { return c.Pos }
func (c *CallStatement) statementNode() {}

// --- output statements (spec.md §4.6.4) -------------------------------------

// Redirect describes an optional `> file`, `>> file`, or `| command`
// attached to an output statement. Mode "" means no redirection (write to
// the default output stream).
type Redirect struct {
	Mode     string // "", "write", "append", "pipe"
	Target   Expression
}

// EmitStatement covers emit / emitp / emit all / emit @* / lashed emit.
type EmitStatement struct {
	Pos        Pos
	WithPrefix bool // emitp
	All        bool // emit all / emit @*
	Names      []string
	BaseKeys   [][]Expression // per-name base keypath, parallel to Names
	TopNames   []string
	Redirect   Redirect
}

func (e *EmitStatement) Position() Pos  { return e.Pos }
func (e *EmitStatement) statementNode() {}

// EmitfStatement is `emitf @a, @b, @c`.
type EmitfStatement struct {
	Pos      Pos
	Names    []string
	Redirect Redirect
}

func (e *EmitfStatement) Position() Pos  { return e.Pos }
func (e *EmitfStatement) statementNode() {}

// TeeStatement is `tee > "file", $*` / `tee >> "file", $*`.
type TeeStatement struct {
	Pos      Pos
	Redirect Redirect
}

func (t *TeeStatement) Position() Pos  { return t.Pos }
func (t *TeeStatement) statementNode() {}

// PrintStatement is print/printn.
type PrintStatement struct {
	Pos        Pos
	NoNewline  bool // printn
	Value      Expression
	Redirect   Redirect
}

func (p *PrintStatement) Position() Pos  { return p.Pos }
func (p *PrintStatement) statementNode() {}

// DumpStatement is `dump > "file"`.
type DumpStatement struct {
	Pos      Pos
	Redirect Redirect
}

func (d *DumpStatement) Position() Pos  { return d.Pos }
func (d *DumpStatement) statementNode() {}

// FilterStatement sets the current record's emit flag from a strict-boolean
// expression.
type FilterStatement struct {
	Pos  Pos
	Expr Expression
}

func (f *FilterStatement) Position() Pos  { return f.Pos }
func (f *FilterStatement) statementNode() {}

// --- unset (spec.md §4.6.5) -------------------------------------------------

// UnsetTargetKind distinguishes the six unset target forms.
type UnsetTargetKind int

const (
	UnsetLocal UnsetTargetKind = iota
	UnsetOosvar
	UnsetAllOosvars
	UnsetField
	UnsetIndirectField
	UnsetFullRecord
)

// UnsetTarget is one entry in an `unset a, b, c` statement.
type UnsetTarget struct {
	Kind         UnsetTargetKind
	LocalSlot    int
	OosvarName   string
	OosvarKeys   []Expression
	FieldName    string
	FieldNameExp Expression
}

// UnsetStatement removes zero or more targets.
type UnsetStatement struct {
	Pos     Pos
	Targets []UnsetTarget
}

func (u *UnsetStatement) Position() Pos  { return u.Pos }
func (u *UnsetStatement) statementNode() {}
