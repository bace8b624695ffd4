package types

// NodeType identifies the type of an AST node.
type NodeType string

// Null represents an explicit null literal distinct from undefined (nil).
// Undefined is the result of resolving an absent path; null is a value the
// expression author wrote on purpose. The two compare loosely equal but not
// strictly equal, mirroring the host-language semantics the binder emulates.
type Null struct{}

// MarshalJSON implements json.Marshaler for Null.
// This ensures that Null serializes to JSON null instead of {}.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// NullValue is the singleton value used for explicit null.
var NullValue = Null{}

// AST node types. An expression compiles into a tree of exactly these
// variants; the tree is immutable after parsing and owned by one binding.
const (
	NodeLiteral NodeType = "literal" // number, string, boolean, null, undefined, NaN, Infinity
	NodePathRef NodeType = "path"    // raw state-tree path, possibly with {tok} placeholders
	NodeUnary   NodeType = "unary"   // ! !! ~ - +
	NodeBinary  NodeType = "binary"  // arithmetic, shift, relational, equality, bitwise, logical
	NodeTernary NodeType = "ternary" // cond ? then : else
	NodeCall    NodeType = "call"    // $name(arg), registered custom function, one argument
)

// ASTNode represents a node in the Abstract Syntax Tree.
type ASTNode struct {
	Type     NodeType
	Value    interface{} // literal value for NodeLiteral
	Op       string      // operator lexeme for NodeUnary/NodeBinary
	Path     string      // raw path token for NodePathRef
	Name     string      // function name for NodeCall (without sigil)
	Position int

	// Relations
	LHS  *ASTNode // unary operand, binary left, ternary condition, call argument
	RHS  *ASTNode // binary right, ternary then-branch
	Else *ASTNode // ternary else-branch
}

// NewASTNode creates a new AST node of the specified type.
func NewASTNode(nodeType NodeType, position int) *ASTNode {
	return &ASTNode{
		Type:     nodeType,
		Position: position,
	}
}

// String returns a string representation of the node type.
func (n *ASTNode) String() string {
	return string(n.Type)
}

// CloneWithPathRewrite returns a deep copy of the subtree in which every
// PathRef's raw path has been passed through rewrite. Used by repeaters to
// substitute the iteration alias with a concrete indexed source path without
// re-tokenizing the expression text.
func (n *ASTNode) CloneWithPathRewrite(rewrite func(string) string) *ASTNode {
	if n == nil {
		return nil
	}
	c := *n
	if n.Type == NodePathRef {
		c.Path = rewrite(n.Path)
	}
	c.LHS = n.LHS.CloneWithPathRewrite(rewrite)
	c.RHS = n.RHS.CloneWithPathRewrite(rewrite)
	c.Else = n.Else.CloneWithPathRewrite(rewrite)
	return &c
}
