package muql

// CompareOp is a WHERE/predicate comparison operator.
type CompareOp string

const (
	CmpEQ   CompareOp = "="
	CmpNE   CompareOp = "!="
	CmpGT   CompareOp = ">"
	CmpGTE  CompareOp = ">="
	CmpLT   CompareOp = "<"
	CmpLTE  CompareOp = "<="
)

// Condition is one "field op value" WHERE term. MUQL supports only a flat
// conjunction of terms (AND), matching the resource-bounded, non-Turing-
// complete surface spec §4.8 describes.
type Condition struct {
	Field string
	Op    CompareOp
	Value interface{} // string or float64
}

// OrderBy is an optional ORDER BY clause.
type OrderBy struct {
	Field string
	Desc  bool
}

// SelectStmt is `SELECT fields FROM <node_type_plural> [WHERE ...] [ORDER BY
// ...] [LIMIT n]`.
type SelectStmt struct {
	Fields     []string // ["*"] for all
	EntityKind string   // plural: functions, classes, modules
	Where      []Condition
	Order      *OrderBy
	Limit      int
}

// ShowRelation is one of the fixed relation kinds a SHOW clause accepts.
type ShowRelation string

const (
	RelDependencies   ShowRelation = "dependencies"
	RelDependents     ShowRelation = "dependents"
	RelImports        ShowRelation = "imports"
	RelCallers        ShowRelation = "callers"
	RelCallees        ShowRelation = "callees"
	RelInheritance    ShowRelation = "inheritance"
	RelImplementations ShowRelation = "implementations"
)

// ShowStmt is `SHOW <rel> OF <identifier> [DEPTH n]`.
type ShowStmt struct {
	Relation ShowRelation
	Of       string
	Depth    int
}

// FindPredicateKind is the closed set of FIND predicate kinds.
type FindPredicateKind string

const (
	PredCalling       FindPredicateKind = "calling"
	PredCalledBy      FindPredicateKind = "called_by"
	PredImplementing  FindPredicateKind = "implementing"
	PredInheriting    FindPredicateKind = "inheriting"
	PredWithDecorator FindPredicateKind = "with_decorator"
	PredMatching      FindPredicateKind = "matching"
	PredSimilarTo     FindPredicateKind = "similar_to"
)

// FindPredicate is one FIND predicate clause.
type FindPredicate struct {
	Kind FindPredicateKind
	Arg  string
}

// FindStmt is `FIND <node_type> <predicate>`.
type FindStmt struct {
	EntityKind string // singular: function, class, module
	Predicate  FindPredicate
}

// PathStmt is `PATH FROM a TO b [MAX DEPTH n] [VIA <edge_type>]`.
type PathStmt struct {
	From     string
	To       string
	MaxDepth int
	Via      string
}

// AnalyzeKind is the closed set of ANALYZE kinds.
type AnalyzeKind string

const (
	AnalyzeCoupling   AnalyzeKind = "coupling"
	AnalyzeCohesion   AnalyzeKind = "cohesion"
	AnalyzeComplexity AnalyzeKind = "complexity"
	AnalyzeHotspots   AnalyzeKind = "hotspots"
	AnalyzeCircular   AnalyzeKind = "circular"
	AnalyzeUnused     AnalyzeKind = "unused"
	AnalyzeImpact     AnalyzeKind = "impact"
)

// AnalyzeStmt is `ANALYZE <kind> [FOR <identifier>]`.
type AnalyzeStmt struct {
	Kind AnalyzeKind
	For  string
}

// Statement is the parsed form of any of MUQL's five top-level forms.
// Exactly one field is non-nil.
type Statement struct {
	Select  *SelectStmt
	Show    *ShowStmt
	Find    *FindStmt
	Path    *PathStmt
	Analyze *AnalyzeStmt
}
