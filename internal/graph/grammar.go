package graph

// grammar lists, for one language, the tree-sitter node kinds the extractor
// cares about. Kinds not listed are walked through without effect.
type grammar struct {
	// functions are node kinds that open a new function scope.
	functions map[string]bool

	// params are the kinds of parameter nodes inside the "parameters" field.
	params map[string]bool

	// paramIdentifier, when set, is the identifier kind counted inside a
	// parameter node that can declare several names ("a, b int" in Go).
	paramIdentifier string

	// skipParams holds receiver-like parameter texts that do not count.
	skipParams map[string]bool

	// branches add one to cyclomatic complexity.
	branches map[string]bool

	// logicalOps are operators of binary nodes that add one to complexity.
	logicalOps map[string]bool

	// binaryKinds are node kinds checked against logicalOps.
	binaryKinds map[string]bool

	// nesting are control-flow kinds that increase nesting depth.
	nesting map[string]bool

	// imports maps an import node kind to the field holding the specifier.
	// An empty field name means "first string-like child".
	imports map[string]string

	// fromImport is the import kind whose bare relative form ("from . import
	// a, b") imports submodules by name.
	fromImport string
}

func set(kinds ...string) map[string]bool {
	m := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}

var grammars = map[Language]*grammar{
	LangGo: {
		functions:       set("function_declaration", "method_declaration", "func_literal"),
		params:          set("parameter_declaration", "variadic_parameter_declaration"),
		paramIdentifier: "identifier",
		branches: set("if_statement", "for_statement", "expression_case", "type_case",
			"communication_case"),
		logicalOps:  set("&&", "||"),
		binaryKinds: set("binary_expression"),
		nesting: set("if_statement", "for_statement", "expression_switch_statement",
			"type_switch_statement", "select_statement"),
		imports: map[string]string{"import_spec": "path"},
	},
	LangTypeScript: {
		functions: set("function_declaration", "function_expression", "arrow_function",
			"method_definition", "generator_function_declaration"),
		params: set("required_parameter", "optional_parameter", "identifier",
			"assignment_pattern", "rest_pattern", "object_pattern", "array_pattern"),
		skipParams: set("this"),
		branches: set("if_statement", "for_statement", "for_in_statement", "while_statement",
			"do_statement", "switch_case", "catch_clause", "ternary_expression"),
		logicalOps:  set("&&", "||", "??"),
		binaryKinds: set("binary_expression"),
		nesting: set("if_statement", "for_statement", "for_in_statement", "while_statement",
			"do_statement", "switch_statement", "try_statement"),
		imports: map[string]string{"import_statement": "source", "export_statement": "source"},
	},
	LangPython: {
		functions: set("function_definition", "lambda"),
		params: set("identifier", "typed_parameter", "default_parameter",
			"typed_default_parameter", "list_splat_pattern", "dictionary_splat_pattern"),
		skipParams: set("self", "cls"),
		branches: set("if_statement", "elif_clause", "for_statement", "while_statement",
			"except_clause", "conditional_expression", "case_clause"),
		logicalOps:  set("and", "or"),
		binaryKinds: set("boolean_operator"),
		nesting: set("if_statement", "for_statement", "while_statement", "try_statement",
			"with_statement", "match_statement"),
		imports:    map[string]string{"import_from_statement": "module_name", "import_statement": "name"},
		fromImport: "import_from_statement",
	},
	LangRust: {
		functions:  set("function_item", "closure_expression"),
		params:     set("parameter", "identifier"),
		skipParams: set("self", "&self", "&mut self", "mut self"),
		branches: set("if_expression", "for_expression", "while_expression", "loop_expression",
			"match_arm"),
		logicalOps:  set("&&", "||"),
		binaryKinds: set("binary_expression"),
		nesting: set("if_expression", "for_expression", "while_expression", "loop_expression",
			"match_expression"),
		imports: map[string]string{"use_declaration": "argument"},
	},
}
