package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

func init() {
	Register(&Spec{
		Language: "Python",
		Grammar:  python.GetLanguage(),
		Decls: NodeTypes{
			Function: "function_definition",
			Method:   "function_definition",
			Class:    "class_definition",
		},
		Bodies: []string{"block"},
		Branches: []string{
			"if_statement", "elif_clause", "for_statement", "while_statement",
			"except_clause", "conditional_expression", "boolean_operator",
			"case_clause", "if_clause",
		},
	})

	Register(&Spec{
		Language: "Go",
		Grammar:  golang.GetLanguage(),
		Decls: NodeTypes{
			Function: "function_declaration",
			Method:   "method_declaration",
			Class:    "type_declaration",
		},
		Bodies: []string{"block"},
		Branches: []string{
			"if_statement", "for_statement",
			"expression_case", "type_case", "communication_case",
		},
	})

	jsDecls := NodeTypes{
		Function: "function_declaration",
		Method:   "method_definition",
		Class:    "class_declaration",
	}
	jsBranches := []string{
		"if_statement", "for_statement", "for_in_statement",
		"while_statement", "do_statement", "switch_case",
		"catch_clause", "ternary_expression",
	}
	Register(&Spec{
		Language: "JavaScript",
		Grammar:  javascript.GetLanguage(),
		Decls:    jsDecls,
		Bodies:   []string{"statement_block"},
		Branches: jsBranches,
	})

	Register(&Spec{
		Language: "TypeScript",
		Grammar:  typescript.GetLanguage(),
		AltGrammars: map[string]*sitter.Language{
			".tsx": tsx.GetLanguage(),
		},
		Decls:    jsDecls,
		Bodies:   []string{"statement_block"},
		Branches: jsBranches,
	})

	Register(&Spec{
		Language: "Rust",
		Grammar:  rust.GetLanguage(),
		Decls: NodeTypes{
			Function: "function_item",
			Method:   "function_item",
			Class:    "impl_item",
		},
		Bodies: []string{"block"},
		Branches: []string{
			"if_expression", "match_arm", "while_expression",
			"loop_expression", "for_expression",
		},
	})

	cDecls := NodeTypes{
		Function: "function_definition",
		Method:   "function_definition",
		Class:    "struct_specifier",
	}
	cBranches := []string{
		"if_statement", "for_statement", "while_statement",
		"do_statement", "case_statement", "conditional_expression",
	}
	Register(&Spec{
		Language: "C",
		Grammar:  c.GetLanguage(),
		Decls:    cDecls,
		Bodies:   []string{"compound_statement"},
		Branches: cBranches,
	})

	Register(&Spec{
		Language: "C/C++ Header",
		Grammar:  c.GetLanguage(),
		Decls:    cDecls,
		Bodies:   []string{"compound_statement"},
		Branches: cBranches,
	})

	Register(&Spec{
		Language: "C++",
		Grammar:  cpp.GetLanguage(),
		Decls: NodeTypes{
			Function: "function_definition",
			Method:   "function_definition",
			Class:    "class_specifier",
		},
		Bodies: []string{"compound_statement"},
		Branches: []string{
			"if_statement", "for_statement", "while_statement",
			"do_statement", "case_statement", "conditional_expression",
			"catch_clause",
		},
	})

	Register(&Spec{
		Language: "Java",
		Grammar:  java.GetLanguage(),
		Decls: NodeTypes{
			Function: "method_declaration",
			Method:   "method_declaration",
			Class:    "class_declaration",
		},
		Bodies: []string{"block"},
		Branches: []string{
			"if_statement", "for_statement", "enhanced_for_statement",
			"while_statement", "do_statement", "switch_label",
			"catch_clause", "ternary_expression",
		},
	})

	Register(&Spec{
		Language: "Shell",
		Grammar:  bash.GetLanguage(),
		Decls: NodeTypes{
			Function: "function_definition",
			Method:   "function_definition",
		},
		Bodies: []string{"compound_statement"},
		Branches: []string{
			"if_statement", "elif_clause", "for_statement",
			"while_statement", "case_item",
		},
	})
}
