// Package complexity estimates the structural complexity of a code snippet
// by counting branch and loop nodes in its tree-sitter parse tree.
package complexity

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	sitterc "github.com/tree-sitter/tree-sitter-c/bindings/go"
	sittercpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	sittergo "github.com/tree-sitter/tree-sitter-go/bindings/go"
	sitterjava "github.com/tree-sitter/tree-sitter-java/bindings/go"
	sitterjavascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	sitterpython "github.com/tree-sitter/tree-sitter-python/bindings/go"
	sittertypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// languageGrammars 支持的语言语法映射
var languageGrammars = map[string]func() *sitter.Language{
	"go": func() *sitter.Language {
		return sitter.NewLanguage(sittergo.Language())
	},
	"python": func() *sitter.Language {
		return sitter.NewLanguage(sitterpython.Language())
	},
	"javascript": func() *sitter.Language {
		return sitter.NewLanguage(sitterjavascript.Language())
	},
	"typescript": func() *sitter.Language {
		return sitter.NewLanguage(sittertypescript.LanguageTypescript())
	},
	"java": func() *sitter.Language {
		return sitter.NewLanguage(sitterjava.Language())
	},
	"c": func() *sitter.Language {
		return sitter.NewLanguage(sitterc.Language())
	},
	"cpp": func() *sitter.Language {
		return sitter.NewLanguage(sittercpp.Language())
	},
}

// decisionKinds 计入复杂度的节点类型（跨语言的分支/循环/异常处理节点）
var decisionKinds = map[string]bool{
	"if_statement":                true,
	"if_expression":               true,
	"elif_clause":                 true,
	"else_clause":                 true,
	"for_statement":               true,
	"for_in_statement":            true,
	"while_statement":             true,
	"do_statement":                true,
	"switch_statement":            true,
	"expression_switch_statement": true,
	"type_switch_statement":       true,
	"select_statement":            true,
	"case_clause":                 true,
	"match_statement":             true,
	"try_statement":               true,
	"except_clause":               true,
	"catch_clause":                true,
	"conditional_expression":      true,
	"ternary_expression":          true,
	"boolean_operator":            true,
}

// Supported 判断语言是否有可用语法
func Supported(language string) bool {
	_, ok := languageGrammars[strings.ToLower(language)]
	return ok
}

// Estimate 返回代码片段的结构复杂度估计值。基线为1，每个分支/循环/
// 异常处理节点加1。语言不支持或解析失败时退化为行数启发式。
func Estimate(language, snippet string) int {
	grammar, ok := languageGrammars[strings.ToLower(language)]
	if !ok {
		return lineEstimate(snippet)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(grammar()); err != nil {
		return lineEstimate(snippet)
	}

	content := []byte(snippet)
	tree := parser.Parse(content, nil)
	if tree == nil {
		return lineEstimate(snippet)
	}
	defer tree.Close()

	return 1 + countDecisions(tree.RootNode())
}

// countDecisions 递归统计决策节点数
func countDecisions(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	count := 0
	if decisionKinds[node.Kind()] {
		count++
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		count += countDecisions(node.NamedChild(i))
	}
	return count
}

// lineEstimate 行数启发式：每10行非空代码计1点复杂度
func lineEstimate(snippet string) int {
	lines := 0
	for _, line := range strings.Split(snippet, "\n") {
		if strings.TrimSpace(line) != "" {
			lines++
		}
	}
	if lines == 0 {
		return 0
	}
	return 1 + lines/10
}
