package languages

// BlockComment 描述一种块注释的起止标记。
type BlockComment struct {
	Open  string
	Close string
	// Nested 为 true 时允许块注释嵌套（Rust、Swift、Kotlin、SQL）。
	Nested bool
	// LineAnchored 为 true 时起止标记必须出现在行首，且整行都算注释（Ruby 的 =begin/=end）。
	LineAnchored bool
}

// Quote 描述一种字符串字面量的定界符。
type Quote struct {
	Delimiter string
	// Escape 为 true 时反斜杠会吞掉下一个字符。
	Escape bool
}

// Syntax 是某种语言与行统计相关的词法信息。
// Quotes 中较长的定界符必须排在前面，例如 """ 先于 "。
type Syntax struct {
	LineComments  []string
	BlockComments []BlockComment
	Quotes        []Quote
}

var (
	cStyleBlock       = BlockComment{Open: "/*", Close: "*/"}
	cStyleNestedBlock = BlockComment{Open: "/*", Close: "*/", Nested: true}
	doubleQuote       = Quote{Delimiter: `"`, Escape: true}
	singleQuote       = Quote{Delimiter: `'`, Escape: true}
)

// builtinLanguages 返回内置语言清单。
// CPDName 是传给 pmd cpd --language 的标识。
func builtinLanguages() []*Language {
	return []*Language{
		{
			name:       "Swift",
			cpdName:    "swift",
			extensions: []string{".swift"},
			syntax: Syntax{
				LineComments:  []string{"//"},
				BlockComments: []BlockComment{cStyleNestedBlock},
				Quotes:        []Quote{{Delimiter: `"""`, Escape: true}, doubleQuote},
			},
		},
		{
			name:       "Java",
			cpdName:    "java",
			extensions: []string{".java"},
			syntax: Syntax{
				LineComments:  []string{"//"},
				BlockComments: []BlockComment{cStyleBlock},
				Quotes:        []Quote{{Delimiter: `"""`, Escape: true}, doubleQuote, singleQuote},
			},
		},
		{
			name:       "Kotlin",
			cpdName:    "kotlin",
			aliases:    []string{"kt"},
			extensions: []string{".kt", ".kts"},
			syntax: Syntax{
				LineComments:  []string{"//"},
				BlockComments: []BlockComment{cStyleNestedBlock},
				Quotes:        []Quote{{Delimiter: `"""`}, doubleQuote, singleQuote},
			},
		},
		{
			name:       "HTML",
			cpdName:    "html",
			extensions: []string{".html", ".htm"},
			syntax: Syntax{
				BlockComments: []BlockComment{{Open: "<!--", Close: "-->"}},
			},
		},
		{
			name:       "Rust",
			cpdName:    "rust",
			aliases:    []string{"rs"},
			extensions: []string{".rs"},
			syntax: Syntax{
				LineComments:  []string{"//"},
				BlockComments: []BlockComment{cStyleNestedBlock},
				Quotes:        []Quote{doubleQuote},
			},
		},
		{
			name:       "Go",
			cpdName:    "go",
			aliases:    []string{"golang"},
			extensions: []string{".go"},
			syntax: Syntax{
				LineComments:  []string{"//"},
				BlockComments: []BlockComment{cStyleBlock},
				Quotes:        []Quote{doubleQuote, singleQuote, {Delimiter: "`"}},
			},
		},
		{
			name:       "JavaScript",
			cpdName:    "ecmascript",
			aliases:    []string{"javascript", "js"},
			extensions: []string{".js", ".mjs", ".cjs", ".jsx"},
			syntax: Syntax{
				LineComments:  []string{"//"},
				BlockComments: []BlockComment{cStyleBlock},
				Quotes:        []Quote{doubleQuote, singleQuote, {Delimiter: "`", Escape: true}},
			},
		},
		{
			name:       "TypeScript",
			cpdName:    "typescript",
			aliases:    []string{"ts"},
			extensions: []string{".ts", ".tsx", ".mts", ".cts"},
			syntax: Syntax{
				LineComments:  []string{"//"},
				BlockComments: []BlockComment{cStyleBlock},
				Quotes:        []Quote{doubleQuote, singleQuote, {Delimiter: "`", Escape: true}},
			},
		},
		{
			name:       "Python",
			cpdName:    "python",
			aliases:    []string{"py"},
			extensions: []string{".py"},
			syntax: Syntax{
				LineComments: []string{"#"},
				Quotes: []Quote{
					{Delimiter: `"""`, Escape: true},
					{Delimiter: `'''`, Escape: true},
					doubleQuote,
					singleQuote,
				},
			},
		},
		{
			name:       "Ruby",
			cpdName:    "ruby",
			aliases:    []string{"rb"},
			extensions: []string{".rb"},
			syntax: Syntax{
				LineComments:  []string{"#"},
				BlockComments: []BlockComment{{Open: "=begin", Close: "=end", LineAnchored: true}},
				Quotes:        []Quote{doubleQuote, singleQuote},
			},
		},
		{
			name:       "C/C++",
			cpdName:    "cpp",
			aliases:    []string{"c", "c++"},
			extensions: []string{".c", ".h", ".cc", ".cpp", ".cxx", ".hh", ".hpp", ".hxx"},
			syntax: Syntax{
				LineComments:  []string{"//"},
				BlockComments: []BlockComment{cStyleBlock},
				Quotes:        []Quote{doubleQuote, singleQuote},
			},
		},
		{
			name:       "SQL",
			cpdName:    "plsql",
			aliases:    []string{"sql"},
			extensions: []string{".sql"},
			syntax: Syntax{
				LineComments:  []string{"--"},
				BlockComments: []BlockComment{cStyleNestedBlock},
				Quotes:        []Quote{{Delimiter: `'`}, {Delimiter: `"`}},
			},
		},
	}
}
