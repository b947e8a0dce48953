package clone

// grammar describes the token patterns for one format: an ordered set of
// alternatives the scanner tries at each position (§4.1). Comments and
// strings are tried first since their delimiters would otherwise be
// misread as operators; within an alternative the scanner is always
// greedy and longest-match.
type grammar struct {
	lineComments  []string
	blockComments [][2]string
	keywords      map[string]bool
}

var registry = map[Format]grammar{
	FormatGo:         {lineComments: []string{"//"}, blockComments: [][2]string{{"/*", "*/"}}, keywords: goKeywords},
	FormatRust:       {lineComments: []string{"//"}, blockComments: [][2]string{{"/*", "*/"}}, keywords: rustKeywords},
	FormatPython:     {lineComments: []string{"#"}, keywords: pythonKeywords},
	FormatTypeScript: {lineComments: []string{"//"}, blockComments: [][2]string{{"/*", "*/"}}, keywords: jsKeywords},
	FormatTSX:        {lineComments: []string{"//"}, blockComments: [][2]string{{"/*", "*/"}}, keywords: jsKeywords},
	FormatJavaScript: {lineComments: []string{"//"}, blockComments: [][2]string{{"/*", "*/"}}, keywords: jsKeywords},
	FormatJava:       {lineComments: []string{"//"}, blockComments: [][2]string{{"/*", "*/"}}, keywords: javaKeywords},
	FormatC:          {lineComments: []string{"//"}, blockComments: [][2]string{{"/*", "*/"}}, keywords: cKeywords},
	FormatCPP:        {lineComments: []string{"//"}, blockComments: [][2]string{{"/*", "*/"}}, keywords: cppKeywords},
	FormatCSharp:     {lineComments: []string{"//"}, blockComments: [][2]string{{"/*", "*/"}}, keywords: csharpKeywords},
	FormatRuby:       {lineComments: []string{"#"}, blockComments: [][2]string{{"=begin", "=end"}}, keywords: rubyKeywords},
	FormatPHP:        {lineComments: []string{"//", "#"}, blockComments: [][2]string{{"/*", "*/"}}, keywords: phpKeywords},
	FormatBash:       {lineComments: []string{"#"}, keywords: bashKeywords},
}

// Registered reports whether format has a registered grammar.
func Registered(format Format) bool {
	_, ok := registry[format]
	return ok
}

func toSet(words ...string) map[string]bool {
	s := make(map[string]bool, len(words))
	for _, w := range words {
		s[w] = true
	}
	return s
}

var goKeywords = toSet(
	"func", "return", "if", "else", "for", "range", "switch", "case", "default",
	"break", "continue", "goto", "fallthrough", "defer", "go", "select", "chan",
	"map", "struct", "interface", "type", "var", "const", "package", "import",
	"nil", "true", "false",
)

var rustKeywords = toSet(
	"fn", "let", "mut", "match", "loop", "while", "impl", "trait", "mod", "use",
	"pub", "crate", "self", "Self", "where", "async", "await", "static", "extern",
	"unsafe", "enum", "move", "ref", "as", "in", "if", "else", "for", "return",
	"struct", "true", "false",
)

var pythonKeywords = toSet(
	"def", "class", "if", "elif", "else", "try", "except", "finally", "with",
	"lambda", "yield", "assert", "raise", "pass", "del", "global", "nonlocal",
	"and", "or", "not", "is", "from", "import", "for", "while", "return", "in",
	"True", "False", "None",
)

var jsKeywords = toSet(
	"function", "new", "this", "super", "extends", "implements", "export",
	"throw", "catch", "instanceof", "typeof", "void", "delete", "debugger",
	"var", "let", "const", "if", "else", "for", "while", "return", "class",
	"import", "from", "async", "await", "null", "undefined", "true", "false",
)

var javaKeywords = toSet(
	"public", "private", "protected", "class", "interface", "extends",
	"implements", "static", "final", "void", "new", "this", "super", "return",
	"if", "else", "for", "while", "try", "catch", "finally", "throw", "throws",
	"import", "package", "null", "true", "false",
)

var cKeywords = toSet(
	"int", "char", "float", "double", "void", "struct", "union", "enum",
	"typedef", "static", "const", "return", "if", "else", "for", "while",
	"switch", "case", "default", "break", "continue", "sizeof", "goto",
)

var cppKeywords = mergeSets(cKeywords, toSet(
	"class", "public", "private", "protected", "namespace", "template",
	"typename", "new", "delete", "this", "virtual", "override", "friend",
	"using", "true", "false", "nullptr",
))

var csharpKeywords = mergeSets(javaKeywords, toSet(
	"namespace", "using", "var", "readonly", "sealed", "abstract", "override",
	"partial", "delegate", "event", "async", "await", "null",
))

var rubyKeywords = toSet(
	"def", "end", "class", "module", "if", "elsif", "else", "unless", "while",
	"until", "for", "in", "do", "begin", "rescue", "ensure", "yield", "return",
	"require", "require_relative", "attr_accessor", "nil", "true", "false",
	"self",
)

var phpKeywords = toSet(
	"function", "class", "public", "private", "protected", "static", "return",
	"if", "elseif", "else", "foreach", "while", "for", "echo", "new", "this",
	"namespace", "use", "require", "require_once", "include", "null", "true",
	"false",
)

var bashKeywords = toSet(
	"if", "then", "else", "elif", "fi", "for", "while", "do", "done", "case",
	"esac", "function", "return", "local", "export", "in",
)

func mergeSets(sets ...map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for _, s := range sets {
		for k := range s {
			out[k] = true
		}
	}
	return out
}
