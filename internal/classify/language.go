package classify

// Unknown is returned for files no rule matches. It never participates in
// primary-language selection.
const Unknown = "unknown"

type extEntry struct {
	Ext      string
	Language string
}

// extTable maps extensions to display names. Declaration order matters:
// LanguageRank uses the first occurrence of a language to break ties when two
// languages have equal line counts.
var extTable = []extEntry{
	{".py", "Python"},
	{".js", "JavaScript"},
	{".jsx", "JavaScript"},
	{".ts", "TypeScript"},
	{".tsx", "TypeScript"},
	{".java", "Java"},
	{".c", "C"},
	{".cpp", "C++"},
	{".h", "C/C++ Header"},
	{".cs", "C#"},
	{".go", "Go"},
	{".rs", "Rust"},
	{".rb", "Ruby"},
	{".php", "PHP"},
	{".html", "HTML"},
	{".css", "CSS"},
	{".scss", "SCSS"},
	{".md", "Markdown"},
	{".json", "JSON"},
	{".yml", "YAML"},
	{".yaml", "YAML"},
	{".sh", "Shell"},
	{".bat", "Batch"},
	{".ps1", "PowerShell"},
}

// filenameTable maps exact (case-insensitive) filenames without a useful
// extension to display names.
var filenameTable = map[string]string{
	"dockerfile": "Dockerfile",
	"makefile":   "Makefile",
}

// shebangTable maps interpreter basenames to display names. Versioned
// interpreters (python3, ruby3.3) are normalised before lookup.
var shebangTable = map[string]string{
	"python": "Python",
	"sh":     "Shell",
	"bash":   "Shell",
	"zsh":    "Shell",
	"dash":   "Shell",
	"node":   "JavaScript",
	"ruby":   "Ruby",
	"php":    "PHP",
}

var (
	extLookup    map[string]string
	languageRank map[string]int
)

func init() {
	extLookup = make(map[string]string, len(extTable))
	languageRank = make(map[string]int, len(extTable))
	for i, e := range extTable {
		extLookup[e.Ext] = e.Language
		if _, seen := languageRank[e.Language]; !seen {
			languageRank[e.Language] = i
		}
	}
}

// LanguageRank returns the declaration-order rank of a language in the
// extension table, used as a deterministic tie-break. Languages outside the
// table (filename-only entries such as Dockerfile) sort after it.
func LanguageRank(language string) int {
	if rank, ok := languageRank[language]; ok {
		return rank
	}
	return len(extTable)
}
