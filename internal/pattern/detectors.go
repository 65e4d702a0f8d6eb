package pattern

// Built-in detectors. Identifier-shaped detectors are case-sensitive; phrase detectors
// are case-insensitive.
var (
	// PythonException matches CamelCase exception names such as ModuleNotFoundError.
	PythonException = MustRegex("python_exception",
		`\b[A-Z][A-Za-z0-9]*(?:Error|Exception|Warning|Interrupt)\b`, 1.0)

	Traceback = MustRegex("traceback",
		`(?i)traceback \(most recent call last\)|file "[^"]+", line \d+`, 0.95)

	NotFound = MustRegex("not_found",
		`(?i)\b(?:not found|no module named|cannot find|could not find|can't find|no such file|not defined|is not recognized)\b`, 0.85)

	CannotDo = MustRegex("cannot_do",
		`(?i)\b(?:cannot|can't|could not|couldn't|unable to|failed to) (?:import|open|read|write|load|install|connect|resolve|allocate|convert|decode|encode)\b`, 0.8)

	Import = MustRegex("import",
		`(?i)(?:^|\s)(?:from\s+[\w.]+\s+)?import\s+[\w.]+`, 0.75)

	Syntax = MustRegex("syntax",
		`(?i)\b(?:invalid syntax|unexpected (?:indent|eof|token|character)|unindent does not match|unterminated string|expected ['"]?[:;)\]}]|missing parenthes[ie]s)`, 0.9)

	AttributeAccess = MustRegex("attribute_access",
		`(?i)has no attribute|object is not (?:callable|subscriptable|iterable)|unsupported operand`, 0.9)

	SystemCode = MustRegex("system_code",
		`(?i)\berrno\s*\d+|\bexit (?:code|status) -?\d+|segmentation fault|core dumped|permission denied|out of memory`, 0.8)

	// DottedIdentifier matches package.module style tokens, lowercase only.
	DottedIdentifier = MustRegex("dotted_identifier",
		`\b[a-z_][a-z0-9_]*\.[a-z_][a-z0-9_]*\b`, 0.6)

	// SnakeCaseIdentifier matches snake_case identifiers.
	SnakeCaseIdentifier = MustRegex("snake_case_identifier",
		`\b[a-z][a-z0-9]*_[a-z0-9_]+\b`, 0.6)

	// KnownLibrary matches well-known Python packages and error keywords written in prose.
	KnownLibrary = MustRegex("known_library",
		`(?i)\b(?:numpy|pandas|scipy|matplotlib|seaborn|flask|django|fastapi|requests|sqlalchemy|tensorflow|keras|pytorch|torch|scikit-learn|sklearn|opencv|cv2|pillow|beautifulsoup|bs4|pip|conda|poetry|virtualenv|venv|modulenotfounderror|importerror|syntaxerror|nameerror|typeerror|valueerror|keyerror|indexerror|attributeerror|indentationerror|zerodivisionerror|recursionerror|oserror|ioerror|filenotfounderror|permissionerror|unicodedecodeerror|memoryerror)\b`, 0.7)
)

// Defaults returns the built-in detector set.
func Defaults() []Pattern {
	return []Pattern{
		PythonException,
		Traceback,
		NotFound,
		CannotDo,
		Import,
		Syntax,
		AttributeAccess,
		SystemCode,
		DottedIdentifier,
		SnakeCaseIdentifier,
		KnownLibrary,
	}
}

// DefaultMatcher returns a Matcher over Defaults.
func DefaultMatcher() *Matcher {
	return NewMatcher(Defaults()...)
}
