package model

// Template is a static knowledge-base entry describing a known error.
type Template struct {
	ID        string `json:"id" yaml:"id"`
	ErrorType string `json:"error_type" yaml:"error_type"`
	Category  string `json:"category,omitempty" yaml:"category,omitempty"`
	Severity  string `json:"severity,omitempty" yaml:"severity,omitempty"`
	// Patterns are case-insensitive regular expressions.
	Patterns []string `json:"patterns,omitempty" yaml:"patterns,omitempty"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	// Solutions may contain {pm}, {os}, {editor} and {module} placeholders.
	Solutions                 []string                     `json:"solutions" yaml:"solutions"`
	SolutionsByPackageManager map[PackageManager][]string  `json:"solutions_by_package_manager,omitempty" yaml:"solutions_by_package_manager,omitempty"`
	SolutionsByOS             map[OperatingSystem][]string `json:"solutions_by_os,omitempty" yaml:"solutions_by_os,omitempty"`
	Causes                    []string                     `json:"causes,omitempty" yaml:"causes,omitempty"`
	Explanation               string                       `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	RelatedErrors             []string                     `json:"related_errors,omitempty" yaml:"related_errors,omitempty"`
	ConfidenceBoost           float64                      `json:"confidence_boost,omitempty" yaml:"confidence_boost,omitempty"`
}
