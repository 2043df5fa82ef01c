package scanner

// DefaultExclude is the glob exclusion set applied to every project; a
// user's ExcludeDirs are unioned with it, never replace it (spec.md §4.2),
// grounded on the teacher's
// internal/config/config.go default Config.Exclude list and narrowed to
// what a language-agnostic code index actually needs to skip.
var DefaultExclude = []string{
	"**/.git/**",
	"**/.*/**",

	"**/node_modules/**",
	"**/vendor/**",
	"**/bower_components/**",

	"**/dist/**",
	"**/build/**",
	"**/out/**",
	"**/target/**",
	"**/bin/**",
	"**/obj/**",

	"**/*.min.js",
	"**/*.min.css",
	"**/*.bundle.js",
}
