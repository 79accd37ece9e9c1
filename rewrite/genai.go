package rewrite

import (
	"fmt"
	"regexp"
)

// DefaultModel is the model bound into rewritten generation calls.
const DefaultModel = "gemini-2.0-flash-exp"

var (
	// Matches the old-style generation call at any indentation. The
	// captured leading whitespace is reused for both emitted lines.
	generateCall = regexp.MustCompile(`(?m)^([ \t]*)const response = await ai\.models\.generateContent\(`)

	// Inline model arguments in call sites, comma after (leading
	// position) or comma before (trailing position). Both demand the
	// adjoining comma, so the comma-less binding inside a
	// getGenerativeModel({ model: "..." }) handle never matches.
	leadingModelArg  = regexp.MustCompile(`model:\s*['"]gemini-[^'",]+['"]\s*,\s*`)
	trailingModelArg = regexp.MustCompile(`,\s*model:\s*['"]gemini-[^'",]+['"]`)
)

// Rules returns the genai migration rules in application order: split
// each old-style generateContent call into a model handle plus a call
// on that handle, lower Type.* enum references to their string forms,
// then strip inline model: arguments made redundant by the handle.
// The model name is bound into the generated handle construction.
//
// The rule set is idempotent: the handle rewrite consumes the
// ai.models.generateContent text it matches, the enum literals erase
// themselves, and the strip patterns cannot touch the inserted handle.
func Rules(model string) []Rule {
	if model == "" {
		model = DefaultModel
	}
	handle := fmt.Sprintf("${1}const model = ai.getGenerativeModel({ model: %q });\n${1}const response = await model.generateContent(", model)
	return []Rule{
		RegexRule{RuleName: "generate-content-handle", Pattern: generateCall, Replace: handle},
		LiteralRule{RuleName: "type-object", Old: "Type.OBJECT", New: `"object"`},
		LiteralRule{RuleName: "type-string", Old: "Type.STRING", New: `"string"`},
		LiteralRule{RuleName: "type-array", Old: "Type.ARRAY", New: `"array"`},
		LiteralRule{RuleName: "type-integer", Old: "Type.INTEGER", New: `"integer"`},
		LiteralRule{RuleName: "type-boolean", Old: "Type.BOOLEAN", New: `"boolean"`},
		RegexRule{RuleName: "strip-model-arg", Pattern: leadingModelArg, Replace: ""},
		RegexRule{RuleName: "strip-trailing-model-arg", Pattern: trailingModelArg, Replace: ""},
	}
}

// NewGenAIPipeline returns the production pipeline bound to model.
// An empty model selects DefaultModel.
func NewGenAIPipeline(model string) *Pipeline {
	return NewPipeline(Rules(model)...)
}
