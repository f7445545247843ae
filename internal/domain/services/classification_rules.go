package services

import (
	"fmt"
	"regexp"

	"github.com/jessica-dev/jessica/internal/domain/values"
)

// ClassificationRule maps lines matching Pattern to a severity, a message
// kind and an optional remediation note.
type ClassificationRule struct {
	Pattern  *regexp.Regexp
	Name     string
	Note     string
	Kind     values.MessageKind
	Severity values.Severity
}

// CompileRule builds a rule from its textual form, as found in the system
// config file.
func CompileRule(name, pattern, severity, kind, note string) (ClassificationRule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return ClassificationRule{}, fmt.Errorf("rule %q: invalid pattern: %w", name, err)
	}
	sev, err := values.NewSeverity(severity)
	if err != nil {
		return ClassificationRule{}, fmt.Errorf("rule %q: %w", name, err)
	}
	return ClassificationRule{
		Name:     name,
		Pattern:  re,
		Severity: sev,
		Kind:     values.MessageKind(kind),
		Note:     note,
	}, nil
}

func rule(name, pattern string, sev values.Severity, kind values.MessageKind, note string) ClassificationRule {
	return ClassificationRule{
		Name:     name,
		Pattern:  regexp.MustCompile(pattern),
		Severity: sev,
		Kind:     kind,
		Note:     note,
	}
}

// DefaultRules returns the built-in table for the compose tool's message
// vocabulary. Specific messages come first, level-prefix fallbacks last.
func DefaultRules() []ClassificationRule {
	return []ClassificationRule{
		// critical: nothing usable can come out of the run
		rule("traceback", `^Traceback \(most recent call last\):`, values.SevCritical, values.KindCritGeneric,
			"The compose tool crashed. The lines that follow contain the stack trace."),
		rule("fail-fast", `Fail Fast: `, values.SevCritical, values.KindCritFailFast, ""),
		rule("error-loading", `Error loading (\S+?)\.?\s`, values.SevCritical, values.KindCritLoadingJSON,
			"Fix the syntax of the named JSON file and compose again."),
		rule("missing-descriptor", `(?i)\bmissing\b.*\b(tile_config\.json|tile_info\.json|tileset\.txt)`, values.SevCritical, values.KindCritMissingFile,
			"The source directory is not a complete tileset. Check the profile's source directories."),
		rule("descriptor-not-found", `(?i)\b(tile_info\.json|tileset\.txt)\b.*\b(not found|does not exist|no such file)`, values.SevCritical, values.KindCritMissingFile,
			"The source directory is not a complete tileset. Check the profile's source directories."),
		rule("auto-abort", `Auto-Aborting`, values.SevCritical, values.KindCritGeneric, ""),

		// error: the run continues but the output is known to be defective
		rule("sprite-size", `is \d+x\d+, but .* sheet sprites have to be \d+x\d+`, values.SevError, values.KindErrSpriteSize,
			"Resize the sprite or move it to a sheet with matching sprite dimensions."),
		rule("vips", `Vips error for file`, values.SevError, values.KindErrVips,
			"The image could not be read. Re-export it as an 8-bit RGBA PNG."),
		rule("duplicate-root-name", `Duplicate root name for ID`, values.SevError, values.KindErrDuplicateName,
			"Two sprite folders share a name. Rename one of them."),
		rule("duplicate-id", `ID .+ encountered more than once`, values.SevError, values.KindErrDuplicateID,
			"Remove the duplicate tile entry; only the last one is kept."),
		rule("png-not-used", `was not used, but ID .+ is mentioned in a tile entry`, values.SevError, values.KindErrNotUsed, ""),
		rule("png-not-found", `file for .+ value from .+ was not found`, values.SevError, values.KindErrPNGNotFound,
			"The tile entry references a sprite that does not exist."),

		// warning: tolerable irregularities with a known explanation
		rule("no-formatter", `not found, Python built-in formatter was used`, values.SevWarning, values.KindWarnNoFormatter,
			"Set formatter_path in the profile to use the external JSON formatter."),
		rule("not-mentioned", `was not mentioned in any tile entry but there is a tile entry for the ID`, values.SevWarning, values.KindWarnNotMentioned, ""),
		rule("sprite-unref", `Sprite filename .+ was not used in any`, values.SevWarning, values.KindWarnSpriteUnref,
			"Enable use_all to add unreferenced sprites automatically."),
		rule("empty-entry", `Skipping empty entry in`, values.SevWarning, values.KindWarnEmptyEntry, ""),
		rule("filler-skip", `Skipping filler for`, values.SevWarning, values.KindWarnFillerSkip, ""),
		rule("filler-duplicate", `Root name .+ is already present in a non-filler sheet`, values.SevWarning, values.KindWarnFillerDuplicate, ""),
		rule("filler-unused", `There is a tile entry for .+ in a non-filler sheet`, values.SevWarning, values.KindWarnFillerUnused, ""),
		rule("fallback", `(?i)\bfallback\b.*\bused\b`, values.SevWarning, values.KindWarnFallback, ""),

		// info with a known meaning
		rule("finished", `Composing done\.`, values.SevInfo, values.KindFinished, ""),
		rule("aborted", `Composing aborted\.`, values.SevInfo, values.KindAborted, ""),
		rule("progress", `^\s*(\[INFO\]\s+)?(Start Loading sprites|Start Composing|Parsing JSON|Processing sprite file names|Finished composing|Skipping composing)`,
			values.SevInfo, values.KindProgress, ""),

		// level prefixes: "critical: ...", "[ERROR] ...", "WARNING ..."
		rule("level-critical", `(?i)^\s*(\[critical\]|critical:)`, values.SevCritical, values.KindCritGeneric, ""),
		rule("level-error", `(?i)^\s*(\[error\]|error:)`, values.SevError, values.KindErrGeneric, ""),
		rule("level-warning", `(?i)^\s*(\[warn(ing)?\]|warn(ing)?:)`, values.SevWarning, values.KindWarnGeneric, ""),
		rule("level-info", `(?i)^\s*(\[(info|debug)\]|(info|debug):)`, values.SevInfo, values.KindNone, ""),
	}
}
