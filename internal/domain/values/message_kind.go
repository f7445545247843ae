package values

// MessageKind tags a classified message with the compose tool's
// message vocabulary. Kinds drive suggestions and report rule ids.
type MessageKind string

const (
	KindNone MessageKind = ""

	KindProgress MessageKind = "progress"
	KindFinished MessageKind = "finished"
	KindAborted  MessageKind = "aborted"

	KindCritGeneric     MessageKind = "crit_generic"
	KindCritLoadingJSON MessageKind = "crit_error_loading_json"
	KindCritMissingFile MessageKind = "crit_missing_file"
	KindCritFailFast    MessageKind = "crit_fail_fast"

	KindErrPNGNotFound   MessageKind = "err_png_not_found"
	KindErrSpriteSize    MessageKind = "err_sprite_size"
	KindErrDuplicateName MessageKind = "err_duplicate_name"
	KindErrDuplicateID   MessageKind = "err_duplicate_id"
	KindErrNotUsed       MessageKind = "err_not_used"
	KindErrVips          MessageKind = "err_vips"
	KindErrGeneric       MessageKind = "err_generic"

	KindWarnSpriteUnref     MessageKind = "warn_sprite_unref"
	KindWarnNoFormatter     MessageKind = "warn_no_formatter"
	KindWarnNotMentioned    MessageKind = "warn_not_mentioned"
	KindWarnEmptyEntry      MessageKind = "warn_empty_entry"
	KindWarnFillerSkip      MessageKind = "warn_filler_skip"
	KindWarnFillerDuplicate MessageKind = "warn_filler_duplicate"
	KindWarnFillerUnused    MessageKind = "warn_filler_unused"
	KindWarnFallback        MessageKind = "warn_fallback"
	KindWarnGeneric         MessageKind = "warn_generic"
)

// String returns the string representation
func (k MessageKind) String() string {
	if k == KindNone {
		return "plain"
	}
	return string(k)
}
