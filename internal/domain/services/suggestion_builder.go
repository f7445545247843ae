package services

import (
	"fmt"

	"github.com/jessica-dev/jessica/internal/domain/entities"
	"github.com/jessica-dev/jessica/internal/domain/values"
)

// BuildSuggestions derives follow-up hints from a finished job's messages.
func BuildSuggestions(messages []entities.LogMessage) []string {
	var unref int
	var spriteSize bool
	for _, m := range messages {
		if !m.Counted() {
			continue
		}
		switch m.Kind {
		case values.KindWarnSpriteUnref:
			unref++
		case values.KindErrSpriteSize:
			spriteSize = true
		}
	}

	var out []string
	if unref > 0 {
		out = append(out, fmt.Sprintf(
			"There were %d sprites without any JSON reference. If they are intended to be added automatically, enable use_all and compose again.",
			unref))
	}
	if spriteSize {
		out = append(out,
			"At least one sprite with incorrect pixel size encountered. This will likely cause bizarre sprite offsets when loaded in-game.")
	}
	return out
}
