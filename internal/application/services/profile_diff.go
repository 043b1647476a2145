package services

import (
	"sort"

	"github.com/TejPotu/case-twin/internal/domain/entities"
	"github.com/TejPotu/case-twin/pkg/utils"
)

// DiffProfiles returns the labels of schema fields that changed between two
// profiles, in registry order. A field counts as changed when it went from
// empty to non-empty or its serialized value differs between two non-empty
// states. Identity fields are skipped: they are assigned once and not worth
// announcing. The diff feeds the assistant's "I captured: ..." notice only and
// never influences merging or scoring.
func DiffProfiles(before, after *entities.CaseProfile) []string {
	if before == nil {
		before = &entities.CaseProfile{}
	}
	if after == nil {
		after = &entities.CaseProfile{}
	}

	var changed []string
	for _, def := range profileFields {
		if def.Identity {
			continue
		}
		afterValue := def.Get(after)
		if entities.IsEmptyValue(afterValue) {
			continue
		}
		beforeValue := def.Get(before)
		if entities.IsEmptyValue(beforeValue) ||
			serializeFieldValue(beforeValue) != serializeFieldValue(afterValue) {
			changed = append(changed, def.Label)
		}
	}
	return changed
}

// DiffExtraFields returns humanized labels for extra-field keys that appeared
// or changed value, sorted for deterministic output. These feed the
// "I additionally captured: ..." notice.
func DiffExtraFields(before, after *entities.CaseProfile) []string {
	if after == nil || len(after.ExtraFields) == 0 {
		return nil
	}

	var changedKeys []string
	for key, afterValue := range after.ExtraFields {
		if afterValue.IsEmpty() {
			continue
		}
		var beforeValue entities.ExtraValue
		if before != nil {
			beforeValue = before.ExtraFields[key]
		}
		if beforeValue.IsEmpty() || beforeValue.String() != afterValue.String() {
			changedKeys = append(changedKeys, key)
		}
	}
	sort.Strings(changedKeys)

	labels := make([]string, len(changedKeys))
	for i, key := range changedKeys {
		labels[i] = utils.HumanizeKey(key)
	}
	if len(labels) == 0 {
		return nil
	}
	return labels
}
