package services

import (
	"github.com/TejPotu/case-twin/internal/domain/entities"
)

// MergeProfiles combines an extraction result into the accumulated case
// profile without regressing previously captured facts.
//
// Per-field policy:
//   - empty incoming value: keep the base value (monotonic fill)
//   - non-empty incoming value: incoming wins and replaces the base entirely,
//     list fields included (the latest extraction is authoritative)
//   - identity fields: first non-empty value wins, base takes precedence
//   - extra fields: key-wise union, incoming wins on key collisions
//
// Schema fields track a single evolving assessment, extra fields accumulate an
// evidence set, identity fields are permanent keys; the asymmetry is the point.
func MergeProfiles(base, incoming *entities.CaseProfile) *entities.CaseProfile {
	if base == nil {
		base = &entities.CaseProfile{}
	}
	merged := base.Clone()
	if incoming == nil {
		return merged
	}

	for _, def := range profileFields {
		incomingValue := def.Get(incoming)
		if entities.IsEmptyValue(incomingValue) {
			continue
		}
		if def.Identity && !entities.IsEmptyValue(def.Get(base)) {
			continue
		}
		def.Set(merged, incomingValue)
	}

	for key, value := range incoming.ExtraFields {
		merged.SetExtra(key, value)
	}

	return merged
}
