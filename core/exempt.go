package core

import "github.com/huangsam/snapguard/schema"

// FilterSelf drops the whole group keyed by selfPlugin, but only in integration test mode.
// Outside that mode the set is returned untouched, even when it holds selfPlugin.
func FilterSelf(violations *schema.ViolationSet, selfPlugin string, integrationTest bool) *schema.ViolationSet {
	if violations == nil {
		return schema.NewViolationSet()
	}
	if integrationTest {
		violations.RemoveKey(selfPlugin)
	}
	return violations
}
