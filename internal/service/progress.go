package service

// ChecklistProgress returns the whole-percent completion of a checklist.
// An empty checklist reports zero. The ratio truncates toward zero so a
// checklist never reads 100 until every item is done.
func ChecklistProgress(total, completed int) int {
	if total <= 0 {
		return 0
	}
	return 100 * completed / total
}

// SignoffProgress returns the whole-percent share of approved sign-offs.
func SignoffProgress(total, approved int) int {
	if total <= 0 {
		return 0
	}
	return 100 * approved / total
}
