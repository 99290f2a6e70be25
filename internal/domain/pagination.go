package domain

// PageSize is the fixed number of quizzes shown per page.
const PageSize = 8

// FilterByCourse returns the quizzes associated with courseID.
// An empty courseID means no filter and returns quizzes unchanged.
// The input slice is never modified.
func FilterByCourse(quizzes []Quiz, courseID string) []Quiz {
	if courseID == "" {
		return quizzes
	}

	out := make([]Quiz, 0, len(quizzes))
	for _, q := range quizzes {
		if q.CourseID == courseID {
			out = append(out, q)
		}
	}

	return out
}

// TotalPages returns ceil(n / PageSize).
func TotalPages(n int) int {
	if n <= 0 {
		return 0
	}

	return (n + PageSize - 1) / PageSize
}

// PageSlice returns items in [(page-1)*PageSize, page*PageSize) clipped to the list.
// Pages outside the list yield an empty slice.
func PageSlice[T any](items []T, page int) []T {
	if page < 1 {
		return []T{}
	}

	start := (page - 1) * PageSize
	if start >= len(items) {
		return []T{}
	}

	end := min(start+PageSize, len(items))

	return items[start:end]
}

// ClampPage bounds page to [1, max(1, total)].
func ClampPage(page, total int) int {
	return max(1, min(page, max(1, total)))
}

// PageInfo summarizes the pagination cursor over a filtered list.
type PageInfo struct {
	Page       int
	TotalPages int
	TotalItems int
	HasPrev    bool
	HasNext    bool
}

// Paginate filters quizzes, clamps page and returns the visible slice with its cursor.
func Paginate(quizzes []Quiz, courseID string, page int) ([]Quiz, PageInfo) {
	filtered := FilterByCourse(quizzes, courseID)
	total := TotalPages(len(filtered))
	page = ClampPage(page, total)

	info := PageInfo{
		Page:       page,
		TotalPages: total,
		TotalItems: len(filtered),
		HasPrev:    page > 1,
		HasNext:    page < total,
	}

	return PageSlice(filtered, page), info
}
