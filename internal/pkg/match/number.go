package match

// NumberKind selects the Number matcher variant.
type NumberKind uint8

const (
	NumberVal NumberKind = iota
	NumberRange
	NumberList
)

// Number is a structured predicate over unsigned numeric fields.
//
//	NumberVal:   matches exactly Val
//	NumberRange: inclusive both ends, either bound may be nil (open)
//	NumberList:  disjunction over List
type Number struct {
	Kind NumberKind
	Val  uint32
	Min  *uint32
	Max  *uint32
	List []Number
}

// Val builds an exact matcher.
func Val(n uint32) Number {
	return Number{Kind: NumberVal, Val: n}
}

// Range builds an inclusive range matcher; nil bounds are open-ended.
func Range(min, max *uint32) Number {
	return Number{Kind: NumberRange, Min: min, Max: max}
}

// List builds a disjunction over the given matchers.
func List(ms ...Number) Number {
	return Number{Kind: NumberList, List: ms}
}

// Matches reports whether n satisfies the matcher.
func (m Number) Matches(n uint32) bool {
	switch m.Kind {
	case NumberVal:
		return m.Val == n
	case NumberRange:
		if m.Min != nil && n < *m.Min {
			return false
		}
		if m.Max != nil && n > *m.Max {
			return false
		}
		return true
	case NumberList:
		for _, sub := range m.List {
			if sub.Matches(n) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// MatchesOpt treats a nil matcher as match-anything.
func MatchesOpt(m *Number, n uint32) bool {
	return m == nil || m.Matches(n)
}
