package model

// MemberKind is the kind of a category member.
type MemberKind int

const (
	// KindOther covers members the crawler ignores (files, templates, talk pages).
	KindOther MemberKind = iota

	// KindArticle is an article in the main namespace.
	KindArticle

	// KindCategory is a nested category.
	KindCategory
)

// String returns the kind name used in logs.
func (k MemberKind) String() string {
	switch k {
	case KindArticle:
		return "article"
	case KindCategory:
		return "category"
	default:
		return "other"
	}
}

// Member is one entry of a category member listing.
type Member struct {
	// Title is the full page title including any namespace prefix.
	Title string

	// Kind tells the traverser whether to store or descend.
	Kind MemberKind
}
