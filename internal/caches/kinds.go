package caches

// Kind names one of the host platform's caches.
type Kind string

const (
	KindPrimaryIndex   Kind = "primary-index"
	KindRenderedStatic Kind = "rendered-static"
	KindDerivedImage   Kind = "derived-image"
	KindCompiledView   Kind = "compiled-view"
)

// Kinds lists every cache kind the platform knows about.
func Kinds() []Kind {
	return []Kind{KindPrimaryIndex, KindRenderedStatic, KindDerivedImage, KindCompiledView}
}

// ParseKind returns the Kind for a wire value, or false.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Category is the class of change an operation makes to content.
type Category string

const (
	CategoryStructural Category = "structural-change"
	CategoryContent    Category = "content-change"
	CategoryTemplate   Category = "template-change"
	CategoryAsset      Category = "asset-change"
)

// KindsFor maps an operation category to the caches it invalidates.
// Pure and total: unknown categories fall back to the primary index.
func KindsFor(category Category) []Kind {
	switch category {
	case CategoryStructural:
		return []Kind{KindPrimaryIndex, KindRenderedStatic, KindCompiledView}
	case CategoryContent:
		return []Kind{KindPrimaryIndex, KindRenderedStatic}
	case CategoryTemplate:
		return []Kind{KindRenderedStatic, KindCompiledView}
	case CategoryAsset:
		return []Kind{KindDerivedImage, KindRenderedStatic}
	default:
		return []Kind{KindPrimaryIndex}
	}
}
