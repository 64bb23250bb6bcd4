package arena

import "errors"

var (
	// ErrInvalidZoneSpec covers unknown type tags, missing fields and duplicate ids
	ErrInvalidZoneSpec = errors.New("invalid zone spec")

	// ErrInsufficientPoints is returned for a polygon zone with fewer than 3 points
	ErrInsufficientPoints = errors.New("insufficient points")

	// ErrMissingReferencePoint is returned when a zone names a point the arena does not define
	ErrMissingReferencePoint = errors.New("missing reference point")

	// ErrUnresolvedParent is returned when a proportion zone's parent id is never declared
	ErrUnresolvedParent = errors.New("unresolved parent zone")

	// ErrCyclicDependency is returned when proportion zones depend on each other in a cycle
	ErrCyclicDependency = errors.New("cyclic zone dependency")

	// ErrUnsupportedParentType is returned when a proportion zone's parent is not a polygon
	ErrUnsupportedParentType = errors.New("unsupported parent zone type")
)

// IsConfigError reports whether err was caused by an invalid arena description
func IsConfigError(err error) bool {
	for _, target := range []error{
		ErrInvalidZoneSpec,
		ErrInsufficientPoints,
		ErrMissingReferencePoint,
		ErrUnresolvedParent,
		ErrCyclicDependency,
		ErrUnsupportedParentType,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
