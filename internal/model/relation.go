package model

import "errors"

// Relation stores enforce (actor, target) uniqueness themselves; a duplicate
// add is reported by the store and treated as a no-op so the counter can
// never drift from the set cardinality. Removing an absent relation is an
// error for the same reason.
var (
	ErrNotLiked         = errors.New("post not liked")
	ErrNotBookmarked    = errors.New("post not bookmarked")
	ErrNotFollowing     = errors.New("not following this user")
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
)
