package post

import "slices"

// Likeable is what every like target exposes
type Likeable interface {
	Likes() []string
	LikesCount() int
	ToggleLike(subjectID string) bool
}

// likeSet is an insertion-ordered set of subject ids.
// The count is always derived from the members so it can never drift.
type likeSet struct {
	subjects []string
}

func newLikeSet(subjects []string) likeSet {
	set := likeSet{subjects: make([]string, 0, len(subjects))}
	for _, s := range subjects {
		if !slices.Contains(set.subjects, s) {
			set.subjects = append(set.subjects, s)
		}
	}
	return set
}

func (l *likeSet) members() []string {
	if l.subjects == nil {
		return []string{}
	}
	return slices.Clone(l.subjects)
}

func (l *likeSet) count() int {
	return len(l.subjects)
}

// toggle adds or removes subjectID and reports whether it is now liked
func (l *likeSet) toggle(subjectID string) bool {
	if i := slices.Index(l.subjects, subjectID); i >= 0 {
		l.subjects = slices.Delete(l.subjects, i, i+1)
		return false
	}
	l.subjects = append(l.subjects, subjectID)
	return true
}
