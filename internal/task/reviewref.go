package task

import (
	"fmt"
	"regexp"
	"strconv"
)

// ReviewRef is a structured back-reference to an external code review,
// recorded in a task's free-text notes with a fixed, greppable marker:
//
//	Review-Ref: owner/repo#123
type ReviewRef struct {
	Owner  string
	Repo   string
	Number int
}

func (r ReviewRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// reviewRefRegex matches the review reference marker at the start of a line
var reviewRefRegex = regexp.MustCompile(`(?m)^Review-Ref:\s*([\w.-]+)/([\w.-]+)#(\d+)\s*$`)

// FindReviewRef scans free-text notes for a review reference.
// The first well-formed reference wins; returns false when none is present.
func FindReviewRef(notes string) (ReviewRef, bool) {
	m := reviewRefRegex.FindStringSubmatch(notes)
	if m == nil {
		return ReviewRef{}, false
	}
	n, err := strconv.Atoi(m[3])
	if err != nil {
		return ReviewRef{}, false
	}
	return ReviewRef{Owner: m[1], Repo: m[2], Number: n}, true
}
