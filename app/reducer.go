package app

import "github.com/elizafairlady/go-postview/data"

// Controller holds the transition rules. The zero value applies every
// successful completion to its slot whatever the current route, so a
// slow fetch for a post the user has already left can overwrite the
// slot of a newer navigation.
//
// With DiscardStale set, completions are matched against the route:
// PostsLoaded applies only on List, PostLoaded and CommentsLoaded only
// on Detail with the same post id.
type Controller struct {
	DiscardStale bool
}

// Update applies ev to s and returns the next state and the work to
// start. It is a pure function of its arguments. Failed completions
// and unknown events leave the state unchanged.
func (c Controller) Update(s State, ev Event) (State, []Work) {
	switch e := ev.(type) {
	case NavigateToList:
		s.Route = List{}
		s.Post = Pending[data.Post]()
		s.Comments = Pending[[]data.Comment]()
		return s, []Work{FetchAllPosts{}}

	case NavigateToDetail:
		s.Route = Detail{PostID: e.PostID}
		s.Posts = Pending[[]data.Post]()
		return s, []Work{FetchPost{PostID: e.PostID}, FetchComments{PostID: e.PostID}}

	case PostsLoaded:
		if e.Result.Err == nil && c.current(s, List{}) {
			s.Posts = Ready(e.Result.Value)
		}

	case PostLoaded:
		if e.Result.Err == nil && c.current(s, Detail{PostID: e.PostID}) {
			s.Post = Ready(e.Result.Value)
		}

	case CommentsLoaded:
		if e.Result.Err == nil && c.current(s, Detail{PostID: e.PostID}) {
			s.Comments = Ready(e.Result.Value)
		}
	}
	return s, nil
}

// current reports whether a completion issued for route r may be
// applied to s.
func (c Controller) current(s State, r Route) bool {
	return !c.DiscardStale || s.Route == r
}

// Update applies ev with the default Controller.
func Update(s State, ev Event) (State, []Work) {
	return Controller{}.Update(s, ev)
}
