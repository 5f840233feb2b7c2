package app

import "github.com/elizafairlady/go-postview/data"

// State is the whole application state. Values are replaced, never
// mutated: Update returns a new State and the slices a State holds are
// not written to after they are stored.
//
// Only the slots of the current route are shown. Slots of the other
// route may hold stale values; they are reset when their route is
// entered again.
type State struct {
	Route    Route
	Posts    Loadable[[]data.Post]
	Post     Loadable[data.Post]
	Comments Loadable[[]data.Comment]
}

// Init returns the startup state, on the list route with every slot
// pending, and the single work item that loads the list.
func Init() (State, []Work) {
	return State{Route: List{}}, []Work{FetchAllPosts{}}
}
