// Package app is the posts client core: navigation routes, the
// application state with its loadable slots, the controller that maps
// (state, event) to (state, work), and the projection of state onto a
// render tree. Nothing in this package performs I/O; a host runs the
// emitted work and feeds completions back as events.
package app

import "strconv"

// Route is the screen being shown: List or Detail.
// Routes are comparable with ==.
type Route interface {
	isRoute()
	String() string
}

// List is the posts list screen.
type List struct{}

// Detail is one post with its comments.
type Detail struct {
	PostID int
}

func (List) isRoute()   {}
func (Detail) isRoute() {}

func (List) String() string     { return "list" }
func (d Detail) String() string { return "detail/" + strconv.Itoa(d.PostID) }
