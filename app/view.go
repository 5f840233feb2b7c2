package app

import (
	"fmt"
	"strconv"

	"github.com/elizafairlady/go-postview/data"
	"github.com/elizafairlady/go-postview/ui/view"
)

// Action names carried in the "on" prop of buttons.
const (
	OnList   = "list"
	OnDetail = "detail"
)

// HomeID is the node id of the Home button.
const HomeID = "home"

const loadingText = "loading..."

// Project builds the render tree for s. It reads s only, so equal
// states give structurally equal trees.
//
// The Home button is always present. The rest depends on the route:
// the list shows one row per post in fetch order; the detail screen
// shows the post and its comments, each section independently either
// loaded or loading.
func Project(s State) *view.Node {
	root := view.VBox("root",
		view.Button(HomeID, "Home").Prop("on", OnList),
	)
	switch r := s.Route.(type) {
	case Detail:
		root.Child(
			view.TextNode("heading", fmt.Sprintf("Post: %d", r.PostID)).Prop("style", "heading"),
			projectPost(s.Post),
			projectComments(s.Comments),
		)
	default:
		root.Child(
			view.TextNode("heading", "Home").Prop("style", "heading"),
			projectPosts(s.Posts),
		)
	}
	return root
}

func projectPosts(slot Loadable[[]data.Post]) *view.Node {
	posts, ok := slot.Get()
	if !ok {
		return view.TextNode("loading", loadingText).Prop("style", "muted")
	}
	list := view.VBox("posts")
	for i, p := range posts {
		// Keyed by position like comments; the post id travels in props.
		id := "row-" + strconv.Itoa(i)
		list.Child(view.HBox(id,
			view.TextNode(id+"-title", p.Title),
			view.Button(id+"-detail", "Detail").
				Prop("on", OnDetail).
				PropInt("post", p.ID),
		).PropInt("post", p.ID))
	}
	return list
}

func projectPost(slot Loadable[data.Post]) *view.Node {
	p, ok := slot.Get()
	if !ok {
		return view.TextNode("post-loading", loadingText).Prop("style", "muted")
	}
	return view.VBox("post",
		view.TextNode("post-id", fmt.Sprintf("id: %d", p.ID)),
		view.TextNode("post-author", fmt.Sprintf("user_id: %d", p.AuthorID)),
		view.TextNode("post-title", "title: "+p.Title).Prop("style", "label"),
		view.TextNode("post-body", p.Body),
	)
}

func projectComments(slot Loadable[[]data.Comment]) *view.Node {
	comments, ok := slot.Get()
	if !ok {
		return view.TextNode("comments-loading", loadingText).Prop("style", "muted")
	}
	sec := view.VBox("comments",
		view.TextNode("comments-label", "Comments:").Prop("style", "label"),
	)
	for i, c := range comments {
		// Comment ids are only unique within one post, and a server
		// is not bound to that either; the index keeps node ids unique.
		id := "comment-" + strconv.Itoa(i)
		sec.Child(view.VBox(id,
			view.TextNode(id+"-name", "name: "+c.Name),
			view.TextNode(id+"-email", "email: "+c.Email),
			view.TextNode(id+"-body", c.Body),
		).PropInt("comment", c.ID))
	}
	return sec
}
