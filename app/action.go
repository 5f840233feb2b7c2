package app

import (
	"strconv"

	"github.com/elizafairlady/go-postview/ui/proto"
)

// EventFromAction translates a host action into an Event. Only clicks
// on the Home and Detail buttons produce events.
func EventFromAction(a *proto.Action) (Event, bool) {
	if a == nil || a.Kind != "click" {
		return nil, false
	}
	switch a.Get("on") {
	case OnList:
		return NavigateToList{}, true
	case OnDetail:
		id, err := strconv.Atoi(a.Get("post"))
		if err != nil {
			return nil, false
		}
		return NavigateToDetail{PostID: id}, true
	}
	return nil, false
}
