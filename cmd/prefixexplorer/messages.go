package main

import "github.com/joshuapare/ipamkit/pkg/preftree"

// searchTriggerMsg is sent by the debouncer once typing pauses.
type searchTriggerMsg struct {
	query string
}

// queryResultMsg carries the outcome of a backend query.
type queryResultMsg struct {
	preftree.Result
}

// groupLoadedMsg carries VRF metadata for a panel header.
type groupLoadedMsg struct {
	key  preftree.GroupKey
	info *preftree.GroupInfo
	err  error
}

// copyResultMsg reports a clipboard write.
type copyResultMsg struct {
	text string
	err  error
}

type clearStatusMsg struct{}
