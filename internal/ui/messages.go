package ui

import (
	"github.com/altin/brunoview/internal/api"
	"github.com/altin/brunoview/internal/model"
)

// Data loaded messages
type ResultsLoadedMsg struct {
	Loaded api.Loaded
	Err    error
}

// FilteredMsg carries the visible results after a filter change.
type FilteredMsg struct {
	Results []model.Result
	Total   int
}

type FileChangedMsg struct{}

type StatusMsg struct {
	Text string
}
