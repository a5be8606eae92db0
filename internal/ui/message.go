package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tmdbx/internal/store"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
//
// Every message carries the snapshot taken after its store action finished.
type Msg struct {
	kind MsgKind
	snap store.Snapshot
	opID string
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSessionRestored MsgKind = iota
	MsgMoviesLoaded
	MsgSearchLoaded
	MsgDetailsLoaded
	MsgListsLoaded
	MsgListLoaded
	MsgOperationDone
)

// stateMsg is the constructor for every kind but [MsgOperationDone]
func stateMsg(kind MsgKind, snap store.Snapshot) Msg {
	return Msg{kind: kind, snap: snap}
}

// operationDoneMsg is the constructor for [MsgOperationDone]
func operationDoneMsg(opID string, snap store.Snapshot) Msg {
	return Msg{kind: MsgOperationDone, snap: snap, opID: opID}
}
