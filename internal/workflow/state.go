// Package workflow implements the document review state machine.
package workflow

import (
	"errors"

	"fitreport/internal/database"
)

// Status is the document status column.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "in_progress"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusRevision   Status = "revision"
	StatusSubmitted  Status = "submitted"
	StatusStopped    Status = "stopped"
)

// ProgressStatus is the progress_status column.
type ProgressStatus string

const (
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressStopped    ProgressStatus = "stopped"
	ProgressNotStarted ProgressStatus = "not_started"
)

// Stage is the approval stage stored in progress_details. Empty means no stage.
type Stage string

const (
	StageNone           Stage = ""
	StageReviewer       Stage = "검수자"
	StageRepresentative Stage = "대표실무자"
	StageManager        Stage = "담당실무자"
)

// State is the status together with the approval stage.
type State struct {
	Status Status
	Stage  Stage
}

// StateOf reads the state stored on doc.
func StateOf(doc database.Document) State {
	return State{Status: Status(doc.Status), Stage: Stage(doc.ProgressDetails)}
}

// Action names a transition.
type Action string

const (
	ActionStart         Action = "start"
	ActionStop          Action = "stop"
	ActionApprove       Action = "approve"
	ActionAssignManager Action = "assign_manager"
	ActionReject        Action = "reject"
	ActionRevision      Action = "revision"
	ActionSubmit        Action = "submit"
	ActionMarkRead      Action = "mark_read"
)

var (
	ErrInvalidTransition = errors.New("workflow: invalid transition")
	ErrReasonRequired    = errors.New("workflow: reason is required")
	ErrManagerRequired   = errors.New("workflow: manager name is required")
	ErrNoReason          = errors.New("workflow: document has no reason to read")
)

var allowedFrom = map[Action][]Status{
	ActionStart:    {StatusWaiting, StatusRevision, StatusRejected, StatusStopped},
	ActionStop:     {StatusInProgress},
	ActionApprove:  {StatusInProgress, StatusSubmitted},
	ActionReject:   {StatusInProgress, StatusSubmitted, StatusStopped},
	ActionRevision: {StatusInProgress, StatusSubmitted, StatusStopped},
}

// Allowed reports whether action may run from s. Submit, mark-read and manager assignment
// are gated on other conditions and always report true here for any status.
func Allowed(action Action, s State) bool {
	from, ok := allowedFrom[action]
	if !ok {
		return true
	}
	for _, st := range from {
		if st == s.Status {
			return true
		}
	}
	return false
}
