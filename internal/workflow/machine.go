package workflow

import (
	"fmt"
	"strings"
	"time"

	"fitreport/internal/database"
)

// Transition is the outcome of an action: the document after the change and the
// columns that must be written back.
type Transition struct {
	Action   Action
	From, To State
	Document database.Document
	Fields   []string
	// ManagerPending is set when approval moved the document to the representative stage
	// and a manager still has to be chosen.
	ManagerPending bool
}

// Patch returns the changed columns with their new values, ready for an update request.
func (t Transition) Patch() map[string]any {
	d := t.Document
	patch := make(map[string]any, len(t.Fields))
	for _, f := range t.Fields {
		switch f {
		case "status":
			patch[f] = d.Status
		case "progress_status":
			patch[f] = d.ProgressStatus
		case "progress_details":
			patch[f] = d.ProgressDetails
		case "progress_start_date":
			patch[f] = d.ProgressStartDate
		case "progress_end_time":
			patch[f] = d.ProgressEndTime
		case "stopped_time":
			patch[f] = d.StoppedTime
		case "completed_date":
			patch[f] = d.CompletedDate
		case "manager_name":
			patch[f] = d.ManagerName
		case "reason":
			patch[f] = d.Reason
		case "reason_read":
			patch[f] = d.ReasonRead
		}
	}
	return patch
}

// Machine applies actions to documents. The zero value uses time.Now.
type Machine struct {
	Now func() time.Time
}

func (m Machine) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m Machine) begin(action Action, doc database.Document) (Transition, error) {
	from := StateOf(doc)
	if !Allowed(action, from) {
		return Transition{}, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, from.Status)
	}
	return Transition{Action: action, From: from, Document: doc}, nil
}

func (t *Transition) set(fields ...string) {
	t.Fields = append(t.Fields, fields...)
}

func (t *Transition) finish() Transition {
	t.To = StateOf(t.Document)
	return *t
}

// Start moves a waiting, revision, rejected or stopped document into progress.
func (m Machine) Start(doc database.Document) (Transition, error) {
	t, err := m.begin(ActionStart, doc)
	if err != nil {
		return t, err
	}
	now := m.now()
	t.Document.Status = string(StatusInProgress)
	t.Document.ProgressStatus = string(ProgressInProgress)
	t.Document.ProgressStartDate = &now
	t.set("status", "progress_status", "progress_start_date")
	return t.finish(), nil
}

// Stop pauses a document in progress and records how long it ran as HH:MM:SS.
func (m Machine) Stop(doc database.Document) (Transition, error) {
	t, err := m.begin(ActionStop, doc)
	if err != nil {
		return t, err
	}
	t.Document.Status = string(StatusStopped)
	t.Document.ProgressStatus = string(ProgressStopped)
	t.Document.StoppedTime = FormatClock(Since(doc.ProgressStartDate, m.now()))
	t.set("status", "progress_status", "stopped_time")
	return t.finish(), nil
}

// Approve either advances the reviewer stage to the representative stage (leaving the
// status alone and asking for a manager) or completes the document.
func (m Machine) Approve(doc database.Document) (Transition, error) {
	t, err := m.begin(ActionApprove, doc)
	if err != nil {
		return t, err
	}
	if t.From.Stage == StageReviewer {
		t.Document.ProgressDetails = string(StageRepresentative)
		t.ManagerPending = true
		t.set("progress_details")
		return t.finish(), nil
	}

	now := m.now()
	t.Document.Status = string(StatusApproved)
	t.Document.ProgressStatus = string(ProgressStopped)
	t.Document.ProgressEndTime = FormatElapsed(Since(doc.ProgressStartDate, now))
	t.Document.CompletedDate = FormatDate(now)
	t.set("status", "progress_status", "progress_end_time", "completed_date")
	return t.finish(), nil
}

// AssignManager completes a document waiting at the representative stage.
func (m Machine) AssignManager(doc database.Document, manager string) (Transition, error) {
	from := StateOf(doc)
	if from.Stage != StageRepresentative {
		return Transition{}, fmt.Errorf("%w: %s at stage %q", ErrInvalidTransition, ActionAssignManager, from.Stage)
	}
	manager = strings.TrimSpace(manager)
	if manager == "" {
		return Transition{}, ErrManagerRequired
	}
	t := Transition{Action: ActionAssignManager, From: from, Document: doc}
	t.Document.ManagerName = manager
	t.Document.ProgressDetails = string(StageManager)
	t.Document.Status = string(StatusApproved)
	t.set("manager_name", "progress_details", "status")
	return t.finish(), nil
}

// Reject sends the document back with a reason the submitter has not read yet.
func (m Machine) Reject(doc database.Document, reason string) (Transition, error) {
	return m.withReason(ActionReject, StatusRejected, doc, reason)
}

// Revise asks the submitter for a revision.
func (m Machine) Revise(doc database.Document, reason string) (Transition, error) {
	return m.withReason(ActionRevision, StatusRevision, doc, reason)
}

func (m Machine) withReason(action Action, to Status, doc database.Document, reason string) (Transition, error) {
	t, err := m.begin(action, doc)
	if err != nil {
		return t, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Transition{}, ErrReasonRequired
	}
	t.Document.Status = string(to)
	t.Document.Reason = reason
	t.Document.ReasonRead = false
	t.set("status", "reason", "reason_read")
	return t.finish(), nil
}

// Submit marks the document as submitted from any state.
func (m Machine) Submit(doc database.Document) (Transition, error) {
	t, err := m.begin(ActionSubmit, doc)
	if err != nil {
		return t, err
	}
	t.Document.Status = string(StatusSubmitted)
	t.set("status")
	return t.finish(), nil
}

// MarkReasonRead flags the rejection or revision reason as seen.
func (m Machine) MarkReasonRead(doc database.Document) (Transition, error) {
	if strings.TrimSpace(doc.Reason) == "" {
		return Transition{}, ErrNoReason
	}
	t := Transition{Action: ActionMarkRead, From: StateOf(doc), Document: doc}
	t.Document.ReasonRead = true
	t.set("reason_read")
	return t.finish(), nil
}
