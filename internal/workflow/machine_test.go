package workflow

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitreport/internal/database"
)

var clockPattern = regexp.MustCompile(`^\d{2,}:\d{2}:\d{2}$`)

func fixedMachine(now time.Time) Machine {
	return Machine{Now: func() time.Time { return now }}
}

func docWith(status Status, stage Stage) database.Document {
	return database.Document{ID: 1, Status: string(status), ProgressDetails: string(stage)}
}

func TestStart(t *testing.T) {
	now := time.Date(2025, 3, 4, 9, 0, 0, 0, time.Local)
	m := fixedMachine(now)

	for _, from := range []Status{StatusWaiting, StatusRevision, StatusRejected, StatusStopped} {
		tr, err := m.Start(docWith(from, StageNone))
		require.NoError(t, err, from)
		assert.Equal(t, string(StatusInProgress), tr.Document.Status)
		assert.Equal(t, string(ProgressInProgress), tr.Document.ProgressStatus)
		require.NotNil(t, tr.Document.ProgressStartDate)
		assert.True(t, tr.Document.ProgressStartDate.Equal(now))
		assert.ElementsMatch(t, []string{"status", "progress_status", "progress_start_date"}, tr.Fields)
	}

	for _, from := range []Status{StatusInProgress, StatusApproved, StatusSubmitted} {
		_, err := m.Start(docWith(from, StageNone))
		assert.ErrorIs(t, err, ErrInvalidTransition, from)
	}
}

func TestStop_ElapsedClock(t *testing.T) {
	start := time.Date(2025, 3, 4, 9, 0, 0, 0, time.Local)
	m := fixedMachine(start.Add(2*time.Hour + 3*time.Minute + 4*time.Second))

	doc := docWith(StatusInProgress, StageNone)
	doc.ProgressStartDate = &start
	tr, err := m.Stop(doc)
	require.NoError(t, err)
	assert.Equal(t, string(StatusStopped), tr.Document.Status)
	assert.Equal(t, string(ProgressStopped), tr.Document.ProgressStatus)
	assert.Equal(t, "02:03:04", tr.Document.StoppedTime)
}

func TestStop_NeverNegative(t *testing.T) {
	start := time.Date(2025, 3, 4, 9, 0, 0, 0, time.Local)
	m := fixedMachine(start.Add(-time.Hour))

	doc := docWith(StatusInProgress, StageNone)
	doc.ProgressStartDate = &start
	tr, err := m.Stop(doc)
	require.NoError(t, err)
	assert.Equal(t, "00:00:00", tr.Document.StoppedTime)
	assert.Regexp(t, clockPattern, tr.Document.StoppedTime)

	doc.ProgressStartDate = nil
	tr, err = m.Stop(doc)
	require.NoError(t, err)
	assert.Equal(t, "00:00:00", tr.Document.StoppedTime)

	_, err = m.Stop(docWith(StatusWaiting, StageNone))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApprove_Completes(t *testing.T) {
	start := time.Date(2025, 3, 4, 9, 0, 0, 0, time.Local)
	m := fixedMachine(start.Add(90 * time.Minute))

	for _, stage := range []Stage{StageNone, StageRepresentative, StageManager} {
		doc := docWith(StatusInProgress, stage)
		doc.ProgressStartDate = &start
		tr, err := m.Approve(doc)
		require.NoError(t, err)
		assert.False(t, tr.ManagerPending)
		assert.Equal(t, string(StatusApproved), tr.Document.Status)
		assert.Equal(t, string(ProgressStopped), tr.Document.ProgressStatus)
		assert.Equal(t, "25-03-04", tr.Document.CompletedDate)
		assert.Equal(t, "1시간 30분 0초", tr.Document.ProgressEndTime)
	}

	tr, err := m.Approve(docWith(StatusSubmitted, StageNone))
	require.NoError(t, err)
	assert.NotEmpty(t, tr.Document.ProgressEndTime)
	assert.NotEmpty(t, tr.Document.CompletedDate)
}

func TestApprove_ReviewerStageAsksForManager(t *testing.T) {
	m := fixedMachine(time.Now())

	tr, err := m.Approve(docWith(StatusInProgress, StageReviewer))
	require.NoError(t, err)
	assert.True(t, tr.ManagerPending)
	assert.Equal(t, string(StatusInProgress), tr.Document.Status)
	assert.Equal(t, State{Status: StatusInProgress, Stage: StageRepresentative}, tr.To)
	assert.Equal(t, map[string]any{"progress_details": "대표실무자"}, tr.Patch())

	tr, err = m.AssignManager(tr.Document, " 홍길동 ")
	require.NoError(t, err)
	assert.Equal(t, "홍길동", tr.Document.ManagerName)
	assert.Equal(t, State{Status: StatusApproved, Stage: StageManager}, tr.To)

	_, err = m.AssignManager(docWith(StatusInProgress, StageRepresentative), "  ")
	assert.ErrorIs(t, err, ErrManagerRequired)
	_, err = m.AssignManager(docWith(StatusInProgress, StageReviewer), "홍길동")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApprove_InvalidFrom(t *testing.T) {
	m := fixedMachine(time.Now())
	for _, from := range []Status{StatusWaiting, StatusStopped, StatusRejected, StatusApproved} {
		_, err := m.Approve(docWith(from, StageNone))
		assert.ErrorIs(t, err, ErrInvalidTransition, from)
	}
}

func TestRejectAndRevise(t *testing.T) {
	m := fixedMachine(time.Now())

	doc := docWith(StatusSubmitted, StageNone)
	doc.ReasonRead = true
	tr, err := m.Reject(doc, "  서명 누락  ")
	require.NoError(t, err)
	assert.Equal(t, string(StatusRejected), tr.Document.Status)
	assert.Equal(t, "서명 누락", tr.Document.Reason)
	assert.False(t, tr.Document.ReasonRead)
	assert.Equal(t, map[string]any{"status": "rejected", "reason": "서명 누락", "reason_read": false}, tr.Patch())

	tr, err = m.Revise(docWith(StatusStopped, StageNone), "사진 교체")
	require.NoError(t, err)
	assert.Equal(t, string(StatusRevision), tr.Document.Status)

	_, err = m.Reject(docWith(StatusInProgress, StageNone), " ")
	assert.ErrorIs(t, err, ErrReasonRequired)
	_, err = m.Revise(docWith(StatusWaiting, StageNone), "x")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSubmitFromAnyState(t *testing.T) {
	m := fixedMachine(time.Now())
	for _, from := range []Status{StatusWaiting, StatusInProgress, StatusApproved, StatusRejected, StatusRevision, StatusSubmitted, StatusStopped} {
		tr, err := m.Submit(docWith(from, StageNone))
		require.NoError(t, err)
		assert.Equal(t, string(StatusSubmitted), tr.Document.Status)
	}
}

func TestMarkReasonRead(t *testing.T) {
	m := fixedMachine(time.Now())
	_, err := m.MarkReasonRead(docWith(StatusRejected, StageNone))
	assert.ErrorIs(t, err, ErrNoReason)

	doc := docWith(StatusRejected, StageNone)
	doc.Reason = "누락"
	tr, err := m.MarkReasonRead(doc)
	require.NoError(t, err)
	assert.True(t, tr.Document.ReasonRead)
	assert.Equal(t, StatusRejected, tr.To.Status)
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "00:00:59", FormatClock(59*time.Second))
	assert.Equal(t, "100:00:00", FormatClock(100*time.Hour))
	assert.Equal(t, "00:00:00", FormatClock(-time.Minute))
	assert.Equal(t, "0시간 0분 0초", FormatElapsed(0))
	assert.Equal(t, "25-12-31", FormatDate(time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)))
}
