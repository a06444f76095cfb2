package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fitreport/internal/api"
	"fitreport/internal/board"
	"fitreport/internal/config"
	"fitreport/internal/database"
	"fitreport/internal/datastore"
	"fitreport/internal/storage"
)

type memBlobs struct{ paths map[string]int64 }

func (m *memBlobs) UploadFile(_ context.Context, p string, r io.Reader, _ int64, _ string) (*storage.UploadResult, error) {
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return nil, err
	}
	if _, ok := m.paths[p]; ok {
		return nil, storage.ErrObjectExists
	}
	m.paths[p] = n
	return &storage.UploadResult{Path: p, Size: n}, nil
}

type scriptedPrompter struct {
	confirm bool
	inputs  []string
	picked  []string
}

func (p *scriptedPrompter) Confirm(string) (bool, error) { return p.confirm, nil }

func (p *scriptedPrompter) Select(_ string, options []string) (string, error) {
	p.picked = append(p.picked, options[0])
	return options[0], nil
}

func (p *scriptedPrompter) Input(string, bool) (string, error) {
	v := p.inputs[0]
	p.inputs = p.inputs[1:]
	return v, nil
}

type console struct {
	a        *app
	out      *bytes.Buffer
	db       *gorm.DB
	prompter *scriptedPrompter
}

func newConsole(t *testing.T) *console {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	ctx := context.Background()
	_, err = database.SeedPositions(ctx, db)
	require.NoError(t, err)
	_, err = database.SeedRepresentative(ctx, db, "boss01", "대표", "pw1234")
	require.NoError(t, err)

	cfg := &config.Config{App: config.AppConfig{Env: "development"}}
	router := api.NewRouter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, api.RegisterRoutes(router, api.Dependencies{
		Config: cfg,
		Store:  datastore.New(db),
		Blobs:  &memBlobs{paths: map[string]int64{}},
	}))
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	out := &bytes.Buffer{}
	a := newApp(out, io.Discard)
	a.v.Set("api_url", srv.URL)
	a.v.Set("session_file", filepath.Join(t.TempDir(), "session.json"))
	p := &scriptedPrompter{confirm: true}
	a.prompter = p
	return &console{a: a, out: out, db: db, prompter: p}
}

func (c *console) run(args ...string) error {
	c.out.Reset()
	root := newRootCmd(c.a)
	root.SetArgs(args)
	root.SetOut(io.Discard)
	return root.ExecuteContext(context.Background())
}

func (c *console) login(t *testing.T) {
	t.Helper()
	require.NoError(t, c.run("login", "--user-id", "boss01", "--password", "pw1234"))
}

func TestConsole_RequiresSession(t *testing.T) {
	c := newConsole(t)
	err := c.run("users", "list")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestConsole_LoginAndLogout(t *testing.T) {
	c := newConsole(t)

	err := c.run("login", "--user-id", "boss01", "--password", "wrong")
	require.Error(t, err)
	assert.Equal(t, "아이디 또는 비밀번호가 올바르지 않습니다.", describeError(err))
	_, statErr := os.Stat(c.a.sessionPath())
	assert.True(t, os.IsNotExist(statErr))

	c.login(t)
	s, err := loadSession(c.a.sessionPath())
	require.NoError(t, err)
	assert.Equal(t, "boss01", s.UserID)
	assert.Equal(t, 1, s.Level)

	require.NoError(t, c.run("logout"))
	_, err = loadSession(c.a.sessionPath())
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestConsole_UserLifecycle(t *testing.T) {
	c := newConsole(t)
	c.login(t)

	require.NoError(t, c.run("users", "create",
		"--user-id", "kim01", "--password", "pw", "--name", "김철수", "--position", "사원",
		"--phone", "01098765432", "--email", "kim@example.com", "--company", "투핏"))

	var kim database.User
	require.NoError(t, c.db.Where("user_id = ?", "kim01").First(&kim).Error)
	assert.Equal(t, "010-9876-5432", kim.Phone)

	require.NoError(t, c.run("users", "list", "-q", "김철"))
	assert.Contains(t, c.out.String(), "kim01")
	assert.NotContains(t, c.out.String(), "boss01")

	var boss database.User
	require.NoError(t, c.db.Where("user_id = ?", "boss01").First(&boss).Error)
	err := c.run("users", "delete", itoa(boss.ID), "--yes")
	assert.ErrorIs(t, err, board.ErrRepresentativeProtected)

	require.NoError(t, c.run("users", "toggle", itoa(kim.ID)))
	require.NoError(t, c.db.First(&kim, kim.ID).Error)
	assert.Equal(t, "inactive", kim.Status)

	require.NoError(t, c.run("users", "delete", itoa(boss.ID), itoa(kim.ID), "--yes"))
	assert.Contains(t, c.out.String(), "삭제 1명, 제외 1명")

	var remaining []database.User
	require.NoError(t, c.db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "boss01", remaining[0].UserID)
}

func TestConsole_CancelledConfirmIssuesNothing(t *testing.T) {
	c := newConsole(t)
	c.login(t)
	staff := database.User{UserID: "lee02", Name: "이", Password: "x", Status: "active"}
	require.NoError(t, c.db.Create(&staff).Error)

	c.prompter.confirm = false
	err := c.run("users", "delete", itoa(staff.ID))
	assert.ErrorIs(t, err, errCancelled)

	var n int64
	require.NoError(t, c.db.Model(&database.User{}).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}

func TestConsole_DocumentWorkflow(t *testing.T) {
	c := newConsole(t)
	c.login(t)

	file := filepath.Join(t.TempDir(), "contract.pdf")
	require.NoError(t, os.WriteFile(file, []byte("%PDF"), 0o600))

	require.NoError(t, c.run("docs", "write", "--type", "계약서", "--title", "용역 계약서", "--file", file))
	var doc database.Document
	require.NoError(t, c.db.First(&doc).Error)
	assert.Equal(t, "waiting", doc.Status)
	assert.Equal(t, "boss01", doc.UserID)
	require.Len(t, doc.AttachedFiles, 1)
	assert.Equal(t, "boss01/contract.pdf", doc.AttachedFiles[0].Path)
	assert.NotEmpty(t, doc.SubmittedDate)

	id := itoa(doc.ID)
	require.NoError(t, c.run("docs", "start", id))
	require.NoError(t, c.run("docs", "stop", id))
	require.NoError(t, c.db.First(&doc, doc.ID).Error)
	assert.Equal(t, "stopped", doc.Status)
	assert.Regexp(t, `^\d{2}:\d{2}:\d{2}$`, doc.StoppedTime)

	require.NoError(t, c.run("docs", "reject", id, "--reason", "서명 누락"))
	require.NoError(t, c.db.First(&doc, doc.ID).Error)
	assert.Equal(t, "rejected", doc.Status)
	assert.False(t, doc.ReasonRead)

	require.NoError(t, c.run("docs", "notifications"))
	assert.Contains(t, c.out.String(), "알림 1건")

	require.NoError(t, c.run("docs", "read-reason", id))
	require.NoError(t, c.run("docs", "start", id))
	require.NoError(t, c.run("docs", "approve", id))
	require.NoError(t, c.db.First(&doc, doc.ID).Error)
	assert.Equal(t, "approved", doc.Status)
	assert.True(t, doc.ReasonRead)
	assert.NotEmpty(t, doc.CompletedDate)
	assert.Contains(t, doc.ProgressEndTime, "시간")

	require.NoError(t, c.run("docs", "delete", "--all", "--yes"))
	var n int64
	require.NoError(t, c.db.Model(&database.Document{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestConsole_ApproveAtReviewerStagePicksManager(t *testing.T) {
	c := newConsole(t)
	c.login(t)
	require.NoError(t, c.db.Create(&database.User{UserID: "mgr01", Name: "박담당", Password: "x", Status: "active"}).Error)
	doc := database.Document{UserID: "boss01", Title: "신청서", Status: "in_progress", ProgressDetails: "검수자"}
	require.NoError(t, c.db.Create(&doc).Error)

	require.NoError(t, c.run("docs", "approve", itoa(doc.ID)))
	require.NoError(t, c.db.First(&doc, doc.ID).Error)
	assert.Equal(t, []string{"박담당"}, c.prompter.picked)
	assert.Equal(t, "approved", doc.Status)
	assert.Equal(t, "박담당", doc.ManagerName)
	assert.Equal(t, "담당실무자", doc.ProgressDetails)
}

func TestConsole_WriteAtReviewerStageThenApprove(t *testing.T) {
	c := newConsole(t)
	c.login(t)
	require.NoError(t, c.db.Create(&database.User{UserID: "mgr01", Name: "박담당", Password: "x", Status: "active"}).Error)

	err := c.run("docs", "write", "--type", "신청서", "--title", "휴가 신청서", "--stage", "결재자")
	require.Error(t, err)

	require.NoError(t, c.run("docs", "write", "--type", "신청서", "--title", "휴가 신청서", "--stage", "검수자"))
	var doc database.Document
	require.NoError(t, c.db.First(&doc).Error)
	assert.Equal(t, "검수자", doc.ProgressDetails)

	id := itoa(doc.ID)
	require.NoError(t, c.run("docs", "start", id))
	require.NoError(t, c.run("docs", "approve", id))
	require.NoError(t, c.db.First(&doc, doc.ID).Error)
	assert.Equal(t, "approved", doc.Status)
	assert.Equal(t, "박담당", doc.ManagerName)
}

func TestConsole_ListPerPage(t *testing.T) {
	c := newConsole(t)
	c.login(t)
	for i := 0; i < 12; i++ {
		require.NoError(t, c.db.Create(&database.Document{UserID: "boss01", Title: "서류" + itoa(uint(i)), Status: "waiting"}).Error)
	}

	require.NoError(t, c.run("docs", "list"))
	assert.Contains(t, c.out.String(), "‹ [1] 2 ›")

	require.NoError(t, c.run("docs", "list", "--per-page", "20"))
	assert.Contains(t, c.out.String(), "‹ [1] ›")

	err := c.run("docs", "list", "--per-page", "7")
	assert.ErrorContains(t, err, "5, 10, 20, 30, 40, 50, 100")

	require.NoError(t, c.run("users", "list", "--per-page", "5"))
	assert.Contains(t, c.out.String(), "boss01")
	assert.Error(t, c.run("users", "list", "--per-page", "0"))
}
