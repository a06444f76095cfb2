// Package board holds the console's in-memory views of documents and users and applies
// operator actions to them before persisting through the API.
package board

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"fitreport/internal/client"
	"fitreport/internal/database"
	"fitreport/internal/listview"
	"fitreport/internal/workflow"
)

// ErrDocumentNotFound is returned for ids missing from the loaded list.
var ErrDocumentNotFound = errors.New("서류를 찾을 수 없습니다")

// DocumentTypes are the types offered by the write form.
var DocumentTypes = []string{"증명서", "계약서", "이력서", "신청서", "기타"}

// Stages are the approval stages a new document may start at. StageNone starts the
// document outside the staged approval chain.
var Stages = []workflow.Stage{workflow.StageNone, workflow.StageReviewer, workflow.StageRepresentative, workflow.StageManager}

// DocumentAPI is the part of the API the document board needs. *client.Client implements it.
type DocumentAPI interface {
	ListDocuments(ctx context.Context) ([]database.Document, error)
	CreateDocument(ctx context.Context, d client.NewDocument) (*database.Document, error)
	UpdateDocument(ctx context.Context, id uint, patch map[string]any) (*database.Document, error)
	DeleteDocument(ctx context.Context, id uint) error
}

// Documents is the document list as the operator sees it.
type Documents struct {
	api     DocumentAPI
	machine workflow.Machine
	logger  *slog.Logger
	items   []database.Document
}

// NewDocuments returns an empty board. Call Load to fill it.
func NewDocuments(api DocumentAPI, machine workflow.Machine, logger *slog.Logger) *Documents {
	if logger == nil {
		logger = slog.Default()
	}
	return &Documents{api: api, machine: machine, logger: logger}
}

// Load replaces the local list with the server's.
func (b *Documents) Load(ctx context.Context) error {
	docs, err := b.api.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	b.items = docs
	return nil
}

// Items returns a copy of the local list.
func (b *Documents) Items() []database.Document {
	return slices.Clone(b.items)
}

// Get returns the local copy of document id.
func (b *Documents) Get(id uint) (database.Document, bool) {
	i := b.index(id)
	if i < 0 {
		return database.Document{}, false
	}
	return b.items[i], true
}

func (b *Documents) index(id uint) int {
	return slices.IndexFunc(b.items, func(d database.Document) bool { return d.ID == id })
}

// apply runs act on the local document, replaces it in the list and then persists the
// changed columns with one PUT. A failed PUT is logged and returned; the local change
// stays.
func (b *Documents) apply(ctx context.Context, id uint, act func(database.Document) (workflow.Transition, error)) (workflow.Transition, error) {
	i := b.index(id)
	if i < 0 {
		return workflow.Transition{}, fmt.Errorf("%w: %d", ErrDocumentNotFound, id)
	}
	tr, err := act(b.items[i])
	if err != nil {
		return workflow.Transition{}, err
	}
	b.items[i] = tr.Document

	logger := b.logger.With(slog.Uint64("document_id", uint64(id)), slog.String("action", string(tr.Action)))
	if _, err := b.api.UpdateDocument(ctx, id, tr.Patch()); err != nil {
		logger.Error("persist document transition failed", slog.Any("error", err))
		return tr, fmt.Errorf("save %s: %w", tr.Action, err)
	}
	logger.Info("document updated", slog.String("status", string(tr.To.Status)))
	return tr, nil
}

func (b *Documents) Start(ctx context.Context, id uint) (workflow.Transition, error) {
	return b.apply(ctx, id, b.machine.Start)
}

func (b *Documents) Stop(ctx context.Context, id uint) (workflow.Transition, error) {
	return b.apply(ctx, id, b.machine.Stop)
}

// Approve approves id. When the result has ManagerPending set, the caller must follow
// up with AssignManager.
func (b *Documents) Approve(ctx context.Context, id uint) (workflow.Transition, error) {
	return b.apply(ctx, id, b.machine.Approve)
}

func (b *Documents) AssignManager(ctx context.Context, id uint, manager string) (workflow.Transition, error) {
	return b.apply(ctx, id, func(d database.Document) (workflow.Transition, error) {
		return b.machine.AssignManager(d, manager)
	})
}

func (b *Documents) Reject(ctx context.Context, id uint, reason string) (workflow.Transition, error) {
	return b.apply(ctx, id, func(d database.Document) (workflow.Transition, error) {
		return b.machine.Reject(d, reason)
	})
}

func (b *Documents) Revise(ctx context.Context, id uint, reason string) (workflow.Transition, error) {
	return b.apply(ctx, id, func(d database.Document) (workflow.Transition, error) {
		return b.machine.Revise(d, reason)
	})
}

func (b *Documents) Submit(ctx context.Context, id uint) (workflow.Transition, error) {
	return b.apply(ctx, id, b.machine.Submit)
}

func (b *Documents) MarkReasonRead(ctx context.Context, id uint) (workflow.Transition, error) {
	return b.apply(ctx, id, b.machine.MarkReasonRead)
}

// Write creates a new document in waiting / not_started with today's submitted date.
func (b *Documents) Write(ctx context.Context, d client.NewDocument) (*database.Document, error) {
	if strings.TrimSpace(d.Title) == "" {
		return nil, errors.New("제목을 입력해주세요")
	}
	if !slices.Contains(DocumentTypes, d.DocumentType) {
		return nil, fmt.Errorf("알 수 없는 서류 종류: %q", d.DocumentType)
	}
	if !slices.Contains(Stages, workflow.Stage(d.ProgressDetails)) {
		return nil, fmt.Errorf("알 수 없는 승인 단계: %q", d.ProgressDetails)
	}
	d.Status = string(workflow.StatusWaiting)
	d.ProgressStatus = string(workflow.ProgressNotStarted)
	d.SubmittedDate = workflow.FormatDate(b.now())

	created, err := b.api.CreateDocument(ctx, d)
	if err != nil {
		return nil, err
	}
	b.items = slices.Insert(b.items, 0, *created)
	return created, nil
}

func (b *Documents) now() time.Time {
	if b.machine.Now != nil {
		return b.machine.Now()
	}
	return time.Now()
}

// Delete removes ids one by one and stops at the first failure. Documents deleted
// before the failure stay deleted.
func (b *Documents) Delete(ctx context.Context, ids ...uint) (int, error) {
	deleted := 0
	for _, id := range ids {
		if b.index(id) < 0 {
			return deleted, fmt.Errorf("%w: %d", ErrDocumentNotFound, id)
		}
		if err := b.api.DeleteDocument(ctx, id); err != nil {
			b.logger.Error("delete document failed", slog.Uint64("document_id", uint64(id)), slog.Any("error", err))
			return deleted, fmt.Errorf("delete document %d: %w", id, err)
		}
		b.items = slices.DeleteFunc(b.items, func(d database.Document) bool { return d.ID == id })
		deleted++
	}
	return deleted, nil
}

// DeleteAll removes every loaded document.
func (b *Documents) DeleteAll(ctx context.Context) (int, error) {
	ids := make([]uint, len(b.items))
	for i, d := range b.items {
		ids[i] = d.ID
	}
	return b.Delete(ctx, ids...)
}

// DocumentQuery selects a page of the document list.
// A zero PageSize means listview.DefaultPageSize.
type DocumentQuery struct {
	Search   string
	Status   string
	SortBy   string
	Desc     bool
	Page     int
	PageSize int
}

var documentSearchFields = []func(database.Document) string{
	func(d database.Document) string { return d.UserID },
	func(d database.Document) string { return d.UserName },
	func(d database.Document) string { return d.DocumentType },
	func(d database.Document) string { return d.Title },
	func(d database.Document) string { return d.CompanyName },
	func(d database.Document) string { return d.RepresentativeName },
	func(d database.Document) string { return d.ManagerName },
}

// DocumentSortColumns are the accepted DocumentQuery.SortBy values.
var DocumentSortColumns = map[string]listview.Compare[database.Document]{
	"created_at": func(a, b database.Document) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"title":      listview.ByString(func(d database.Document) string { return d.Title }),
	"user_name":  listview.ByString(func(d database.Document) string { return d.UserName }),
	"type":       listview.ByString(func(d database.Document) string { return d.DocumentType }),
	"status":     listview.ByString(func(d database.Document) string { return d.Status }),
	"company":    listview.ByString(func(d database.Document) string { return d.CompanyName }),
	"submitted":  listview.ByString(func(d database.Document) string { return d.SubmittedDate }),
	"started": func(a, b database.Document) int {
		return cmp.Compare(unixOrZero(a.ProgressStartDate), unixOrZero(b.ProgressStartDate))
	},
}

func unixOrZero(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.Unix()
}

// List filters, sorts and pages the local list. An unknown SortBy keeps server order.
func (b *Documents) List(q DocumentQuery) listview.Page[database.Document] {
	spec := listview.Spec[database.Document]{
		Query:        q.Search,
		SearchFields: documentSearchFields,
		Sort:         DocumentSortColumns[q.SortBy],
		Desc:         q.Desc,
		Page:         q.Page,
		PageSize:     q.PageSize,
	}
	if q.Status != "" {
		spec.Filters = append(spec.Filters, func(d database.Document) bool { return d.Status == q.Status })
	}
	return listview.Apply(b.items, spec)
}
