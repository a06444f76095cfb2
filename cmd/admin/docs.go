package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"fitreport/internal/board"
	"fitreport/internal/client"
	"fitreport/internal/database"
	"fitreport/internal/listview"
	"fitreport/internal/workflow"
)

func sortKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// docsEnv is the loaded document board plus the client behind it.
type docsEnv struct {
	client  *client.Client
	session *session
	board   *board.Documents
}

func (a *app) loadDocs(ctx context.Context) (*docsEnv, error) {
	c, s, err := a.authedClient()
	if err != nil {
		return nil, err
	}
	b := board.NewDocuments(c, workflow.Machine{}, a.log)
	if err := b.Load(ctx); err != nil {
		return nil, err
	}
	return &docsEnv{client: c, session: s, board: b}, nil
}

func newDocsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "docs",
		Aliases: []string{"documents"},
		Short:   "document workflow",
	}
	cmd.AddCommand(
		newDocsListCmd(a),
		newDocsWriteCmd(a),
		newTransitionCmd(a, "start", "작업을 시작할까요?", func(ctx context.Context, b *board.Documents, id uint, _ string) (workflow.Transition, error) {
			return b.Start(ctx, id)
		}),
		newTransitionCmd(a, "stop", "작업을 중지할까요?", func(ctx context.Context, b *board.Documents, id uint, _ string) (workflow.Transition, error) {
			return b.Stop(ctx, id)
		}),
		newTransitionCmd(a, "submit", "제출 처리할까요?", func(ctx context.Context, b *board.Documents, id uint, _ string) (workflow.Transition, error) {
			return b.Submit(ctx, id)
		}),
		newReasonCmd(a, "reject", "반려", func(ctx context.Context, b *board.Documents, id uint, reason string) (workflow.Transition, error) {
			return b.Reject(ctx, id, reason)
		}),
		newReasonCmd(a, "revision", "보완 요청", func(ctx context.Context, b *board.Documents, id uint, reason string) (workflow.Transition, error) {
			return b.Revise(ctx, id, reason)
		}),
		newTransitionCmd(a, "read-reason", "사유를 확인 처리할까요?", func(ctx context.Context, b *board.Documents, id uint, _ string) (workflow.Transition, error) {
			return b.MarkReasonRead(ctx, id)
		}),
		newDocsApproveCmd(a),
		newDocsAssignCmd(a),
		newDocsDeleteCmd(a),
		newDocsUploadCmd(a),
		newDocsNotificationsCmd(a),
	)
	return cmd
}

func newDocsListCmd(a *app) *cobra.Command {
	var q board.DocumentQuery

	cmd := &cobra.Command{
		Use:   "list",
		Short: "search, sort and page the document list",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, ok := board.DocumentSortColumns[q.SortBy]; q.SortBy != "" && !ok {
				return fmt.Errorf("정렬 기준은 %s 중 하나입니다", strings.Join(sortKeys(board.DocumentSortColumns), ", "))
			}
			if err := checkPageSize(q.PageSize); err != nil {
				return err
			}
			env, err := a.loadDocs(cmd.Context())
			if err != nil {
				return err
			}
			renderDocuments(a.out, env.board.List(q))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&q.Search, "query", "q", "", "search text")
	f.StringVar(&q.Status, "status", "", "waiting | in_progress | approved | rejected | revision | submitted | stopped")
	f.StringVar(&q.SortBy, "sort", "", "sort column")
	f.BoolVar(&q.Desc, "desc", false, "sort descending")
	f.IntVar(&q.Page, "page", 1, "page number")
	f.IntVar(&q.PageSize, "per-page", listview.DefaultPageSize, "rows per page")
	return cmd
}

func newDocsWriteCmd(a *app) *cobra.Command {
	var d client.NewDocument
	var files []string

	cmd := &cobra.Command{
		Use:   "write",
		Short: "write a new document, optionally uploading attachments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			env, err := a.loadDocs(ctx)
			if err != nil {
				return err
			}
			if d.UserID == "" {
				d.UserID = env.session.UserID
				d.UserName = env.session.Name
			}
			if d.DocumentType == "" {
				if d.DocumentType, err = a.prompter.Select("서류 종류", board.DocumentTypes); err != nil {
					return err
				}
			}

			for _, path := range files {
				attached, err := uploadFile(ctx, env.client, path, d.UserID+"/"+filepath.Base(path))
				if err != nil {
					return err
				}
				d.AttachedFiles = append(d.AttachedFiles, *attached)
			}

			created, err := env.board.Write(ctx, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "서류가 등록되었습니다 (ID %d)\n", created.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&d.UserID, "user-id", "", "submitter id (defaults to the logged in user)")
	f.StringVar(&d.UserName, "user-name", "", "submitter name")
	f.StringVar(&d.DocumentType, "type", "", strings.Join(board.DocumentTypes, " | "))
	f.StringVar(&d.Title, "title", "", "title")
	f.StringVar(&d.CompanyName, "company", "", "company name")
	f.StringVar(&d.RepresentativeName, "representative", "", "representative name")
	f.StringVar(&d.ProgressDetails, "stage", "", "starting approval stage: 검수자 | 대표실무자 | 담당실무자")
	f.StringSliceVar(&files, "file", nil, "attachment to upload (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

type transitionFunc func(ctx context.Context, b *board.Documents, id uint, arg string) (workflow.Transition, error)

// runTransition confirms, applies and reports one workflow action.
func (a *app) runTransition(cmd *cobra.Command, args []string, question, arg string, fn transitionFunc) (*docsEnv, workflow.Transition, error) {
	ids, err := parseIDs(args)
	if err != nil {
		return nil, workflow.Transition{}, err
	}
	env, err := a.loadDocs(cmd.Context())
	if err != nil {
		return nil, workflow.Transition{}, err
	}
	doc, ok := env.board.Get(ids[0])
	if !ok {
		return nil, workflow.Transition{}, board.ErrDocumentNotFound
	}
	if err := a.confirm(fmt.Sprintf("[%d] %s: %s", doc.ID, doc.Title, question)); err != nil {
		return nil, workflow.Transition{}, err
	}
	tr, err := fn(cmd.Context(), env.board, doc.ID, arg)
	if err != nil {
		return env, tr, err
	}
	fmt.Fprintf(a.out, "[%d] %s → %s\n", doc.ID, statusLabel(string(tr.From.Status)), statusLabel(string(tr.To.Status)))
	return env, tr, nil
}

func newTransitionCmd(a *app, use, question string, fn transitionFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: use + " a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, err := a.runTransition(cmd, args, question, "", fn)
			return err
		},
	}
}

func newReasonCmd(a *app, use, label string, fn transitionFunc) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   use + " <id>",
		Short: label + " with a reason",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(reason) == "" {
				var err error
				if reason, err = a.prompter.Input(label+" 사유", false); err != nil {
					return err
				}
			}
			_, _, err := a.runTransition(cmd, args, label+" 처리할까요?", reason, fn)
			return err
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "reason shown to the submitter")
	return cmd
}

// managerCandidates lists active staff names for the manager picker.
func managerCandidates(ctx context.Context, c *client.Client) ([]string, error) {
	users, err := c.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, u := range users {
		if u.Status == database.UserStatusActive && !u.IsRepresentative() {
			names = append(names, u.Name)
		}
	}
	return names, nil
}

func (a *app) pickManager(ctx context.Context, c *client.Client, manager string) (string, error) {
	if manager != "" {
		return manager, nil
	}
	names, err := managerCandidates(ctx, c)
	if err != nil {
		return "", err
	}
	return a.prompter.Select("담당 실무자 선택", names)
}

func newDocsApproveCmd(a *app) *cobra.Command {
	var manager string
	cmd := &cobra.Command{
		Use:   "approve <id>",
		Short: "approve a document; at the reviewer stage a manager is assigned next",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, tr, err := a.runTransition(cmd, args, "승인할까요?", "", func(ctx context.Context, b *board.Documents, id uint, _ string) (workflow.Transition, error) {
				return b.Approve(ctx, id)
			})
			if err != nil || !tr.ManagerPending {
				return err
			}

			ctx := cmd.Context()
			name, err := a.pickManager(ctx, env.client, manager)
			if err != nil {
				return err
			}
			if _, err := env.board.AssignManager(ctx, tr.Document.ID, name); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "[%d] 담당 실무자: %s\n", tr.Document.ID, name)
			return nil
		},
	}
	cmd.Flags().StringVar(&manager, "manager", "", "manager name (picked interactively when empty)")
	return cmd
}

func newDocsAssignCmd(a *app) *cobra.Command {
	var manager string
	cmd := &cobra.Command{
		Use:   "assign <id>",
		Short: "assign the manager of a document at the representative stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			env, err := a.loadDocs(ctx)
			if err != nil {
				return err
			}
			name, err := a.pickManager(ctx, env.client, manager)
			if err != nil {
				return err
			}
			if _, err := env.board.AssignManager(ctx, ids[0], name); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "[%d] 담당 실무자: %s\n", ids[0], name)
			return nil
		},
	}
	cmd.Flags().StringVar(&manager, "manager", "", "manager name")
	return cmd
}

func newDocsDeleteCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "delete [<id>...]",
		Short: "delete documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return errors.New("ID 또는 --all 중 하나를 지정해주세요")
			}
			ctx := cmd.Context()
			env, err := a.loadDocs(ctx)
			if err != nil {
				return err
			}

			var n int
			if all {
				if err := a.confirm(fmt.Sprintf("전체 %d건을 삭제할까요?", len(env.board.Items()))); err != nil {
					return err
				}
				n, err = env.board.DeleteAll(ctx)
			} else {
				ids, perr := parseIDs(args)
				if perr != nil {
					return perr
				}
				if err := a.confirm(fmt.Sprintf("%d건을 삭제할까요?", len(ids))); err != nil {
					return err
				}
				n, err = env.board.Delete(ctx, ids...)
			}
			fmt.Fprintf(a.out, "%d건 삭제되었습니다\n", n)
			return err
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "delete every document")
	return cmd
}

// uploadFile sends path to objectPath and describes it as an attachment.
func uploadFile(ctx context.Context, c *client.Client, path, objectPath string) (*database.AttachedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	stored, err := c.Upload(ctx, objectPath, filepath.Base(path), f, info.Size())
	if err != nil {
		return nil, err
	}
	return &database.AttachedFile{Name: filepath.Base(path), Path: stored, Size: info.Size()}, nil
}

func newDocsUploadCmd(a *app) *cobra.Command {
	var objectPath string
	var docID uint
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "upload a file, optionally attaching it to a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := a.loadDocs(ctx)
			if err != nil {
				return err
			}
			if objectPath == "" {
				objectPath = env.session.UserID + "/" + filepath.Base(args[0])
			}
			attached, err := uploadFile(ctx, env.client, args[0], objectPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "파일 업로드 성공: %s\n", attached.Path)

			if docID == 0 {
				return nil
			}
			doc, ok := env.board.Get(docID)
			if !ok {
				return board.ErrDocumentNotFound
			}
			files := append(slices.Clone([]database.AttachedFile(doc.AttachedFiles)), *attached)
			_, err = env.client.UpdateDocument(ctx, docID, map[string]any{"attached_files": files})
			return err
		},
	}
	cmd.Flags().StringVar(&objectPath, "path", "", "object path (defaults to <user_id>/<file name>)")
	cmd.Flags().UintVar(&docID, "doc", 0, "document id to attach the file to")
	return cmd
}

func newDocsNotificationsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "notifications",
		Short: "count documents waiting on their submitter",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := a.authedClient()
			if err != nil {
				return err
			}
			n, err := c.NotificationCount(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "알림 %d건 (보완 %d, 반려 %d)\n", n.Count, n.Revision, n.Rejected)
			return nil
		},
	}
}
