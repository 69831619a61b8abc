// Package note はノート管理のドメインロジックを提供する。
package note

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/HasanBasriTaskin/noteapp/internal/metrics"
	"github.com/HasanBasriTaskin/noteapp/internal/model"
	"github.com/HasanBasriTaskin/noteapp/internal/repository"
	"github.com/HasanBasriTaskin/noteapp/internal/security"
)

// ErrTitleRequired はタイトルが空のノートを保存しようとした場合のエラー。
var ErrTitleRequired = errors.New("note title is required")

// Service はノート管理のサービス層。
// 入力検証と本文のサニタイズを行い、永続化はリポジトリへ委譲する。
type Service struct {
	notes     repository.NoteRepository
	sanitizer security.ContentSanitizer
	recorder  metrics.Recorder
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(notes repository.NoteRepository, sanitizer security.ContentSanitizer, recorder metrics.Recorder) *Service {
	return &Service{
		notes:     notes,
		sanitizer: sanitizer,
		recorder:  recorder,
	}
}

// Save は新規ノートを永続化し、採番済みIDを持つコピーを返す。
// タイトルは必須で、前後の空白を除去した結果が空の場合はErrTitleRequiredを返す。
func (s *Service) Save(ctx context.Context, n model.Note) (model.Note, error) {
	n.Title = strings.TrimSpace(n.Title)
	if n.Title == "" {
		return model.Note{}, ErrTitleRequired
	}
	n.Content = s.sanitizer.Sanitize(n.Content)

	start := time.Now()
	saved, err := s.notes.Save(ctx, n)
	s.record(ctx, "save", start, err)
	if err != nil {
		return model.Note{}, err
	}

	slog.Info("note saved",
		slog.Int64("note_id", saved.ID),
		slog.Int64("user_id", saved.UserID),
		slog.Int("tags", len(saved.Tags)),
	)
	return saved, nil
}

// Update は既存ノートの本体とタグ関連付けを更新する。
func (s *Service) Update(ctx context.Context, n model.Note) error {
	n.Title = strings.TrimSpace(n.Title)
	if n.Title == "" {
		return ErrTitleRequired
	}
	n.Content = s.sanitizer.Sanitize(n.Content)

	start := time.Now()
	err := s.notes.Update(ctx, n)
	s.record(ctx, "update", start, err)
	if err != nil {
		return err
	}

	slog.Info("note updated", slog.Int64("note_id", n.ID))
	return nil
}

// Delete はノートを削除する。
func (s *Service) Delete(ctx context.Context, noteID int64) error {
	start := time.Now()
	err := s.notes.Delete(ctx, noteID)
	s.record(ctx, "delete", start, err)
	if err != nil {
		return err
	}

	slog.Info("note deleted", slog.Int64("note_id", noteID))
	return nil
}

// Get はノートをタグ集合付きで取得する。
func (s *Service) Get(ctx context.Context, noteID int64) (*model.Note, error) {
	start := time.Now()
	n, err := s.notes.FindByID(ctx, noteID)
	s.record(ctx, "get", start, err)
	return n, err
}

// List はユーザーの全ノートをupdated_at降順で返す。
func (s *Service) List(ctx context.Context, userID int64) ([]model.Note, error) {
	start := time.Now()
	notes, err := s.notes.ListByUser(ctx, userID)
	s.record(ctx, "list", start, err)
	return notes, err
}

// Search は部分一致検索を実行する。
func (s *Service) Search(ctx context.Context, userID int64, text string) ([]model.Note, error) {
	start := time.Now()
	notes, err := s.notes.Search(ctx, userID, text)
	s.record(ctx, "search", start, err)
	return notes, err
}

func (s *Service) record(ctx context.Context, op string, start time.Time, err error) {
	if s.recorder == nil {
		return
	}
	s.recorder.RecordLatency("note", op, time.Since(start))
	if err != nil {
		s.recorder.RecordFailure("note", op, errorKind(err))
		return
	}
	s.recorder.RecordOperation("note", op)
}

// errorKind はメトリクスラベル用にエラー分類を文字列化する。
func errorKind(err error) string {
	var se *model.StoreError
	if errors.As(err, &se) {
		return string(se.Kind)
	}
	return "internal"
}
