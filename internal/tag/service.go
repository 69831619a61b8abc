// Package tag はタグ管理のドメインロジックを提供する。
package tag

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/HasanBasriTaskin/noteapp/internal/metrics"
	"github.com/HasanBasriTaskin/noteapp/internal/model"
	"github.com/HasanBasriTaskin/noteapp/internal/repository"
)

// ErrNameRequired は名前が空のタグを保存しようとした場合のエラー。
var ErrNameRequired = errors.New("tag name is required")

// Service はタグ管理のサービス層。
type Service struct {
	tags     repository.TagRepository
	recorder metrics.Recorder
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(tags repository.TagRepository, recorder metrics.Recorder) *Service {
	return &Service{
		tags:     tags,
		recorder: recorder,
	}
}

// SaveOrGet はタグを重複排除しながら保存する。
// 同名タグが既に存在する場合は既存行をそのまま返す（colorは上書きされない）。
func (s *Service) SaveOrGet(ctx context.Context, t model.Tag) (model.Tag, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return model.Tag{}, ErrNameRequired
	}

	start := time.Now()
	saved, err := s.tags.SaveOrGet(ctx, t)
	s.record("save_or_get", start, err)
	if err != nil {
		return model.Tag{}, err
	}
	return saved, nil
}

// Update はタグのnameとcolorを更新する。所有者不一致はnot_foundになる。
func (s *Service) Update(ctx context.Context, t model.Tag) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return ErrNameRequired
	}

	start := time.Now()
	err := s.tags.Update(ctx, t)
	s.record("update", start, err)
	if err != nil {
		return err
	}

	slog.Info("tag updated", slog.Int64("tag_id", t.ID), slog.Int64("user_id", t.UserID))
	return nil
}

// Delete はタグと、タグを参照する全junction行を削除する。
// タグを付けていたノート自体は残る。
func (s *Service) Delete(ctx context.Context, tagID, userID int64) error {
	start := time.Now()
	err := s.tags.Delete(ctx, tagID, userID)
	s.record("delete", start, err)
	if err != nil {
		return err
	}

	slog.Info("tag deleted", slog.Int64("tag_id", tagID), slog.Int64("user_id", userID))
	return nil
}

// Get は(id, user_id)で一致するタグを取得する。
func (s *Service) Get(ctx context.Context, tagID, userID int64) (*model.Tag, error) {
	start := time.Now()
	t, err := s.tags.FindByID(ctx, tagID, userID)
	s.record("get", start, err)
	return t, err
}

// List はユーザーの全タグを名前昇順で返す。
func (s *Service) List(ctx context.Context, userID int64) ([]model.Tag, error) {
	start := time.Now()
	tags, err := s.tags.ListByUser(ctx, userID)
	s.record("list", start, err)
	return tags, err
}

func (s *Service) record(op string, start time.Time, err error) {
	if s.recorder == nil {
		return
	}
	s.recorder.RecordLatency("tag", op, time.Since(start))
	if err != nil {
		s.recorder.RecordFailure("tag", op, errorKind(err))
		return
	}
	s.recorder.RecordOperation("tag", op)
}

// errorKind はメトリクスラベル用にエラー分類を文字列化する。
func errorKind(err error) string {
	var se *model.StoreError
	if errors.As(err, &se) {
		return string(se.Kind)
	}
	return "internal"
}
