// Package summary は期間指定のトレーニング集計機能を提供する。
package summary

import (
	"context"
	"time"

	"github.com/hitoshi/liftlog/internal/model"
	"github.com/hitoshi/liftlog/internal/report"
	"github.com/hitoshi/liftlog/internal/repository"
)

// SummaryService は期間ウィンドウの解決とエントリ集計のサービス。
// ウィンドウ解決と集計は純粋関数（internal/report）に委譲し、
// ここではユーザー解決・タイムゾーン決定・ストア取得を担当する。
type SummaryService struct {
	userRepo  repository.UserRepository
	entryRepo repository.EntryRepository
	now       func() time.Time
}

// NewSummaryService はSummaryServiceの新しいインスタンスを生成する。
func NewSummaryService(
	userRepo repository.UserRepository,
	entryRepo repository.EntryRepository,
) *SummaryService {
	return &SummaryService{
		userRepo:  userRepo,
		entryRepo: entryRepo,
		now:       time.Now,
	}
}

// GetSummary は指定ウィンドウのトレーニング集計を返す。
// タイムゾーンは tzName > ユーザー設定 > UTC の優先順位で決定する。
// ウィンドウの境界はそのタイムゾーンの暦日で解釈され、
// ストアへの問い合わせと集計はUTC半開区間 [Start, End) で行う。
func (s *SummaryService) GetSummary(
	ctx context.Context,
	userID string,
	kind model.WindowKind,
	tzName string,
	params report.WindowParams,
) (*model.Summary, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, model.NewStorageUnavailableError(err.Error())
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(userID)
	}

	loc, err := s.resolveLocation(tzName, user.Timezone)
	if err != nil {
		return nil, err
	}

	window, err := report.Resolve(kind, s.now(), loc, params)
	if err != nil {
		return nil, err
	}

	entries, err := s.entryRepo.ListByUserAndRange(ctx, userID, window.Start, window.End)
	if err != nil {
		return nil, model.NewStorageUnavailableError(err.Error())
	}

	result := report.Aggregate(userID, entries, window)
	return &result, nil
}

// resolveLocation はタイムゾーン名からLocationを決定する。
// 明示指定が最優先、次にユーザー設定、どちらも空ならUTCを使用する。
func (s *SummaryService) resolveLocation(tzName, userTz string) (*time.Location, error) {
	name := tzName
	if name == "" {
		name = userTz
	}
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, model.NewInvalidTimezoneError(name)
	}
	return loc, nil
}
