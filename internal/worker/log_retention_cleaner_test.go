package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockLogPurger はLogPurgerのモック
type MockLogPurger struct {
	mock.Mock
}

func (m *MockLogPurger) PurgeOldLogs(ctx context.Context, retention time.Duration) (int, error) {
	args := m.Called(ctx, retention)
	return args.Int(0), args.Error(1)
}

func TestNewLogRetentionCleaner(t *testing.T) {
	mockService := new(MockLogPurger)
	interval := 1 * time.Hour
	retention := 30 * 24 * time.Hour

	cleaner := NewLogRetentionCleaner(mockService, interval, retention)

	assert.NotNil(t, cleaner)
	assert.Equal(t, interval, cleaner.interval)
	assert.Equal(t, retention, cleaner.retention)
	assert.NotNil(t, cleaner.stopCh)
	assert.NotNil(t, cleaner.doneCh)
}

func TestLogRetentionCleaner_Cleanup(t *testing.T) {
	t.Run("正常にクリーンアップが実行される", func(t *testing.T) {
		mockService := new(MockLogPurger)
		mockService.On("PurgeOldLogs", mock.Anything, 30*24*time.Hour).Return(5, nil)

		cleaner := NewLogRetentionCleaner(mockService, time.Hour, 30*24*time.Hour)

		cleaner.cleanup(context.Background())

		mockService.AssertExpectations(t)
	})

	t.Run("削除対象がない場合も正常に動作する", func(t *testing.T) {
		mockService := new(MockLogPurger)
		mockService.On("PurgeOldLogs", mock.Anything, 30*24*time.Hour).Return(0, nil)

		cleaner := NewLogRetentionCleaner(mockService, time.Hour, 30*24*time.Hour)

		cleaner.cleanup(context.Background())

		mockService.AssertExpectations(t)
	})

	t.Run("エラーが発生しても継続する", func(t *testing.T) {
		mockService := new(MockLogPurger)
		mockService.On("PurgeOldLogs", mock.Anything, 30*24*time.Hour).Return(0, assert.AnError)

		cleaner := NewLogRetentionCleaner(mockService, time.Hour, 30*24*time.Hour)

		// パニックしないことを確認
		cleaner.cleanup(context.Background())

		mockService.AssertExpectations(t)
	})
}

func TestLogRetentionCleaner_StartStop(t *testing.T) {
	t.Run("開始と停止が正常に動作する", func(t *testing.T) {
		mockService := new(MockLogPurger)
		mockService.On("PurgeOldLogs", mock.Anything, time.Hour).Return(0, nil).Maybe()

		cleaner := NewLogRetentionCleaner(mockService, 50*time.Millisecond, time.Hour)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go cleaner.Start(ctx)

		time.Sleep(120 * time.Millisecond)

		cleaner.Stop()

		select {
		case <-cleaner.doneCh:
			// 正常に終了
		case <-time.After(1 * time.Second):
			t.Error("cleaner did not stop in time")
		}
	})

	t.Run("コンテキストキャンセルで停止する", func(t *testing.T) {
		mockService := new(MockLogPurger)
		mockService.On("PurgeOldLogs", mock.Anything, time.Hour).Return(0, nil).Maybe()

		cleaner := NewLogRetentionCleaner(mockService, 50*time.Millisecond, time.Hour)

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			cleaner.Start(ctx)
			close(done)
		}()

		time.Sleep(80 * time.Millisecond)
		cancel()

		select {
		case <-done:
			// 正常に終了
		case <-time.After(1 * time.Second):
			t.Error("cleaner did not stop after context cancel")
		}
	})
}
