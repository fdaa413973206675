// Package scheduler は定期ジョブの実行を管理します。
package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job はスケジューラに登録されるジョブです。
type Job interface {
	Run() error
	Name() string
}

// Scheduler はバックグラウンドジョブを管理します。
// 同じジョブの実行が重なった場合、後続の実行はスキップされます。
type Scheduler struct {
	cron *cron.Cron
}

// New は新しいスケジューラを生成します。
func New() *Scheduler {
	logger := slogLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

// Start はスケジューラを開始します。Stop の後に再度呼び出すこともできます。
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler started")
}

// Stop はスケジューラを停止し、実行中のジョブの完了を待ちます。
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("scheduler stopped")
}

// AddJob は cron 形式のスケジュールでジョブを登録します。
// Schedule examples:
//   - "0 */5 * * * *" - Every 5 minutes
//   - "@every 10s"    - Every 10 seconds
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if err := job.Run(); err != nil {
			slog.Warn("job failed", "job", job.Name(), "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", schedule, job.Name(), err)
	}

	slog.Info("job registered", "schedule", schedule, "job", job.Name())
	return nil
}

// AddInterval は一定間隔でジョブを登録します。1秒未満の間隔はエラーになります。
func (s *Scheduler) AddInterval(interval time.Duration, job Job) error {
	if interval < time.Second {
		return fmt.Errorf("interval %s for job %s is shorter than 1s", interval, job.Name())
	}
	return s.AddJob("@every "+interval.String(), job)
}

// RunNow はスケジュール外でジョブを即時実行します。
func (s *Scheduler) RunNow(job Job) error {
	slog.Info("running job immediately", "job", job.Name())
	return job.Run()
}

// slogLogger は cron.Logger を slog に接続します。
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
