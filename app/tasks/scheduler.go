package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lysyi3m/blog-press/app/cfg"
	"github.com/lysyi3m/blog-press/app/content"
	"github.com/lysyi3m/blog-press/app/database"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// debounceDelay groups rapid filesystem change bursts (editor saves,
// rsync deploys) into a single reload.
const debounceDelay = 500 * time.Millisecond

type Scheduler struct {
	cache       *content.Cache
	postRepo    database.PostRepository
	postsDir    string
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(cache *content.Cache, postRepo database.PostRepository) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		cache:       cache,
		postRepo:    postRepo,
		postsDir:    cfg.PostsDir,
		interval:    time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 100),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueSyncTasks()
			}
		}
	}()

	s.wg.Add(1)
	go s.watch()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueSyncTasks() {
	reloadTask := NewReloadPostsTask(s.cache)
	if err := s.EnqueueTask(reloadTask); err != nil {
		slog.Warn("Failed to enqueue ReloadPostsTask", "error", err)
		return
	}

	indexTask := NewIndexPostsTask(s.cache, s.postRepo)
	if err := s.EnqueueTask(indexTask); err != nil {
		slog.Warn("Failed to enqueue IndexPostsTask", "error", err)
	}
}

// watch observes the posts directory and enqueues sync tasks after a
// debounced burst of markdown file changes.
func (s *Scheduler) watch() {
	defer s.wg.Done()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("Content watching disabled", "error", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(s.postsDir); err != nil {
		slog.Warn("Content watching disabled", "dir", s.postsDir, "error", err)
		return
	}

	slog.Debug("Watching posts directory", "dir", s.postsDir)

	timer := time.NewTimer(debounceDelay)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-s.ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !isPostFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			slog.Debug("Content change detected", "file", event.Name, "op", event.Op.String())
			timer.Reset(debounceDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Content watcher error", "error", err)

		case <-timer.C:
			s.enqueueSyncTasks()
		}
	}
}

func isPostFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
