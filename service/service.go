package service

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"pdfcombine/internal"
	"pdfcombine/store"
	"pdfcombine/types"

	"github.com/google/uuid"
)

// Service runs the watch mode: it monitors the source directory, combines
// settled batches into one output document, archives the consumed sources
// and records every run in the job store.
type Service struct {
	logger    *slog.Logger
	cfg       types.Config
	store     store.JobStorer
	watcher   *Watcher
	assembler *internal.Assembler
}

func New(cfg types.Config, storer store.JobStorer) *Service {
	return &Service{
		logger:    slog.Default(),
		cfg:       cfg,
		store:     storer,
		watcher:   NewWatcher(cfg),
		assembler: internal.NewAssembler(internal.NewEngine()),
	}
}

func (s *Service) Stop() {
	s.logger.Info("combine service stopped")
}

func (s *Service) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batchChan := make(chan []string, 1)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(batchChan)
		s.watcher.Watch(ctx, batchChan)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.processBatches(ctx, batchChan)
	}()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)

	<-sigch
	log.Println("Received shutdown signal, shutting down gracefully...")

	cancel()
	signal.Stop(sigch)
	close(sigch)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("All goroutines stopped successfully")
	case <-shutdownCtx.Done():
		log.Println("Timeout waiting for goroutines to stop, forcing shutdown...")
	}

	s.Stop()
}

func (s *Service) processBatches(ctx context.Context, batchChan <-chan []string) {
	defer s.logger.Info("batch processor stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-batchChan:
			if !ok {
				return
			}
			s.runJob(ctx, batch)
		}
	}
}

// runJob combines one settled batch, archives its sources and persists the
// job record. A failed run moves the whole batch to the bad folder.
func (s *Service) runJob(ctx context.Context, batch []string) {
	job := types.Job{
		ID:        uuid.New(),
		Status:    types.JobRunning,
		SourceDir: s.cfg.SourceDir,
		CreatedAt: time.Now(),
	}
	s.saveJob(ctx, job)

	res, err := s.assembler.Run(ctx, internal.OptionsFromConfig(s.cfg))
	job.FinishedAt = time.Now()

	if err != nil {
		job.Status = types.JobFailed
		job.Warnings = append(job.Warnings, err.Error())
		s.logger.Error("combine run failed", "error", err)

		for _, file := range batch {
			s.watcher.Archive(file, true)
		}
		s.watcher.Done(batch)
		s.saveJob(ctx, job)
		return
	}

	job.Status = types.JobDone
	job.OutputPath = res.OutputPath
	job.Pages = res.Pages
	job.FilesTotal = res.FilesTotal
	job.FilesFailed = res.FilesFailed
	job.Warnings = res.Warnings
	s.logger.Info("combine run finished", "output", res.OutputPath, "pages", res.Pages)

	failed := make(map[string]bool, len(res.FailedFiles))
	for _, file := range res.FailedFiles {
		failed[file] = true
	}
	for _, file := range batch {
		s.watcher.Archive(file, failed[file])
	}
	s.watcher.Done(batch)
	s.saveJob(ctx, job)
}

func (s *Service) saveJob(ctx context.Context, job types.Job) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveJob(ctx, job); err != nil {
		s.logger.Error("error saving job", "job", job.ID, "error", err)
	}
}
