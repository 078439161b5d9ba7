/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package mirror

import (
	"context"
	"fmt"
	"sync"
	"time"

	"skin-market-go/internal/models"

	"go.uber.org/zap"
)

const (
	defaultPollingInterval = 10 * time.Second
	defaultBatchSize       = 100
)

// EntrySource is the slice of the store the worker reads from.
type EntrySource interface {
	ListUnmirroredEntries(ctx context.Context, limit int) ([]models.LedgerEntry, error)
	MarkEntryMirrored(ctx context.Context, entryId string, at time.Time) error
}

// Poster writes one ledger entry to the external ledger. It must be idempotent
// per entry id since an entry is retried until it is marked.
type Poster interface {
	PostEntry(ctx context.Context, entry models.LedgerEntry) error
}

// WorkerConfig contains configuration for Worker
type WorkerConfig struct {
	Source          EntrySource
	Poster          Poster
	PollingInterval time.Duration
	BatchSize       int
}

// Worker periodically copies unmirrored ledger entries to the external ledger
// in creation order.
type Worker struct {
	source          EntrySource
	poster          Poster
	pollingInterval time.Duration
	batchSize       int
	now             func() time.Time

	startOnce sync.Once
	stopOnce  sync.Once
	stopChan  chan struct{}
	doneChan  chan struct{}
}

// NewWorker creates a mirror worker; zero settings fall back to defaults.
func NewWorker(cfg WorkerConfig) *Worker {
	if cfg.PollingInterval <= 0 {
		cfg.PollingInterval = defaultPollingInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	return &Worker{
		source:          cfg.Source,
		poster:          cfg.Poster,
		pollingInterval: cfg.PollingInterval,
		batchSize:       cfg.BatchSize,
		now:             time.Now,
		stopChan:        make(chan struct{}),
		doneChan:        make(chan struct{}),
	}
}

// Start launches the polling loop in the background.
func (w *Worker) Start(ctx context.Context) {
	w.startOnce.Do(func() {
		zap.L().Info("Starting ledger mirror",
			zap.Duration("polling_interval", w.pollingInterval),
			zap.Int("batch_size", w.batchSize))
		go w.pollLoop(ctx)
	})
}

// Stop signals the loop and waits for the batch in flight to finish.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		zap.L().Info("Stopping ledger mirror")
		close(w.stopChan)
	})
	<-w.doneChan
	zap.L().Info("Ledger mirror stopped")
}

func (w *Worker) pollLoop(ctx context.Context) {
	defer close(w.doneChan)

	ticker := time.NewTicker(w.pollingInterval)
	defer ticker.Stop()

	w.runOnce(ctx)

	for {
		select {
		case <-ticker.C:
			w.runOnce(ctx)
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	mirrored, err := w.SyncBatch(ctx)
	if err != nil {
		zap.L().Error("Ledger mirror batch failed", zap.Int("mirrored", mirrored), zap.Error(err))
		return
	}
	if mirrored > 0 {
		zap.L().Info("Ledger mirror batch complete", zap.Int("mirrored", mirrored))
	}
}

// SyncBatch mirrors up to one batch of entries and returns how many were marked.
// It stops at the first failure so entries reach the external ledger in order.
func (w *Worker) SyncBatch(ctx context.Context) (int, error) {
	entries, err := w.source.ListUnmirroredEntries(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list unmirrored entries: %w", err)
	}

	mirrored := 0
	for _, entry := range entries {
		if err := w.poster.PostEntry(ctx, entry); err != nil {
			return mirrored, fmt.Errorf("failed to post entry %s: %w", entry.Id, err)
		}
		if err := w.source.MarkEntryMirrored(ctx, entry.Id, w.now()); err != nil {
			return mirrored, fmt.Errorf("failed to mark entry %s mirrored: %w", entry.Id, err)
		}
		mirrored++
	}
	return mirrored, nil
}
