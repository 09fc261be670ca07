// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/SpecMend/services/repair"
	"github.com/AleutianAI/SpecMend/services/repair/decision"
)

// watchDebounce batches rapid editor writes into one validation pass.
const watchDebounce = 200 * time.Millisecond

// runWatch re-validates a document whenever it changes on disk.
//
// The parent directory is watched rather than the file itself because
// most editors replace files on save, which would otherwise drop the
// watch after the first write.
func runWatch(cmd *cobra.Command, args []string) error {
	target, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("watching spec file: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tree := decision.BuildTree()
	slog.Info("Watching specification", "path", target)
	watchValidate(cmd, tree, target)

	timer := time.NewTimer(watchDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping watch", "path", target)
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(watchDebounce)
			pending = true

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", "error", err)

		case <-timer.C:
			pending = false
			watchValidate(cmd, tree, target)
		}
	}
}

// watchValidate runs one validation pass and prints the report.
func watchValidate(cmd *cobra.Command, tree *decision.Tree, target string) {
	text, err := readSpecFile(target)
	if err != nil {
		slog.Warn("Skipping validation pass", "error", err)
		return
	}

	issues := repair.CollectIssues(text)
	analysis := tree.AnalyzeIssues(issues)
	fmt.Fprint(cmd.OutOrStdout(), formatIssueReport(target, issues, analysis))
	slog.Info("Validation pass finished", "issues", len(issues))
}
