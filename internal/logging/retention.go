package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gotranscribe/internal/config"
)

// RetentionTarget specifies a directory and filename pattern to prune.
type RetentionTarget struct {
	Dir     string
	Pattern string
	Exclude []string
}

// RetentionTargets lists what gotranscribe prunes: rotated log files (the
// active log excluded) and scratch directories abandoned in work_dir.
func RetentionTargets(cfg *config.Config) []RetentionTarget {
	if cfg == nil {
		return nil
	}
	return []RetentionTarget{
		{
			Dir:     cfg.Paths.LogDir,
			Pattern: "*.log*",
			Exclude: []string{filepath.Join(cfg.Paths.LogDir, LogFileName)},
		},
		{
			Dir:     cfg.Paths.WorkDir,
			Pattern: "job-*",
		},
	}
}

// CleanupOldLogs removes entries matching the provided targets that are older
// than retentionDays. A retentionDays value of 0 disables pruning. It returns
// the number of entries removed.
func CleanupOldLogs(logger *slog.Logger, retentionDays int, targets ...RetentionTarget) int {
	if retentionDays <= 0 {
		return 0
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	exclusions := make(map[string]struct{})
	for _, target := range targets {
		for _, path := range target.Exclude {
			if trimmed := strings.TrimSpace(path); trimmed != "" {
				if abs, err := filepath.Abs(trimmed); err == nil {
					exclusions[abs] = struct{}{}
				}
			}
		}
	}

	removed := 0
	for _, target := range targets {
		dir := strings.TrimSpace(target.Dir)
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if pat := strings.TrimSpace(target.Pattern); pat != "" {
				matched, err := filepath.Match(pat, name)
				if err != nil || !matched {
					continue
				}
			}
			fullPath := filepath.Join(dir, name)
			if absPath, err := filepath.Abs(fullPath); err == nil {
				fullPath = absPath
			}
			if _, skip := exclusions[fullPath]; skip {
				continue
			}
			info, err := entry.Info()
			if err != nil || !info.ModTime().Before(cutoff) {
				continue
			}
			if err := os.RemoveAll(fullPath); err != nil {
				WarnWithContext(logger, "retention remove failed; entry remains", "retention_failed",
					String("path", fullPath),
					Error(err),
					String(FieldErrorHint, "check file permissions and directory ownership"),
				)
				continue
			}
			removed++
			if logger != nil {
				logger.Info("pruned",
					String("path", fullPath),
					String(FieldEventType, "retention_pruned"),
				)
			}
		}
	}
	return removed
}
