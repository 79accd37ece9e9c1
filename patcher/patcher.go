// Package patcher rewrites the IDE's AI service module from the
// deprecated ai.models.generateContent call shape to the
// getGenerativeModel handle shape, in place.
package patcher

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/diff"
	"github.com/richardlehane/crock32"

	"github.com/Momin010/MominAI-Beta-1/rewrite"
)

// DefaultTarget is the service file the patcher operates on when no
// target is configured.
const DefaultTarget = "src/IDE/services/aiService.ts"

// doneMessage is printed after a successful save.
const doneMessage = "Fixed AI service calls!"

// Config holds patcher configuration. Zero values select the default
// target, the default model, stdout, and the default logger.
type Config struct {
	Target string
	Model  string
	DryRun bool
	Out    io.Writer
	Logger *slog.Logger
}

// Patcher loads the target file, runs the migration pipeline over it,
// and writes the result back atomically.
type Patcher struct {
	target   string
	dryRun   bool
	out      io.Writer
	logger   *slog.Logger
	pipeline *rewrite.Pipeline
}

// Result describes one patch run.
type Result struct {
	Target      string
	Changed     bool
	Total       int
	Counts      []rewrite.RuleCount
	BytesBefore int
	BytesAfter  int
	SumBefore   string
	SumAfter    string
	Duration    time.Duration
}

// New creates a patcher from cfg.
func New(cfg Config) *Patcher {
	if cfg.Target == "" {
		cfg.Target = DefaultTarget
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Patcher{
		target:   cfg.Target,
		dryRun:   cfg.DryRun,
		out:      cfg.Out,
		logger:   cfg.Logger,
		pipeline: rewrite.NewGenAIPipeline(cfg.Model),
	}
}

// Run reads the target file, applies the migration rules in order, and
// saves the result over the original. Only I/O can fail; zero
// replacements is a valid outcome and still saves and confirms. In dry
// run mode nothing is written: a unified diff of the pending changes
// goes to the configured output instead.
func (p *Patcher) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	data, err := os.ReadFile(p.target)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p.target, err)
	}

	before := string(data)
	res := p.pipeline.Run(before)

	result := &Result{
		Target:      p.target,
		Changed:     res.Changed,
		Total:       res.Total,
		Counts:      res.Counts,
		BytesBefore: len(data),
		BytesAfter:  len(res.Text),
		SumBefore:   Fingerprint(data),
		SumAfter:    Fingerprint([]byte(res.Text)),
	}

	for _, rc := range res.Counts {
		if rc.Count > 0 {
			p.logger.Debug("applied rule", "rule", rc.Rule, "count", rc.Count)
		}
	}

	if p.dryRun {
		if res.Changed {
			if err := diff.Text("a/"+p.target, "b/"+p.target, before, res.Text, p.out); err != nil {
				return nil, fmt.Errorf("failed to render diff: %w", err)
			}
		}
		result.Duration = time.Since(start)
		p.logger.Info("dry run, skipping save",
			"target", p.target, "replacements", res.Total, "changed", res.Changed)
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := writeFileAtomic(p.target, []byte(res.Text)); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", p.target, err)
	}

	result.Duration = time.Since(start)
	p.logger.Info("patched service file",
		"target", p.target, "replacements", res.Total, "changed", res.Changed,
		"before", result.SumBefore, "after", result.SumAfter)

	fmt.Fprintln(p.out, doneMessage)
	return result, nil
}

// Fingerprint returns a short Crockford base32 digest of content,
// suitable for log lines and journal rows.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return crock32.Encode(binary.BigEndian.Uint64(sum[:8]))
}

// writeFileAtomic replaces the file at path with data. The content is
// written to a temp file in the same directory, given the original's
// mode, and renamed over the original, so a failed write never leaves
// a truncated target behind.
func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set temp file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
