package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// tool describes one external scanner invocation.
type tool struct {
	name    string
	binary  string
	timeout time.Duration
	outPath string
	args    func(target, outPath string) []string
}

// tools lists the scanners in run order. Output paths are relative to the
// results directory and match what the findings collector expects.
var tools = []tool{
	{
		name:    "nmap",
		binary:  "nmap",
		timeout: 900 * time.Second,
		outPath: filepath.Join("nmap", "nmap.txt"),
		args: func(target, outPath string) []string {
			return []string{"-T4", "--top-ports", "1000", "-sV", "-oN", outPath, target}
		},
	},
	{
		name:    "dirsearch",
		binary:  "dirsearch",
		timeout: 600 * time.Second,
		outPath: "dirsearch.txt",
		args: func(target, outPath string) []string {
			return []string{"-u", target, "-e", "php,html,txt", "--exclude-status", "404", "-o", outPath}
		},
	},
	{
		name:    "nikto",
		binary:  "nikto",
		timeout: 1500 * time.Second,
		outPath: filepath.Join("nikto", "nikto.txt"),
		args: func(target, outPath string) []string {
			return []string{"-h", target, "-Tuning", "x6", "-o", outPath}
		},
	},
	{
		name:    "nuclei",
		binary:  "nuclei",
		timeout: 600 * time.Second,
		outPath: filepath.Join("nuclei", "nuclei.jsonl"),
		args: func(target, outPath string) []string {
			return []string{"-u", target, "-severity", "critical,high,medium,low,info", "-jsonl", "-o", outPath, "-silent"}
		},
	},
}

// Runner shells out to the installed scanning tools and drops their reports
// under the results directory. Tools that are not installed are skipped with
// a warning so a partial toolchain still produces a usable corpus.
type Runner struct {
	resultsDir string
	logger     *slog.Logger
}

// NewRunner creates a runner writing reports under resultsDir.
func NewRunner(resultsDir string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{resultsDir: resultsDir, logger: logger}
}

// RunAll runs every available scanner against the target in sequence.
// A tool failing or timing out does not abort the remaining tools; the
// pipeline indexes whatever reports were produced.
func (r *Runner) RunAll(ctx context.Context, target string) error {
	if target == "" {
		return fmt.Errorf("scan target is required")
	}

	for _, t := range tools {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := exec.LookPath(t.binary); err != nil {
			r.logger.Warn("scanner not installed, skipping", "tool", t.name)
			continue
		}
		if err := r.runTool(ctx, t, target); err != nil {
			r.logger.Warn("scanner failed", "tool", t.name, "error", err)
		}
	}
	return nil
}

func (r *Runner) runTool(ctx context.Context, t tool, target string) error {
	outPath := filepath.Join(r.resultsDir, t.outPath)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	toolCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := exec.CommandContext(toolCtx, t.binary, t.args(target, outPath)...)

	r.logger.Info("running scanner", "tool", t.name, "target", target)
	start := time.Now()

	out, err := cmd.CombinedOutput()
	if toolCtx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("timed out after %s", t.timeout)
	}
	if err != nil {
		return fmt.Errorf("%w: %s", err, truncateOutput(out))
	}

	r.logger.Info("scanner finished", "tool", t.name, "duration", time.Since(start).Round(time.Second))
	return nil
}

// truncateOutput keeps error messages readable when a tool dumps a lot of
// text before failing.
func truncateOutput(out []byte) string {
	const max = 512
	if len(out) > max {
		return string(out[:max]) + "..."
	}
	return string(out)
}
