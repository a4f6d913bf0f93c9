package git

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/aretw0/patchlore/pkg/core"
)

const (
	recordSep = "\x1e"
	fieldSep  = "\x1f"
	logFormat = "--format=" + recordSep + "%H" + fieldSep + "%an" + fieldSep + "%ae" + fieldSep + "%aI" + fieldSep + "%B" + fieldSep
)

// Client wraps git command execution for one working directory.
type Client struct {
	WorkDir string
	Logger  *zap.Logger
}

// NewClient creates a new git client for the given working directory.
func NewClient(workDir string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		WorkDir: workDir,
		Logger:  logger,
	}
}

// IsInstalled reports whether a git binary is on PATH.
func IsInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// IsRepo reports whether WorkDir is inside a git work tree.
func (c *Client) IsRepo(ctx context.Context) bool {
	out, err := c.Run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// Run executes a raw git command in the working directory.
func (c *Client) Run(ctx context.Context, args ...string) (string, error) {
	c.Logger.Debug("executing git", zap.Strings("args", args), zap.String("dir", c.WorkDir))

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.WorkDir

	out, err := cmd.CombinedOutput()
	output := string(out)

	if err != nil {
		return output, errors.Wrapf(err, "git %s failed: %s", args[0], strings.TrimSpace(output))
	}

	return strings.TrimSpace(output), nil
}

// Init initializes a new git repository if one doesn't exist.
func (c *Client) Init(ctx context.Context) error {
	_, err := c.Run(ctx, "init")
	return err
}

// Add adds files to the stage.
func (c *Client) Add(ctx context.Context, files ...string) error {
	if len(files) == 0 {
		return nil
	}
	args := append([]string{"add"}, files...)
	_, err := c.Run(ctx, args...)
	return err
}

// Commit records staged changes.
func (c *Client) Commit(ctx context.Context, msg string) error {
	_, err := c.Run(ctx, "commit", "-m", msg)
	return err
}

// Commits implements core.CommitSource by parsing `git log`.
// Commits come back in git's default order (newest first).
func (c *Client) Commits(ctx context.Context, q core.CommitQuery) ([]core.CommitRecord, error) {
	if !IsInstalled() {
		return nil, core.WithCode(errors.New("git is not installed"), core.CodeGitOperationFailed)
	}
	if info, err := os.Stat(c.WorkDir); err != nil || !info.IsDir() {
		return nil, core.WithCode(errors.Newf("repository not found: %s", c.WorkDir), core.CodeRepositoryNotFound)
	}
	if !c.IsRepo(ctx) {
		return nil, core.WithCode(errors.Newf("not a git repository: %s", c.WorkDir), core.CodeInvalidRepository)
	}

	args := []string{"log", "--no-color", "--name-only", logFormat}
	if q.Limit > 0 {
		args = append(args, "-n", strconv.Itoa(q.Limit))
	}
	if q.Range != "" {
		args = append(args, q.Range)
	}
	if len(q.Paths) > 0 {
		args = append(args, "--")
		args = append(args, q.Paths...)
	}

	out, err := c.Run(ctx, args...)
	if err != nil {
		return nil, core.WithCode(err, core.CodeGitOperationFailed)
	}
	return ParseLog(out, c.Logger), nil
}

// ParseLog parses output produced with the client's log format.
// Malformed records are logged and skipped. Text that is not valid UTF-8 is
// repaired with U+FFFD so exported documents round-trip.
func ParseLog(out string, logger *zap.Logger) []core.CommitRecord {
	if logger == nil {
		logger = zap.NewNop()
	}

	commits := []core.CommitRecord{}
	for _, record := range strings.Split(out, recordSep) {
		if strings.TrimSpace(record) == "" {
			continue
		}
		c, err := parseRecord(record)
		if err != nil {
			logger.Warn("skipping git log record", zap.Error(err))
			continue
		}
		commits = append(commits, c)
	}
	return commits
}

func parseRecord(record string) (core.CommitRecord, error) {
	fields := strings.SplitN(record, fieldSep, 6)
	if len(fields) < 6 {
		return core.CommitRecord{}, errors.Newf("malformed git log record: %q", record)
	}

	ts, err := time.Parse(time.RFC3339, fields[3])
	if err != nil {
		return core.CommitRecord{}, errors.Wrapf(err, "invalid date for commit %s", fields[0])
	}

	files := []string{}
	for _, line := range strings.Split(fields[5], "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, validUTF8(line))
		}
	}

	return core.CommitRecord{
		Hash:         fields[0],
		Author:       validUTF8(fields[1]),
		Email:        validUTF8(fields[2]),
		Timestamp:    ts,
		Message:      validUTF8(strings.TrimSpace(fields[4])),
		ChangedFiles: files,
	}, nil
}

func validUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

// ComponentType implements introspection.Component.
func (c *Client) ComponentType() string {
	return "git"
}

var _ core.CommitSource = (*Client)(nil)
