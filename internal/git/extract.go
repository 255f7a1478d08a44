// Package git produces a line log from a git repository by blaming every
// tracked file at HEAD.
package git

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/rohankatakam/codefolio/internal/errors"
	"github.com/rohankatakam/codefolio/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// TimeLayout formats the per-line time column
const TimeLayout = "15:04:05 GMT-0700"

// ExtractOptions selects files and bounds the blame workers
type ExtractOptions struct {
	// Include keeps only files matching one of these doublestar patterns;
	// empty keeps every file
	Include []string
	Exclude []string
	// Concurrency bounds simultaneous blames; 0 uses GOMAXPROCS
	Concurrency int
	Logger      *logrus.Logger
}

// Extractor blames a repository's files at HEAD
type Extractor struct {
	path   string
	head   plumbing.Hash
	opts   ExtractOptions
	logger *logrus.Logger
}

// Open prepares an extractor for the repository containing path
func Open(path string, opts ExtractOptions) (*Extractor, error) {
	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}
	ref, err := repo.Head()
	if err != nil {
		return nil, errors.ExternalError(err, "resolve HEAD").WithContext("path", path)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.GOMAXPROCS(0)
	}

	return &Extractor{path: path, head: ref.Hash(), opts: opts, logger: logger}, nil
}

// Head is the commit being blamed
func (e *Extractor) Head() string { return e.head.String() }

// Files lists the non-binary files at HEAD that pass the include/exclude globs
func (e *Extractor) Files() ([]string, error) {
	repo, err := openRepo(e.path)
	if err != nil {
		return nil, err
	}
	commit, err := repo.CommitObject(e.head)
	if err != nil {
		return nil, errors.ExternalError(err, "load HEAD commit")
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, errors.ExternalError(err, "load HEAD tree")
	}

	var paths []string
	err = tree.Files().ForEach(func(f *object.File) error {
		if !e.selected(f.Name) {
			return nil
		}
		binary, err := f.IsBinary()
		if err != nil {
			return err
		}
		if binary {
			e.logger.WithField("file", f.Name).Debug("Skipping binary file")
			return nil
		}
		paths = append(paths, f.Name)
		return nil
	})
	if err != nil {
		return nil, errors.ExternalError(err, "walk HEAD tree")
	}
	return paths, nil
}

// Extract blames every selected file and returns one record per line, files
// in tree order and lines in file order.
func (e *Extractor) Extract(ctx context.Context) ([]models.LineRecord, error) {
	paths, err := e.Files()
	if err != nil {
		return nil, err
	}

	results := make([][]models.LineRecord, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records, err := e.blameFile(path)
			if err != nil {
				return errors.ExternalError(err, "blame file").WithContext("file", path)
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var records []models.LineRecord
	for _, r := range results {
		records = append(records, r...)
	}

	e.logger.WithFields(logrus.Fields{
		"files": len(paths),
		"lines": len(records),
		"head":  e.head.String()[:7],
	}).Info("Extracted line log")
	return records, nil
}

// blameFile opens its own repository handle; go-git object storage is not
// shared between goroutines.
func (e *Extractor) blameFile(path string) ([]models.LineRecord, error) {
	repo, err := openRepo(e.path)
	if err != nil {
		return nil, err
	}
	commit, err := repo.CommitObject(e.head)
	if err != nil {
		return nil, err
	}
	blame, err := gogit.Blame(commit, path)
	if err != nil {
		return nil, err
	}

	tag := TypeTag(path)
	records := make([]models.LineRecord, 0, len(blame.Lines))
	for i, line := range blame.Lines {
		author := line.AuthorName
		if author == "" {
			author = line.Author
		}
		records = append(records, LineRecord(line.Hash.String(), path, i+1, line.Text, author, line.Date, tag))
	}
	return records, nil
}

// LineRecord builds the log row for one blamed line
func LineRecord(hash, path string, lineNo int, text, author string, at time.Time, tag string) models.LineRecord {
	return models.LineRecord{
		Commit:   hash,
		File:     path,
		Line:     lineNo,
		Depth:    Depth(text),
		Length:   len(strings.TrimSpace(text)),
		Author:   author,
		Date:     time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location()),
		Time:     at.Format(TimeLayout),
		Timezone: at.Format("-07:00"),
		Datetime: at,
		Type:     tag,
	}
}

// Depth counts indentation levels: one per leading tab, one per two spaces
func Depth(text string) int {
	tabs, spaces := 0, 0
	for _, r := range text {
		switch r {
		case '\t':
			tabs++
		case ' ':
			spaces++
		default:
			return tabs + spaces/2
		}
	}
	return tabs + spaces/2
}

func (e *Extractor) selected(path string) bool {
	for _, pattern := range e.opts.Exclude {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return false
		}
	}
	if len(e.opts.Include) == 0 {
		return true
	}
	for _, pattern := range e.opts.Include {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

// ValidatePatterns reports the first malformed glob
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return errors.ValidationErrorf("invalid glob pattern %q", p)
		}
	}
	return nil
}

func openRepo(path string) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.ExternalError(err, fmt.Sprintf("open repository %s", path))
	}
	return repo, nil
}
