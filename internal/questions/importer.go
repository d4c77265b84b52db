package questions

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/learnforge/internal/logging"
)

// questionNamespace seeds the name-based UUIDs of imported questions.
var questionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("learnforge/questions"))

// Importer reads question sources from a single directory.
type Importer struct {
	dir    string
	logger *zap.Logger
}

// NewImporter returns an Importer rooted at dir, creating it if needed.
func NewImporter(dir string, logger *zap.Logger) (*Importer, error) {
	if dir == "" {
		return nil, errors.New("questions: source directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create source directory: %w", err)
	}
	return &Importer{dir: dir, logger: logging.OrNop(logger).Named("questions")}, nil
}

// Dir returns the source directory.
func (im *Importer) Dir() string {
	return im.dir
}

// Path resolves a source name inside the source directory. Names cannot
// escape the directory.
func (im *Importer) Path(source string) string {
	return filepath.Join(im.dir, filepath.Clean(string(filepath.Separator)+source))
}

func (im *Importer) open(source string) (*os.File, error) {
	p := im.Path(source)
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &NotFoundError{Path: p}
	}
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	return f, nil
}

func (im *Importer) exists(source string) error {
	p := im.Path(source)
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		return &NotFoundError{Path: p}
	}
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	return nil
}

// QuestionID returns the stable ID of the question at the 1-based data row of
// a source.
func QuestionID(subjectID, source string, row int) string {
	name := subjectID + "/" + source + "/" + strconv.Itoa(row)
	return uuid.NewSHA1(questionNamespace, []byte(name)).String()
}

// Import streams the canonical questions of a source. A missing source fails
// immediately with a NotFoundError. Every range over the sequence re-reads the
// source from the start. Rows without question text, rows breaking the
// canonical invariant and malformed records are skipped with a warning; only
// read failures are yielded as errors, after which the sequence ends.
func (im *Importer) Import(subjectID, source string) (iter.Seq2[Question, error], error) {
	if err := im.exists(source); err != nil {
		return nil, err
	}

	return func(yield func(Question, error) bool) {
		f, err := im.open(source)
		if err != nil {
			yield(Question{}, err)
			return
		}
		defer f.Close()

		log := im.logger.With(zap.String("subject", subjectID), zap.String("source", source))
		rr, err := newRowReader(f)
		if err != nil {
			yield(Question{}, fmt.Errorf("read header: %w", err))
			return
		}

		imported := 0
		for n := 1; ; n++ {
			row, err := rr.next()
			if errors.Is(err, io.EOF) {
				break
			}
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				log.Warn("skipping malformed row", zap.Int("row", n), zap.Error(err))
				continue
			}
			if err != nil {
				yield(Question{}, fmt.Errorf("read row %d: %w", n, err))
				return
			}

			q := FormatRow(row, subjectID)
			if q == nil {
				log.Warn("skipping row with missing question text", zap.Int("row", n))
				continue
			}
			if err := q.Validate(); err != nil {
				log.Warn("skipping invalid row", zap.Int("row", n), zap.Error(err))
				continue
			}
			q.ID = QuestionID(subjectID, source, n)

			imported++
			if !yield(*q, nil) {
				return
			}
		}
		log.Info("imported questions", zap.Int("count", imported))
	}, nil
}

// ImportAll collects every question of a source.
func (im *Importer) ImportAll(subjectID, source string) ([]Question, error) {
	seq, err := im.Import(subjectID, source)
	if err != nil {
		return nil, err
	}
	qs := []Question{}
	for q, err := range seq {
		if err != nil {
			return nil, err
		}
		qs = append(qs, q)
	}
	return qs, nil
}

// ListAvailableSources returns the .csv sources whose name contains
// subjectID, compared case-insensitively, in name order.
func (im *Importer) ListAvailableSources(subjectID string) []string {
	entries, err := os.ReadDir(im.dir)
	if err != nil {
		im.logger.Error("read source directory", zap.String("dir", im.dir), zap.Error(err))
		return []string{}
	}

	key := strings.ToLower(subjectID)
	names := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".csv") {
			continue
		}
		if strings.Contains(strings.ToLower(name), key) {
			names = append(names, name)
		}
	}
	return names
}
