package upload

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/netsentry/netsentry/internal/config"
	"github.com/netsentry/netsentry/internal/metrics"
	"github.com/netsentry/netsentry/internal/safefile"
)

// Intake accepts validated files, stores them under the uploads
// directory, and tracks their status records for the results view.
type Intake struct {
	dir          string
	previewBytes int
	validator    *Validator
	logger       *slog.Logger

	// delay produces the simulated processing time. The real analysis
	// backend is not wired yet; processing always succeeds after a short
	// randomized pause. TODO: replace with the ingest call once the
	// analysis service exposes one.
	delay func() time.Duration

	mu    sync.RWMutex
	files map[string]*File
	order []string
}

// NewIntake creates the uploads directory if needed and returns an
// empty intake.
func NewIntake(cfg config.UploadConfig, logger *slog.Logger) (*Intake, error) {
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating uploads dir: %w", err)
	}
	return &Intake{
		dir:          cfg.Dir,
		previewBytes: cfg.PreviewBytes,
		validator:    NewValidator(cfg, logger),
		logger:       logger,
		delay: func() time.Duration {
			return time.Duration(300+rand.Intn(1200)) * time.Millisecond
		},
		files: make(map[string]*File),
	}, nil
}

// Validator exposes the intake's validator for batch pre-checks.
func (in *Intake) Validator() *Validator {
	return in.validator
}

// Accept validates one file and, if accepted, copies its content to
// disk and registers a status record. Rejections are returned to the
// caller by name; only I/O problems are errors.
func (in *Intake) Accept(name string, declaredSize int64, r io.Reader) (*File, *Rejection, error) {
	c := Candidate{Name: name, Size: declaredSize}
	if rej := in.validator.Check(c); rej != nil {
		metrics.UploadValidations.WithLabelValues("rejected").Inc()
		return nil, rej, nil
	}

	accepted, _ := in.validator.ValidateBatch([]Candidate{c})
	f := accepted[0]
	f.StoredPath = filepath.Join(in.dir, f.ID+f.Extension)

	// The declared size is client-supplied; the copy re-enforces the
	// ceiling on actual bytes.
	written, err := in.copyCapped(f.StoredPath, r)
	if err != nil {
		return nil, nil, err
	}
	if written > in.validator.maxBytes {
		_ = os.Remove(f.StoredPath)
		metrics.UploadValidations.WithLabelValues("rejected").Inc()
		return nil, &Rejection{
			Name:   name,
			Reason: fmt.Sprintf("file is too large (max %d MiB)", in.validator.maxBytes>>20),
		}, nil
	}
	f.Size = written

	if Previewable(f) {
		if prefix, perr := safefile.ReadPrefix(f.StoredPath, in.previewBytes); perr == nil {
			f.Preview = strings.ToValidUTF8(string(prefix), "")
		} else {
			// Previews are best-effort.
			in.logger.Warn("preview read failed", "name", f.Name, "error", perr)
		}
	}

	in.mu.Lock()
	in.files[f.ID] = f
	in.order = append(in.order, f.ID)
	in.mu.Unlock()

	metrics.UploadValidations.WithLabelValues("accepted").Inc()
	in.logger.Info("upload accepted", "id", f.ID, "name", f.Name, "size", f.Size)
	return in.snapshot(f.ID), nil, nil
}

// Process runs the simulated upload step for one accepted file: the
// record moves to uploading, pauses, then lands on success with a
// timestamp. Unknown ids are ignored.
func (in *Intake) Process(id string) {
	if !in.setStatus(id, StatusUploading, "") {
		return
	}
	time.Sleep(in.delay())
	in.mu.Lock()
	if f, ok := in.files[id]; ok {
		f.Status = StatusSuccess
		f.UploadedAt = time.Now().UTC()
	}
	in.mu.Unlock()
	in.logger.Info("upload processed", "id", id)
}

// List returns copies of all status records, oldest first.
func (in *Intake) List() []*File {
	in.mu.RLock()
	defer in.mu.RUnlock()
	out := make([]*File, 0, len(in.order))
	for _, id := range in.order {
		if f, ok := in.files[id]; ok {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out
}

// Get returns a copy of one record.
func (in *Intake) Get(id string) (*File, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	f, ok := in.files[id]
	if !ok {
		return nil, false
	}
	cp := *f
	return &cp, true
}

// Remove deletes a record and its stored file.
func (in *Intake) Remove(id string) error {
	in.mu.Lock()
	f, ok := in.files[id]
	if ok {
		delete(in.files, id)
		for idx, oid := range in.order {
			if oid == id {
				in.order = append(in.order[:idx], in.order[idx+1:]...)
				break
			}
		}
	}
	in.mu.Unlock()
	if !ok {
		return nil
	}
	if err := os.Remove(f.StoredPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stored upload: %w", err)
	}
	return nil
}

func (in *Intake) setStatus(id string, s Status, errMsg string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	f, ok := in.files[id]
	if !ok {
		return false
	}
	f.Status = s
	f.Error = errMsg
	return true
}

func (in *Intake) snapshot(id string) *File {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if f, ok := in.files[id]; ok {
		cp := *f
		return &cp
	}
	return nil
}

// copyCapped writes r to path, stopping one byte past the ceiling so
// oversize streams are detected without buffering them fully.
func (in *Intake) copyCapped(path string, r io.Reader) (int64, error) {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return 0, fmt.Errorf("creating stored upload: %w", err)
	}
	defer func() { _ = out.Close() }()

	written, err := io.Copy(out, io.LimitReader(r, in.validator.maxBytes+1))
	if err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("writing stored upload: %w", err)
	}
	return written, nil
}
