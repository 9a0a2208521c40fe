// Package upload validates and stores log files submitted for analysis.
package upload

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/netsentry/netsentry/internal/config"
)

// Status is the lifecycle state of one accepted file.
type Status string

const (
	StatusReady     Status = "ready"
	StatusUploading Status = "uploading"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// previewableMax is the size ceiling for attaching a text preview.
const previewableMax = 1 << 20

// File is the status record tracked per accepted upload.
type File struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Extension  string    `json:"extension"`
	Status     Status    `json:"status"`
	UploadedAt time.Time `json:"uploaded_at,omitzero"`
	Preview    string    `json:"preview,omitempty"`
	Error      string    `json:"error,omitempty"`

	// StoredPath is where the intake wrote the file on disk. Not exposed
	// to API clients.
	StoredPath string `json:"-"`
}

// Rejection reports one file excluded from a batch, by name.
type Rejection struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Candidate is one selected file before validation.
type Candidate struct {
	Name string
	Size int64
}

// Validator applies the extension allow-list and size ceiling.
type Validator struct {
	allowed  map[string]bool
	maxBytes int64
	logger   *slog.Logger
}

// NewValidator builds a validator from config.
func NewValidator(cfg config.UploadConfig, logger *slog.Logger) *Validator {
	allowed := make(map[string]bool, len(cfg.AllowedExt))
	for _, ext := range cfg.AllowedExt {
		allowed[strings.ToLower(ext)] = true
	}
	return &Validator{
		allowed:  allowed,
		maxBytes: int64(cfg.MaxSizeMB) << 20,
		logger:   logger,
	}
}

// Check validates a single candidate. A nil return means accepted.
func (v *Validator) Check(c Candidate) *Rejection {
	ext := strings.ToLower(filepath.Ext(c.Name))
	if !v.allowed[ext] {
		return &Rejection{
			Name:   c.Name,
			Reason: fmt.Sprintf("file type %q is not allowed (accepted: %s)", ext, v.allowedList()),
		}
	}
	if c.Size > v.maxBytes {
		return &Rejection{
			Name:   c.Name,
			Reason: fmt.Sprintf("file is too large (%d bytes, max %d MiB)", c.Size, v.maxBytes>>20),
		}
	}
	return nil
}

// ValidateBatch checks every candidate, producing a status record per
// accepted file. Rejected files are reported by name and excluded;
// the rest of the batch continues.
func (v *Validator) ValidateBatch(candidates []Candidate) ([]*File, []Rejection) {
	var accepted []*File
	var rejected []Rejection
	for _, c := range candidates {
		if r := v.Check(c); r != nil {
			rejected = append(rejected, *r)
			v.logger.Info("upload rejected", "name", c.Name, "reason", r.Reason)
			continue
		}
		accepted = append(accepted, &File{
			ID:        uuid.NewString(),
			Name:      c.Name,
			Size:      c.Size,
			Extension: strings.ToLower(filepath.Ext(c.Name)),
			Status:    StatusReady,
		})
	}
	return accepted, rejected
}

// Previewable reports whether a file qualifies for a text preview:
// plain-text extension and under 1 MiB.
func Previewable(f *File) bool {
	if f.Size >= previewableMax {
		return false
	}
	return f.Extension == ".log" || f.Extension == ".txt"
}

func (v *Validator) allowedList() string {
	exts := make([]string, 0, len(v.allowed))
	for ext := range v.allowed {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}
