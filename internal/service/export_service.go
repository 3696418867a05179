package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
	"github.com/noah-isme/academic-records-api/pkg/export"
)

// TableSource produces the rendered table of a view.
type TableSource interface {
	Table(ctx context.Context) (export.Dataset, error)
}

type fileWriter interface {
	Save(filename string, data []byte) (string, error)
}

// ExportFile is a rendered export ready to be served or written.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
	Rows        int
}

// ExportService renders view tables as CSV or PDF.
type ExportService struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{logger: logger, now: time.Now}
}

// Render renders the table of src in format.
func (s *ExportService) Render(ctx context.Context, src TableSource, format string) (*ExportFile, error) {
	renderer, err := export.RendererFor(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnsupportedFormat.Code, appErrors.ErrUnsupportedFormat.Status, fmt.Sprintf("unsupported export format %q", format))
	}
	data, err := src.Table(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := renderer.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	file := &ExportFile{
		Filename:    fmt.Sprintf("%s-%s.%s", strings.ToLower(data.Title), s.now().UTC().Format("20060102-150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Payload:     payload,
		Rows:        len(data.Rows),
	}
	s.logger.Info("export rendered",
		zap.String("file", file.Filename),
		zap.Int("rows", file.Rows),
		zap.Int("bytes", len(payload)),
	)
	return file, nil
}

// Write persists file through storage and returns its path.
func (s *ExportService) Write(storage fileWriter, file *ExportFile) (string, error) {
	path, err := storage.Save(file.Filename, file.Payload)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to write export")
	}
	return path, nil
}
