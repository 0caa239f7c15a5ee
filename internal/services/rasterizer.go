package services

import (
	"bytes"
	"context"
	"image"
	"image/png"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/models"
)

const DefaultRenderDPI = 150

type Rasterizer interface {
	Rasterize(ctx context.Context, document []byte) ([]models.PageImage, error)
}

// PageRenderer turns every page of a PDF into a bitmap, in document order.
type PageRenderer interface {
	Render(ctx context.Context, document []byte, dpi float64) ([]image.Image, error)
}

type rasterizer struct {
	renderer PageRenderer
	dpi      float64
	log      *zap.Logger
}

func NewRasterizer(dpi float64, log *zap.Logger) Rasterizer {
	return NewRasterizerWithRenderer(fitzRenderer{}, dpi, log)
}

func NewRasterizerWithRenderer(renderer PageRenderer, dpi float64, log *zap.Logger) Rasterizer {
	if dpi <= 0 {
		dpi = DefaultRenderDPI
	}
	return &rasterizer{
		renderer: renderer,
		dpi:      dpi,
		log:      logger.OrNop(log),
	}
}

func (r *rasterizer) Rasterize(ctx context.Context, document []byte) ([]models.PageImage, error) {
	declared, err := CountPages(document)
	if err != nil {
		return nil, err
	}
	if declared == 0 {
		return nil, errors.Wrap(ErrDocument, "document has no pages")
	}

	bitmaps, err := r.renderer.Render(ctx, document, r.dpi)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.Wrapf(ErrDocument, "render pages: %v", err)
	}
	if len(bitmaps) == 0 {
		return nil, errors.Wrap(ErrDocument, "document has no pages")
	}
	if len(bitmaps) != declared {
		r.log.Warn("page count mismatch between parser and renderer",
			zap.Int("declared", declared),
			zap.Int("rendered", len(bitmaps)),
		)
	}

	pages := make([]models.PageImage, 0, len(bitmaps))
	for i, bitmap := range bitmaps {
		var buf bytes.Buffer
		if err := png.Encode(&buf, bitmap); err != nil {
			return nil, errors.Wrapf(err, "encode page %d", i+1)
		}
		pages = append(pages, models.PageImage{
			Index:  i + 1,
			Data:   buf.Bytes(),
			Format: models.FormatPNG,
		})
	}

	r.log.Debug("document rasterized",
		zap.Int("pages", len(pages)),
		zap.Float64("dpi", r.dpi),
	)

	return pages, nil
}

// CountPages parses the document structure and returns the declared page
// count. Malformed input yields ErrDocument.
func CountPages(document []byte) (count int, err error) {
	if len(document) == 0 {
		return 0, errors.Wrap(ErrDocument, "empty document")
	}

	// the parser panics on some truncated cross-reference tables
	defer func() {
		if rec := recover(); rec != nil {
			count = 0
			err = errors.Wrapf(ErrDocument, "parse pdf: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(document), int64(len(document)))
	if err != nil {
		return 0, errors.Wrapf(ErrDocument, "parse pdf: %v", err)
	}

	return reader.NumPage(), nil
}

type fitzRenderer struct{}

func (fitzRenderer) Render(ctx context.Context, document []byte, dpi float64) ([]image.Image, error) {
	doc, err := fitz.NewFromMemory(document)
	if err != nil {
		return nil, errors.Wrap(err, "open document")
	}
	defer doc.Close()

	total := doc.NumPage()
	out := make([]image.Image, 0, total)
	for n := 0; n < total; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImageDPI(n, dpi)
		if err != nil {
			return nil, errors.Wrapf(err, "render page %d", n+1)
		}
		out = append(out, img)
	}

	return out, nil
}
