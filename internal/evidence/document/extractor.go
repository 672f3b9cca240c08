package document

import (
	"context"
	"image"
	"log/slog"
	"strings"

	"kycgate/internal/evidence/tracer"
	"kycgate/internal/platform/imaging"
	dErrors "kycgate/pkg/domain-errors"
	"kycgate/pkg/requestcontext"
)

const (
	// DefaultOCRConfidence is reported when no page yielded word confidences.
	DefaultOCRConfidence = 0.4

	// mrzBandFraction is the share of the document height searched for the MRZ.
	mrzBandFraction = 0.35
)

// Extraction is the merged result of all extraction passes.
type Extraction struct {
	Fields        Fields
	OCRConfidence float64
	MRZFound      bool
}

// Extractor runs the MRZ and OCR passes over document images.
type Extractor struct {
	engine     Engine
	mrzEnabled bool
	tracer     tracer.Tracer
	logger     *slog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithMRZ toggles the MRZ pass. It is on by default.
func WithMRZ(enabled bool) ExtractorOption {
	return func(e *Extractor) { e.mrzEnabled = enabled }
}

// WithExtractorTracer sets the tracer used for extraction spans.
func WithExtractorTracer(t tracer.Tracer) ExtractorOption {
	return func(e *Extractor) {
		if t != nil {
			e.tracer = t
		}
	}
}

// NewExtractor creates an extractor over engine.
func NewExtractor(engine Engine, logger *slog.Logger, opts ...ExtractorOption) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Extractor{
		engine:     engine,
		mrzEnabled: true,
		tracer:     tracer.NewNoop(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads the front (and optional back) of a document and merges the
// result with overrides. MRZ failures degrade to an empty MRZ record; OCR
// failures are returned as internal errors.
func (e *Extractor) Extract(ctx context.Context, front, back image.Image, overrides Overrides) (*Extraction, error) {
	if front == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "document front image is required")
	}

	ctx, span := e.tracer.Start(ctx, tracer.SpanExtract)

	mrz := e.readMRZ(ctx, front)

	ocr, conf, err := e.readText(ctx, front, back)
	if err != nil {
		span.End(err)
		return nil, err
	}

	fields := Merge(mrz, ocr, overrides)
	span.SetAttributes(
		tracer.String(tracer.AttrSource, fields.Source),
		tracer.Float64("ocr.confidence", conf),
	)
	span.End(nil)

	return &Extraction{
		Fields:        fields,
		OCRConfidence: conf,
		MRZFound:      !mrz.IsEmpty(),
	}, nil
}

func (e *Extractor) readMRZ(ctx context.Context, front image.Image) Fields {
	if !e.mrzEnabled {
		return Fields{}
	}

	page, err := e.engine.Recognize(ctx, imaging.CropBottom(front, mrzBandFraction), Options{Mode: ModeMRZ})
	if err != nil {
		e.logger.WarnContext(ctx, "mrz read failed, falling back to ocr",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return Fields{}
	}

	fields, err := ParseMRZ(FindMRZ(strings.Join(page.Lines(), "\n")))
	if err != nil {
		e.logger.DebugContext(ctx, "no mrz on document", "request_id", requestcontext.RequestID(ctx))
		return Fields{}
	}
	return fields
}

func (e *Extractor) readText(ctx context.Context, pages ...image.Image) (Fields, float64, error) {
	var (
		records []Fields
		best    float64
		found   bool
	)
	for _, img := range pages {
		if img == nil {
			continue
		}
		page, err := e.engine.Recognize(ctx, img, Options{Mode: ModeText})
		if err != nil {
			if ctx.Err() != nil {
				return Fields{}, 0, dErrors.Wrap(err, dErrors.CodeTimeout, "document ocr timed out")
			}
			return Fields{}, 0, dErrors.Wrap(err, dErrors.CodeInternal, "document ocr failed")
		}
		records = append(records, ParseText(page.Text()))
		if conf, ok := page.Confidence(); ok {
			if !found || conf > best {
				best = conf
			}
			found = true
		}
	}
	if !found {
		best = DefaultOCRConfidence
	}
	return MergeFields(records...), best, nil
}
