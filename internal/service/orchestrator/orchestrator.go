package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/slidesdown/converter/internal/infra/limiter"
	"github.com/slidesdown/converter/internal/infra/logger"
	"github.com/slidesdown/converter/internal/service/assembler"
	"github.com/slidesdown/converter/internal/service/fetcher"
	apperrors "github.com/slidesdown/converter/pkg/errors"
)

type Request struct {
	RequestID string
	Images    []string
	Title     string
	Format    string
}

// Result carries the assembled document plus how many of the requested
// images could not be fetched.
type Result struct {
	RequestID    string
	Document     *assembler.Document
	FailedImages int
}

type Options struct {
	MaxImages    int
	FetchWorkers int
}

// Orchestrator drives one conversion: validate, fetch all images
// concurrently, assemble into the requested format.
type Orchestrator struct {
	fetchSvc  *fetcher.Service
	pdfAsm    assembler.Assembler
	pptxAsm   assembler.Assembler
	zipAsm    assembler.Assembler
	limiter   *limiter.Limiter
	maxImages int
	workers   int
	logger    *logger.Logger
}

func New(
	fetchSvc *fetcher.Service,
	pdfAsm, pptxAsm, zipAsm assembler.Assembler,
	lim *limiter.Limiter,
	opts Options,
	log *logger.Logger,
) *Orchestrator {
	if opts.MaxImages <= 0 {
		opts.MaxImages = 100
	}
	if opts.FetchWorkers <= 0 {
		opts.FetchWorkers = 8
	}
	return &Orchestrator{
		fetchSvc:  fetchSvc,
		pdfAsm:    pdfAsm,
		pptxAsm:   pptxAsm,
		zipAsm:    zipAsm,
		limiter:   lim,
		maxImages: opts.MaxImages,
		workers:   opts.FetchWorkers,
		logger:    log,
	}
}

func (o *Orchestrator) Convert(ctx context.Context, req *Request) (*Result, error) {
	if err := o.validate(req); err != nil {
		return nil, err
	}

	release, err := o.limiter.Acquire(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeRateLimited, "too many concurrent conversions")
	}
	defer release()

	o.logger.Info("starting conversion",
		"request_id", req.RequestID,
		"images", len(req.Images),
		"format", req.Format,
	)

	set := o.fetchAll(ctx, req.Images)

	succeeded := set.SuccessCount()
	failed := set.FailureCount()
	if failed > 0 {
		o.logger.Warn("some images failed to fetch",
			"request_id", req.RequestID,
			"failed", failed,
			"succeeded", succeeded,
		)
	}
	if succeeded == 0 {
		return nil, apperrors.New(apperrors.ErrCodeNoImages, "no valid images could be fetched")
	}

	var asm assembler.Assembler
	switch req.Format {
	case assembler.FormatPDF:
		asm = o.pdfAsm
	case assembler.FormatPPT:
		asm = o.pptxAsm
	case assembler.FormatZIP:
		asm = o.zipAsm
	}

	doc, err := asm.Assemble(set, req.Title)
	if err != nil {
		if errors.Is(err, assembler.ErrNoImages) {
			return nil, apperrors.New(apperrors.ErrCodeNoImages, "no valid images could be fetched")
		}
		o.logger.Error("assembly failed", "request_id", req.RequestID, "format", req.Format, "error", err)
		return nil, apperrors.Wrap(err, apperrors.ErrCodeAssembly, fmt.Sprintf("failed to assemble %s document", req.Format))
	}

	o.logger.Info("conversion completed",
		"request_id", req.RequestID,
		"format", req.Format,
		"items", succeeded,
		"failed_images", failed,
		"size_bytes", len(doc.Bytes),
	)

	return &Result{
		RequestID:    req.RequestID,
		Document:     doc,
		FailedImages: failed,
	}, nil
}

func (o *Orchestrator) validate(req *Request) error {
	if len(req.Images) == 0 {
		return apperrors.New(apperrors.ErrCodeInvalidReq, "no images provided")
	}
	if len(req.Images) > o.maxImages {
		return apperrors.New(apperrors.ErrCodeInvalidReq,
			fmt.Sprintf("too many images: %d exceeds limit of %d", len(req.Images), o.maxImages))
	}
	if !assembler.KnownFormat(req.Format) {
		return apperrors.New(apperrors.ErrCodeInvalidReq, "invalid format, must be pdf, ppt or zip")
	}
	return nil
}

// fetchAll dispatches every URL through a bounded worker pool and writes
// each outcome into its index slot, so set order always matches request
// order no matter which fetch finishes first.
func (o *Orchestrator) fetchAll(ctx context.Context, urls []string) fetcher.Set {
	set := make(fetcher.Set, len(urls))
	sem := make(chan struct{}, o.workers)
	var wg sync.WaitGroup

	for i, u := range urls {
		wg.Add(1)
		go func(idx int, rawURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			set[idx] = o.fetchSvc.Fetch(ctx, rawURL, idx)
		}(i, u)
	}

	wg.Wait()
	return set
}
