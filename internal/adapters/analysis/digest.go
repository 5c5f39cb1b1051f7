// Package analysis provides the default analyzer. It does not type-check code;
// it derives stable digests from what a real analyzer would consume, so callers
// can observe which facade ran an analysis and when it was repeated.
package analysis

import (
	"context"
	"encoding/binary"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/facades/internal/core/domain"
	"go.trai.ch/facades/internal/core/ports"
)

var _ ports.Analyzer = (*DigestAnalyzer)(nil)

// DigestAnalyzer implements ports.Analyzer with xxhash digests.
type DigestAnalyzer struct {
	logger ports.Logger
	now    func() time.Time
}

// NewDigestAnalyzer creates an analyzer that logs each analysis at debug level.
func NewDigestAnalyzer(logger ports.Logger) *DigestAnalyzer {
	return &DigestAnalyzer{logger: logger, now: time.Now}
}

// LoadBuiltIns returns the bundle selected by key.
func (a *DigestAnalyzer) LoadBuiltIns(ctx context.Context, key domain.BuiltInsKey) (*domain.BuiltIns, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if key == domain.DefaultBuiltInsKey {
		return domain.DefaultBuiltIns, nil
	}

	b := &domain.BuiltIns{
		Key:         key,
		Fingerprint: xxhash.Sum64String("builtins:" + key.String()),
		LoadedAt:    a.now(),
	}
	a.logger.Debug("built-ins loaded", "key", key.String())
	return b, nil
}

// AnalyzeModule digests the request. Equal requests yield equal digests.
func (a *DigestAnalyzer) AnalyzeModule(ctx context.Context, req domain.AnalysisRequest) (*domain.ModuleAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d := xxhash.New()
	_, _ = d.WriteString(req.Module.String())
	_, _ = d.WriteString("\x00")
	writeUint64(d, req.Settings.Fingerprint())
	if req.BuiltIns != nil {
		writeUint64(d, req.BuiltIns.Fingerprint)
	}
	writeUint64(d, req.Generation)
	for _, f := range req.SyntheticFiles {
		_, _ = d.WriteString(f.Path.String())
		_, _ = d.WriteString("\x00")
	}

	result := &domain.ModuleAnalysis{
		Module:     req.Module,
		Digest:     d.Sum64(),
		Resolver:   req.Resolver,
		Generation: req.Generation,
	}
	a.logger.Debug("module analyzed",
		"module", req.Module.String(),
		"resolver", req.Resolver,
		"generation", req.Generation,
		"digest", strconv.FormatUint(result.Digest, 16),
	)
	return result, nil
}

func writeUint64(d *xxhash.Digest, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = d.Write(buf[:])
}
