package compliance

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"nilclear/internal/kyc"
	"nilclear/pkg/domain"
	dErrors "nilclear/pkg/domain-errors"
)

// SanctionsScreener reports whether an entity is clear of all sanctions lists.
type SanctionsScreener interface {
	Screen(ctx context.Context, entity domain.EntityID) (bool, error)
}

// KYCResolver returns the active verification record for an entity, or nil
// when the entity is unverified or the record has expired.
type KYCResolver interface {
	RecordFor(ctx context.Context, entity domain.EntityID, now time.Time) (*kyc.Record, error)
}

// VolumeReader exposes the athlete's rolling totals.
type VolumeReader interface {
	CurrentDayTotal(ctx context.Context, entity domain.EntityID, at time.Time) (uint64, error)
	CurrentMonthTotal(ctx context.Context, entity domain.EntityID, at time.Time) (uint64, error)
}

// JurisdictionChecker reports whether a jurisdiction is on the approved list.
type JurisdictionChecker interface {
	IsApproved(ctx context.Context, code domain.Jurisdiction) (bool, error)
}

// gatherEvidence fans out the independent lookups and assembles the Evidence
// for a single evaluation. Any lookup failure aborts the whole gather; the
// gate never evaluates on partial evidence.
func (s *Service) gatherEvidence(ctx context.Context, req CheckRequest, at time.Time) (Evidence, error) {
	var ev Evidence

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		clear, err := s.sanctions.Screen(gCtx, req.Athlete)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to screen athlete")
		}
		ev.AthleteClear = clear
		return nil
	})

	g.Go(func() error {
		clear, err := s.sanctions.Screen(gCtx, req.Brand)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to screen brand")
		}
		ev.BrandClear = clear
		return nil
	})

	g.Go(func() error {
		approved, err := s.jurisdictions.IsApproved(gCtx, req.Jurisdiction)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check jurisdiction")
		}
		ev.JurisdictionCompliant = approved
		return nil
	})

	g.Go(func() error {
		record, err := s.kyc.RecordFor(gCtx, req.Athlete, at)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve kyc record")
		}
		ev.KYC = record
		return nil
	})

	g.Go(func() error {
		day, err := s.volume.CurrentDayTotal(gCtx, req.Athlete, at)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read daily volume")
		}
		month, err := s.volume.CurrentMonthTotal(gCtx, req.Athlete, at)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read monthly volume")
		}
		ev.DayTotal = day
		ev.MonthTotal = month
		return nil
	})

	if err := g.Wait(); err != nil {
		return Evidence{}, err
	}
	return ev, nil
}
