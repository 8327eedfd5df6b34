package parser

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ParseBatch applies the document pipeline once per input, independently.
// Results preserve input order regardless of completion order. In the default
// mode every document is attempted; with FailFast the batch runs sequentially
// and stops after the first document-level failure, returning the results
// accumulated so far.
func (s *Service) ParseBatch(ctx context.Context, paths []string) []*ParserResult {
	s.logger.Info("parser.batch.start", "documents", len(paths), "fail_fast", s.cfg.Parser.FailFast)

	var results []*ParserResult
	if s.cfg.Parser.FailFast {
		for _, path := range paths {
			result := s.ParseFile(ctx, path)
			results = append(results, result)
			if !result.Success {
				s.logger.Warn("parser.batch.aborted", "failed_document", result.DocumentName)
				break
			}
		}
	} else {
		results = make([]*ParserResult, len(paths))
		g := new(errgroup.Group)
		g.SetLimit(s.cfg.Parser.BatchWorkers)
		for i, path := range paths {
			g.Go(func() error {
				results[i] = s.ParseFile(ctx, path)
				return nil
			})
		}
		_ = g.Wait()
	}

	successful := 0
	for _, r := range results {
		if r.Success {
			successful++
		}
	}
	s.logger.Info("parser.batch.done",
		"documents", len(paths),
		"processed", len(results),
		"successful", successful,
	)
	return results
}
