package eodobs

import (
	"context"
	"time"

	"notion-trade-sync/internal/interfaces"
	"notion-trade-sync/internal/logger"
	"notion-trade-sync/internal/trace"
)

type observableEodSummarizer struct {
	summarizer interfaces.EodSummarizer
}

var _ interfaces.EodSummarizer = (*observableEodSummarizer)(nil)

func Wrap(summarizer interfaces.EodSummarizer) interfaces.EodSummarizer {
	return &observableEodSummarizer{
		summarizer: summarizer,
	}
}

func (oes *observableEodSummarizer) SummarizeDay(t time.Time) (string, error) {
	ctx, span := trace.StartSpan(context.Background(), "eod.SummarizeDay")
	defer span.End()

	date := t.Format("2006-01-02")
	logger.InfoSkip(ctx, 1, "Starting daily sync summary", "date", date)

	csvPath, err := oes.summarizer.SummarizeDay(t)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Daily sync summary failed", err, "date", date)
		return "", err
	}
	if csvPath == "" {
		logger.InfoSkip(ctx, 1, "No synced trades for daily summary", "date", date)
		return "", nil
	}

	logger.InfoSkip(ctx, 1, "Daily sync summary written", "date", date, "csv_path", csvPath)
	return csvPath, nil
}

func (oes *observableEodSummarizer) SummarizeToday() (string, error) {
	ctx, span := trace.StartSpan(context.Background(), "eod.SummarizeToday")
	defer span.End()

	csvPath, err := oes.summarizer.SummarizeToday()
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Today's sync summary failed", err)
		return "", err
	}
	logger.InfoSkip(ctx, 1, "Today's sync summary finished", "csv_path", csvPath)
	return csvPath, nil
}
