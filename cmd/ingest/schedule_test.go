package main

import (
	"errors"
	"testing"

	"github.com/robfig/cron/v3"

	"github.com/riskibarqy/rugby-analytics/internal/platform/logging"
	"github.com/riskibarqy/rugby-analytics/internal/usecase"
)

func TestDefaultScheduleParses(t *testing.T) {
	t.Parallel()

	for _, spec := range []string{"0 */6 * * *", "@hourly", "30 4 * * 1"} {
		if _, err := cron.ParseStandard(spec); err != nil {
			t.Fatalf("parse %q: %v", spec, err)
		}
	}
}

func TestCronLoggerAcceptsKeyValues(t *testing.T) {
	t.Parallel()

	l := cronLogger{logger: logging.NewNop()}
	l.Info("schedule", "entry", 1)
	l.Error(errors.New("boom"), "job panicked", "entry", 1)
}

func TestPrintReportSkipsEmptyRuns(t *testing.T) {
	t.Parallel()

	if err := printReport(usecase.RunReport{}, true, logging.NewNop()); err != nil {
		t.Fatalf("print empty report: %v", err)
	}
}
