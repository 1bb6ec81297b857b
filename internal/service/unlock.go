package service

import (
	"context"

	"go.uber.org/zap"
)

// reportUnlockLogger is the default ReportUnlocker. The real unlock lives in
// the lead/report management subsystem; until that is wired in, completed
// payments are logged so the deliverable can be released manually.
type reportUnlockLogger struct {
	logger *zap.SugaredLogger
}

func NewLogReportUnlocker(logger *zap.SugaredLogger) ReportUnlocker {
	return &reportUnlockLogger{logger: logger}
}

func (u *reportUnlockLogger) UnlockReport(ctx context.Context, leadID, reportID string) error {
	u.logger.Infow("report unlocked for paid lead", "lead_id", leadID, "report_id", reportID)
	return nil
}
