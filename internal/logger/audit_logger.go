// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides a dedicated audit trail for prediction lifecycle
// events: every generated prediction, every recorded outcome, and every
// calibration replacement is logged here regardless of the base log level.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogPredictionGenerated logs a newly tracked prediction.
func (al *AuditLogger) LogPredictionGenerated(predictionID, gameID, sport string, homeWinProb, rawHomeWinProb, spread float64, deduplicated bool) {
	al.WithFields(logrus.Fields{
		"prediction_id":     predictionID,
		"game_id":           gameID,
		"sport":             sport,
		"home_win_prob":     homeWinProb,
		"raw_home_win_prob": rawHomeWinProb,
		"predicted_spread":  spread,
		"deduplicated":      deduplicated,
	}).Info("Prediction generated")
}

// LogOutcomeRecorded logs a validated outcome.
func (al *AuditLogger) LogOutcomeRecorded(predictionID, gameID string, homeScore, awayScore int, matchMethod string, recordedAt time.Time) {
	al.WithFields(logrus.Fields{
		"prediction_id": predictionID,
		"game_id":       gameID,
		"home_score":    homeScore,
		"away_score":    awayScore,
		"match_method":  matchMethod,
		"recorded_at":   recordedAt.Unix(),
	}).Info("Outcome recorded")
}

// LogCalibrationReplaced logs an accepted recalibration run.
func (al *AuditLogger) LogCalibrationReplaced(oldA, oldB, newA, newB float64, sampleCount int) {
	al.WithFields(logrus.Fields{
		"old_a":        oldA,
		"old_b":        oldB,
		"new_a":        newA,
		"new_b":        newB,
		"sample_count": sampleCount,
	}).Info("Recalibration params replaced")
}

// LogCalibrationFallback logs a diverged fit falling back to identity.
func (al *AuditLogger) LogCalibrationFallback(reason string, sampleCount int) {
	al.WithFields(logrus.Fields{
		"reason":       reason,
		"sample_count": sampleCount,
	}).Warn("Recalibration fell back to identity transform")
}
