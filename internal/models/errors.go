package models

import "errors"

// Custom errors
var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateKey        = errors.New("duplicate key violation")
	ErrAlreadyValidated    = errors.New("prediction already validated")
	ErrTeamStatsMissing    = errors.New("team stats not available")
	ErrInsufficientSamples = errors.New("insufficient validated samples")
	ErrFitDiverged         = errors.New("calibration fit failed to converge")
	ErrUnknownSport        = errors.New("sport not configured")
)
