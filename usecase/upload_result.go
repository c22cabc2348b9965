package usecase

import (
	"errors"
	"fmt"

	"youtube-auto-post/domain/model"
)

type FailureKind string

const (
	FailureValidation    FailureKind = "validation"
	FailurePrecondition  FailureKind = "precondition"
	FailureConfiguration FailureKind = "configuration"
	FailureTransfer      FailureKind = "transfer"
	FailureNotFound      FailureKind = "not_found"
	FailureConflict      FailureKind = "conflict"
	FailureInternal      FailureKind = "internal"
)

// FailureKindOf classifies err by the error kind it wraps.
func FailureKindOf(err error) FailureKind {
	switch {
	case errors.Is(err, model.ErrValidation):
		return FailureValidation
	case errors.Is(err, model.ErrPrecondition):
		return FailurePrecondition
	case errors.Is(err, model.ErrConfiguration):
		return FailureConfiguration
	case errors.Is(err, model.ErrTransfer):
		return FailureTransfer
	case errors.Is(err, model.ErrNotFound):
		return FailureNotFound
	case errors.Is(err, model.ErrConflict):
		return FailureConflict
	}
	return FailureInternal
}

var kindErrors = map[FailureKind]error{
	FailureValidation:    model.ErrValidation,
	FailurePrecondition:  model.ErrPrecondition,
	FailureConfiguration: model.ErrConfiguration,
	FailureTransfer:      model.ErrTransfer,
	FailureNotFound:      model.ErrNotFound,
	FailureConflict:      model.ErrConflict,
}

type UploadFailure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// UploadResult is the outcome of one upload attempt, shared by the manual
// trigger and the scheduled sweep.
type UploadResult struct {
	UploadID int64             `json:"upload_id"`
	State    model.UploadState `json:"state,omitempty"`
	VideoID  string            `json:"youtube_video_id,omitempty"`
	Failure  *UploadFailure    `json:"failure,omitempty"`

	err error
}

func (r *UploadResult) Succeeded() bool {
	return r.Failure == nil
}

// Err returns the classified error behind a failed result, or nil.
func (r *UploadResult) Err() error {
	if r.Failure == nil {
		return nil
	}
	if r.err != nil {
		return r.err
	}
	if kind, ok := kindErrors[r.Failure.Kind]; ok {
		return fmt.Errorf("%w: %s", kind, r.Failure.Message)
	}
	return errors.New(r.Failure.Message)
}

func newFailedResult(id int64, state model.UploadState, err error) *UploadResult {
	return &UploadResult{
		UploadID: id,
		State:    state,
		Failure:  &UploadFailure{Kind: FailureKindOf(err), Message: err.Error()},
		err:      err,
	}
}

// SweepReport summarises one pass over the due scheduled uploads.
type SweepReport struct {
	Processed int             `json:"processed"`
	Uploaded  int             `json:"uploaded"`
	Failed    int             `json:"failed"`
	Results   []*UploadResult `json:"results"`
}
