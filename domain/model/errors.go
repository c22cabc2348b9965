package model

import (
	"errors"
	"fmt"
)

// Error kinds. Concrete errors wrap one of these so callers can classify
// them with errors.Is.
var (
	ErrValidation    = errors.New("validation error")
	ErrPrecondition  = errors.New("precondition failed")
	ErrConfiguration = errors.New("configuration error")
	ErrTransfer      = errors.New("transfer error")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
)

var (
	ErrSettingsExists     = fmt.Errorf("%w: only one YouTube API settings record is allowed", ErrValidation)
	ErrSettingsNotFound   = fmt.Errorf("%w: please create the YouTube API settings first", ErrConfiguration)
	ErrClientSecretsUnset = fmt.Errorf("%w: please upload client_secrets.json in YouTube API settings", ErrConfiguration)
	ErrClientSecretsType  = fmt.Errorf("%w: the uploaded file must be a JSON file (client_secrets.json)", ErrValidation)
	ErrTitleRequired      = fmt.Errorf("%w: title is required", ErrValidation)
	ErrNoVideoAttached    = fmt.Errorf("%w: no video file attached", ErrPrecondition)
	ErrNoScheduleDate     = fmt.Errorf("%w: please set a schedule date", ErrPrecondition)
	ErrEmptyAttachment    = fmt.Errorf("%w: attachment has no data", ErrValidation)
	ErrUploadInProgress   = fmt.Errorf("%w: an upload for this record is already running", ErrConflict)
	ErrStaleUpload        = fmt.Errorf("%w: the upload changed state while it was being saved", ErrConflict)
)
