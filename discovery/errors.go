package discovery

import "errors"

// The different discovery error types.
var (
	ErrNotAuthorized      = errors.New("required capabilities are not granted")
	ErrRadioUnavailable   = errors.New("no usable radio is available")
	ErrScanStart          = errors.New("cannot start device discovery")
	ErrScanCancel         = errors.New("cannot cancel device discovery")
	ErrSubscribe          = errors.New("cannot subscribe to device notifications")
	ErrInvalidResetPolicy = errors.New("invalid reset policy")
)
