package ai

import "errors"

var (
	// ErrMissingCredential indicates no API key was configured.
	ErrMissingCredential = errors.New("missing API key")

	// ErrEmptyResponse indicates the model returned no content.
	ErrEmptyResponse = errors.New("empty model response")

	// ErrInvalidResponse indicates the model output could not be parsed.
	ErrInvalidResponse = errors.New("invalid model response")

	// ErrUnknownProvider indicates a provider name outside the supported set.
	ErrUnknownProvider = errors.New("unknown AI provider")
)

func isMissingCredential(err error) bool {
	return errors.Is(err, ErrMissingCredential)
}
