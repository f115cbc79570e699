package pipeline

import "errors"

// Run-fatal error classes. Each aborts the run; none are retried within a
// single invocation.
var (
	// ErrDraftGeneration reports a failed text-provider call while drafting.
	ErrDraftGeneration = errors.New("pipeline: draft generation failed")

	// ErrDraftMalformed reports provider output that could not be decoded
	// into a usable draft, or a draft missing required fields.
	ErrDraftMalformed = errors.New("pipeline: draft malformed")

	// ErrImageGeneration reports that every configured image provider was
	// exhausted. An image is a mandatory field of a post; there is no
	// postpone state.
	ErrImageGeneration = errors.New("pipeline: image generation failed")

	// ErrAuthorNotFound reports a missing author record. The author must
	// exist before a run starts.
	ErrAuthorNotFound = errors.New("pipeline: author not found")

	// ErrStoreWrite reports a failed upload or document create.
	ErrStoreWrite = errors.New("pipeline: store write failed")
)
