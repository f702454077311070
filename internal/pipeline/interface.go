package pipeline

import "context"

// Pipeline defines the interface for processing one meeting video
// end-to-end into its documentation.
type Pipeline interface {
	// Run processes videoPath: resolves the recording time, establishes
	// the session workspace, runs the external tools, uploads the
	// resulting assets, generates the meeting document, and cleans up.
	// Any stage failure rolls the workspace back before the error is
	// returned. The input video itself is never modified or deleted.
	Run(ctx context.Context, videoPath, promptName, notes string) error
}
