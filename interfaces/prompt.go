// Package interfaces contains the collaborator contracts of the selection engine
package interfaces

import "context"

// Prompter presents decision points to the user.
//
// Implementations must present exactly the supplied option labels and must
// distinguish explicit cancellation from any option choice: a dismissed
// prompt returns errors.ErrCancelled. Calls block until the user answers or
// ctx is done.
type Prompter interface {
	// Choose asks the user to pick one of options and returns its index.
	Choose(ctx context.Context, message, title string, options []string) (int, error)

	// Text asks the user for a line of free text, suggesting defaultValue.
	Text(ctx context.Context, message, title, defaultValue string) (string, error)
}
