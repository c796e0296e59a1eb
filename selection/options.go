package selection

import (
	"log/slog"

	"github.com/caio-sobreiro/dicomko/interfaces"
	"github.com/caio-sobreiro/dicomko/keyobject"
)

type options struct {
	logger   *slog.Logger
	notifier interfaces.Notifier
	title    string
}

// Option configures a Resolver or a Coordinator
type Option func(*options)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithNotifier sets the observer told about committed changes
func WithNotifier(notifier interfaces.Notifier) Option {
	return func(o *options) {
		o.notifier = notifier
	}
}

// WithDialogTitle sets the title of decision prompts
func WithDialogTitle(title string) Option {
	return func(o *options) {
		o.title = title
	}
}

func newOptions(opts []Option) options {
	o := options{title: keyobject.DefaultDialogTitle}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}
