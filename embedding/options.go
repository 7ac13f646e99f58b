package embedding

import "log/slog"

type settings struct {
	logger *slog.Logger
}

// Option configures the types in this package.
type Option func(*settings) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

func applyOptions(component string, opts []Option) (*settings, error) {
	s := &settings{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", component)
	return s, nil
}
