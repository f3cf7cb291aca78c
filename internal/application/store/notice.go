package store

import "log/slog"

// NoticeLevel is the severity of a user-facing notice.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarn
	NoticeError
)

// Notice kinds. TabStore tracks per-kind "already shown" flags explicitly,
// so flaky connections do not interrupt the user with the same notice on
// every reload.
const (
	NoticeDataSource       = "data-source"
	NoticeNoOpenTabs       = "no-open-tabs"
	NoticeTabCreateFailed  = "tab-create-failed"
	NoticeSaleRecorded     = "sale-recorded"
	NoticeCourtesyRecorded = "courtesy-sale-recorded"
)

// Notice is a brief user-facing message. The UI shows it and moves on; it
// never alters core behavior.
type Notice struct {
	Level   NoticeLevel
	Kind    string
	Message string
}

// NoticeSink receives notices for presentation.
type NoticeSink interface {
	Publish(Notice)
}

type logSink struct {
	log *slog.Logger
}

// NewLogSink returns a sink that writes notices to the logger. Headless
// deployments use it as the default presentation.
func NewLogSink(log *slog.Logger) NoticeSink {
	return &logSink{log: log}
}

func (s *logSink) Publish(n Notice) {
	switch n.Level {
	case NoticeWarn:
		s.log.Warn(n.Message, "notice", n.Kind)
	case NoticeError:
		s.log.Error(n.Message, "notice", n.Kind)
	default:
		s.log.Info(n.Message, "notice", n.Kind)
	}
}
